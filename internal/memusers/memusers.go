// Package memusers is an in-memory authgate.UserProvider for the demo server
// and integration tests. Data is lost on restart.
package memusers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alon-poshil/authgate"
)

type Provider struct {
	mu      sync.RWMutex
	users   map[string]authgate.UserRecord
	byEmail map[string]string
	now     func() time.Time
}

func New(now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{
		users:   make(map[string]authgate.UserRecord),
		byEmail: make(map[string]string),
		now:     now,
	}
}

func (p *Provider) GetUserByID(_ context.Context, userID string) (authgate.UserRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	u, ok := p.users[userID]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return u, nil
}

func (p *Provider) GetUserByEmail(_ context.Context, email string) (authgate.UserRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	id, ok := p.byEmail[strings.ToLower(email)]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return p.users[id], nil
}

func (p *Provider) CreateUser(_ context.Context, in authgate.CreateUserInput) (authgate.UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email := strings.ToLower(in.Email)
	if _, exists := p.byEmail[email]; exists {
		return authgate.UserRecord{}, authgate.ErrProviderDuplicateIdentifier
	}
	now := p.now()
	u := authgate.UserRecord{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         in.Name,
		Image:        in.Image,
		Role:         in.Role,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.users[u.ID] = u
	p.byEmail[email] = u.ID
	return u, nil
}

func (p *Provider) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	return p.update(userID, func(u *authgate.UserRecord) { u.PasswordHash = hash })
}

func (p *Provider) MarkEmailVerified(_ context.Context, userID string) (authgate.UserRecord, error) {
	var out authgate.UserRecord
	err := p.update(userID, func(u *authgate.UserRecord) {
		u.EmailVerified = true
		out = *u
	})
	return out, err
}

func (p *Provider) DeleteUser(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[userID]
	if !ok {
		return authgate.ErrUserNotFound
	}
	delete(p.users, userID)
	delete(p.byEmail, u.Email)
	return nil
}

// SetRole changes a user's role. Not part of authgate.UserProvider.
func (p *Provider) SetRole(userID, role string) error {
	return p.update(userID, func(u *authgate.UserRecord) { u.Role = role })
}

// SetImage changes a user's profile image key. Not part of authgate.UserProvider.
func (p *Provider) SetImage(userID, image string) error {
	return p.update(userID, func(u *authgate.UserRecord) { u.Image = image })
}

func (p *Provider) update(userID string, fn func(u *authgate.UserRecord)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[userID]
	if !ok {
		return authgate.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = p.now()
	p.users[userID] = u
	return nil
}

var _ authgate.UserProvider = (*Provider)(nil)
