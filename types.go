package authgate

import (
	"context"
	"time"

	"github.com/alon-poshil/authgate/hooks"
	"github.com/alon-poshil/authgate/session"
)

// UserProvider is the primary user store. Lookups of unknown users return
// [ErrUserNotFound]; CreateUser returns [ErrProviderDuplicateIdentifier] when the
// email is already registered.
type UserProvider interface {
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	MarkEmailVerified(ctx context.Context, userID string) (UserRecord, error)
	DeleteUser(ctx context.Context, userID string) error
}

// UserRecord is a user as held by the [UserProvider].
type UserRecord struct {
	ID            string
	Email         string
	Name          string
	Image         string
	Role          string
	EmailVerified bool
	PasswordHash  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateUserInput carries the fields needed to create a user.
type CreateUserInput struct {
	Email        string
	Name         string
	Image        string
	Role         string
	PasswordHash string
}

// SignUpInput is the email and password sign-up request.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
	Image    string
}

// SessionResult is what a resolved session looks like to callers.
// User never carries the password hash.
type SessionResult struct {
	Session session.Session
	User    UserRecord
	// RefreshedToken is set when the session expiry was extended while resolving it.
	RefreshedToken string
}

// UserID returns the id of the session's user.
func (r *SessionResult) UserID() string {
	if r == nil {
		return ""
	}
	return r.Session.UserID
}

// RateDecision is the outcome of [Engine.CheckRequest].
type RateDecision struct {
	Allowed    bool
	RetryAfter time.Duration
	Identity   string
}

func publicUser(u UserRecord) UserRecord {
	u.PasswordHash = ""
	return u
}

func hookUser(u UserRecord) hooks.User {
	return hooks.User{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Image:         u.Image,
		EmailVerified: u.EmailVerified,
	}
}
