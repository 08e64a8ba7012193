package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alon-poshil/authgate/secondary"
)

// Kind namespaces a verification record.
type Kind string

const (
	KindResetPassword Kind = "reset-password"
	KindVerifyEmail   Kind = "verify-email"
)

var (
	ErrVerificationNotFound    = errors.New("verification record not found")
	ErrVerificationUnavailable = errors.New("verification storage unavailable")
)

// Verification is the stored payload behind a token.
type Verification struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"expiresAt"` // unix ms
}

type VerificationStore struct {
	storage secondary.Storage
	now     func() time.Time
}

func NewVerificationStore(storage secondary.Storage, now func() time.Time) *VerificationStore {
	if now == nil {
		now = time.Now
	}
	return &VerificationStore{storage: storage, now: now}
}

func key(kind Kind, token string) string {
	return "verification:" + string(kind) + ":" + token
}

// Issue stores a record for token that expires after ttl.
func (s *VerificationStore) Issue(ctx context.Context, kind Kind, token, userID, email string, ttl time.Duration) error {
	if token == "" || ttl <= 0 {
		return errors.New("verification requires token and positive ttl")
	}
	record := Verification{
		UserID:    userID,
		Email:     email,
		ExpiresAt: s.now().Add(ttl).UnixMilli(),
	}
	if err := secondary.SetJSON(ctx, s.storage, key(kind, token), record, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	return nil
}

// Consume loads and deletes the record for token.
// Expired or missing records return ErrVerificationNotFound.
func (s *VerificationStore) Consume(ctx context.Context, kind Kind, token string) (*Verification, error) {
	if token == "" {
		return nil, ErrVerificationNotFound
	}
	k := key(kind, token)
	record, ok, err := secondary.GetJSON[Verification](ctx, s.storage, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	if !ok {
		return nil, ErrVerificationNotFound
	}
	if err := s.storage.Delete(ctx, k); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	if s.now().UnixMilli() >= record.ExpiresAt {
		return nil, ErrVerificationNotFound
	}
	return &record, nil
}
