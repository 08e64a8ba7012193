package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/alon-poshil/authgate/secondary"
)

func TestIssueAndConsumeOnce(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewVerificationStore(secondary.NewMemoryStorage(func() time.Time { return now }), func() time.Time { return now })
	ctx := context.Background()

	if err := store.Issue(ctx, KindResetPassword, "tok", "u1", "a@example.com", time.Hour); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rec, err := store.Consume(ctx, KindResetPassword, "tok")
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if rec.UserID != "u1" || rec.Email != "a@example.com" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if _, err := store.Consume(ctx, KindResetPassword, "tok"); !errors.Is(err, ErrVerificationNotFound) {
		t.Fatalf("second consume: expected ErrVerificationNotFound, got %v", err)
	}
}

func TestConsumeWrongKind(t *testing.T) {
	store := NewVerificationStore(secondary.NewMemoryStorage(nil), nil)
	ctx := context.Background()

	if err := store.Issue(ctx, KindVerifyEmail, "tok", "u1", "a@example.com", time.Hour); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := store.Consume(ctx, KindResetPassword, "tok"); !errors.Is(err, ErrVerificationNotFound) {
		t.Fatalf("expected kinds to be isolated, got %v", err)
	}
}

func TestConsumeExpired(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	store := NewVerificationStore(secondary.NewRedisStorage(rdb, secondary.DefaultPrefix), nil)
	ctx := context.Background()

	if err := store.Issue(ctx, KindVerifyEmail, "tok", "u1", "a@example.com", time.Hour); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !mr.Exists("_auth:verification:verify-email:tok") {
		t.Fatal("expected prefixed verification key")
	}
	mr.FastForward(time.Hour + time.Second)

	if _, err := store.Consume(ctx, KindVerifyEmail, "tok"); !errors.Is(err, ErrVerificationNotFound) {
		t.Fatalf("expected ErrVerificationNotFound, got %v", err)
	}
}

func TestStorageFailureIsUnavailable(t *testing.T) {
	mem := secondary.NewMemoryStorage(nil)
	mem.FailWith = errors.New("boom")
	store := NewVerificationStore(mem, nil)

	err := store.Issue(context.Background(), KindVerifyEmail, "tok", "u1", "a@example.com", time.Hour)
	if !errors.Is(err, ErrVerificationUnavailable) {
		t.Fatalf("expected ErrVerificationUnavailable, got %v", err)
	}
}
