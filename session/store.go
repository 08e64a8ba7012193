package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alon-poshil/authgate/secondary"
)

// ErrStoreUnavailable wraps secondary storage failures.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrInvalidSession is returned by Save for sessions missing an id or user id.
var ErrInvalidSession = errors.New("invalid session")

// Store reads and writes sessions.
type Store struct {
	storage secondary.Storage
	now     func() time.Time
}

// NewStore returns a [Store]. A nil clock uses time.Now.
func NewStore(storage secondary.Storage, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{storage: storage, now: now}
}

func sessionKey(id string) string {
	return "session:" + id
}

func userIndexKey(userID string) string {
	return "active-sessions:" + userID
}

// Save writes sess and records it in the user's index. Saving an already
// expired session is a no-op.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" || sess.UserID == "" {
		return ErrInvalidSession
	}
	now := s.now()
	ttl := sess.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}

	if err := secondary.SetJSON(ctx, s.storage, sessionKey(sess.ID), sess, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	entries, err := s.loadIndex(ctx, sess.UserID)
	if err != nil {
		return err
	}
	updated := false
	for i := range entries {
		if entries[i].ID == sess.ID {
			entries[i].ExpiresAt = sess.ExpiresAt.UnixMilli()
			updated = true
		}
	}
	if !updated {
		entries = append(entries, indexEntry{ID: sess.ID, ExpiresAt: sess.ExpiresAt.UnixMilli()})
	}
	return s.saveIndex(ctx, sess.UserID, entries)
}

// Get returns the session with id. Missing and expired sessions are absent.
func (s *Store) Get(ctx context.Context, id string) (*Session, bool, error) {
	if id == "" {
		return nil, false, nil
	}
	sess, ok, err := secondary.GetJSON[Session](ctx, s.storage, sessionKey(id))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok || sess.Expired(s.now()) {
		return nil, false, nil
	}
	return &sess, true, nil
}

// Delete removes the session with id. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	sess, ok, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return nil
	}

	entries, err := s.loadIndex(ctx, sess.UserID)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	return s.saveIndex(ctx, sess.UserID, kept)
}

// DeleteAllForUser removes every session of userID and returns how many were indexed.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) (int, error) {
	entries, err := s.loadIndex(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := s.storage.Delete(ctx, sessionKey(e.ID)); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	if err := s.storage.Delete(ctx, userIndexKey(userID)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return len(entries), nil
}

// ActiveSessionIDs lists the unexpired session ids indexed for userID.
func (s *Store) ActiveSessionIDs(ctx context.Context, userID string) ([]string, error) {
	entries, err := s.loadIndex(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func (s *Store) loadIndex(ctx context.Context, userID string) ([]indexEntry, error) {
	entries, _, err := secondary.GetJSON[[]indexEntry](ctx, s.storage, userIndexKey(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	now := s.now().UnixMilli()
	live := entries[:0]
	for _, e := range entries {
		if e.ExpiresAt > now {
			live = append(live, e)
		}
	}
	return live, nil
}

func (s *Store) saveIndex(ctx context.Context, userID string, entries []indexEntry) error {
	key := userIndexKey(userID)
	if len(entries) == 0 {
		if err := s.storage.Delete(ctx, key); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	}

	var latest int64
	for _, e := range entries {
		if e.ExpiresAt > latest {
			latest = e.ExpiresAt
		}
	}
	ttl := time.UnixMilli(latest).Sub(s.now())
	if err := secondary.SetJSON(ctx, s.storage, key, entries, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
