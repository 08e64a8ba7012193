package secondary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultPrefix namespaces every authgate key in a shared keyspace.
const DefaultPrefix = "_auth:"

// ErrUnavailable wraps transient backend failures.
var ErrUnavailable = errors.New("secondary storage unavailable")

// Storage is the capability interface satisfied by every secondary storage backend.
//
// Keys passed in are un-prefixed; implementations apply their namespace.
// A ttl <= 0 stores the value without expiry.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// GetJSON reads key and decodes it into a fresh T.
// A missing key returns ok == false and a nil error.
func GetJSON[T any](ctx context.Context, s Storage, key string) (T, bool, error) {
	var out T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes value as JSON text and stores it under key.
func SetJSON(ctx context.Context, s Storage, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data), ttl)
}
