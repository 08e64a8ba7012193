package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/alon-poshil/authgate/secondary"
)

const keyPrefix = "ratelimit:"

// Config holds limiter tuning parameters.
type Config struct {
	Window time.Duration
	Max    int
}

// Counter is the persisted state of one identity's window.
type Counter struct {
	Key             string `json:"key"`
	Count           int    `json:"count"`
	WindowStartedAt int64  `json:"windowStartedAt"` // unix milliseconds
}

// Decision is the outcome of [Limiter.Admit].
type Decision struct {
	Allowed bool
	// RetryAfter is the time until the current window closes. Zero when allowed.
	RetryAfter time.Duration
}

// Limiter enforces a fixed-window request budget per identity.
type Limiter struct {
	store  secondary.Storage
	config Config
	now    func() time.Time
}

// New creates a [Limiter] backed by store. A nil clock uses time.Now.
func New(store secondary.Storage, cfg Config, now func() time.Time) (*Limiter, error) {
	if cfg.Window <= 0 || cfg.Max <= 0 {
		return nil, ErrInvalidConfig
	}
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		store:  store,
		config: cfg,
		now:    now,
	}, nil
}

// Admit counts one request for identity and reports whether it fits in the
// current window. The first Max requests of a window are allowed; the (Max+1)-th
// and later are denied until the window elapses.
//
// Denied requests are not persisted: the stored count stays at Max, which keeps
// denying until the window's TTL removes it.
func (l *Limiter) Admit(ctx context.Context, identity string) (Decision, error) {
	key := keyPrefix + identity
	now := l.now()

	counter, ok, err := secondary.GetJSON[Counter](ctx, l.store, key)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	started := time.UnixMilli(counter.WindowStartedAt)
	if !ok || now.Sub(started) >= l.config.Window || now.Before(started) {
		counter = Counter{Key: identity, WindowStartedAt: now.UnixMilli()}
		started = time.UnixMilli(counter.WindowStartedAt)
	}

	remaining := l.config.Window - now.Sub(started)
	counter.Count++
	if counter.Count > l.config.Max {
		return Decision{Allowed: false, RetryAfter: remaining}, nil
	}

	if err := secondary.SetJSON(ctx, l.store, key, counter, remaining); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return Decision{Allowed: true}, nil
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration {
	return l.config.Window
}
