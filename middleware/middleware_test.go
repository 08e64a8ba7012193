package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alon-poshil/authgate"
	"github.com/alon-poshil/authgate/internal/memusers"
	"github.com/alon-poshil/authgate/secondary"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	engine  *authgate.Engine
	storage *secondary.MemoryStorage
	clock   *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	storage := secondary.NewMemoryStorage(clock.Now)

	cfg := authgate.DefaultConfig()
	cfg.BaseURL = "https://app.example.com"
	cfg.Secret = []byte("middleware-secret-middleware-secret!")
	cfg.EmailAndPassword.RequireEmailVerification = false
	cfg.EmailVerification.SendOnSignUp = false
	cfg.Audit.Enabled = false

	engine, err := authgate.New().
		WithConfig(cfg).
		WithSecondaryStorage(storage).
		WithUserProvider(memusers.New(clock.Now)).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return &fixture{engine: engine, storage: storage, clock: clock}
}

func (f *fixture) signUp(t *testing.T) string {
	t.Helper()
	_, token, err := f.engine.SignUpEmail(context.Background(), authgate.SignUpInput{
		Email:    "ada@example.com",
		Password: "correct horse battery",
		Name:     "Ada",
	})
	if err != nil {
		t.Fatalf("SignUpEmail failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a session token")
	}
	return token
}

func sessionEcho(t *testing.T, seen **authgate.SessionResult) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, _ := SessionFromContext(r.Context())
		*seen = res
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireSessionRejectsAnonymous(t *testing.T) {
	f := newFixture(t)

	var seen *authgate.SessionResult
	h := RequireSession(f.engine)(sessionEcho(t, &seen))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if seen != nil {
		t.Fatal("handler must not run")
	}
}

func TestRequireSessionAttachesSession(t *testing.T) {
	f := newFixture(t)
	token := f.signUp(t)

	var seen *authgate.SessionResult
	h := RequireSession(f.engine)(sessionEcho(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if seen == nil || seen.User.Email != "ada@example.com" {
		t.Fatalf("unexpected session %+v", seen)
	}
	if seen.User.PasswordHash != "" {
		t.Fatal("password hash leaked into session result")
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("fresh session must not be re-issued")
	}
}

func TestSessionPassesAnonymousThrough(t *testing.T) {
	f := newFixture(t)

	var seen *authgate.SessionResult
	h := Session(f.engine)(sessionEcho(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if seen != nil {
		t.Fatal("expected no session for a garbage token")
	}
}

func TestSessionWritesRefreshedCookie(t *testing.T) {
	f := newFixture(t)
	token := f.signUp(t)
	f.clock.Advance(25 * time.Hour)

	var seen *authgate.SessionResult
	h := Session(f.engine)(sessionEcho(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: f.engine.Config().Session.CookieName, Value: token})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen == nil {
		t.Fatal("expected a session")
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one refreshed cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "authgate.session_token" || c.Value != seen.RefreshedToken || !c.HttpOnly || !c.Secure {
		t.Fatalf("unexpected cookie %+v", c)
	}
}

func TestSessionStorageFailureIsGeneric(t *testing.T) {
	f := newFixture(t)
	token := f.signUp(t)
	f.storage.FailWith = errors.New("connection refused")

	var seen *authgate.SessionResult
	h := Session(f.engine)(sessionEcho(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "Internal Server Error\n" {
		t.Fatalf("storage details leaked: %q", body)
	}
}

func TestRateLimitDeniesAfterBudget(t *testing.T) {
	f := newFixture(t)

	calls := 0
	h := RateLimit(f.engine)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in/email", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 10; i++ {
		if rr := do("203.0.113.7"); rr.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i+1, rr.Code)
		}
	}
	rr := do("203.0.113.7")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("expected Retry-After 60, got %q", got)
	}
	if calls != 10 {
		t.Fatalf("expected 10 handler calls, got %d", calls)
	}

	if rr := do("198.51.100.1"); rr.Code != http.StatusNoContent {
		t.Fatalf("other identity should be admitted, got %d", rr.Code)
	}

	f.clock.Advance(61 * time.Second)
	if rr := do("203.0.113.7"); rr.Code != http.StatusNoContent {
		t.Fatalf("new window should admit, got %d", rr.Code)
	}
}

func TestRateLimitWithoutIdentityHeader(t *testing.T) {
	f := newFixture(t)
	h := RateLimit(f.engine)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	for i := 0; i < 20; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
	}
	if keys := f.storage.Keys(); len(keys) != 0 {
		t.Fatalf("anonymous requests must not touch storage, got %v", keys)
	}
}

func TestRateLimitStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.storage.FailWith = errors.New("connection refused")

	h := RateLimit(f.engine)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "192.0.2.9")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
