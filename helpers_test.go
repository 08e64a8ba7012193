package authgate

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"

	"github.com/alon-poshil/authgate/hooks"
	"github.com/alon-poshil/authgate/mail"
	"github.com/alon-poshil/authgate/objectstore"
	"github.com/alon-poshil/authgate/secondary"
)

var testSecret = []byte("test-secret-test-secret-test-secret!")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type mockUserProvider struct {
	mu      sync.Mutex
	users   map[string]UserRecord
	nextID  int
	getErr  error
	deleted []string
}

func newMockUserProvider() *mockUserProvider {
	return &mockUserProvider{users: map[string]UserRecord{}}
}

func (m *mockUserProvider) add(u UserRecord) UserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return u
}

func (m *mockUserProvider) GetUserByID(_ context.Context, userID string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return UserRecord{}, m.getErr
	}
	u, ok := m.users[userID]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserProvider) GetUserByEmail(_ context.Context, email string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return UserRecord{}, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return UserRecord{}, ErrUserNotFound
}

func (m *mockUserProvider) CreateUser(_ context.Context, in CreateUserInput) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == in.Email {
			return UserRecord{}, ErrProviderDuplicateIdentifier
		}
	}
	m.nextID++
	u := UserRecord{
		ID:           fmt.Sprintf("user-%d", m.nextID),
		Email:        in.Email,
		Name:         in.Name,
		Image:        in.Image,
		Role:         in.Role,
		PasswordHash: in.PasswordHash,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserProvider) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	m.users[userID] = u
	return nil
}

func (m *mockUserProvider) MarkEmailVerified(_ context.Context, userID string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	u.EmailVerified = true
	m.users[userID] = u
	return u, nil
}

func (m *mockUserProvider) DeleteUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, userID)
	m.deleted = append(m.deleted, userID)
	return nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []hooks.Event
}

func (r *eventRecorder) Handle(_ context.Context, e hooks.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) all() []hooks.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]hooks.Event(nil), r.events...)
}

type senderRecorder struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (s *senderRecorder) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *senderRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type testEnv struct {
	engine  *Engine
	clock   *testClock
	storage *secondary.MemoryStorage
	users   *mockUserProvider
	objects *objectstore.MemoryStore
	sender  *senderRecorder
	events  *eventRecorder
	logs    *bytes.Buffer
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.BaseURL = "https://app.example.com"
	cfg.Secret = testSecret
	cfg.Audit.Enabled = false
	return cfg
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	env := &testEnv{
		clock:   newTestClock(),
		users:   newMockUserProvider(),
		objects: &objectstore.MemoryStore{},
		sender:  &senderRecorder{},
		events:  &eventRecorder{},
		logs:    &bytes.Buffer{},
	}
	env.storage = secondary.NewMemoryStorage(env.clock.Now)

	engine, err := New().
		WithConfig(cfg).
		WithSecondaryStorage(env.storage).
		WithUserProvider(env.users).
		WithObjectStore(env.objects).
		WithMailer(env.sender).
		WithLogger(log.NewLogfmtLogger(log.NewSyncWriter(env.logs))).
		WithListener(env.events).
		WithClock(env.clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	env.engine = engine
	return env
}

// verifiedUser stores a verified user with the given plaintext password.
func (env *testEnv) verifiedUser(t *testing.T, id, email, plain string) UserRecord {
	t.Helper()
	hash, err := env.engine.passwords.Hash(plain)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return env.users.add(UserRecord{ID: id, Email: email, EmailVerified: true, Role: "user", PasswordHash: hash})
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}
