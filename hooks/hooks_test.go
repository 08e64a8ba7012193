package hooks

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/alon-poshil/authgate/mail"
	"github.com/alon-poshil/authgate/objectstore"
	"github.com/go-kit/log"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func TestAssetCleanupInternalKey(t *testing.T) {
	store := &objectstore.MemoryStore{}
	l := AssetCleanup{Store: store}

	err := l.Handle(context.Background(), UserDeleted{User: User{ID: "u123", Image: "avatars/u123.png?v=2"}})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	got := store.Deleted()
	if len(got) != 1 || got[0] != "avatars/u123.png" {
		t.Fatalf("expected one delete of avatars/u123.png, got %v", got)
	}
}

func TestAssetCleanupSkips(t *testing.T) {
	tests := []struct {
		name  string
		event Event
	}{
		{name: "external url", event: UserDeleted{User: User{ID: "u", Image: "https://cdn.example.com/x.png"}}},
		{name: "no image", event: UserDeleted{User: User{ID: "u"}}},
		{name: "other event", event: PasswordResetRequested{User: User{ID: "u", Image: "avatars/u.png"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &objectstore.MemoryStore{}
			if err := (AssetCleanup{Store: store}).Handle(context.Background(), tt.event); err != nil {
				t.Fatalf("Handle failed: %v", err)
			}
			if n := len(store.Deleted()); n != 0 {
				t.Fatalf("expected zero deletes, got %d", n)
			}
		})
	}
}

func TestMailerDevelopmentNeverSends(t *testing.T) {
	var buf bytes.Buffer
	sender := &recordingSender{}
	m := Mailer{Sender: sender, Development: true, Logger: log.NewLogfmtLogger(&buf)}

	err := m.Handle(context.Background(), PasswordResetRequested{
		User:  User{ID: "u1", Email: "alice@example.com"},
		URL:   "http://localhost:5173/reset-password/abc",
		Token: "abc",
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("development must not send real email, sent %d", len(sender.sent))
	}
	out := buf.String()
	for _, want := range []string{"user_id=u1", "url=http://localhost:5173/reset-password/abc", "token=abc"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in diagnostic output %q", want, out)
		}
	}
}

func TestMailerProductionSends(t *testing.T) {
	sender := &recordingSender{}
	m := Mailer{Sender: sender}

	err := m.Handle(context.Background(), EmailVerificationRequested{
		User:  User{ID: "u1", Email: "alice@example.com"},
		URL:   "https://app.example.com/verify-email?token=t",
		Token: "t",
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Kind != mail.KindEmailVerification || msg.To != "alice@example.com" || msg.Token != "t" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestMailerIgnoresUserDeleted(t *testing.T) {
	sender := &recordingSender{}
	if err := (Mailer{Sender: sender}).Handle(context.Background(), UserDeleted{}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("user deletion must not send mail")
	}
}

func TestDispatcherRunsAllListenersAndJoinsErrors(t *testing.T) {
	first := errors.New("first")
	var calls []string

	d := NewDispatcher(nil,
		ListenerFunc(func(context.Context, Event) error {
			calls = append(calls, "a")
			return first
		}),
		nil,
		ListenerFunc(func(context.Context, Event) error {
			calls = append(calls, "b")
			panic("boom")
		}),
		ListenerFunc(func(context.Context, Event) error {
			calls = append(calls, "c")
			return nil
		}),
	)
	if d.Len() != 3 {
		t.Fatalf("expected nil listener to be dropped, got %d", d.Len())
	}

	err := d.Dispatch(context.Background(), UserDeleted{User: User{ID: "u"}})
	if !errors.Is(err, first) {
		t.Fatalf("expected joined error to contain first, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "panic") {
		t.Fatalf("expected panic to be reported, got %v", err)
	}
	if strings.Join(calls, ",") != "a,b,c" {
		t.Fatalf("expected all listeners in order, got %v", calls)
	}
}

func TestDispatcherNilSafe(t *testing.T) {
	var d *Dispatcher
	if err := d.Dispatch(context.Background(), UserDeleted{}); err != nil {
		t.Fatalf("nil dispatcher must be a no-op: %v", err)
	}
}

func TestKindString(t *testing.T) {
	if KindUserDeleted.String() != "user_deleted" || Kind(0).String() != "unknown" {
		t.Fatal("unexpected kind names")
	}
}
