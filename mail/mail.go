// Package mail defines the outbound email boundary used by authgate lifecycle hooks.
//
// Delivery itself is pluggable: production wires a [Sender] backed by a provider SDK,
// development uses [LogSender] so no real email leaves the machine.
package mail

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Kind names the purpose of a message.
type Kind string

const (
	KindPasswordReset     Kind = "password_reset"
	KindEmailVerification Kind = "email_verification"
)

// Message is one transactional email carrying a single-use link.
type Message struct {
	Kind    Kind
	To      string
	UserID  string
	Subject string
	Link    string
	Token   string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to [Sender].
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// LogSender writes a diagnostic record for each message instead of sending it.
type LogSender struct {
	Logger log.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return level.Info(logger).Log(
		"msg", "email not sent in development",
		"kind", string(msg.Kind),
		"user_id", msg.UserID,
		"to", msg.To,
		"url", msg.Link,
		"token", msg.Token,
	)
}

// NopSender drops every message.
type NopSender struct{}

func (NopSender) Send(context.Context, Message) error { return nil }
