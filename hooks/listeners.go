package hooks

import (
	"context"
	"fmt"

	"github.com/alon-poshil/authgate/mail"
	"github.com/alon-poshil/authgate/objectstore"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// AssetCleanup deletes a deleted user's internally stored profile image.
type AssetCleanup struct {
	Store  objectstore.Deleter
	Logger log.Logger
}

func (a AssetCleanup) Handle(ctx context.Context, event Event) error {
	deleted, ok := event.(UserDeleted)
	if !ok {
		return nil
	}
	issued, err := objectstore.DeleteUserImage(ctx, a.Store, deleted.User.Image)
	if err != nil {
		return fmt.Errorf("delete user image: %w", err)
	}
	if issued && a.Logger != nil {
		_ = level.Debug(a.Logger).Log("msg", "user image deleted", "user_id", deleted.User.ID)
	}
	return nil
}

// Mailer delivers reset and verification links. With Development set, messages go to
// a [mail.LogSender] on Logger and Sender is never called.
type Mailer struct {
	Sender      mail.Sender
	Development bool
	Logger      log.Logger
}

func (m Mailer) Handle(ctx context.Context, event Event) error {
	var msg mail.Message
	switch e := event.(type) {
	case PasswordResetRequested:
		msg = mail.Message{
			Kind:    mail.KindPasswordReset,
			To:      e.User.Email,
			UserID:  e.User.ID,
			Subject: "Reset your password",
			Link:    e.URL,
			Token:   e.Token,
		}
	case EmailVerificationRequested:
		msg = mail.Message{
			Kind:    mail.KindEmailVerification,
			To:      e.User.Email,
			UserID:  e.User.ID,
			Subject: "Verify your email address",
			Link:    e.URL,
			Token:   e.Token,
		}
	default:
		return nil
	}

	sender := m.Sender
	if m.Development {
		sender = mail.LogSender{Logger: m.Logger}
	}
	if sender == nil {
		sender = mail.NopSender{}
	}
	if err := sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s email: %w", msg.Kind, err)
	}
	return nil
}
