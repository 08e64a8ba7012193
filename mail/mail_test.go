package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-kit/log"
)

func TestLogSenderEmitsLinkAndToken(t *testing.T) {
	var buf bytes.Buffer
	sender := LogSender{Logger: log.NewLogfmtLogger(&buf)}

	err := sender.Send(context.Background(), Message{
		Kind:   KindPasswordReset,
		To:     "alice@example.com",
		UserID: "u1",
		Link:   "https://app.example.com/reset-password/tok",
		Token:  "tok",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"user_id=u1", "to=alice@example.com", "url=https://app.example.com/reset-password/tok", "token=tok", "kind=password_reset"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestLogSenderNilLogger(t *testing.T) {
	if err := (LogSender{}).Send(context.Background(), Message{}); err != nil {
		t.Fatalf("nil logger must be tolerated: %v", err)
	}
}
