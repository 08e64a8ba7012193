package audit

import (
	"context"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Event is one audit record.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"`
	UserID    string            `json:"user_id,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// LogSink writes each event as one structured log line.
type LogSink struct {
	logger log.Logger
	mu     sync.Mutex
}

func NewLogSink(logger log.Logger) *LogSink {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &LogSink{logger: log.With(logger, "component", "audit")}
}

func (s *LogSink) Emit(_ context.Context, event Event) {
	if s == nil {
		return
	}
	kv := []interface{}{
		"msg", "audit event",
		"type", event.Type,
		"ts", event.Timestamp.UTC().Format(time.RFC3339Nano),
		"success", event.Success,
	}
	if event.UserID != "" {
		kv = append(kv, "user_id", event.UserID)
	}
	if event.SessionID != "" {
		kv = append(kv, "session_id", event.SessionID)
	}
	if event.IP != "" {
		kv = append(kv, "ip", event.IP)
	}
	if event.Error != "" {
		kv = append(kv, "err", event.Error)
	}
	for k, v := range event.Metadata {
		kv = append(kv, "meta_"+k, v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = level.Info(s.logger).Log(kv...)
}
