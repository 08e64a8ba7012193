package authgate

import (
	"context"

	"github.com/go-kit/log/level"
)

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, sessionID string, err error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: e.now(),
		Type:      eventType,
		UserID:    userID,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) logError(msg string, err error, keyvals ...interface{}) {
	kv := append([]interface{}{"msg", msg, "err", err}, keyvals...)
	_ = level.Error(e.logger).Log(kv...)
}

func (e *Engine) logWarn(msg string, err error, keyvals ...interface{}) {
	kv := append([]interface{}{"msg", msg, "err", err}, keyvals...)
	_ = level.Warn(e.logger).Log(kv...)
}
