package authgate

import (
	"github.com/go-kit/log"

	"github.com/alon-poshil/authgate/internal/audit"
)

// AuditEvent is one security-relevant record emitted by the engine.
type AuditEvent = audit.Event

// AuditSink receives audit events from the engine's dispatcher goroutine.
type AuditSink = audit.Sink

// NewChannelSink returns a sink that buffers events in a channel, mostly for tests.
func NewChannelSink(buffer int) *audit.ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewLogAuditSink writes each audit event as an info line on logger.
func NewLogAuditSink(logger log.Logger) AuditSink {
	return audit.NewLogSink(logger)
}

const (
	auditEventSessionCreated        = "session_created"
	auditEventSessionRevoked        = "session_revoked"
	auditEventRateLimited           = "rate_limited"
	auditEventSignUp                = "sign_up"
	auditEventSignIn                = "sign_in"
	auditEventPasswordResetRequest  = "password_reset_request"
	auditEventPasswordReset         = "password_reset"
	auditEventEmailVerificationSent = "email_verification_request"
	auditEventEmailVerified         = "email_verified"
	auditEventUserDeleted           = "user_deleted"
	auditEventImpersonationStarted  = "impersonation_started"
	auditEventHookFailed            = "hook_failed"
)
