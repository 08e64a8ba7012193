package authgate

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/alon-poshil/authgate/hooks"
	"github.com/alon-poshil/authgate/internal/audit"
	"github.com/alon-poshil/authgate/internal/rate"
	"github.com/alon-poshil/authgate/internal/stores"
	"github.com/alon-poshil/authgate/jwt"
	"github.com/alon-poshil/authgate/password"
	"github.com/alon-poshil/authgate/session"
)

// Engine is the authentication boundary. Build one with [New] and share it;
// all methods are safe for concurrent use.
type Engine struct {
	config Config
	logger log.Logger
	now    func() time.Time

	users         UserProvider
	sessions      *session.Store
	verifications *stores.VerificationStore
	limiter       *rate.Limiter
	passwords     *password.Argon2
	tokens        *jwt.Manager
	hooks         *hooks.Dispatcher
	social        map[string]*oauth2.Config

	audit   *audit.Dispatcher
	metrics *Metrics
	tracer  trace.Tracer
}

// Close flushes the audit dispatcher. The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// MetricsSnapshot returns the current counter values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports audit events discarded because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

func (e *Engine) ready() error {
	if e == nil || e.users == nil || e.sessions == nil || e.tokens == nil {
		return ErrEngineNotReady
	}
	return nil
}

func (e *Engine) dispatch(ctx context.Context, event hooks.Event) {
	ctx, span := e.tracer.Start(ctx, "authgate.hooks."+event.Kind().String())
	defer span.End()

	e.metricInc(MetricHookDispatched)
	if err := e.hooks.Dispatch(ctx, event); err != nil {
		span.RecordError(err)
		e.metricInc(MetricHookFailure)
		e.logError("lifecycle hook failed", err, "event", event.Kind().String(), "user_id", event.Subject().ID)
		e.emitAudit(ctx, auditEventHookFailed, false, event.Subject().ID, "", err, map[string]string{
			"event": event.Kind().String(),
		})
	}
}
