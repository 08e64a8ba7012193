package authgate

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
)

// CheckRequest derives the client identity from headers and admits or denies the
// request against the fixed-window limiter.
//
// Requests with no identity header are allowed without touching storage. Storage
// failures return [ErrRateLimitUnavailable]; callers should answer with a generic
// server error.
func (e *Engine) CheckRequest(ctx context.Context, headers http.Header) (RateDecision, error) {
	identity := ClientIdentity(headers, e.config.Advanced.IPAddressHeaders)
	return e.Admit(ctx, identity)
}

// Admit charges one request to identity.
func (e *Engine) Admit(ctx context.Context, identity string) (RateDecision, error) {
	out := RateDecision{Allowed: true, Identity: identity}
	if e == nil || e.limiter == nil || identity == "" {
		return out, nil
	}

	ctx, span := e.tracer.Start(ctx, "authgate.Admit")
	defer span.End()

	decision, err := e.limiter.Admit(ctx, identity)
	if err != nil {
		span.RecordError(err)
		e.metricInc(MetricRateLimitError)
		e.logError("rate limit check failed", err, "identity", identity)
		return RateDecision{Identity: identity}, fmt.Errorf("%w: %v", ErrRateLimitUnavailable, err)
	}

	span.SetAttributes(attribute.Bool("authgate.ratelimit.allowed", decision.Allowed))
	if !decision.Allowed {
		e.metricInc(MetricRateLimitDenied)
		e.emitAudit(ctx, auditEventRateLimited, false, "", "", nil, map[string]string{
			"identity":    identity,
			"retry_after": strconv.Itoa(int(decision.RetryAfter.Seconds())),
		})
		return RateDecision{Allowed: false, RetryAfter: decision.RetryAfter, Identity: identity}, nil
	}

	e.metricInc(MetricRateLimitAllowed)
	return out, nil
}
