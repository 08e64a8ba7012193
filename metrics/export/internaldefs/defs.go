package internaldefs

import (
	"github.com/alon-poshil/authgate"
)

// CounterDef maps one engine counter to its exported name.
type CounterDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// HistogramDef maps one engine histogram to its exported name.
type HistogramDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const (
	AuditDroppedName = "authgate_audit_dropped_total"
	AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
)

var CounterDefs = []CounterDef{
	{ID: authgate.MetricSessionResolved, Name: "authgate_session_resolved_total", Help: "Requests that resolved to a live session."},
	{ID: authgate.MetricSessionAbsent, Name: "authgate_session_absent_total", Help: "Requests without a usable session."},
	{ID: authgate.MetricSessionRefreshed, Name: "authgate_session_refreshed_total", Help: "Sessions whose expiry was extended on read."},
	{ID: authgate.MetricSessionCreated, Name: "authgate_session_created_total", Help: "Created sessions."},
	{ID: authgate.MetricSessionRevoked, Name: "authgate_session_revoked_total", Help: "Revoked sessions."},
	{ID: authgate.MetricRateLimitAllowed, Name: "authgate_rate_limit_allowed_total", Help: "Requests admitted by the rate limiter."},
	{ID: authgate.MetricRateLimitDenied, Name: "authgate_rate_limit_denied_total", Help: "Requests denied by the rate limiter."},
	{ID: authgate.MetricRateLimitError, Name: "authgate_rate_limit_error_total", Help: "Rate limiter checks that failed on storage."},
	{ID: authgate.MetricSignUpSuccess, Name: "authgate_sign_up_success_total", Help: "Successful email sign-ups."},
	{ID: authgate.MetricSignUpDuplicate, Name: "authgate_sign_up_duplicate_total", Help: "Sign-ups rejected as duplicate."},
	{ID: authgate.MetricSignInSuccess, Name: "authgate_sign_in_success_total", Help: "Successful email sign-ins."},
	{ID: authgate.MetricSignInFailure, Name: "authgate_sign_in_failure_total", Help: "Failed email sign-ins."},
	{ID: authgate.MetricSignInUnverified, Name: "authgate_sign_in_unverified_total", Help: "Sign-ins blocked on email verification."},
	{ID: authgate.MetricPasswordResetRequest, Name: "authgate_password_reset_request_total", Help: "Password reset requests."},
	{ID: authgate.MetricPasswordResetSuccess, Name: "authgate_password_reset_success_total", Help: "Completed password resets."},
	{ID: authgate.MetricPasswordResetFailure, Name: "authgate_password_reset_failure_total", Help: "Failed password resets."},
	{ID: authgate.MetricEmailVerificationRequest, Name: "authgate_email_verification_request_total", Help: "Email verification requests."},
	{ID: authgate.MetricEmailVerificationSuccess, Name: "authgate_email_verification_success_total", Help: "Successful email verifications."},
	{ID: authgate.MetricEmailVerificationFailure, Name: "authgate_email_verification_failure_total", Help: "Failed email verifications."},
	{ID: authgate.MetricUserDeleted, Name: "authgate_user_deleted_total", Help: "Deleted users."},
	{ID: authgate.MetricImpersonationStarted, Name: "authgate_impersonation_started_total", Help: "Impersonation sessions started."},
	{ID: authgate.MetricHookDispatched, Name: "authgate_hook_dispatched_total", Help: "Lifecycle events dispatched to listeners."},
	{ID: authgate.MetricHookFailure, Name: "authgate_hook_failure_total", Help: "Lifecycle events with at least one failing listener."},
}

var HistogramDefs = []HistogramDef{
	{ID: authgate.MetricGetSessionLatency, Name: "authgate_get_session_latency_seconds", Help: "GetSession latency histogram."},
}

// HistogramUpperBounds are the bucket upper bounds in seconds, excluding +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for exporters that
// flatten a histogram into gauges.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
