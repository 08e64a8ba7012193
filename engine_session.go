package authgate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/alon-poshil/authgate/internal"
	"github.com/alon-poshil/authgate/session"
)

// GetSession resolves the session carried by headers, from the session cookie or
// an Authorization bearer token.
//
// A request without a usable session returns (nil, nil). Errors are reserved for
// backend failures, wrapped in [ErrSessionUnavailable] or [ErrUserProviderUnavailable].
//
// When the session is older than Session.UpdateAge its expiry is pushed out and
// the returned result carries a RefreshedToken the caller should send back.
func (e *Engine) GetSession(ctx context.Context, headers http.Header) (*SessionResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	ctx, span := e.tracer.Start(ctx, "authgate.GetSession")
	defer span.End()

	start := e.now()
	defer func() { e.metrics.Observe(MetricGetSessionLatency, e.now().Sub(start)) }()

	res, err := e.resolveSession(ctx, headers)
	switch {
	case err != nil:
		span.RecordError(err)
	case res == nil:
		e.metricInc(MetricSessionAbsent)
		span.SetAttributes(attribute.Bool("authgate.session.present", false))
	default:
		e.metricInc(MetricSessionResolved)
		span.SetAttributes(attribute.Bool("authgate.session.present", true))
	}
	return res, err
}

func (e *Engine) resolveSession(ctx context.Context, headers http.Header) (*SessionResult, error) {
	token := e.sessionToken(headers)
	if token == "" {
		return nil, nil
	}
	claims, err := e.tokens.ParseSession(token)
	if err != nil {
		return nil, nil
	}

	sess, ok, err := e.sessions.Get(ctx, claims.SID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	if !ok || sess.UserID != claims.UID {
		return nil, nil
	}

	user, err := e.users.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserProviderUnavailable, err)
	}

	res := &SessionResult{Session: *sess, User: publicUser(user)}
	if refreshed, ok := e.refreshSession(ctx, sess); ok {
		res.Session = *sess
		res.RefreshedToken = refreshed
	}
	return res, nil
}

// refreshSession extends sess in place when it is due. Failures leave the
// session as it was and are only logged.
func (e *Engine) refreshSession(ctx context.Context, sess *session.Session) (string, bool) {
	updateAge := e.config.Session.UpdateAge
	if updateAge <= 0 || sess.ImpersonatedBy != "" {
		return "", false
	}
	now := e.now()
	if now.Sub(sess.UpdatedAt) < updateAge {
		return "", false
	}

	next := *sess
	next.UpdatedAt = now
	next.ExpiresAt = now.Add(e.config.Session.ExpiresIn)
	token, err := e.tokens.CreateSession(next.ID, next.UserID, next.ExpiresAt)
	if err != nil {
		e.logWarn("session token refresh failed", err, "session_id", sess.ID)
		return "", false
	}
	if err := e.sessions.Save(ctx, &next); err != nil {
		e.logWarn("session refresh failed", err, "session_id", sess.ID)
		return "", false
	}
	*sess = next
	e.metricInc(MetricSessionRefreshed)
	return token, true
}

func (e *Engine) sessionToken(headers http.Header) string {
	if headers == nil {
		return ""
	}
	if auth := headers.Get("Authorization"); auth != "" {
		if scheme, rest, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
	}
	req := http.Request{Header: headers}
	if c, err := req.Cookie(e.config.Session.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// createSession persists a new session for user and signs its token.
func (e *Engine) createSession(ctx context.Context, user UserRecord, lifetime time.Duration, impersonatedBy string) (*SessionResult, string, error) {
	sid, err := internal.NewSessionID()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	now := e.now()
	sess := session.Session{
		ID:             sid.String(),
		UserID:         user.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(lifetime),
		IPAddress:      clientIPFromContext(ctx),
		UserAgent:      userAgentFromContext(ctx),
		ImpersonatedBy: impersonatedBy,
	}

	token, err := e.tokens.CreateSession(sess.ID, sess.UserID, sess.ExpiresAt)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	if err := e.sessions.Save(ctx, &sess); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSessionCreated, true, user.ID, sess.ID, nil, nil)
	return &SessionResult{Session: sess, User: publicUser(user)}, token, nil
}

// SignOut revokes the session carried by headers. A request without a session
// is not an error.
func (e *Engine) SignOut(ctx context.Context, headers http.Header) error {
	if err := e.ready(); err != nil {
		return err
	}
	token := e.sessionToken(headers)
	if token == "" {
		return nil
	}
	claims, err := e.tokens.ParseSession(token)
	if err != nil {
		return nil
	}
	if err := e.sessions.Delete(ctx, claims.SID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, auditEventSessionRevoked, true, claims.UID, claims.SID, nil, nil)
	return nil
}

// RevokeUserSessions deletes every session of userID and returns how many were removed.
func (e *Engine) RevokeUserSessions(ctx context.Context, userID string) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	n, err := e.sessions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	for i := 0; i < n; i++ {
		e.metricInc(MetricSessionRevoked)
	}
	if n > 0 {
		e.emitAudit(ctx, auditEventSessionRevoked, true, userID, "", nil, map[string]string{
			"count": fmt.Sprint(n),
		})
	}
	return n, nil
}

// SessionCookie builds the cookie that carries token until expiresAt.
func (e *Engine) SessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     e.config.Session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   strings.HasPrefix(e.config.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}
}
