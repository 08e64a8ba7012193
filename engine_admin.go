package authgate

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// IsAdmin reports whether user is on the admin allow-list or holds an admin role.
func (e *Engine) IsAdmin(user UserRecord) bool {
	if user.ID == "" {
		return false
	}
	if slices.Contains(e.config.Admin.AdminUserIDs, user.ID) {
		return true
	}
	return user.Role != "" && slices.Contains(e.config.Admin.AdminRoles, user.Role)
}

// Impersonate creates a session for targetUserID on behalf of the admin behind
// actor. The session lasts Admin.ImpersonationSessionDuration and is never
// extended by reads.
func (e *Engine) Impersonate(ctx context.Context, actor *SessionResult, targetUserID string) (*SessionResult, string, error) {
	if err := e.ready(); err != nil {
		return nil, "", err
	}
	if actor == nil {
		return nil, "", ErrUnauthorized
	}
	if actor.Session.ImpersonatedBy != "" || !e.IsAdmin(actor.User) {
		return nil, "", ErrForbidden
	}

	target, err := e.users.GetUserByID(ctx, targetUserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUserProviderUnavailable, err)
	}

	res, token, err := e.createSession(ctx, target, e.config.Admin.ImpersonationSessionDuration, actor.User.ID)
	if err != nil {
		return nil, "", err
	}
	e.metricInc(MetricImpersonationStarted)
	e.emitAudit(ctx, auditEventImpersonationStarted, true, target.ID, res.Session.ID, nil, map[string]string{
		"impersonated_by": actor.User.ID,
	})
	return res, token, nil
}
