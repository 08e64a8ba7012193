package authgate

import (
	"context"
	"errors"
	"fmt"

	"github.com/alon-poshil/authgate/hooks"
)

// DeleteUser removes the user record, revokes its sessions and then dispatches
// UserDeleted. Once the record is gone the call succeeds: session revocation and
// hook failures are logged, audited and counted but not returned.
func (e *Engine) DeleteUser(ctx context.Context, userID string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if !e.config.DeleteUser.Enabled {
		return ErrFeatureDisabled
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUserProviderUnavailable, err)
	}
	if err := e.users.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrUserProviderUnavailable, err)
	}

	e.metricInc(MetricUserDeleted)
	e.emitAudit(ctx, auditEventUserDeleted, true, user.ID, "", nil, nil)

	if _, err := e.RevokeUserSessions(ctx, user.ID); err != nil {
		e.logWarn("session revocation after user deletion failed", err, "user_id", user.ID)
	}

	e.dispatch(ctx, hooks.UserDeleted{User: hookUser(user)})
	return nil
}
