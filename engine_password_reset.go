package authgate

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/alon-poshil/authgate/hooks"
	"github.com/alon-poshil/authgate/internal"
	"github.com/alon-poshil/authgate/internal/stores"
)

// RequestPasswordReset issues a single-use reset token for email and dispatches
// PasswordResetRequested. Unknown emails return nil so callers cannot probe for
// accounts.
func (e *Engine) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if !e.config.EmailAndPassword.Enabled {
		return ErrFeatureDisabled
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := e.users.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUserProviderUnavailable, err)
	}

	token, err := internal.NewToken()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	ttl := e.config.EmailAndPassword.ResetPasswordTokenExpiresIn
	if err := e.verifications.Issue(ctx, stores.KindResetPassword, token, user.ID, user.Email, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditEventPasswordResetRequest, true, user.ID, "", nil, nil)
	e.dispatch(ctx, hooks.PasswordResetRequested{
		User:  hookUser(user),
		URL:   e.resetPasswordURL(token, redirectTo),
		Token: token,
	})
	return nil
}

// ResetPassword redeems token and sets a new password. With
// RevokeSessionsOnPasswordReset every session of the user is revoked.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if !e.config.EmailAndPassword.Enabled {
		return ErrFeatureDisabled
	}
	hash, err := e.hashPassword(newPassword)
	if err != nil {
		return err
	}

	record, err := e.verifications.Consume(ctx, stores.KindResetPassword, token)
	if errors.Is(err, stores.ErrVerificationNotFound) {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, "", "", ErrInvalidToken, nil)
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	if err := e.users.UpdatePasswordHash(ctx, record.UserID, hash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricPasswordResetFailure)
			return ErrInvalidToken
		}
		return fmt.Errorf("%w: %v", ErrUserProviderUnavailable, err)
	}

	if e.config.EmailAndPassword.RevokeSessionsOnPasswordReset {
		if _, err := e.RevokeUserSessions(ctx, record.UserID); err != nil {
			e.logWarn("session revocation after password reset failed", err, "user_id", record.UserID)
		}
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordReset, true, record.UserID, "", nil, nil)
	return nil
}

func (e *Engine) resetPasswordURL(token, redirectTo string) string {
	u := e.config.BaseURL + "/reset-password/" + url.PathEscape(token)
	if redirectTo != "" {
		u += "?callbackURL=" + url.QueryEscape(redirectTo)
	}
	return u
}
