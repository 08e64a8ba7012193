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

// SendVerificationEmail issues a verification link for email. Unknown and
// already verified addresses are a silent no-op.
func (e *Engine) SendVerificationEmail(ctx context.Context, email, callbackURL string) error {
	if err := e.ready(); err != nil {
		return err
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
	if user.EmailVerified {
		return nil
	}
	return e.sendVerification(ctx, user, callbackURL)
}

func (e *Engine) sendVerification(ctx context.Context, user UserRecord, callbackURL string) error {
	token, err := internal.NewToken()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}
	ttl := e.config.EmailVerification.ExpiresIn
	if err := e.verifications.Issue(ctx, stores.KindVerifyEmail, token, user.ID, user.Email, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	e.metricInc(MetricEmailVerificationRequest)
	e.emitAudit(ctx, auditEventEmailVerificationSent, true, user.ID, "", nil, nil)
	e.dispatch(ctx, hooks.EmailVerificationRequested{
		User:  hookUser(user),
		URL:   e.verifyEmailURL(token, callbackURL),
		Token: token,
	})
	return nil
}

// VerifyEmail redeems a verification token. With AutoSignInAfterVerification a
// session is created and returned with its token; otherwise the result is nil.
func (e *Engine) VerifyEmail(ctx context.Context, token string) (*SessionResult, string, error) {
	if err := e.ready(); err != nil {
		return nil, "", err
	}
	record, err := e.verifications.Consume(ctx, stores.KindVerifyEmail, token)
	if errors.Is(err, stores.ErrVerificationNotFound) {
		e.metricInc(MetricEmailVerificationFailure)
		e.emitAudit(ctx, auditEventEmailVerified, false, "", "", ErrInvalidToken, nil)
		return nil, "", ErrInvalidToken
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	current, err := e.users.GetUserByID(ctx, record.UserID)
	if errors.Is(err, ErrUserNotFound) {
		e.metricInc(MetricEmailVerificationFailure)
		return nil, "", ErrInvalidToken
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUserProviderUnavailable, err)
	}
	// the address may have changed since the link was issued
	if current.Email != record.Email {
		e.metricInc(MetricEmailVerificationFailure)
		return nil, "", ErrInvalidToken
	}

	user, err := e.users.MarkEmailVerified(ctx, record.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUserProviderUnavailable, err)
	}

	e.metricInc(MetricEmailVerificationSuccess)
	e.emitAudit(ctx, auditEventEmailVerified, true, user.ID, "", nil, nil)

	if !e.config.EmailVerification.AutoSignInAfterVerification {
		return nil, "", nil
	}
	return e.createSession(ctx, user, e.config.Session.ExpiresIn, "")
}

func (e *Engine) verifyEmailURL(token, callbackURL string) string {
	q := url.Values{}
	q.Set("token", token)
	if callbackURL != "" {
		q.Set("callbackURL", callbackURL)
	}
	return e.config.BaseURL + "/verify-email?" + q.Encode()
}
