package authgate

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/alon-poshil/authgate/password"
)

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidCredentials)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: malformed email", ErrInvalidCredentials)
	}
	return email, nil
}

func (e *Engine) hashPassword(plain string) (string, error) {
	hash, err := e.passwords.Hash(plain)
	if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
	}
	return hash, err
}

// SignUpEmail creates an email and password account.
//
// When email verification is required no session is created: the returned result
// is nil and, with SendOnSignUp, a verification link is dispatched. Otherwise the
// new user is signed in.
func (e *Engine) SignUpEmail(ctx context.Context, in SignUpInput) (*SessionResult, string, error) {
	if err := e.ready(); err != nil {
		return nil, "", err
	}
	if !e.config.EmailAndPassword.Enabled {
		return nil, "", ErrFeatureDisabled
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, "", err
	}
	hash, err := e.hashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := e.users.CreateUser(ctx, CreateUserInput{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Image:        in.Image,
		Role:         e.config.Admin.DefaultRole,
		PasswordHash: hash,
	})
	if errors.Is(err, ErrProviderDuplicateIdentifier) {
		e.metricInc(MetricSignUpDuplicate)
		e.emitAudit(ctx, auditEventSignUp, false, "", "", ErrAccountExists, nil)
		return nil, "", ErrAccountExists
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUserProviderUnavailable, err)
	}
	e.metricInc(MetricSignUpSuccess)
	e.emitAudit(ctx, auditEventSignUp, true, user.ID, "", nil, nil)

	if e.config.EmailAndPassword.RequireEmailVerification {
		if e.config.EmailVerification.SendOnSignUp {
			if err := e.sendVerification(ctx, user, ""); err != nil {
				e.logWarn("sign-up verification email not issued", err, "user_id", user.ID)
			}
		}
		return nil, "", nil
	}
	return e.createSession(ctx, user, e.config.Session.ExpiresIn, "")
}

// SignInEmail checks credentials and creates a session.
//
// Unknown emails and wrong passwords both return [ErrInvalidCredentials]. An
// unverified account returns [ErrEmailNotVerified] when verification is required,
// after re-sending the verification link if SendOnSignUp is set.
func (e *Engine) SignInEmail(ctx context.Context, email, plain string) (*SessionResult, string, error) {
	if err := e.ready(); err != nil {
		return nil, "", err
	}
	if !e.config.EmailAndPassword.Enabled {
		return nil, "", ErrFeatureDisabled
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}

	user, err := e.users.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, "", e.signInFailed(ctx, "")
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUserProviderUnavailable, err)
	}
	if user.PasswordHash == "" {
		return nil, "", e.signInFailed(ctx, user.ID)
	}
	ok, err := e.passwords.Verify(plain, user.PasswordHash)
	if err != nil || !ok {
		return nil, "", e.signInFailed(ctx, user.ID)
	}

	if !user.EmailVerified && e.config.EmailAndPassword.RequireEmailVerification {
		e.metricInc(MetricSignInUnverified)
		if e.config.EmailVerification.SendOnSignUp {
			if err := e.sendVerification(ctx, user, ""); err != nil {
				e.logWarn("sign-in verification email not issued", err, "user_id", user.ID)
			}
		}
		e.emitAudit(ctx, auditEventSignIn, false, user.ID, "", ErrEmailNotVerified, nil)
		return nil, "", ErrEmailNotVerified
	}

	res, token, err := e.createSession(ctx, user, e.config.Session.ExpiresIn, "")
	if err != nil {
		return nil, "", err
	}
	e.metricInc(MetricSignInSuccess)
	e.emitAudit(ctx, auditEventSignIn, true, user.ID, res.Session.ID, nil, nil)
	return res, token, nil
}

func (e *Engine) signInFailed(ctx context.Context, userID string) error {
	e.metricInc(MetricSignInFailure)
	e.emitAudit(ctx, auditEventSignIn, false, userID, "", ErrInvalidCredentials, nil)
	return ErrInvalidCredentials
}
