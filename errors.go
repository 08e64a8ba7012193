package authgate

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrAccountExists       = errors.New("account already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrPasswordPolicy      = errors.New("password policy violation")
	ErrFeatureDisabled     = errors.New("feature disabled")
	ErrProviderUnavailable = errors.New("social provider not configured")
	ErrEngineNotReady      = errors.New("engine not initialized")

	// ErrSessionUnavailable wraps secondary storage failures on the session path.
	ErrSessionUnavailable = errors.New("session backend unavailable")
	// ErrRateLimitUnavailable wraps secondary storage failures in the limiter.
	ErrRateLimitUnavailable = errors.New("rate limit backend unavailable")
	// ErrVerificationUnavailable wraps verification token storage failures.
	ErrVerificationUnavailable = errors.New("verification backend unavailable")
	// ErrUserProviderUnavailable wraps UserProvider failures other than not-found.
	ErrUserProviderUnavailable = errors.New("user provider unavailable")

	// ErrProviderDuplicateIdentifier is returned by a UserProvider when the email is taken.
	ErrProviderDuplicateIdentifier = errors.New("provider duplicate identifier")
)
