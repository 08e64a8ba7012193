package authgate

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	ProviderGitHub = "github"
	ProviderGoogle = "google"
)

// Config is assembled once at process start and treated as immutable afterwards.
type Config struct {
	BaseURL        string
	TrustedOrigins []string
	// Secret signs session tokens (HS256). At least 32 bytes.
	Secret      []byte
	Environment string

	Session           SessionConfig
	RateLimit         RateLimitConfig
	EmailAndPassword  EmailAndPasswordConfig
	EmailVerification EmailVerificationConfig
	Social            SocialConfig
	AccountLinking    AccountLinkingConfig
	Admin             AdminConfig
	DeleteUser        DeleteUserConfig
	Advanced          AdvancedConfig
	Audit             AuditConfig
	Metrics           MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session lifetime and transport.
type SessionConfig struct {
	ExpiresIn time.Duration
	// UpdateAge is how old a session must be before a read extends it.
	UpdateAge  time.Duration
	CookieName string
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig is the fixed-window request budget per client identity.
type RateLimitConfig struct {
	Enabled bool
	Window  time.Duration
	Max     int
}

/*
====================================
CREDENTIAL FLOWS
====================================
*/

type EmailAndPasswordConfig struct {
	Enabled                       bool
	RequireEmailVerification      bool
	MinPasswordLength             int
	MaxPasswordLength             int
	ResetPasswordTokenExpiresIn   time.Duration
	RevokeSessionsOnPasswordReset bool
}

type EmailVerificationConfig struct {
	SendOnSignUp                bool
	AutoSignInAfterVerification bool
	ExpiresIn                   time.Duration
}

/*
====================================
SOCIAL + LINKING
====================================
*/

// ProviderCredentials is one OAuth client id/secret pair. An empty pair disables
// the provider.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
}

func (p ProviderCredentials) configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type SocialConfig struct {
	GitHub ProviderCredentials
	Google ProviderCredentials
}

type AccountLinkingConfig struct {
	Enabled              bool
	AllowDifferentEmails bool
	TrustedProviders     []string
}

/*
====================================
ADMIN
====================================
*/

type AdminConfig struct {
	DefaultRole                  string
	AdminRoles                   []string
	AdminUserIDs                 []string
	ImpersonationSessionDuration time.Duration
}

type DeleteUserConfig struct {
	Enabled bool
}

// AdvancedConfig holds request-parsing knobs.
type AdvancedConfig struct {
	IPAddressHeaders []string
}

/*
====================================
OBSERVABILITY
====================================
*/

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults. BaseURL and Secret must still be set.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Environment: EnvironmentProduction,
		Session: SessionConfig{
			ExpiresIn:  7 * 24 * time.Hour,
			UpdateAge:  24 * time.Hour,
			CookieName: "authgate.session_token",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Window:  60 * time.Second,
			Max:     10,
		},
		EmailAndPassword: EmailAndPasswordConfig{
			Enabled:                       true,
			RequireEmailVerification:      true,
			MinPasswordLength:             8,
			MaxPasswordLength:             128,
			ResetPasswordTokenExpiresIn:   time.Hour,
			RevokeSessionsOnPasswordReset: true,
		},
		EmailVerification: EmailVerificationConfig{
			SendOnSignUp:                true,
			AutoSignInAfterVerification: true,
			ExpiresIn:                   time.Hour,
		},
		AccountLinking: AccountLinkingConfig{
			Enabled:              true,
			AllowDifferentEmails: true,
			TrustedProviders:     []string{ProviderGoogle, ProviderGitHub},
		},
		Admin: AdminConfig{
			DefaultRole:                  "user",
			AdminRoles:                   []string{"admin"},
			ImpersonationSessionDuration: 24 * time.Hour,
		},
		DeleteUser: DeleteUserConfig{Enabled: true},
		Advanced: AdvancedConfig{
			IPAddressHeaders: append([]string(nil), DefaultIPAddressHeaders...),
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// IsDevelopment reports whether outbound email is replaced by log output.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), EnvironmentDevelopment)
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Secret = cloneBytes(cfg.Secret)
	out.TrustedOrigins = cloneStrings(cfg.TrustedOrigins)
	out.Social.GitHub.Scopes = cloneStrings(cfg.Social.GitHub.Scopes)
	out.Social.Google.Scopes = cloneStrings(cfg.Social.Google.Scopes)
	out.AccountLinking.TrustedProviders = cloneStrings(cfg.AccountLinking.TrustedProviders)
	out.Admin.AdminRoles = cloneStrings(cfg.Admin.AdminRoles)
	out.Admin.AdminUserIDs = cloneStrings(cfg.Admin.AdminUserIDs)
	out.Advanced.IPAddressHeaders = cloneStrings(cfg.Advanced.IPAddressHeaders)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports configuration misuse. Builder calls it before assembling the engine.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("BaseURL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BaseURL %q must be an absolute URL", c.BaseURL)
	}
	if len(c.Secret) < 32 {
		return errors.New("Secret must be at least 32 bytes")
	}

	if c.Session.ExpiresIn <= 0 {
		return errors.New("Session ExpiresIn must be > 0")
	}
	if c.Session.UpdateAge < 0 || c.Session.UpdateAge > c.Session.ExpiresIn {
		return errors.New("Session UpdateAge must be within [0, ExpiresIn]")
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return errors.New("Session CookieName is required")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Window <= 0 {
			return errors.New("RateLimit Window must be > 0")
		}
		if c.RateLimit.Max <= 0 {
			return errors.New("RateLimit Max must be > 0")
		}
	}

	if c.EmailAndPassword.Enabled {
		if c.EmailAndPassword.MinPasswordLength < 1 ||
			c.EmailAndPassword.MaxPasswordLength < c.EmailAndPassword.MinPasswordLength {
			return errors.New("EmailAndPassword password length bounds are inconsistent")
		}
		if c.EmailAndPassword.ResetPasswordTokenExpiresIn <= 0 {
			return errors.New("EmailAndPassword ResetPasswordTokenExpiresIn must be > 0")
		}
	}
	if c.EmailVerification.ExpiresIn <= 0 {
		return errors.New("EmailVerification ExpiresIn must be > 0")
	}

	for name, p := range map[string]ProviderCredentials{
		ProviderGitHub: c.Social.GitHub,
		ProviderGoogle: c.Social.Google,
	} {
		if (p.ClientID == "") != (p.ClientSecret == "") {
			return fmt.Errorf("social provider %s requires both client id and secret", name)
		}
	}

	if c.Admin.ImpersonationSessionDuration <= 0 {
		return errors.New("Admin ImpersonationSessionDuration must be > 0")
	}
	if len(c.Advanced.IPAddressHeaders) == 0 {
		return errors.New("Advanced IPAddressHeaders must not be empty")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}

	return nil
}
