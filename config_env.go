package authgate

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// authEnv holds raw env values for the engine configuration.
type authEnv struct {
	BaseURL             string        `env:"AUTH_BASE_URL"`
	TrustedOrigins      []string      `env:"AUTH_TRUSTED_ORIGINS"         envSeparator:","`
	Secret              string        `env:"AUTH_SECRET"`
	Environment         string        `env:"ENVIRONMENT"                  envDefault:"production"`
	GitHubClientID      string        `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret  string        `env:"GITHUB_CLIENT_SECRET"`
	GoogleClientID      string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string        `env:"GOOGLE_CLIENT_SECRET"`
	AdminUserIDs        []string      `env:"AUTH_ADMIN_USER_IDS"          envSeparator:","`
	RateLimitWindow     time.Duration `env:"AUTH_RATE_LIMIT_WINDOW"       envDefault:"60s"`
	RateLimitMax        int           `env:"AUTH_RATE_LIMIT_MAX"          envDefault:"10"`
	ImpersonationTTL    time.Duration `env:"AUTH_IMPERSONATION_DURATION"  envDefault:"24h"`
	SessionExpiresIn    time.Duration `env:"AUTH_SESSION_EXPIRES_IN"      envDefault:"168h"`
	SessionUpdateAge    time.Duration `env:"AUTH_SESSION_UPDATE_AGE"      envDefault:"24h"`
	IPAddressHeaders    []string      `env:"AUTH_IP_ADDRESS_HEADERS"      envSeparator:","`
	DeleteUserEnabled   bool          `env:"AUTH_DELETE_USER_ENABLED"     envDefault:"true"`
	AuditBufferSize     int           `env:"AUTH_AUDIT_BUFFER_SIZE"       envDefault:"1024"`
	MetricsLatencyHisto bool          `env:"AUTH_METRICS_LATENCY"`
}

// LoadConfigFromEnv builds a [Config] from the process environment on top of
// [DefaultConfig]. The result is not validated; Builder.Build does that.
func LoadConfigFromEnv() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	var raw authEnv
	if err := env.ParseWithOptions(&raw, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := defaultConfig()
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(raw.BaseURL), "/")
	cfg.Secret = []byte(raw.Secret)
	cfg.Environment = raw.Environment
	cfg.TrustedOrigins = trimAll(raw.TrustedOrigins)
	if len(cfg.TrustedOrigins) == 0 && cfg.BaseURL != "" {
		cfg.TrustedOrigins = []string{cfg.BaseURL}
	}

	cfg.Social.GitHub = ProviderCredentials{ClientID: raw.GitHubClientID, ClientSecret: raw.GitHubClientSecret}
	cfg.Social.Google = ProviderCredentials{ClientID: raw.GoogleClientID, ClientSecret: raw.GoogleClientSecret}

	cfg.Admin.AdminUserIDs = trimAll(raw.AdminUserIDs)
	cfg.Admin.ImpersonationSessionDuration = raw.ImpersonationTTL

	cfg.RateLimit.Window = raw.RateLimitWindow
	cfg.RateLimit.Max = raw.RateLimitMax

	cfg.Session.ExpiresIn = raw.SessionExpiresIn
	cfg.Session.UpdateAge = raw.SessionUpdateAge

	if headers := trimAll(raw.IPAddressHeaders); len(headers) > 0 {
		cfg.Advanced.IPAddressHeaders = headers
	}
	cfg.DeleteUser.Enabled = raw.DeleteUserEnabled
	cfg.Audit.BufferSize = raw.AuditBufferSize
	cfg.Metrics.EnableLatencyHistograms = raw.MetricsLatencyHisto

	return cfg, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
