package authgate

import (
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
)

func TestDefaultConfigMatchesPolicy(t *testing.T) {
	cfg := defaultConfig()
	if cfg.RateLimit.Window != 60*time.Second || cfg.RateLimit.Max != 10 {
		t.Fatalf("unexpected rate limit defaults %+v", cfg.RateLimit)
	}
	if cfg.Admin.ImpersonationSessionDuration != 24*time.Hour {
		t.Fatalf("unexpected impersonation duration %v", cfg.Admin.ImpersonationSessionDuration)
	}
	if strings.Join(cfg.Advanced.IPAddressHeaders, ",") != "cf-connecting-ip,x-forwarded-for,x-real-ip" {
		t.Fatalf("unexpected header precedence %v", cfg.Advanced.IPAddressHeaders)
	}
	if !cfg.EmailAndPassword.RequireEmailVerification || !cfg.EmailVerification.SendOnSignUp || !cfg.EmailVerification.AutoSignInAfterVerification {
		t.Fatal("verification policy flags must default on")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.BaseURL = "" }, errSub: "BaseURL"},
		{name: "relative base url", mutate: func(c *Config) { c.BaseURL = "/app" }, errSub: "absolute"},
		{name: "short secret", mutate: func(c *Config) { c.Secret = []byte("short") }, errSub: "Secret"},
		{name: "zero window", mutate: func(c *Config) { c.RateLimit.Window = 0 }, errSub: "Window"},
		{name: "zero max", mutate: func(c *Config) { c.RateLimit.Max = 0 }, errSub: "Max"},
		{name: "disabled limiter ignores window", mutate: func(c *Config) { c.RateLimit.Enabled = false; c.RateLimit.Window = 0 }},
		{name: "half github pair", mutate: func(c *Config) { c.Social.GitHub.ClientID = "id" }, errSub: "github"},
		{name: "update age beyond lifetime", mutate: func(c *Config) { c.Session.UpdateAge = 30 * 24 * time.Hour }, errSub: "UpdateAge"},
		{name: "no ip headers", mutate: func(c *Config) { c.Advanced.IPAddressHeaders = nil }, errSub: "IPAddressHeaders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errSub == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Fatalf("expected error containing %q, got %v", tt.errSub, err)
			}
		})
	}
}

func TestCloneConfigIsolatesSlices(t *testing.T) {
	cfg := testConfig()
	cfg.Admin.AdminUserIDs = []string{"a"}
	out := cloneConfig(cfg)
	out.Admin.AdminUserIDs[0] = "b"
	out.Secret[0] = 'X'
	if cfg.Admin.AdminUserIDs[0] != "a" || cfg.Secret[0] == 'X' {
		t.Fatal("cloneConfig must deep-copy slices")
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	cfg, err := loadConfig(env.Options{Environment: map[string]string{
		"AUTH_BASE_URL":           "https://app.example.com/",
		"AUTH_SECRET":             string(testSecret),
		"ENVIRONMENT":             "development",
		"GITHUB_CLIENT_ID":        "gh",
		"GITHUB_CLIENT_SECRET":    "gh-secret",
		"AUTH_ADMIN_USER_IDS":     "u1, u2",
		"AUTH_RATE_LIMIT_MAX":     "20",
		"AUTH_SESSION_UPDATE_AGE": "12h",
	}})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.BaseURL != "https://app.example.com" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if len(cfg.TrustedOrigins) != 1 || cfg.TrustedOrigins[0] != "https://app.example.com" {
		t.Fatalf("trusted origins must default to base url, got %v", cfg.TrustedOrigins)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development environment")
	}
	if cfg.RateLimit.Max != 20 || cfg.RateLimit.Window != 60*time.Second {
		t.Fatalf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if cfg.Session.UpdateAge != 12*time.Hour || cfg.Session.ExpiresIn != 7*24*time.Hour {
		t.Fatalf("unexpected session config %+v", cfg.Session)
	}
	if strings.Join(cfg.Admin.AdminUserIDs, ",") != "u1,u2" {
		t.Fatalf("unexpected admin ids %v", cfg.Admin.AdminUserIDs)
	}
	if cfg.Social.GitHub.ClientID != "gh" || cfg.Social.Google.ClientID != "" {
		t.Fatalf("unexpected social config %+v", cfg.Social)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("env config should validate: %v", err)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	_, err := loadConfig(env.Options{Environment: map[string]string{
		"AUTH_RATE_LIMIT_WINDOW": "sixty",
	}})
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestBuildRequiresCollaborators(t *testing.T) {
	if _, err := New().WithConfig(testConfig()).WithUserProvider(newMockUserProvider()).Build(); err == nil {
		t.Fatal("expected error without secondary storage")
	}
	b := New().WithConfig(testConfig())
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error without storage and user provider")
	}
}
