package authgate

import (
	"slices"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var defaultScopes = map[string][]string{
	ProviderGitHub: {"read:user", "user:email"},
	ProviderGoogle: {"openid", "email", "profile"},
}

func buildSocialProviders(cfg Config) map[string]*oauth2.Config {
	out := make(map[string]*oauth2.Config, 2)
	add := func(id string, creds ProviderCredentials, endpoint oauth2.Endpoint) {
		if !creds.configured() {
			return
		}
		scopes := creds.Scopes
		if len(scopes) == 0 {
			scopes = defaultScopes[id]
		}
		out[id] = &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  cfg.BaseURL + "/api/auth/callback/" + id,
			Scopes:       cloneStrings(scopes),
		}
	}
	add(ProviderGitHub, cfg.Social.GitHub, endpoints.GitHub)
	add(ProviderGoogle, cfg.Social.Google, endpoints.Google)
	return out
}

// SocialProvider returns the OAuth client configuration for id ("github" or
// "google"). Providers without credentials return [ErrProviderUnavailable].
// The returned value is a copy.
func (e *Engine) SocialProvider(id string) (*oauth2.Config, error) {
	c, ok := e.social[strings.ToLower(id)]
	if !ok {
		return nil, ErrProviderUnavailable
	}
	out := *c
	out.Scopes = cloneStrings(c.Scopes)
	return &out, nil
}

// CanLinkAccount decides whether a provider account may be linked to an
// existing user.
func (e *Engine) CanLinkAccount(providerID, userEmail, providerEmail string, providerEmailVerified bool) bool {
	linking := e.config.AccountLinking
	if !linking.Enabled {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(userEmail), strings.TrimSpace(providerEmail)) && !linking.AllowDifferentEmails {
		return false
	}
	if slices.Contains(linking.TrustedProviders, strings.ToLower(providerID)) {
		return true
	}
	return providerEmailVerified
}

// IsTrustedOrigin reports whether origin exactly matches a configured trusted
// origin, ignoring a trailing slash.
func (e *Engine) IsTrustedOrigin(origin string) bool {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return false
	}
	for _, o := range e.config.TrustedOrigins {
		if strings.TrimRight(o, "/") == origin {
			return true
		}
	}
	return false
}
