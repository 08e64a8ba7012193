package middleware

import (
	"context"
	"net/http"

	"github.com/alon-poshil/authgate"
)

// SessionFromContext returns the session attached by [Session] or [RequireSession].
func SessionFromContext(ctx context.Context) (*authgate.SessionResult, bool) {
	return authgate.SessionFromContext(ctx)
}

// Session resolves the session for every request. Anonymous requests pass
// through without a session on the context. A refreshed session token is
// written back as a cookie.
func Session(engine *authgate.Engine) func(http.Handler) http.Handler {
	return guard(engine, false)
}

// RequireSession is [Session] but answers 401 when the request has no session.
func RequireSession(engine *authgate.Engine) func(http.Handler) http.Handler {
	return guard(engine, true)
}

func guard(engine *authgate.Engine, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			ctx := requestContext(r)
			res, err := engine.GetSession(ctx, r.Header)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if res == nil {
				if required {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if res.RefreshedToken != "" {
				http.SetCookie(w, engine.SessionCookie(res.RefreshedToken, res.Session.ExpiresAt))
			}
			next.ServeHTTP(w, r.WithContext(authgate.WithSession(ctx, res)))
		})
	}
}

// requestContext attaches the client IP and user agent so sessions created
// further down the chain record them.
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if ip := authgate.ClientIdentity(r.Header, authgate.DefaultIPAddressHeaders); ip != "" {
		ctx = authgate.WithClientIP(ctx, ip)
	}
	if ua := r.UserAgent(); ua != "" {
		ctx = authgate.WithUserAgent(ctx, ua)
	}
	return ctx
}
