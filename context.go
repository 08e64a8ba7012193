package authgate

import "context"

type clientIPContextKey struct{}
type userAgentContextKey struct{}
type sessionContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. New sessions record it.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithSession stores a resolved session on ctx. Used by the middleware package.
func WithSession(ctx context.Context, res *SessionResult) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, res)
}

// SessionFromContext returns the session stored by [WithSession], if any.
func SessionFromContext(ctx context.Context) (*SessionResult, bool) {
	if ctx == nil {
		return nil, false
	}
	res, ok := ctx.Value(sessionContextKey{}).(*SessionResult)
	return res, ok && res != nil
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}
