// Package middleware adapts an authgate.Engine to net/http.
//
// [Session] resolves the request's session and stores it on the context,
// [RequireSession] additionally rejects anonymous requests, and [RateLimit]
// enforces the fixed-window request budget per client identity.
//
// The handlers translate HTTP semantics into Engine calls and nothing more.
// Backend failures are answered with a generic 500 so storage details never
// reach the client.
package middleware
