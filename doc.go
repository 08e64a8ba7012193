// Package authgate is the authentication boundary of the web application: it
// resolves sessions from request headers, throttles callers with a fixed-window
// limiter, runs the email and password flows, and fires lifecycle hooks.
//
// # Architecture
//
// [Engine] is the entry point. It is assembled once by [Builder] from an
// explicit [Config] and injected collaborators:
//
//   - secondary storage for sessions, verification tokens and rate counters
//   - a [UserProvider] for the primary user records
//   - an object store for profile image cleanup
//   - a mail sender, replaced by log output in development
//
// Lifecycle side effects are modelled as a closed set of events in package
// hooks. They are awaited, run after the triggering change has committed, and
// their failures are logged and counted but never returned to the caller.
//
// Absence is a value, not an error: [Engine.GetSession] returns (nil, nil) when a
// request carries no valid session.
package authgate
