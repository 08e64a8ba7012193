// Package hooks models the side effects authgate runs after an authentication state
// change has committed.
//
// # Events
//
// The event set is closed: [UserDeleted], [PasswordResetRequested], and
// [EmailVerificationRequested]. Each carries a typed payload.
//
// # Dispatch
//
// [Dispatcher.Dispatch] awaits every registered [Listener] in registration order.
// A listener failure is logged and collected but never stops the remaining
// listeners, and the caller decides what to do with the joined error. The engine
// never propagates it: the triggering change is already committed.
package hooks
