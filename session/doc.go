// Package session persists authenticated sessions in secondary storage.
//
// # Layout
//
//   - "session:<id>" holds the JSON [Session] with a TTL equal to its remaining lifetime.
//   - "active-sessions:<userID>" holds a JSON list of the user's session ids and expiry
//     times, used to revoke every session of a user.
//
// The index is read-modify-write without locking. A lost update can leave a stale
// id in the list; readers tolerate ids whose record is gone.
//
// # Architecture boundaries
//
// This package owns the [Store] and the [Session] model. It does NOT issue or parse
// session tokens and does NOT decide whether a session is acceptable beyond expiry.
package session
