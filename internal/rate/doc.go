// Package rate implements the fixed-window request limiter that guards authgate's
// state-changing operations.
//
// # Window semantics
//
// One counter per client identity, stored as JSON in secondary storage under
// "ratelimit:<identity>". A counter whose window has elapsed is treated as a fresh
// window starting now. The counter's TTL is the time left in its window, so idle
// identities are cleaned up by the store.
//
// The read-increment-write cycle is not atomic. Concurrent requests from one
// identity can push the count past Max by the number in flight; this is a soft limit.
//
// # What this package must NOT do
//
//   - Derive client identity from requests (callers do that).
//   - Expose counter state to clients. [Decision] only carries RetryAfter.
package rate
