// Package stores persists short-lived, single-use verification records in
// secondary storage: password reset and email verification tokens.
//
// Records are JSON text under "verification:<kind>:<token>" with a TTL equal to
// their lifetime. Consume deletes the record before returning it, so a token
// can be redeemed at most once per successful read.
//
// This package does not generate links or send mail; the engine does that.
package stores
