// Package jwt issues and verifies the signed session tokens that carry a session id
// from the client back to authgate.
//
// A session token proves which session record to load; it does not replace the
// record. Revocation is done by deleting the record, so tokens stay small and carry
// only the session id, the user id, and registered claims.
package jwt
