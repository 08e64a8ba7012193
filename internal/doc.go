// Package internal holds helpers private to authgate, mainly secure random
// identifiers for sessions and verification links.
//
// # Sub-packages
//
//   - audit: async audit event dispatch (Dispatcher + Sink implementations)
//   - memusers: in-memory user provider for tests and the demo binary
//   - rate: fixed-window request limiter over secondary storage
//   - stores: single-use verification token records
package internal
