// Package secondary provides the key-value "secondary storage" used by authgate for
// sessions, rate-limit counters, and single-use verification tokens.
//
// # Contract
//
// [Storage] exposes exactly three operations: Get, Set with a time-to-live, and Delete.
// Values are text. A missing key is reported as absent (ok == false), never as an error.
// Every key is namespaced with a fixed prefix before it reaches the backend so authgate
// entries cannot collide with unrelated data in the same keyspace.
//
// # Implementations
//
//   - [RedisStorage]: go-redis backed, the production backend.
//   - [MemoryStorage]: in-process map with an injectable clock, used as a test double.
//
// # What this package must NOT do
//
//   - Retry failed backend calls. Failures are wrapped in [ErrUnavailable] and returned.
//   - Interpret stored values beyond the JSON helpers.
package secondary
