// Package store provides SQLite-backed storage for match history.
//
// The log is append-only:
//   - Matches: one row per match with its seed and configuration
//   - Rounds: one row per finished round with its outcome
//   - Events: claims, passes, resets and setting changes in engine order
//
// Ordering uses the per-match seq column, never wall time, so a match
// read back replays identically. Writes use ON CONFLICT DO NOTHING and are
// idempotent.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Configurations are stored as canonical JSON (internal/wire) together
// with their fingerprint, so equal settings compare equal as text.
package store
