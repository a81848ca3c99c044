// Package store implements SQLite persistence for presenter state.
//
// Key Implementations:
//   - [ProgressRepository] : the saved slide ordinal, one row per key; satisfies nav.ProgressStore
//   - [SessionRepository] : presenting sessions with soft deletes
//   - [SessionRecorder] : a nav.Listener that tracks the open session as slides are activated
//
// Sequence numbers provide stable, human-readable ordering (session #3) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table counters in dedicated sequence tables.
package store
