// Package repositories implements SQLite persistence for mix history.
//
// [MixRepository] stores every solved mix together with the inputs that produced it and, once
// saved, the playlist URL. Entries live in the mix_tracks table keyed by (mix_id, position), so a
// mix reads back in solver order.
//
// Records support soft deletes via deleted_at timestamps and are excluded from queries once deleted.
//
// Sequence numbers provide stable, human-readable ordering (e.g., mix #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
