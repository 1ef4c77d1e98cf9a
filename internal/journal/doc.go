// Package journal keeps a bounded, append-only record of queue mutations
// per venue in Pebble.
//
// Keys are laid out for prefix scans:
//
//	jrnl/{venue}/m           (meta: lastSeq BE8 | firstSeq BE8)
//	jrnl/{venue}/e/{seq_be8} (JSON-encoded events)
//
// Appends and retention trims commit in one batch, so the meta record and
// the entry range never disagree. The journal feeds the queue history
// endpoint; the live queue itself remains ephemeral.
package journal
