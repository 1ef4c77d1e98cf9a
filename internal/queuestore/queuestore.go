package queuestore

import "context"

// Store holds the ordered waiting list of each venue. The sequence is an
// ordered set: insertion order is the serving order and an account appears
// at most once per venue. Absent venues behave as empty sequences.
//
// Each operation is individually atomic; the store offers no atomicity
// across a read-then-write sequence.
type Store interface {
	// Append adds the account at the tail. Returns false without error when
	// the account is already waiting in the venue.
	Append(ctx context.Context, venue, account string) (bool, error)

	// RemoveAll removes every occurrence of the account from the venue's
	// sequence and returns the count removed. Removing an absent account is
	// a successful zero.
	RemoveAll(ctx context.Context, venue, account string) (int, error)

	// Snapshot returns a copy of the current ordered sequence.
	Snapshot(ctx context.Context, venue string) ([]string, error)
}
