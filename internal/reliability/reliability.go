// Package reliability tracks per-account no-show counts and the ban flag
// derived from them. Once set, the ban never reverts.
package reliability

import (
	"context"
	"errors"

	"github.com/waitline/waitline/internal/accounts"
)

// Tracker applies the no-show policy on top of the account store.
type Tracker struct {
	store     *accounts.Store
	threshold int
}

// NewTracker creates a Tracker banning at the given cumulative no-show
// count. A threshold below 1 falls back to 3.
func NewTracker(store *accounts.Store, threshold int) *Tracker {
	if threshold < 1 {
		threshold = 3
	}
	return &Tracker{store: store, threshold: threshold}
}

// RecordNoShow increments the account's no-show count and sets the ban flag
// when the cumulative count reaches the threshold. Returns the new count and
// ban state, or accounts.ErrNotFound for unresolvable accounts.
func (t *Tracker) RecordNoShow(ctx context.Context, account string) (int, bool, error) {
	rec, err := t.store.Update(ctx, account, func(r *accounts.Record) {
		r.NoShows++
		if r.NoShows >= t.threshold {
			r.Banned = true
		}
	})
	if err != nil {
		return 0, false, err
	}
	return rec.NoShows, rec.Banned, nil
}

// IsBanned reports whether the account is banned. Unresolvable accounts are
// not banned; transient store failures are surfaced.
func (t *Tracker) IsBanned(ctx context.Context, account string) (bool, error) {
	rec, err := t.store.Get(ctx, account)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.Banned, nil
}
