// Package loyalty maintains per-account point balances credited on
// completed services. Balances only ever grow here.
package loyalty

import (
	"context"

	"github.com/waitline/waitline/internal/accounts"
)

// Ledger credits completion rewards against the account store.
type Ledger struct {
	store  *accounts.Store
	reward int
}

// NewLedger creates a Ledger crediting the given reward per completion.
// A negative reward falls back to 10.
func NewLedger(store *accounts.Store, reward int) *Ledger {
	if reward < 0 {
		reward = 10
	}
	return &Ledger{store: store, reward: reward}
}

// AddCompletionReward credits the fixed reward and returns the new balance,
// or accounts.ErrNotFound for unresolvable accounts.
func (l *Ledger) AddCompletionReward(ctx context.Context, account string) (int, error) {
	rec, err := l.store.Update(ctx, account, func(r *accounts.Record) {
		r.Loyalty += l.reward
	})
	if err != nil {
		return 0, err
	}
	return rec.Loyalty, nil
}

// Balance returns the account's current point balance.
func (l *Ledger) Balance(ctx context.Context, account string) (int, error) {
	rec, err := l.store.Get(ctx, account)
	if err != nil {
		return 0, err
	}
	return rec.Loyalty, nil
}
