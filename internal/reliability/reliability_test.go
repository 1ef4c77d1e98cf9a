package reliability

import (
	"context"
	"errors"
	"testing"

	"github.com/waitline/waitline/internal/accounts"
	pebblestore "github.com/waitline/waitline/internal/storage/pebble"
)

func newTrackerForTest(t *testing.T, threshold int) (*Tracker, *accounts.Store) {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store := accounts.NewStore(db)
	return NewTracker(store, threshold), store
}

func TestBanOnThirdNoShow(t *testing.T) {
	tr, store := newTrackerForTest(t, 3)
	ctx := context.Background()
	if _, err := store.Ensure(ctx, "u1", "", ""); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	for i, wantBanned := range []bool{false, false, true} {
		count, banned, err := tr.RecordNoShow(ctx, "u1")
		if err != nil {
			t.Fatalf("record %d: %v", i+1, err)
		}
		if count != i+1 {
			t.Fatalf("count after %d no-shows = %d", i+1, count)
		}
		if banned != wantBanned {
			t.Fatalf("banned after %d no-shows = %v", i+1, banned)
		}
	}

	// Ban never reverts, and the counter keeps going.
	count, banned, err := tr.RecordNoShow(ctx, "u1")
	if err != nil {
		t.Fatalf("record 4th: %v", err)
	}
	if count != 4 || !banned {
		t.Fatalf("expected count 4 still banned, got %d %v", count, banned)
	}
}

func TestRecordNoShowUnknownAccount(t *testing.T) {
	tr, _ := newTrackerForTest(t, 3)
	if _, _, err := tr.RecordNoShow(context.Background(), "ghost"); !errors.Is(err, accounts.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIsBannedUnknownAccountIsFalse(t *testing.T) {
	tr, _ := newTrackerForTest(t, 3)
	banned, err := tr.IsBanned(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("isbanned: %v", err)
	}
	if banned {
		t.Fatalf("unknown account should not be banned")
	}
}

func TestCustomThreshold(t *testing.T) {
	tr, store := newTrackerForTest(t, 1)
	ctx := context.Background()
	if _, err := store.Ensure(ctx, "u1", "", ""); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	_, banned, err := tr.RecordNoShow(ctx, "u1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !banned {
		t.Fatalf("threshold 1 should ban on first no-show")
	}
}
