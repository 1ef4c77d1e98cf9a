package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/waitline/waitline/internal/accounts"
	"github.com/waitline/waitline/internal/journal"
	"github.com/waitline/waitline/internal/loyalty"
	"github.com/waitline/waitline/internal/notify"
	"github.com/waitline/waitline/internal/queuestore"
	"github.com/waitline/waitline/internal/reliability"
	pebblestore "github.com/waitline/waitline/internal/storage/pebble"
)

type fixture struct {
	svc      *Service
	accounts *accounts.Store
	hub      *notify.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	acct := accounts.NewStore(db)
	hub := notify.NewHub(nil)
	svc := New(Options{
		Queues:      queuestore.NewMemory(),
		Reliability: reliability.NewTracker(acct, 3),
		Loyalty:     loyalty.NewLedger(acct, 10),
		Hub:         hub,
		Journal:     journal.New(db, 64),
	})
	return &fixture{svc: svc, accounts: acct, hub: hub}
}

func (f *fixture) ensure(t *testing.T, id string) {
	t.Helper()
	if _, err := f.accounts.Ensure(context.Background(), id, "", ""); err != nil {
		t.Fatalf("ensure %s: %v", id, err)
	}
}

// frameSink records delivered snapshots for broadcast assertions.
type frameSink struct {
	mu     sync.Mutex
	frames []notify.Snapshot
}

func (s *frameSink) Send(snap notify.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, snap)
	return nil
}

func (s *frameSink) Context() context.Context { return context.Background() }

func (s *frameSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *frameSink) last() notify.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[len(s.frames)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached")
}

func TestJoinPreservesArrivalOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, a := range []string{"ana", "bo", "cy"} {
		f.ensure(t, a)
		if _, err := f.svc.Join(ctx, "salon-1", a); err != nil {
			t.Fatalf("join %s: %v", a, err)
		}
	}

	snap, err := f.svc.GetState(ctx, "salon-1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	want := []string{"ana", "bo", "cy"}
	if len(snap.Queue) != len(want) {
		t.Fatalf("queue length %d, want %d", len(snap.Queue), len(want))
	}
	for i, a := range want {
		if snap.Queue[i] != a {
			t.Fatalf("position %d = %q, want %q", i, snap.Queue[i], a)
		}
	}
}

func TestJoinDuplicateIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ensure(t, "ana")
	f.ensure(t, "bo")

	for _, a := range []string{"ana", "bo", "ana"} {
		if _, err := f.svc.Join(ctx, "salon-1", a); err != nil {
			t.Fatalf("join %s: %v", a, err)
		}
	}

	snap, _ := f.svc.GetState(ctx, "salon-1")
	if len(snap.Queue) != 2 || snap.Queue[0] != "ana" || snap.Queue[1] != "bo" {
		t.Fatalf("duplicate join changed queue: %v", snap.Queue)
	}
}

func TestJoinUnknownAccountPermitted(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Join(context.Background(), "salon-1", "stranger"); err != nil {
		t.Fatalf("join without a stored record should succeed, got %v", err)
	}
}

func TestLeaveAbsentIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ensure(t, "ana")
	if _, err := f.svc.Join(ctx, "salon-1", "ana"); err != nil {
		t.Fatalf("join: %v", err)
	}

	if _, err := f.svc.Leave(ctx, "salon-1", "ghost"); err != nil {
		t.Fatalf("leave of absent account: %v", err)
	}
	snap, _ := f.svc.GetState(ctx, "salon-1")
	if len(snap.Queue) != 1 || snap.Queue[0] != "ana" {
		t.Fatalf("queue changed: %v", snap.Queue)
	}
}

func TestNoShowProgressionBansOnThird(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ensure(t, "flaky")

	want := []struct {
		count  int
		banned bool
	}{{1, false}, {2, false}, {3, true}}

	for i, w := range want {
		if _, err := f.svc.Join(ctx, "salon-1", "flaky"); err != nil {
			if i < 2 {
				t.Fatalf("join %d: %v", i, err)
			}
		}
		res, err := f.svc.MarkNoShow(ctx, accounts.RoleOwner, "salon-1", "flaky")
		if err != nil {
			t.Fatalf("noshow %d: %v", i, err)
		}
		if res.Count != w.count || res.Banned != w.banned {
			t.Fatalf("strike %d = {%d %v}, want {%d %v}", i+1, res.Count, res.Banned, w.count, w.banned)
		}
	}

	// A banned account cannot rejoin and the queue stays untouched.
	_, err := f.svc.Join(ctx, "salon-1", "flaky")
	if KindOf(err) != KindForbidden {
		t.Fatalf("banned join: kind %v, err %v", KindOf(err), err)
	}
	snap, _ := f.svc.GetState(ctx, "salon-1")
	if len(snap.Queue) != 0 {
		t.Fatalf("refused join mutated queue: %v", snap.Queue)
	}
}

func TestNoShowCountContinuesPastBan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ensure(t, "flaky")

	var last NoShowResult
	for i := 0; i < 4; i++ {
		var err error
		last, err = f.svc.MarkNoShow(ctx, accounts.RoleAdmin, "salon-1", "flaky")
		if err != nil {
			t.Fatalf("noshow %d: %v", i, err)
		}
	}
	if last.Count != 4 || !last.Banned {
		t.Fatalf("fourth strike = %+v", last)
	}
}

func TestCompleteCreditsLoyaltyAndRemoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ensure(t, "ana")
	f.ensure(t, "bo")
	for _, a := range []string{"ana", "bo"} {
		if _, err := f.svc.Join(ctx, "salon-1", a); err != nil {
			t.Fatalf("join %s: %v", a, err)
		}
	}

	res, err := f.svc.CompleteService(ctx, accounts.RoleOwner, "salon-1", "ana")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if res.Loyalty != 10 || res.Removed != 1 {
		t.Fatalf("complete result = %+v", res)
	}

	snap, _ := f.svc.GetState(ctx, "salon-1")
	if len(snap.Queue) != 1 || snap.Queue[0] != "bo" {
		t.Fatalf("queue after complete: %v", snap.Queue)
	}

	res2, err := f.svc.CompleteService(ctx, accounts.RoleOwner, "salon-2", "ana")
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if res2.Loyalty != 20 {
		t.Fatalf("loyalty after two completions = %d", res2.Loyalty)
	}
}

func TestPrivilegedOpsRequireRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ensure(t, "ana")

	if _, err := f.svc.MarkNoShow(ctx, accounts.RoleCustomer, "salon-1", "ana"); KindOf(err) != KindForbidden {
		t.Fatalf("customer noshow: %v", err)
	}
	if _, err := f.svc.CompleteService(ctx, "", "salon-1", "ana"); KindOf(err) != KindForbidden {
		t.Fatalf("anonymous complete: %v", err)
	}

	rec, err := f.accounts.Get(ctx, "ana")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.NoShows != 0 || rec.Loyalty != 0 {
		t.Fatalf("refused ops mutated account: %+v", rec)
	}
}

func TestPrivilegedOpsRejectUnknownAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.MarkNoShow(ctx, accounts.RoleOwner, "salon-1", "ghost"); KindOf(err) != KindNotFound {
		t.Fatalf("noshow unknown: %v", err)
	}
	if _, err := f.svc.CompleteService(ctx, accounts.RoleOwner, "salon-1", "ghost"); KindOf(err) != KindNotFound {
		t.Fatalf("complete unknown: %v", err)
	}
}

func TestInvalidIdentifiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Join(ctx, "", "ana"); KindOf(err) != KindInvalidInput {
		t.Fatalf("empty venue: %v", err)
	}
	if _, err := f.svc.Join(ctx, "salon-1", ""); KindOf(err) != KindInvalidInput {
		t.Fatalf("empty account: %v", err)
	}
	if _, err := f.svc.Join(ctx, "a/b", "ana"); KindOf(err) != KindInvalidInput {
		t.Fatalf("reserved venue chars: %v", err)
	}
	if _, err := f.svc.GetState(ctx, ""); KindOf(err) != KindInvalidInput {
		t.Fatalf("state empty venue: %v", err)
	}
}

func TestEveryMutationBroadcastsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ensure(t, "ana")

	sink := &frameSink{}
	sub := f.hub.Subscribe("salon-1", sink)
	defer sub.Close()

	if _, err := f.svc.Join(ctx, "salon-1", "ana"); err != nil {
		t.Fatalf("join: %v", err)
	}
	waitFor(t, func() bool { return sink.count() == 1 })
	if last := sink.last(); len(last.Queue) != 1 || last.Queue[0] != "ana" {
		t.Fatalf("join frame: %+v", last)
	}

	// A no-op leave still notifies subscribers.
	if _, err := f.svc.Leave(ctx, "salon-1", "ghost"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	waitFor(t, func() bool { return sink.count() == 2 })

	if _, err := f.svc.MarkNoShow(ctx, accounts.RoleOwner, "salon-1", "ana"); err != nil {
		t.Fatalf("noshow: %v", err)
	}
	waitFor(t, func() bool { return sink.count() == 3 })
	if last := sink.last(); len(last.Queue) != 0 {
		t.Fatalf("noshow frame: %+v", last)
	}

	// A refused mutation broadcasts nothing.
	if _, err := f.svc.MarkNoShow(ctx, accounts.RoleCustomer, "salon-1", "ana"); err == nil {
		t.Fatalf("expected forbidden")
	}
	time.Sleep(20 * time.Millisecond)
	if sink.count() != 3 {
		t.Fatalf("refused op broadcast a frame: %d", sink.count())
	}
}

func TestRevisionsIncreasePerVenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ensure(t, "ana")

	a, err := f.svc.Join(ctx, "salon-1", "ana")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	b, err := f.svc.Leave(ctx, "salon-1", "ana")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if b.Revision <= a.Revision {
		t.Fatalf("revisions not increasing: %v then %v", a.Revision, b.Revision)
	}
}

func TestHistoryRecordsMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ensure(t, "ana")

	if _, err := f.svc.Join(ctx, "salon-1", "ana"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := f.svc.CompleteService(ctx, accounts.RoleOwner, "salon-1", "ana"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	events, err := f.svc.History(ctx, "salon-1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("history length %d: %+v", len(events), events)
	}
	if events[0].Kind != journal.KindJoin || events[1].Kind != journal.KindComplete {
		t.Fatalf("history kinds: %+v", events)
	}
	if events[1].QueueLen != 0 {
		t.Fatalf("complete queue_len = %d", events[1].QueueLen)
	}
}

func TestVenuesAreIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ensure(t, "ana")

	if _, err := f.svc.Join(ctx, "salon-1", "ana"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := f.svc.Join(ctx, "salon-2", "ana"); err != nil {
		t.Fatalf("join other venue: %v", err)
	}
	if _, err := f.svc.Leave(ctx, "salon-1", "ana"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	one, _ := f.svc.GetState(ctx, "salon-1")
	two, _ := f.svc.GetState(ctx, "salon-2")
	if len(one.Queue) != 0 || len(two.Queue) != 1 {
		t.Fatalf("venues not isolated: %v / %v", one.Queue, two.Queue)
	}
}
