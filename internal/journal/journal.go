package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/waitline/waitline/internal/storage/pebble"
)

// Kind labels a queue mutation.
type Kind string

// Queue mutation kinds.
const (
	KindJoin     Kind = "join"
	KindLeave    Kind = "leave"
	KindNoShow   Kind = "noshow"
	KindComplete Kind = "complete"
)

// Event is one recorded queue mutation.
type Event struct {
	Seq      uint64 `json:"seq"`
	AtMs     int64  `json:"at_ms"`
	Kind     Kind   `json:"kind"`
	Account  string `json:"account"`
	QueueLen int    `json:"queue_len"`
}

// Journal records queue mutations per venue in Pebble, bounded to the most
// recent maxEntries per venue. It is observability, not recovery: the live
// queue never replays from it.
type Journal struct {
	db         *pebblestore.DB
	maxEntries int

	mu     sync.Mutex
	venues map[string]*venueLog
}

type venueLog struct {
	lastSeq  uint64
	firstSeq uint64 // seq of the oldest retained entry, lastSeq+1 when empty
}

// New creates a Journal retaining at most maxEntries events per venue.
// maxEntries <= 0 disables retention trimming.
func New(db *pebblestore.DB, maxEntries int) *Journal {
	return &Journal{db: db, maxEntries: maxEntries, venues: make(map[string]*venueLog)}
}

// Keys:
//   jrnl/{venue}/m           (meta: lastSeq BE8 | firstSeq BE8)
//   jrnl/{venue}/e/{seq_be8} (entries)

func metaKey(venue string) []byte {
	return []byte("jrnl/" + venue + "/m")
}

func entryKey(venue string, seq uint64) []byte {
	k := make([]byte, 0, len(venue)+16)
	k = append(k, "jrnl/"...)
	k = append(k, venue...)
	k = append(k, "/e/"...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append(k, b[:]...)
}

func entryPrefix(venue string) []byte {
	return []byte("jrnl/" + venue + "/e/")
}

func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}

func (j *Journal) load(venue string) (*venueLog, error) {
	if vl, ok := j.venues[venue]; ok {
		return vl, nil
	}
	vl := &venueLog{}
	meta, err := j.db.Get(metaKey(venue))
	switch {
	case err == nil && len(meta) >= 16:
		vl.lastSeq = binary.BigEndian.Uint64(meta[:8])
		vl.firstSeq = binary.BigEndian.Uint64(meta[8:16])
	case err == nil || errors.Is(err, pebblestore.ErrNotFound):
		vl.firstSeq = 1
	default:
		return nil, fmt.Errorf("journal: load %s: %w", venue, err)
	}
	j.venues[venue] = vl
	return vl, nil
}

// Append records one event for the venue and trims entries beyond the
// retention cap, all in a single atomic batch.
func (j *Journal) Append(ctx context.Context, venue string, kind Kind, account string, queueLen int) (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	vl, err := j.load(venue)
	if err != nil {
		return 0, err
	}

	b := j.db.NewBatch()
	defer b.Close()

	vl.lastSeq++
	seq := vl.lastSeq
	ev := Event{Seq: seq, AtMs: time.Now().UnixMilli(), Kind: kind, Account: account, QueueLen: queueLen}
	val, err := json.Marshal(ev)
	if err != nil {
		return 0, err
	}
	if err := b.Set(entryKey(venue, seq), val, nil); err != nil {
		return 0, err
	}

	if j.maxEntries > 0 {
		for vl.lastSeq-vl.firstSeq+1 > uint64(j.maxEntries) {
			if err := b.Delete(entryKey(venue, vl.firstSeq), nil); err != nil {
				return 0, err
			}
			vl.firstSeq++
		}
	}

	var meta [16]byte
	binary.BigEndian.PutUint64(meta[:8], vl.lastSeq)
	binary.BigEndian.PutUint64(meta[8:16], vl.firstSeq)
	if err := b.Set(metaKey(venue), meta[:], nil); err != nil {
		return 0, err
	}

	if err := j.db.CommitBatch(ctx, b); err != nil {
		// Roll the cache back so a retry does not skip sequence numbers.
		delete(j.venues, venue)
		return 0, err
	}
	return seq, nil
}

// Read returns the venue's retained events in sequence order. When limit > 0
// only the most recent limit events are returned.
func (j *Journal) Read(ctx context.Context, venue string, limit int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := entryPrefix(venue)
	it, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var events []Event
	for ok := it.First(); ok; ok = it.Next() {
		var ev Event
		if err := json.Unmarshal(it.Value(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}
