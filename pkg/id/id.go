package id

import (
	"strconv"
	"sync"
	"time"
)

// Rev is a 64-bit, chronologically ordered revision:
// [44 bits ms_timestamp][20 bits sequence].
type Rev uint64

const seqBits = 20

// Ms returns the millisecond timestamp component.
func (r Rev) Ms() int64 { return int64(r >> seqBits) }

// Seq returns the within-millisecond sequence component.
func (r Rev) Seq() uint64 { return uint64(r) & (1<<seqBits - 1) }

// String returns the decimal representation.
func (r Rev) String() string { return strconv.FormatUint(uint64(r), 10) }

// Generator produces strictly increasing revisions per process.
type Generator struct {
	mu       sync.Mutex
	lastMs   int64
	sequence uint64
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator { return &Generator{} }

// NowMs returns current time in milliseconds since Unix epoch.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Next returns the next revision. If the clock regresses it pins to the last
// seen millisecond and advances the sequence; if the sequence would overflow
// within one millisecond it waits for the next one.
func (g *Generator) Next() Rev {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := NowMs()
	if ms < g.lastMs {
		ms = g.lastMs
	}

	if ms == g.lastMs {
		if g.sequence == 1<<seqBits-1 {
			for {
				ms = NowMs()
				if ms > g.lastMs {
					break
				}
				time.Sleep(time.Millisecond / 8)
			}
			g.sequence = 0
		} else {
			g.sequence++
		}
	} else {
		g.sequence = 0
	}

	g.lastMs = ms
	return Rev(uint64(ms)<<seqBits | g.sequence)
}
