// Package tt implements the shared transposition table: a fixed-size,
// lock-free hash table keyed by Zobrist hash, written by every search
// thread and read without locking, per spec.md §4.4/§5.
package tt

import (
	"sync/atomic"

	"github.com/nullmoveai/chesscore/internal/board"
)

// Flag identifies the kind of bound a stored score represents.
type Flag uint8

const (
	Exact Flag = iota
	Upper
	Lower
)

// Entry is a snapshot of one transposition table slot, returned by Probe.
type Entry struct {
	Key   uint64
	Move  board.Move
	Score int16
	Depth int8
	Flag  Flag
	Age   uint8
}

// slot is the table's actual storage unit. Key is atomic and acts as the
// commit marker: writers fill every other field first, then atomically
// store Key last; readers atomically load Key first and only trust the
// other fields once it matches the query, per spec.md §4.4/§5's
// key-publication discipline. This replaces
// internal/engine/transposition.go's 256-way sharded RWMutex design, which
// spec.md §5's ordering-guarantees section rules out in favor of lock-free
// access.
type slot struct {
	key   atomic.Uint64
	move  board.Move
	score int16
	depth int8
	flag  Flag
	age   uint8
}

// Table is the shared transposition table.
type Table struct {
	entries []slot
	mask    uint64
	age     atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

const entrySize = 16 // bytes: approximates one slot's footprint for sizing.

// New allocates a table sized to sizeMB megabytes, rounded down to a power
// of two entry count so indexing can use a bitmask instead of a modulo.
func New(sizeMB int) *Table {
	n := uint64(sizeMB) * 1024 * 1024 / entrySize
	n = roundDownPow2(n)
	if n == 0 {
		n = 1
	}
	return &Table{entries: make([]slot, n), mask: n - 1}
}

func roundDownPow2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (t *Table) index(key uint64) uint64 { return key & t.mask }

// Probe returns the entry stored for key, if the slot's published key
// matches. The caller is responsible for interpreting Depth/Flag against
// its own alpha/beta/depth, per spec.md §4.4's probe semantics — Probe
// itself does no depth or bound filtering, matching
// internal/engine/transposition.go's Probe/worker.go split (the table
// returns raw entries; the search core decides whether a hit is usable).
func (t *Table) Probe(key uint64) (Entry, bool) {
	t.probes.Add(1)
	s := &t.entries[t.index(key)]
	k := s.key.Load()
	if k != key {
		return Entry{}, false
	}
	entry := Entry{
		Key:   k,
		Move:  s.move,
		Score: s.score,
		Depth: s.depth,
		Flag:  s.flag,
		Age:   s.age,
	}
	t.hits.Add(1)
	return entry, true
}

// Store writes a result into the table, per spec.md §4.4's replacement
// rule: keep the existing entry only if it has a different key and its
// depth exceeds the new depth by more than 2 — otherwise overwrite.
// Payload fields are written before the key so a concurrent reader that
// observes the new key also observes the new payload (spec.md §5).
func (t *Table) Store(key uint64, depth, score int, flag Flag, move board.Move) {
	s := &t.entries[t.index(key)]
	existingKey := s.key.Load()
	if existingKey != key && int(s.depth) > depth+2 {
		return
	}
	s.move = move
	s.score = int16(score)
	s.depth = int8(depth)
	s.flag = flag
	s.age = uint8(t.age.Load())
	s.key.Store(key)
}

// NewSearch advances the age generation. Store stamps each entry with the
// current generation and HashFull counts only current-generation entries;
// the replacement policy in Store does not look at age.
func (t *Table) NewSearch() { t.age.Add(1) }

// Clear zeroes every slot and resets statistics.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = slot{}
	}
	t.age.Store(0)
	t.hits.Store(0)
	t.probes.Store(0)
}

// HashFull samples the first 1000 entries (or fewer, if the table is
// smaller) and reports what permille carry a current-generation entry.
func (t *Table) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > uint64(len(t.entries)) {
		sampleSize = len(t.entries)
	}
	if sampleSize == 0 {
		return 0
	}
	currentAge := uint8(t.age.Load())
	used := 0
	for i := 0; i < sampleSize; i++ {
		if t.entries[i].key.Load() != 0 && t.entries[i].age == currentAge {
			used++
		}
	}
	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage, for UCI diagnostics.
func (t *Table) HitRate() float64 {
	probes := t.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(t.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the table.
func (t *Table) Size() int { return len(t.entries) }
