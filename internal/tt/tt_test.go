package tt

import (
	"testing"

	"github.com/nullmoveai/chesscore/internal/board"
)

func TestStoreThenProbeRoundTrips(t *testing.T) {
	table := New(1)
	key := uint64(0x1234567890abcdef)
	move := board.NewMove(board.SquareE2, board.SquareE4, board.Pawn, false)

	table.Store(key, 6, 123, Exact, move)

	entry, hit := table.Probe(key)
	if !hit {
		t.Fatalf("expected a hit after Store")
	}
	if entry.Move != move || entry.Score != 123 || entry.Depth != 6 || entry.Flag != Exact {
		t.Errorf("entry = %+v, want move=%v score=123 depth=6 flag=Exact", entry, move)
	}
}

func TestProbeMissesOnKeyMismatch(t *testing.T) {
	table := New(1)
	table.Store(1, 5, 10, Exact, board.NoMove)
	if _, hit := table.Probe(2); hit {
		t.Errorf("expected a miss for an unstored key")
	}
}

func TestStoreKeepsDeeperEntryFromDifferentKey(t *testing.T) {
	table := New(1)
	// Force a collision: both keys must map to the same slot. With a
	// 1 MB table the mask covers far fewer than 64 bits, so any two keys
	// equal modulo the mask size collide; use key and key+size.
	size := uint64(table.Size())
	keyA, keyB := uint64(7), uint64(7)+size

	table.Store(keyA, 10, 50, Exact, board.NoMove)
	table.Store(keyB, 2, 99, Exact, board.NoMove) // shallower by more than 2

	entry, hit := table.Probe(keyA)
	if !hit || entry.Depth != 10 {
		t.Errorf("shallow write from a different key should not evict a much deeper entry, got hit=%v entry=%+v", hit, entry)
	}
}

func TestStoreOverwritesWhenDepthCloseEnough(t *testing.T) {
	table := New(1)
	size := uint64(table.Size())
	keyA, keyB := uint64(11), uint64(11)+size

	table.Store(keyA, 5, 50, Exact, board.NoMove)
	table.Store(keyB, 4, 77, Exact, board.NoMove) // only shallower by 1

	entry, hit := table.Probe(keyB)
	if !hit || entry.Depth != 4 || entry.Score != 77 {
		t.Errorf("a write only slightly shallower should overwrite, got hit=%v entry=%+v", hit, entry)
	}
}

func TestClearResetsTable(t *testing.T) {
	table := New(1)
	table.Store(42, 5, 10, Exact, board.NoMove)
	table.Clear()
	if _, hit := table.Probe(42); hit {
		t.Errorf("expected a miss after Clear")
	}
}

func TestNewSearchAdvancesAge(t *testing.T) {
	table := New(1)
	table.Store(1, 3, 0, Exact, board.NoMove)
	table.NewSearch()
	if table.HashFull() != 0 {
		t.Errorf("after NewSearch, the old-generation entry should not count toward HashFull")
	}
}
