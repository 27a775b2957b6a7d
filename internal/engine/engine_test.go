package engine

import (
	"testing"
	"time"

	"github.com/nullmoveai/chesscore/internal/board"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(Options{HashMB: 1, Threads: 2, MultiPV: 1}, "", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestSearchReturnsALegalRootMove(t *testing.T) {
	eng := newTestEngine(t)
	b := board.NewStartingBoard()

	result := eng.Search(&b, Limits{Depth: 3}, []uint64{b.Hash}, nil)
	if result.Move == board.NoMove {
		t.Fatalf("expected a best move from the starting position")
	}

	legal := false
	for _, m := range board.LegalMoves(&b) {
		if m == result.Move {
			legal = true
			break
		}
	}
	if !legal {
		t.Errorf("engine returned %v, not a legal root move", result.Move)
	}
}

func TestSearchRespectsMoveTime(t *testing.T) {
	eng := newTestEngine(t)
	b := board.NewStartingBoard()

	start := time.Now()
	result := eng.Search(&b, Limits{MoveTime: 100 * time.Millisecond}, []uint64{b.Hash}, nil)
	elapsed := time.Since(start)

	if result.Move == board.NoMove {
		t.Fatalf("expected a best move under a move-time limit")
	}
	if elapsed > 2*time.Second {
		t.Errorf("search ran for %v, far past its 100ms move time", elapsed)
	}
}

func TestSetOptionResizesHash(t *testing.T) {
	eng := newTestEngine(t)
	before := eng.table.Size()

	if err := eng.SetOption("Hash", "2"); err != nil {
		t.Fatalf("SetOption(Hash): %v", err)
	}
	if eng.Options().HashMB != 2 {
		t.Errorf("HashMB = %d, want 2", eng.Options().HashMB)
	}
	after := eng.table.Size()
	if after < before {
		t.Errorf("table shrank on a Hash increase: %d -> %d", before, after)
	}
}

func TestSetOptionClampsOutOfRangeValues(t *testing.T) {
	eng := newTestEngine(t)
	if err := eng.SetOption("MultiPV", "9999"); err != nil {
		t.Fatalf("SetOption(MultiPV): %v", err)
	}
	if eng.Options().MultiPV != 500 {
		t.Errorf("MultiPV = %d, want clamped to 500", eng.Options().MultiPV)
	}
}

func TestStopCancelsAnInfiniteSearch(t *testing.T) {
	eng := newTestEngine(t)
	b := board.NewStartingBoard()

	done := make(chan Result, 1)
	go func() {
		done <- eng.Search(&b, Limits{Infinite: true}, []uint64{b.Hash}, nil)
	}()

	time.Sleep(20 * time.Millisecond)
	eng.Stop()

	select {
	case result := <-done:
		if result.Move == board.NoMove {
			t.Errorf("expected a best move after stopping an infinite search")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the infinite search within 2s")
	}
}

func TestNewGameClearsTheTranspositionTable(t *testing.T) {
	eng := newTestEngine(t)
	b := board.NewStartingBoard()
	eng.Search(&b, Limits{Depth: 4}, []uint64{b.Hash}, nil)

	if eng.table.HashFull() == 0 {
		t.Skip("table never filled enough to observe a clear")
	}
	eng.NewGame()
	if got := eng.table.HashFull(); got != 0 {
		t.Errorf("HashFull() after NewGame = %d, want 0", got)
	}
}

func TestPerftStartingPositionDepthTwo(t *testing.T) {
	b := board.NewStartingBoard()
	if got, want := Perft(&b, 2), uint64(400); got != want {
		t.Errorf("Perft(start, 2) = %d, want %d", got, want)
	}
}

func TestOptionSpecsCoverEverySpecOption(t *testing.T) {
	want := map[string]bool{
		"Hash": true, "EvalFile": true, "Move Overhead": true,
		"MultiPV": true, "Ponder": true, "Threads": true,
	}
	for _, spec := range OptionSpecs() {
		delete(want, spec.Name)
	}
	if len(want) != 0 {
		t.Errorf("OptionSpecs is missing: %v", want)
	}
}
