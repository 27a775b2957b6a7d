package uci

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nullmoveai/chesscore/internal/board"
	"github.com/nullmoveai/chesscore/internal/engine"
)

func newTestProtocol(t *testing.T, out *bytes.Buffer) *Protocol {
	t.Helper()
	eng, err := engine.New(engine.Options{HashMB: 1, Threads: 1}, "", nil)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return New(strings.NewReader(""), out, eng, nil)
}

func TestHandleUCIPrintsIDAndOptionsAndUciok(t *testing.T) {
	var out bytes.Buffer
	p := newTestProtocol(t, &out)
	p.handleUCI()

	got := out.String()
	if !strings.Contains(got, "id name") {
		t.Errorf("missing id name line:\n%s", got)
	}
	if !strings.Contains(got, "option name Hash type spin") {
		t.Errorf("missing Hash option line:\n%s", got)
	}
	if !strings.HasSuffix(strings.TrimRight(got, "\n"), "uciok") {
		t.Errorf("expected output to end with uciok:\n%s", got)
	}
}

func TestHandlePositionStartposThenMoves(t *testing.T) {
	var out bytes.Buffer
	p := newTestProtocol(t, &out)

	p.handlePosition([]string{"startpos", "moves", "e2e4", "e7e5"})

	e4, err := board.ParseSquare("e4")
	if err != nil {
		t.Fatalf("ParseSquare(e4): %v", err)
	}
	if got := p.position.PieceAt(e4); got.Type() != board.Pawn {
		t.Errorf("expected a pawn on e4, got %v", got)
	}
	if len(p.history) != 3 {
		t.Errorf("history length = %d, want 3 (start + 2 plies)", len(p.history))
	}
}

func TestHandlePositionInvalidFENLeavesPositionUnchanged(t *testing.T) {
	var out bytes.Buffer
	p := newTestProtocol(t, &out)
	before := p.position

	p.handlePosition([]string{"fen", "not-a-real-fen"})

	if p.position.Hash != before.Hash {
		t.Errorf("an invalid FEN should leave the position unchanged")
	}
}

func TestHandlePositionDropsIllegalMoveMidSequence(t *testing.T) {
	var out bytes.Buffer
	p := newTestProtocol(t, &out)

	// e2e5 is not a legal opening move; the sequence should stop there.
	p.handlePosition([]string{"startpos", "moves", "e2e4", "e2e5"})

	if len(p.history) != 2 {
		t.Errorf("history length = %d, want 2 (start + one legal ply)", len(p.history))
	}
}

func TestHandleGoDepthEmitsBestmove(t *testing.T) {
	var out bytes.Buffer
	p := newTestProtocol(t, &out)

	p.handleGo([]string{"depth", "2"})

	select {
	case <-p.searchDone:
	case <-time.After(5 * time.Second):
		t.Fatal("search did not complete within 5s")
	}

	if !strings.Contains(out.String(), "bestmove ") {
		t.Errorf("expected a bestmove line, got:\n%s", out.String())
	}
}

func TestHandleSetOptionParsesMultiWordName(t *testing.T) {
	var out bytes.Buffer
	p := newTestProtocol(t, &out)

	p.handleSetOption([]string{"name", "Move", "Overhead", "value", "50"})

	if got := p.eng.Options().MoveOverhead; got.Milliseconds() != 50 {
		t.Errorf("MoveOverhead = %v, want 50ms", got)
	}
}
