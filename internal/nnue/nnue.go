// Package nnue implements the quantized NNUE position evaluator: HalfKA
// feature indexing, two incrementally-updated perspective accumulators,
// and a three-dense-layer forward pass, per spec.md §4.3. When no network
// is loaded, or loading fails, evaluation falls back to classical
// material-plus-piece-square scoring.
package nnue

import (
	"log/slog"

	"github.com/nullmoveai/chesscore/internal/board"
)

// Architecture constants. LoadNetwork sizes every loaded network with
// these values; the file header's dimensions are neither read nor checked
// against them. They are also the defaults used when initializing random
// test weights.
const (
	NumPieceCodes   = 11 // own P,N,B,R,Q (0-4) + enemy P,N,B,R,Q (5-9) + enemy K (10)
	NumSquares      = 64
	Stride          = NumPieceCodes * NumSquares // 704
	DefaultFeatures = NumSquares * Stride        // 45056

	DefaultHiddenSize = 256
	L2Size            = 32
	L3Size            = 32

	QA          = 127 // clip after layer 1
	QO          = 127 // clip after layer 2
	OutputScale = 600
)

// Evaluator is the high-level evaluation interface the search core drives.
// Because board.Board is itself a copy-make value type carrying its own
// accumulators, the evaluator holds no per-position state of its own — it
// only owns the loaded network (or lack of one).
type Evaluator struct {
	net         *Network
	log         *slog.Logger
	initialized bool
}

// NewEvaluator builds an Evaluator. If path is empty or loading fails, the
// evaluator falls back to classical evaluation and is not "initialized" —
// per spec.md §4.3, a malformed or missing file must never crash the
// engine, only degrade.
func NewEvaluator(path string, cache *FileCache, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	e := &Evaluator{log: log}
	if path == "" {
		return e
	}
	net, err := LoadNetwork(path, cache)
	if err != nil {
		log.Warn("nnue: load failed, falling back to classical evaluation", "path", path, "error", err)
		return e
	}
	e.net = net
	e.initialized = true
	return e
}

// Initialized reports whether a network is loaded; false means every
// Evaluate call uses the classical fallback.
func (e *Evaluator) Initialized() bool { return e.initialized }

// Refresh rebuilds both perspective accumulators of b from scratch. Callers
// must do this once for the root of a search and whenever an incremental
// update is unavailable.
func (e *Evaluator) Refresh(b *board.Board) {
	if !e.initialized {
		return
	}
	ComputeFull(b, board.White, e.net)
	ComputeFull(b, board.Black, e.net)
}

// Update applies the incremental accumulator update for the move just
// played by board.MakeMove, per spec.md §4.3's per-move-type bullet list.
// before is the pre-move board, after is the post-move board returned by
// MakeMove (whose accumulators this call fills in); captured is the piece
// removed by the move, or board.NoPiece.
func (e *Evaluator) Update(before *board.Board, m board.Move, captured board.Piece, after *board.Board) {
	if !e.initialized {
		return
	}
	UpdateIncremental(before, m, captured, after, e.net)
}

// Evaluate returns the position score in centipawns from the side to
// move's perspective. The caller is responsible for having called Refresh
// or Update so the board's accumulators are current; Evaluate recomputes
// from scratch as a last resort if they are stale.
func (e *Evaluator) Evaluate(b *board.Board) int {
	if !e.initialized {
		return FallbackEvaluate(b)
	}
	if !b.Accumulators[board.White].Fresh || !b.Accumulators[board.Black].Fresh {
		e.Refresh(b)
	}
	return e.net.Forward(b, b.Side)
}
