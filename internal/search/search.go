// Package search implements the negamax/PVS search core, quiescence
// search, and the lazy-SMP parallel driver, per spec.md §4.6/§4.8.
package search

import (
	"sync/atomic"

	"github.com/nullmoveai/chesscore/internal/board"
	"github.com/nullmoveai/chesscore/internal/nnue"
	"github.com/nullmoveai/chesscore/internal/ordering"
	"github.com/nullmoveai/chesscore/internal/tt"
)

// Search-wide constants, grounded on internal/engine/search.go.
const (
	Infinity  = 32001
	MateScore = 32000
	MaxPly    = 128
)

// PVTable stores the principal variation line discovered at each ply,
// grounded on internal/engine/search.go's PVTable.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

func (pv *PVTable) record(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	for j := ply + 1; j < pv.length[ply+1]; j++ {
		pv.moves[ply][j] = pv.moves[ply+1][j]
	}
	pv.length[ply] = pv.length[ply+1]
}

// Line returns the PV discovered from the root.
func (pv *PVTable) Line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}

// Searcher is one search thread's state: shared resources by pointer (TT,
// evaluator), everything else thread-local, per spec.md §5's scheduling
// model. Grounded on internal/engine/worker.go's Worker, minus the
// teacher's undo-stack fields — board.Board's copy-make value semantics
// make an explicit undo stack unnecessary.
type Searcher struct {
	ID int

	Orderer *ordering.Orderer
	TT      *tt.Table
	Eval    *nnue.Evaluator

	Nodes uint64
	PV    PVTable

	// Correction and PawnCache are thread-local supplemental enrichments
	// to the static evaluator, grounded on internal/engine/correction.go
	// and pawnhash.go, per SPEC_FULL.md §5.6.
	Correction *CorrectionHistory
	PawnCache  *PawnTable

	// History holds Zobrist hashes along the current search path (root
	// game history plus every move made since), for repetition detection.
	History []uint64

	Stop *atomic.Bool

	// Silent suppresses UCI output for this thread, per spec.md §4.8's
	// lazy-SMP helper-thread behavior: IterativeDeepen does not call its
	// onInfo callback when Silent is set.
	Silent bool

	excludedRoot []board.Move
}

// New creates a search thread sharing tt and eval with its siblings.
func New(id int, table *tt.Table, eval *nnue.Evaluator, stop *atomic.Bool) *Searcher {
	return &Searcher{
		ID:         id,
		Orderer:    ordering.New(),
		TT:         table,
		Eval:       eval,
		Stop:       stop,
		Correction: NewCorrectionHistory(),
		PawnCache:  NewPawnTable(4),
	}
}

// Reset clears per-search node count and move-ordering state before a new
// root search, per internal/engine/worker.go's Reset.
func (s *Searcher) Reset() {
	s.Nodes = 0
	s.Orderer.Clear()
}

// SetRootHistory records the game's Zobrist history for repetition
// detection, grounded on internal/engine/worker.go's SetRootHistory.
func (s *Searcher) SetRootHistory(hashes []uint64) {
	s.History = append(s.History[:0], hashes...)
}

// SetExcludedRootMoves configures root moves to skip, for MultiPV.
func (s *Searcher) SetExcludedRootMoves(moves []board.Move) {
	s.excludedRoot = moves
}

func (s *Searcher) isExcludedRoot(m board.Move) bool {
	for _, e := range s.excludedRoot {
		if e == m {
			return true
		}
	}
	return false
}

func (s *Searcher) stopped() bool {
	return s.Stop != nil && s.Stop.Load()
}

// evaluate returns the static evaluation of b from the side to move's
// perspective, refreshing accumulators if the evaluator is in use and
// they are stale. Two supplemental enrichments are layered on top of the
// evaluator's own score, per SPEC_FULL.md §5.6: a cached classical pawn-
// structure term (skipped once NNUE is loaded, since the network already
// encodes pawn structure) and this thread's correction history, grounded
// on internal/engine/worker.go's evaluate()/Get() pairing.
func (s *Searcher) evaluate(b *board.Board) int {
	score := s.Eval.Evaluate(b)
	if !s.Eval.Initialized() {
		mg, eg := pawnStructureWithCache(b, s.PawnCache)
		term := (mg + eg) / 2
		if b.Side == board.Black {
			term = -term
		}
		score += term
	}
	score += s.Correction.Get(b)
	return score
}

// isDraw reports 50-move, insufficient-material, and repetition draws,
// grounded on internal/engine/worker.go's isDraw.
func (s *Searcher) isDraw(b *board.Board) bool {
	if b.HalfmoveClock >= 100 {
		return true
	}
	if board.IsInsufficientMaterial(b) {
		return true
	}
	count := 0
	for _, h := range s.History {
		if h == b.Hash {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// AdjustScoreFromTT converts a ply-independent mate score stored in the TT
// back into one relative to the current ply, grounded on
// internal/engine/transposition.go.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a ply-relative score into the ply-independent
// form stored in the TT.
func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}

// SEE is the simplified static exchange evaluation of spec.md §4.6: if the
// target square is defended by the enemy, victim minus attacker; else the
// free capture's full victim value. Used only as a quiescence pruning
// guard.
func SEE(b *board.Board, m board.Move) int {
	attacker := b.PieceAt(m.From())
	var victimType board.PieceType
	if m.IsEnPassant() {
		victimType = board.Pawn
	} else {
		victimType = b.PieceAt(m.To()).Type()
	}
	victim := board.PieceValue[victimType]

	defender := b.Side.Other()
	if board.AttackersTo(b, m.To(), defender) != 0 {
		return victim - board.PieceValue[attacker.Type()]
	}
	return victim
}

func clampMin(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

func clampMax(v, hi int) int {
	if v > hi {
		return hi
	}
	return v
}
