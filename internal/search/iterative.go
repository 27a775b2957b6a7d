package search

import (
	"time"

	"github.com/nullmoveai/chesscore/internal/board"
	"github.com/nullmoveai/chesscore/internal/timeman"
)

// aspirationWindow is spec.md §4.6's W; the spec leaves the exact width an
// open question, so this follows internal/engine/engine.go's own choice of
// ±50 centipawns (see DESIGN.md).
const aspirationWindow = 50

// Info is one iterative-deepening progress report, destined for UCI
// `info` output. The caller (internal/engine) formats it; this package
// only produces the data.
type Info struct {
	Depth   int
	MultiPV int
	Score   int
	Nodes   uint64
	Time    time.Duration
	PV      []board.Move
}

// RootResult is the outcome of one root search: the principal line's best
// move and supporting data.
type RootResult struct {
	Move  board.Move
	Score int
	Depth int
	PV    []board.Move
	Nodes uint64
}

// IterativeDeepen runs the root search loop of spec.md §4.6's final
// paragraph: iterative deepening with aspiration windows from depth 4,
// MultiPV accumulation by excluding already-chosen root moves, emitting
// one Info per (depth, multiPV) pair via onInfo. Grounded on
// internal/engine/engine.go's SearchWithLimits, generalized to MultiPV
// and rewritten around board.Board's copy-make value semantics (the root
// board is read-only here; Negamax never mutates it).
func (s *Searcher) IterativeDeepen(root *board.Board, maxDepth int, tm *timeman.Manager, multiPV int, onInfo func(Info)) RootResult {
	if multiPV < 1 {
		multiPV = 1
	}
	start := time.Now()

	scores := make([]int, multiPV)
	haveScore := make([]bool, multiPV)

	var result RootResult

	for depth := 1; depth <= maxDepth; depth++ {
		if tm != nil && depth > 1 && tm.PastOptimal() {
			break
		}

		var chosen []board.Move
		cancelled := false

		for pvIdx := 0; pvIdx < multiPV; pvIdx++ {
			s.SetExcludedRootMoves(chosen)

			var score int
			if depth >= 4 && haveScore[pvIdx] {
				window := aspirationWindow
				alpha := scores[pvIdx] - window
				beta := scores[pvIdx] + window
				for {
					score = s.Negamax(root, alpha, beta, depth, 0, board.NoMove, true, board.NoMove, board.NoPiece)
					if s.stopped() {
						break
					}
					if score <= alpha {
						alpha = -Infinity
					} else if score >= beta {
						beta = Infinity
					} else {
						break
					}
					if alpha == -Infinity && beta == Infinity {
						break
					}
				}
			} else {
				score = s.Negamax(root, -Infinity, Infinity, depth, 0, board.NoMove, true, board.NoMove, board.NoPiece)
			}

			if s.stopped() {
				cancelled = true
				break
			}

			scores[pvIdx] = score
			haveScore[pvIdx] = true

			pv := s.PV.Line()
			var bestMove board.Move
			if len(pv) > 0 {
				bestMove = pv[0]
			}
			chosen = append(chosen, bestMove)

			if pvIdx == 0 {
				result = RootResult{Move: bestMove, Score: score, Depth: depth, PV: pv, Nodes: s.Nodes}
			}

			if onInfo != nil && !s.Silent {
				onInfo(Info{
					Depth:   depth,
					MultiPV: pvIdx + 1,
					Score:   score,
					Nodes:   s.Nodes,
					Time:    time.Since(start),
					PV:      pv,
				})
			}
		}

		if cancelled {
			break
		}

		if tm != nil && tm.PastOptimal() {
			break
		}
	}

	s.SetExcludedRootMoves(nil)
	return result
}
