package search

import (
	"github.com/nullmoveai/chesscore/internal/board"
	"github.com/nullmoveai/chesscore/internal/ordering"
)

// Quiescence runs the capture-only search that settles the horizon before
// a static evaluation is trusted, per spec.md §4.6's 5-step algorithm.
func (s *Searcher) Quiescence(b *board.Board, alpha, beta, ply int) int {
	if ply >= MaxPly-1 {
		return s.evaluate(b)
	}

	s.Nodes++
	if s.Nodes&1023 == 0 && s.stopped() {
		return alpha
	}

	// Step 1/2: stand pat.
	standPat := s.evaluate(b)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	// Step 3: captures only, sorted.
	all := board.GenerateMoves(b)
	captures := make([]board.Move, 0, all.Len())
	for i := 0; i < all.Len(); i++ {
		if all.At(i).IsCapture() {
			captures = append(captures, all.At(i))
		}
	}
	scores := s.Orderer.ScoreAll(b, captures, board.NoMove, 0, board.NoPiece, 0)
	ordering.SortMoves(captures, scores)

	for _, move := range captures {
		// Step 4: SEE pruning.
		if SEE(b, move) < -100 {
			continue
		}

		nb, ok := board.MakeMove(*b, move)
		if !ok {
			continue
		}

		captured := b.PieceAt(move.To())
		if move.IsEnPassant() {
			captured = board.NewPiece(board.Pawn, b.Side.Other())
		}
		s.Eval.Update(b, move, captured, &nb)

		score := -s.Quiescence(&nb, -beta, -alpha, ply+1)
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}
