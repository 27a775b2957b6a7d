package search

import (
	"math"

	"github.com/nullmoveai/chesscore/internal/board"
	"github.com/nullmoveai/chesscore/internal/ordering"
	"github.com/nullmoveai/chesscore/internal/tt"
)

// Negamax runs the full PVS negamax at the root or any interior node, per
// spec.md §4.6's 13-step algorithm. b is the position to search; the
// caller owns it and negamax never mutates it — every recursive call
// passes a freshly made child board, since board.Board is a copy-make
// value type (spec.md §9). excluded is the move to skip this node
// (singular-extension verification search; board.NoMove otherwise).
// prevMove/prevPiece identify the move that led to b, for counter-move
// lookup.
func (s *Searcher) Negamax(b *board.Board, alpha, beta, depth, ply int, excluded board.Move, isPV bool, prevMove board.Move, prevPiece board.Piece) int {
	if ply >= MaxPly-1 {
		return s.evaluate(b)
	}

	s.Nodes++
	if s.Nodes&1023 == 0 && s.stopped() {
		return alpha
	}

	s.PV.length[ply] = ply

	if ply > 0 && s.isDraw(b) {
		return 0
	}

	// Step 2: TT probe. Skipped during a singular-extension verification
	// search, and at a MultiPV root with excluded moves, since that entry
	// may have been stored without the exclusion in effect.
	var ttMove board.Move
	var ttScore int
	haveTT := false
	if excluded == board.NoMove && !(ply == 0 && len(s.excludedRoot) > 0) {
		if entry, hit := s.TT.Probe(b.Hash); hit {
			ttMove = entry.Move
			ttScore = AdjustScoreFromTT(int(entry.Score), ply)
			haveTT = true
			if int(entry.Depth) >= depth {
				usable := false
				switch entry.Flag {
				case tt.Exact:
					usable = true
				case tt.Lower:
					usable = ttScore >= beta
				case tt.Upper:
					usable = ttScore <= alpha
				}
				if usable {
					if ply == 0 && ttMove != board.NoMove {
						s.PV.moves[0][0] = ttMove
						s.PV.length[0] = 1
					}
					return ttScore
				}
			}
		}
	}

	// Step 3: check detection.
	inCheck := b.InCheck()

	// Step 4: frontier handling.
	if depth <= 0 {
		if inCheck && ply < 40 {
			depth = 1
		} else {
			return s.Quiescence(b, alpha, beta, ply)
		}
	}

	rawEval := s.evaluate(b)
	eval := rawEval

	// Step 5: razoring.
	if !isPV && !inCheck && depth <= 3 {
		if eval+300*depth < alpha {
			score := s.Quiescence(b, alpha, beta, ply)
			if score <= alpha {
				return score
			}
		}
	}

	// Step 6: reverse futility / static null-move pruning.
	if !isPV && !inCheck && depth <= 7 && excluded == board.NoMove {
		margin := eval - 90*depth
		if margin >= beta {
			return margin
		}
	}

	// Step 7: null-move pruning.
	if !isPV && !inCheck && depth >= 3 && excluded == board.NoMove && b.HasNonPawnMaterial(b.Side) {
		r := 2 + depth/6
		nullBoard := board.MakeNullMove(*b)
		reduced := depth - 1 - r
		score := -s.Negamax(&nullBoard, -beta, -beta+1, reduced, ply+1, board.NoMove, false, board.NoMove, board.NoPiece)
		if score >= beta {
			return beta
		}
	}

	// Step 8: move generation/ordering setup; internal iterative reduction.
	if isPV && ttMove == board.NoMove && depth >= 4 {
		depth--
	}

	// Step 9: singular extension.
	singularExt := 0
	if depth >= 8 && !inCheck && ply > 0 && ttMove != board.NoMove && excluded == board.NoMove && haveTT {
		singularBeta := ttScore
		verifyDepth := depth / 2
		if verifyDepth < 1 {
			verifyDepth = 1
		}
		verifyScore := s.Negamax(b, singularBeta-1, singularBeta, verifyDepth, ply, ttMove, false, prevMove, prevPiece)
		if verifyScore < singularBeta {
			singularExt = 1
		}
	}

	// Step 10: futility pruning precomputation.
	pruneQuiets := false
	if !isPV && !inCheck && depth <= 3 {
		if eval+250*depth < alpha {
			pruneQuiets = true
		}
	}

	moves := board.GenerateMoves(b)

	scores := s.Orderer.ScoreAll(b, moves.Slice(), ttMove, ply, prevPiece, prevMove.To())
	ordering.SortMoves(moves.Slice(), scores)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := tt.Upper
	movesSearched := 0
	var quietsSearched []board.Move

	for i := 0; i < moves.Len(); i++ {
		move := moves.At(i)

		// Step 11a.
		if move == excluded {
			continue
		}
		if ply == 0 && s.isExcludedRoot(move) {
			continue
		}

		isCapture := move.IsCapture()
		isPromotion := move.IsPromotion()
		isQuiet := !isCapture && !isPromotion

		if pruneQuiets && isQuiet && bestMove != board.NoMove {
			continue
		}

		// Step 11b: copy-make.
		nb, ok := board.MakeMove(*b, move)
		if !ok {
			continue
		}

		// Step 11c: accumulator update.
		captured := b.PieceAt(move.To())
		if move.IsEnPassant() {
			captured = board.NewPiece(board.Pawn, b.Side.Other())
		}
		s.Eval.Update(b, move, captured, &nb)

		s.History = append(s.History, nb.Hash)
		movesSearched++
		if isQuiet {
			quietsSearched = append(quietsSearched, move)
		}

		movedPiece := nb.PieceAt(move.To())

		newDepth := depth - 1
		if move == ttMove && singularExt > 0 {
			newDepth += singularExt
		}

		var score int
		switch {
		case movesSearched == 1:
			// Step 11d.
			score = -s.Negamax(&nb, -beta, -alpha, newDepth, ply+1, board.NoMove, isPV, move, movedPiece)
		default:
			// Step 11e.
			r := 0
			if movesSearched > 1 && depth >= 3 && isQuiet {
				lr := math.Log(float64(depth)) * math.Log(float64(movesSearched)) / 1.5
				r = int(lr)
				r = clampMin(r, 1)
				maxR := clampMin(newDepth-1, 1)
				r = clampMax(r, maxR)
			}
			reducedDepth := newDepth - r
			score = -s.Negamax(&nb, -alpha-1, -alpha, reducedDepth, ply+1, board.NoMove, false, move, movedPiece)
			if score > alpha && r > 0 {
				score = -s.Negamax(&nb, -alpha-1, -alpha, newDepth, ply+1, board.NoMove, false, move, movedPiece)
			}
			if score > alpha && score < beta {
				score = -s.Negamax(&nb, -beta, -alpha, newDepth, ply+1, board.NoMove, isPV, move, movedPiece)
			}
		}

		s.History = s.History[:len(s.History)-1]

		if s.stopped() {
			return alpha
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
			if score > alpha {
				alpha = score
				flag = tt.Exact
				s.PV.record(ply, move)
			}
		}

		// Step 11g.
		if score >= beta {
			flag = tt.Lower
			if isQuiet {
				s.Orderer.UpdateKillers(move, ply)
				s.Orderer.UpdateHistory(b, move, quietsSearched, depth)
				s.Orderer.UpdateCounterMove(prevPiece, prevMove.To(), move)
			}
			break
		}
	}

	// Step 12: terminal. No move survived the legality check: checkmate
	// or stalemate (a node whose only moves were excluded is neither).
	if movesSearched == 0 && excluded == board.NoMove && !(ply == 0 && len(s.excludedRoot) > 0) {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	// Step 13: TT store, skipped for a cancelled node per spec.md §5.
	if !s.stopped() {
		s.TT.Store(b.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)
		if flag == tt.Exact && !inCheck && depth >= 2 && excluded == board.NoMove {
			s.Correction.Update(b, bestScore, rawEval, depth)
		}
	}

	return bestScore
}
