package nnue

import "github.com/nullmoveai/chesscore/internal/board"

// ComputeFull rebuilds one perspective's accumulator from scratch: the
// feature-transformer bias plus the weight column for every active
// feature, per spec.md §4.3's accumulator definition.
func ComputeFull(b *board.Board, perspective board.Color, net *Network) {
	h := net.HiddenSize
	values := make([]int16, h)
	copy(values, net.FeatureBias)
	for _, idx := range ActiveFeatures(b, perspective) {
		addColumn(values, net.InputWeights, idx, h)
	}
	b.Accumulators[perspective] = board.Accumulator{Values: values, Fresh: true}
}

func addColumn(dst []int16, weights []int16, featureIdx, h int) {
	base := featureIdx * h
	col := weights[base : base+h]
	for i := range dst {
		dst[i] += col[i]
	}
}

func subColumn(dst []int16, weights []int16, featureIdx, h int) {
	base := featureIdx * h
	col := weights[base : base+h]
	for i := range dst {
		dst[i] -= col[i]
	}
}

// UpdateIncremental applies spec.md §4.3's per-move-type accumulator
// update. A king move invalidates only the mover's own perspective (it is
// rebuilt from scratch); the other perspective stays incremental, because
// the other side's king square — the bucket key for its own accumulator —
// did not change.
func UpdateIncremental(before *board.Board, m board.Move, captured board.Piece, after *board.Board, net *Network) {
	h := net.HiddenSize
	movedPiece := before.PieceAt(m.From())
	movingColor := movedPiece.Color()
	movingType := movedPiece.Type()

	from, to := m.From(), m.To()

	for _, perspective := range [2]board.Color{board.White, board.Black} {
		// A king move for this perspective's own king requires a full
		// rebuild under the new king square; the moved side's king square
		// is the feature bucket key for its own perspective only.
		if movingType == board.King && movingColor == perspective {
			ComputeFull(after, perspective, net)
			continue
		}

		prev := before.Accumulators[perspective]
		values := make([]int16, h)
		copy(values, prev.Values)

		if idx := FeatureIndex(perspective, kingSquareFor(before, perspective), movingType, movingColor, from); idx >= 0 {
			subColumn(values, net.InputWeights, idx, h)
		}

		addType := movingType
		if m.IsPromotion() {
			addType = m.Promotion()
		}
		if idx := FeatureIndex(perspective, kingSquareFor(after, perspective), addType, movingColor, to); idx >= 0 {
			addColumn(values, net.InputWeights, idx, h)
		}

		if captured != board.NoPiece && captured.Type() != board.King {
			capSq := to
			if m.IsEnPassant() {
				if movingColor == board.White {
					capSq = to - 8
				} else {
					capSq = to + 8
				}
			}
			if idx := FeatureIndex(perspective, kingSquareFor(before, perspective), captured.Type(), captured.Color(), capSq); idx >= 0 {
				subColumn(values, net.InputWeights, idx, h)
			}
		}

		if m.IsCastling() {
			rookFrom, rookTo := board.CastlingRookSquares(to)
			if idx := FeatureIndex(perspective, kingSquareFor(before, perspective), board.Rook, movingColor, rookFrom); idx >= 0 {
				subColumn(values, net.InputWeights, idx, h)
			}
			if idx := FeatureIndex(perspective, kingSquareFor(after, perspective), board.Rook, movingColor, rookTo); idx >= 0 {
				addColumn(values, net.InputWeights, idx, h)
			}
		}

		after.Accumulators[perspective] = board.Accumulator{Values: values, Fresh: true}
	}
}

// kingSquareFor returns the perspective's own king square from the given
// board, used so the feature index always reflects the correct bucket even
// mid-update (the perspective's king square never changes within a single
// UpdateIncremental call unless movingColor==perspective and movingType is
// King, which is handled by the full-rebuild branch above).
func kingSquareFor(b *board.Board, perspective board.Color) board.Square {
	return b.KingSquare[perspective]
}
