package nnue

import "github.com/nullmoveai/chesscore/internal/board"

// pieceCode maps (perspective, pieceColor, pieceType) to the 0..10 oriented
// code spec.md §4.3 describes: own non-king pieces 0..4 (P,N,B,R,Q), enemy
// non-king pieces 5..9, enemy king 10. The perspective's own king is never
// assigned a code — it is the feature-bucket key, not a feature itself.
func pieceCode(perspective, pieceColor board.Color, pt board.PieceType) int {
	if pt == board.King {
		if pieceColor == perspective {
			return -1
		}
		return 10
	}
	base := int(pt) // Pawn=0 .. Queen=4
	if pieceColor != perspective {
		base += 5
	}
	return base
}

// FeatureIndex computes index(k, s, c) = k*Stride + c*64 + s from spec.md
// §4.3. For the black perspective, squares are vertically flipped (XOR 56)
// so each side sees the board oriented the same way; own-vs-enemy is always
// decided against the true piece color, never flipped. Returns -1 for the
// perspective's own king (not a feature).
func FeatureIndex(perspective board.Color, kingSquare board.Square, pieceType board.PieceType, pieceColor board.Color, pieceSquare board.Square) int {
	k, s := kingSquare, pieceSquare
	if perspective == board.Black {
		k = k.Mirror()
		s = s.Mirror()
	}
	code := pieceCode(perspective, pieceColor, pieceType)
	if code < 0 {
		return -1
	}
	return int(k)*Stride + code*NumSquares + int(s)
}

// ActiveFeatures returns every active feature index for one perspective,
// iterating every non-own-king piece on the board.
func ActiveFeatures(b *board.Board, perspective board.Color) []int {
	out := make([]int, 0, 32)
	kingSq := b.KingSquare[perspective]
	for color := board.White; color <= board.Black; color++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			if pt == board.King && color == perspective {
				continue
			}
			bb := b.Pieces(pt, color)
			for bb != 0 {
				sq := bb.PopLSB()
				out = append(out, FeatureIndex(perspective, kingSq, pt, color, sq))
			}
		}
	}
	return out
}
