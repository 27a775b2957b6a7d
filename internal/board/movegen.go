package board

// GenerateMoves produces every pseudo-legal move for the side to move, per
// spec.md §4.1: attack sets ANDed with ~own pieces (and with enemy pieces
// for pawn captures), edge-file masks prevent pawn-shift wraparound,
// promotions expand into four moves, castling checks only that the
// through-squares are empty (attack checks are deferred to MakeMove).
func GenerateMoves(b *Board) MoveList {
	var list MoveList
	us, them := b.Side, b.Side.Other()
	own := b.Occupancies[us]
	enemy := b.Occupancies[them]
	occ := b.Occupancies[occBoth]

	generatePawnMoves(b, &list, us, enemy, occ)

	for bb := b.Pieces(Knight, us); bb != 0; {
		from := bb.PopLSB()
		targets := knightAttacks[from] &^ own
		addTargets(&list, from, Knight, targets, enemy)
	}
	for bb := b.Pieces(King, us); bb != 0; {
		from := bb.PopLSB()
		targets := kingAttacks[from] &^ own
		addTargets(&list, from, King, targets, enemy)
	}
	for bb := b.Pieces(Bishop, us); bb != 0; {
		from := bb.PopLSB()
		targets := BishopAttacks(from, occ) &^ own
		addTargets(&list, from, Bishop, targets, enemy)
	}
	for bb := b.Pieces(Rook, us); bb != 0; {
		from := bb.PopLSB()
		targets := RookAttacks(from, occ) &^ own
		addTargets(&list, from, Rook, targets, enemy)
	}
	for bb := b.Pieces(Queen, us); bb != 0; {
		from := bb.PopLSB()
		targets := QueenAttacks(from, occ) &^ own
		addTargets(&list, from, Queen, targets, enemy)
	}

	generateCastlingMoves(b, &list, us, occ)

	return list
}

func addTargets(list *MoveList, from Square, pt PieceType, targets, enemy Bitboard) {
	for targets != 0 {
		to := targets.PopLSB()
		list.Add(NewMove(from, to, pt, enemy.IsSet(to)))
	}
}

var promoTypes = [4]PieceType{Queen, Rook, Bishop, Knight}

func generatePawnMoves(b *Board, list *MoveList, us Color, enemy, occ Bitboard) {
	pawns := b.Pieces(Pawn, us)
	var push, doublePush Bitboard
	var promoRank Bitboard
	var startRank Bitboard
	if us == White {
		push = (pawns.North()) &^ occ
		startRank = Rank1 << 8
		doublePush = ((pawns & startRank).North() &^ occ).North() &^ occ
		promoRank = Rank8
	} else {
		push = (pawns.South()) &^ occ
		startRank = Rank8 >> 8
		doublePush = ((pawns & startRank).South() &^ occ).South() &^ occ
		promoRank = Rank1
	}

	for bb := push &^ promoRank; bb != 0; {
		to := bb.PopLSB()
		from := pawnOrigin(to, us, 8)
		list.Add(NewMove(from, to, Pawn, false))
	}
	for bb := push & promoRank; bb != 0; {
		to := bb.PopLSB()
		from := pawnOrigin(to, us, 8)
		for _, pt := range promoTypes {
			list.Add(NewPromotion(from, to, pt, false))
		}
	}
	for bb := doublePush; bb != 0; {
		to := bb.PopLSB()
		from := pawnOrigin(to, us, 16)
		list.Add(NewDoublePush(from, to))
	}

	for bb := pawns; bb != 0; {
		from := bb.PopLSB()
		caps := pawnAttacks[us][from] & enemy
		plain := caps &^ promoRank
		promo := caps & promoRank
		for p := plain; p != 0; {
			to := p.PopLSB()
			list.Add(NewMove(from, to, Pawn, true))
		}
		for p := promo; p != 0; {
			to := p.PopLSB()
			for _, pt := range promoTypes {
				list.Add(NewPromotion(from, to, pt, true))
			}
		}
		if b.EnPassant != NoSquare && pawnAttacks[us][from].IsSet(b.EnPassant) {
			list.Add(NewEnPassant(from, b.EnPassant))
		}
	}
}

func pawnOrigin(to Square, us Color, delta int) Square {
	if us == White {
		return to - Square(delta)
	}
	return to + Square(delta)
}

func generateCastlingMoves(b *Board, list *MoveList, us Color, occ Bitboard) {
	if us == White {
		if b.Castle.Has(WhiteKingside) && !occ.IsSet(SquareF1) && !occ.IsSet(SquareG1) {
			list.Add(NewCastling(SquareE1, SquareG1))
		}
		if b.Castle.Has(WhiteQueenside) && !occ.IsSet(SquareD1) && !occ.IsSet(SquareC1) && !occ.IsSet(SquareB1) {
			list.Add(NewCastling(SquareE1, SquareC1))
		}
	} else {
		if b.Castle.Has(BlackKingside) && !occ.IsSet(SquareF8) && !occ.IsSet(SquareG8) {
			list.Add(NewCastling(SquareE8, SquareG8))
		}
		if b.Castle.Has(BlackQueenside) && !occ.IsSet(SquareD8) && !occ.IsSet(SquareC8) && !occ.IsSet(SquareB8) {
			list.Add(NewCastling(SquareE8, SquareC8))
		}
	}
}

// CastlingRookSquares returns the rook's (from,to) for a castling king
// move, exported so incremental accumulator updates can mirror the rook
// move without duplicating the switch.
func CastlingRookSquares(to Square) (Square, Square) {
	switch to {
	case SquareG1:
		return SquareH1, SquareF1
	case SquareC1:
		return SquareA1, SquareD1
	case SquareG8:
		return SquareH8, SquareF8
	case SquareC8:
		return SquareA8, SquareD8
	}
	panic("board: CastlingRookSquares called with non-castling target")
}

// MakeMove applies a pseudo-legal move to a copy of b and returns the new
// board plus a legality bool, per spec.md §4.1/§9's copy-make value
// semantics: the caller's board is never mutated.
func MakeMove(b Board, m Move) (Board, bool) {
	nb := b
	us := nb.Side
	them := us.Other()
	from, to := m.From(), m.To()

	// 1. XOR out the contributions that are about to change.
	nb.Hash ^= zobristCastling[nb.Castle]
	if nb.EnPassant != NoSquare {
		nb.Hash ^= zobristEnPassant[nb.EnPassant.File()]
	}

	movingPiece := nb.mailbox[from]

	// 2/3. Remove from source; place on target (or promoted piece). A quiet,
	// non-promoting move relocates the piece in one step via movePiece;
	// everything else needs to remove a piece from a square other than the
	// mover's destination (en passant) or place a different piece type
	// there (promotion), so it's spelled out explicitly.
	switch {
	case m.IsEnPassant():
		nb.removePiece(from)
		var capSq Square
		if us == White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		nb.removePiece(capSq)
		nb.setPiece(to, movingPiece)
	case m.IsCapture():
		nb.removePiece(from)
		nb.removePiece(to)
		placed := movingPiece
		if m.IsPromotion() {
			placed = NewPiece(m.Promotion(), us)
		}
		nb.setPiece(to, placed)
	case m.IsPromotion():
		nb.removePiece(from)
		nb.setPiece(to, NewPiece(m.Promotion(), us))
	default:
		nb.movePiece(from, to)
	}

	// 4. Castling: move the rook too.
	if m.IsCastling() {
		rf, rt := CastlingRookSquares(to)
		rook := nb.mailbox[rf]
		nb.removePiece(rf)
		nb.setPiece(rt, rook)
	}

	// 5. Recompute occupancies.
	nb.updateOccupied()

	// 6. Reject if our king is now attacked.
	if IsSquareAttacked(&nb, nb.KingSquare[us], them) {
		return b, false
	}

	// 7. Castling legality: king's start and crossed squares must not be
	// attacked (the landing square is covered by step 6 above).
	if m.IsCastling() {
		crossSq := Square((int(from) + int(to)) / 2)
		if IsSquareAttacked(&b, from, them) || IsSquareAttacked(&b, crossSq, them) {
			return b, false
		}
	}

	// 8. Flip side; set en-passant only on a double push; update castling
	// rights via the 64-entry mask table.
	nb.Side = them
	if m.IsDoublePush() {
		if us == White {
			nb.EnPassant = to - 8
		} else {
			nb.EnPassant = to + 8
		}
	} else {
		nb.EnPassant = NoSquare
	}
	nb.Castle &= castlingRightsMask[from] & castlingRightsMask[to]

	// 9. XOR back in the new contributions.
	nb.Hash ^= zobristCastling[nb.Castle]
	if nb.EnPassant != NoSquare {
		nb.Hash ^= zobristEnPassant[nb.EnPassant.File()]
	}
	nb.Hash ^= zobristSideToMove

	if movingPiece.Type() == Pawn || m.IsCapture() {
		nb.HalfmoveClock = 0
	} else {
		nb.HalfmoveClock++
	}
	if us == Black {
		nb.FullmoveNumber++
	}

	// Accumulators become stale; the search/evaluation layer (internal/nnue)
	// is responsible for refreshing or incrementally updating them from the
	// move that was just made, per spec.md §4.3.
	nb.Accumulators[White].Fresh = false
	nb.Accumulators[Black].Fresh = false

	return nb, true
}

// MakeNullMove flips the side to move without moving a piece, used by
// null-move pruning (spec.md §4.6 step 7).
func MakeNullMove(b Board) Board {
	nb := b
	if nb.EnPassant != NoSquare {
		nb.Hash ^= zobristEnPassant[nb.EnPassant.File()]
	}
	nb.EnPassant = NoSquare
	nb.Side = nb.Side.Other()
	nb.Hash ^= zobristSideToMove
	return nb
}

// LegalMoves filters GenerateMoves down to moves that MakeMove accepts.
func LegalMoves(b *Board) []Move {
	pseudo := GenerateMoves(b)
	out := make([]Move, 0, pseudo.Len())
	for _, m := range pseudo.Slice() {
		if _, ok := MakeMove(*b, m); ok {
			out = append(out, m)
		}
	}
	return out
}

// HasLegalMoves reports whether the side to move has any legal move,
// short-circuiting as soon as one is found.
func HasLegalMoves(b *Board) bool {
	pseudo := GenerateMoves(b)
	for _, m := range pseudo.Slice() {
		if _, ok := MakeMove(*b, m); ok {
			return true
		}
	}
	return false
}

// IsCheckmate reports mate: in check with no legal replies.
func IsCheckmate(b *Board) bool { return b.InCheck() && !HasLegalMoves(b) }

// IsStalemate reports stalemate: not in check, no legal replies.
func IsStalemate(b *Board) bool { return !b.InCheck() && !HasLegalMoves(b) }

// IsInsufficientMaterial reports the simple king-vs-king(+minor) draws.
func IsInsufficientMaterial(b *Board) bool {
	if b.Pieces(Pawn, White) != 0 || b.Pieces(Pawn, Black) != 0 {
		return false
	}
	if b.Pieces(Rook, White) != 0 || b.Pieces(Rook, Black) != 0 {
		return false
	}
	if b.Pieces(Queen, White) != 0 || b.Pieces(Queen, Black) != 0 {
		return false
	}
	minors := b.Pieces(Knight, White).PopCount() + b.Pieces(Bishop, White).PopCount() +
		b.Pieces(Knight, Black).PopCount() + b.Pieces(Bishop, Black).PopCount()
	return minors <= 1
}

// IsDraw reports the draws this package can detect without repetition
// tracking (left to the search layer, which sees the full game history).
func IsDraw(b *Board) bool {
	return IsStalemate(b) || IsInsufficientMaterial(b) || b.HalfmoveClock >= 100
}
