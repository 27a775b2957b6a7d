package board

import "fmt"

// Move is a bit-packed pseudo-legal move, grounded on the teacher's
// compact encoding: source (6 bits), target (6 bits), moving piece type
// (3 bits), promotion piece type (3 bits, NoPieceType when none), and a
// flag nibble {capture, double-push, en-passant, castling}.
type Move uint32

const (
	moveFromShift  = 0
	moveToShift    = 6
	movePieceShift = 12
	movePromoShift = 15
	moveFlagShift  = 18

	moveMask6 = 0x3F
	moveMask3 = 0x7

	flagCapture     = 1 << 0
	flagDoublePush  = 1 << 1
	flagEnPassant   = 1 << 2
	flagCastling    = 1 << 3
)

// NewMove builds a plain (possibly capturing) move.
func NewMove(from, to Square, piece PieceType, capture bool) Move {
	m := Move(from)<<moveFromShift | Move(to)<<moveToShift | Move(piece)<<movePieceShift
	m |= Move(int8(NoPieceType)&moveMask3) << movePromoShift
	if capture {
		m |= flagCapture << moveFlagShift
	}
	return m
}

// NewDoublePush builds a two-square pawn push.
func NewDoublePush(from, to Square) Move {
	return NewMove(from, to, Pawn, false) | flagDoublePush<<moveFlagShift
}

// NewPromotion builds a (possibly capturing) promotion move.
func NewPromotion(from, to Square, promo PieceType, capture bool) Move {
	m := NewMove(from, to, Pawn, capture)
	m &^= Move(moveMask3) << movePromoShift
	m |= Move(promo) << movePromoShift
	return m
}

// NewEnPassant builds an en-passant capture.
func NewEnPassant(from, to Square) Move {
	return NewMove(from, to, Pawn, true) | flagEnPassant<<moveFlagShift
}

// NewCastling builds a castling move (king's source/target only; the rook
// move is derived from the target square at make-move time).
func NewCastling(from, to Square) Move {
	return NewMove(from, to, King, false) | flagCastling<<moveFlagShift
}

func (m Move) From() Square       { return Square(m >> moveFromShift & moveMask6) }
func (m Move) To() Square         { return Square(m >> moveToShift & moveMask6) }
func (m Move) Piece() PieceType   { return PieceType(m >> movePieceShift & moveMask3) }
func (m Move) Promotion() PieceType {
	raw := (m >> movePromoShift) & moveMask3
	if raw == moveMask3 {
		return NoPieceType
	}
	return PieceType(raw)
}
func (m Move) IsCapture() bool    { return m>>moveFlagShift&flagCapture != 0 }
func (m Move) IsDoublePush() bool { return m>>moveFlagShift&flagDoublePush != 0 }
func (m Move) IsEnPassant() bool  { return m>>moveFlagShift&flagEnPassant != 0 }
func (m Move) IsCastling() bool   { return m>>moveFlagShift&flagCastling != 0 }
func (m Move) IsPromotion() bool  { return m.Promotion() != NoPieceType }

// SameCoordinates reports whether two moves share source, target and
// promotion piece, per spec.md §4.5's looser TT-move/killer comparison
// that ignores the moving piece and the flag nibble.
func (m Move) SameCoordinates(o Move) bool {
	return m.From() == o.From() && m.To() == o.To() && m.Promotion() == o.Promotion()
}

var promoLetters = [6]byte{0, 'n', 'b', 'r', 'q', 0}

func (m Move) String() string {
	if m.IsPromotion() {
		return fmt.Sprintf("%s%s%c", m.From(), m.To(), promoLetters[m.Promotion()])
	}
	return fmt.Sprintf("%s%s", m.From(), m.To())
}

const NoMove Move = 0

// MoveList is a fixed-capacity move buffer, avoiding per-node heap churn in
// the hot move-generation path.
type MoveList struct {
	moves [218]Move
	n     int
}

func (l *MoveList) Add(m Move)      { l.moves[l.n] = m; l.n++ }
func (l *MoveList) Len() int         { return l.n }
func (l *MoveList) At(i int) Move    { return l.moves[i] }
func (l *MoveList) Set(i int, m Move) { l.moves[i] = m }
func (l *MoveList) Slice() []Move    { return l.moves[:l.n] }
