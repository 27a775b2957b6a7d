package board

import "fmt"

// Color is white or black.
type Color int8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is the kind of piece, independent of color.
type PieceType int8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = -1
)

// PieceValue gives the classical material value in centipawns, indexed by PieceType.
var PieceValue = [6]int{100, 320, 330, 500, 900, 20000}

// Piece is the 0..11 code from spec.md §3: 0..5 white P,N,B,R,Q,K, 6..11 black.
// NoPiece is -1, matching the mailbox's empty marker.
type Piece int8

const NoPiece Piece = -1

// NewPiece builds the 0..11 code for a (type,color) pair.
func NewPiece(pt PieceType, c Color) Piece {
	return Piece(int8(pt) + int8(c)*6)
}

// Type extracts the piece type.
func (p Piece) Type() PieceType {
	if p == NoPiece {
		return NoPieceType
	}
	return PieceType(int8(p) % 6)
}

// Color extracts the piece color.
func (p Piece) Color() Color {
	if p == NoPiece {
		return White
	}
	return Color(int8(p) / 6)
}

// Value returns the piece's material value, 0 for NoPiece.
func (p Piece) Value() int {
	if p == NoPiece {
		return 0
	}
	return PieceValue[p.Type()]
}

var pieceLetters = [6]byte{'p', 'n', 'b', 'r', 'q', 'k'}

// String renders the piece as a FEN letter (uppercase for white).
func (p Piece) String() string {
	if p == NoPiece {
		return "."
	}
	letter := pieceLetters[p.Type()]
	if p.Color() == White {
		letter -= 'a' - 'A'
	}
	return string(letter)
}

// PieceFromChar parses a FEN piece letter into a Piece.
func PieceFromChar(ch byte) (Piece, error) {
	color := White
	lower := ch
	if ch >= 'a' && ch <= 'z' {
		color = Black
	} else {
		lower = ch + ('a' - 'A')
	}
	for i, l := range pieceLetters {
		if l == lower {
			return NewPiece(PieceType(i), color), nil
		}
	}
	return NoPiece, fmt.Errorf("board: invalid piece letter %q", ch)
}
