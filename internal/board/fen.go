package board

import (
	"fmt"
	"strconv"
	"strings"
)

// FromFEN parses a standard six-field FEN string into a Board.
func FromFEN(fen string) (Board, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return Board{}, fmt.Errorf("board: FEN needs at least 4 fields, got %d", len(fields))
	}

	var b Board
	for i := range b.mailbox {
		b.mailbox[i] = NoPiece
	}
	b.EnPassant = NoSquare

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Board{}, fmt.Errorf("board: FEN piece field needs 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			p, err := PieceFromChar(byte(ch))
			if err != nil {
				return Board{}, err
			}
			if file > 7 {
				return Board{}, fmt.Errorf("board: FEN rank %d overflows", rank+1)
			}
			b.setPiece(NewSquare(file, rank), p)
			file++
		}
	}

	switch fields[1] {
	case "w":
		b.Side = White
	case "b":
		b.Side = Black
		b.Hash ^= zobristSideToMove
	default:
		return Board{}, fmt.Errorf("board: invalid side-to-move %q", fields[1])
	}

	for _, ch := range fields[2] {
		switch ch {
		case 'K':
			b.Castle |= WhiteKingside
		case 'Q':
			b.Castle |= WhiteQueenside
		case 'k':
			b.Castle |= BlackKingside
		case 'q':
			b.Castle |= BlackQueenside
		case '-':
		default:
			return Board{}, fmt.Errorf("board: invalid castling field %q", fields[2])
		}
	}
	b.Hash ^= zobristCastling[b.Castle]

	ep, err := ParseSquare(fields[3])
	if err != nil {
		return Board{}, err
	}
	b.EnPassant = ep
	if ep != NoSquare {
		b.Hash ^= zobristEnPassant[ep.File()]
	}

	b.HalfmoveClock = 0
	b.FullmoveNumber = 1
	if len(fields) >= 5 {
		if v, err := strconv.Atoi(fields[4]); err == nil {
			b.HalfmoveClock = v
		}
	}
	if len(fields) >= 6 {
		if v, err := strconv.Atoi(fields[5]); err == nil {
			b.FullmoveNumber = v
		}
	}

	b.updateOccupied()
	return b, nil
}

// ToFEN serializes the board back to a FEN string.
func (b *Board) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.PieceAt(NewSquare(file, rank))
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	if b.Side == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	if b.Castle == 0 {
		sb.WriteByte('-')
	} else {
		if b.Castle.Has(WhiteKingside) {
			sb.WriteByte('K')
		}
		if b.Castle.Has(WhiteQueenside) {
			sb.WriteByte('Q')
		}
		if b.Castle.Has(BlackKingside) {
			sb.WriteByte('k')
		}
		if b.Castle.Has(BlackQueenside) {
			sb.WriteByte('q')
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(b.EnPassant.String())
	fmt.Fprintf(&sb, " %d %d", b.HalfmoveClock, b.FullmoveNumber)
	return sb.String()
}
