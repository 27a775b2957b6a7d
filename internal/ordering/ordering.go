// Package ordering scores and sorts candidate moves for the search core,
// per spec.md §4.5's literal priority table and killer/history/counter-move
// heuristics.
package ordering

import "github.com/nullmoveai/chesscore/internal/board"

// Score constants, per spec.md §4.5's move-class table.
const (
	ttMoveScore      = 20000
	counterMoveScore = 15000
	mvvLvaBase       = 10000
	killer1Score     = 9000
	killer2Score     = 8000
	historyClamp     = 10000
)

const maxPly = 128

// Orderer carries the per-search-thread tables spec.md §5 requires to be
// thread-local: killers, history, and counter-moves. Grounded on
// internal/engine/ordering.go's MoveOrderer, trimmed to exactly the tables
// spec.md §4.5 names (no capture-history/countermove-history enrichment —
// those are teacher-only additions this spec does not call for) and
// switched from the teacher's [from][to]-indexed history table to spec.md's
// [piece][to] indexing.
type Orderer struct {
	killers      [maxPly][2]board.Move
	history      [12][64]int
	counterMoves [12][64]board.Move
}

// New returns a fresh Orderer with empty tables.
func New() *Orderer { return &Orderer{} }

// Clear resets killers and counter-moves and ages history scores by 0.9,
// per spec.md §4.5's "age by multiplying by 0.9 between searches".
func (o *Orderer) Clear() {
	for i := range o.killers {
		o.killers[i][0] = board.NoMove
		o.killers[i][1] = board.NoMove
	}
	for i := range o.counterMoves {
		for j := range o.counterMoves[i] {
			o.counterMoves[i][j] = board.NoMove
		}
	}
	for p := range o.history {
		for sq := range o.history[p] {
			o.history[p][sq] = o.history[p][sq] * 9 / 10
		}
	}
}

// Score computes the spec.md §4.5 ordering score for move m, given the TT
// move for this node and the previous move's piece and target square
// (prevPiece, prevTo), which select the counter-move to compare against.
func (o *Orderer) Score(b *board.Board, m, ttMove board.Move, ply int, prevPiece board.Piece, prevTo board.Square) int {
	if m.SameCoordinates(ttMove) {
		return ttMoveScore
	}

	counter := o.GetCounterMove(prevPiece, prevTo)
	score := 0
	switch {
	case counter != board.NoMove && m.SameCoordinates(counter):
		score = counterMoveScore
	case m.IsCapture():
		score = mvvLvaBase + captureGain(b, m)
	case m.SameCoordinates(o.killers[ply][0]):
		score = killer1Score
	case m.SameCoordinates(o.killers[ply][1]):
		score = killer2Score
	default:
		piece := b.PieceAt(m.From())
		score = clampHistory(o.history[piece][m.To()])
	}

	if m.IsPromotion() {
		score += board.PieceValue[m.Promotion()]
	}
	return score
}

func captureGain(b *board.Board, m board.Move) int {
	attacker := b.PieceAt(m.From())
	var victimType board.PieceType
	if m.IsEnPassant() {
		victimType = board.Pawn
	} else {
		victimType = b.PieceAt(m.To()).Type()
	}
	return board.PieceValue[victimType] - board.PieceValue[attacker.Type()]
}

func clampHistory(v int) int {
	if v > historyClamp {
		return historyClamp
	}
	if v < -historyClamp {
		return -historyClamp
	}
	return v
}

// ScoreAll scores every move in moves, returning a parallel slice of scores
// suitable for SortMoves.
func (o *Orderer) ScoreAll(b *board.Board, moves []board.Move, ttMove board.Move, ply int, prevPiece board.Piece, prevTo board.Square) []int {
	scores := make([]int, len(moves))
	for i, m := range moves {
		scores[i] = o.Score(b, m, ttMove, ply, prevPiece, prevTo)
	}
	return scores
}

// SortMoves sorts moves descending by score with an insertion sort, stable
// on ties (original order), per spec.md §4.5 ("lists are short... tie
// breaking is by original order").
func SortMoves(moves []board.Move, scores []int) {
	for i := 1; i < len(moves); i++ {
		m, s := moves[i], scores[i]
		j := i - 1
		for j >= 0 && scores[j] < s {
			moves[j+1] = moves[j]
			scores[j+1] = scores[j]
			j--
		}
		moves[j+1] = m
		scores[j+1] = s
	}
}

// UpdateKillers installs m as the primary killer at ply, demoting the
// previous primary to secondary, per spec.md §4.5 — unless m is already
// the primary killer, in which case nothing changes.
func (o *Orderer) UpdateKillers(m board.Move, ply int) {
	if ply >= maxPly {
		return
	}
	if o.killers[ply][0].SameCoordinates(m) {
		return
	}
	o.killers[ply][1] = o.killers[ply][0]
	o.killers[ply][0] = m
}

// UpdateHistory adds depth² to the cutoff-causing quiet move's history
// entry and subtracts depth² from every quiet move that was searched
// before it without causing a cutoff, per spec.md §4.5, clamped to
// ±10000.
func (o *Orderer) UpdateHistory(b *board.Board, cutoffMove board.Move, quietsSearched []board.Move, depth int) {
	bonus := depth * depth
	for _, m := range quietsSearched {
		piece := b.PieceAt(m.From())
		if m.SameCoordinates(cutoffMove) {
			o.history[piece][m.To()] = clampHistory(o.history[piece][m.To()] + bonus)
		} else {
			o.history[piece][m.To()] = clampHistory(o.history[piece][m.To()] - bonus)
		}
	}
}

// UpdateCounterMove records m as the counter-move for (prevPiece, prevTo),
// overwriting any previous entry, per spec.md §4.5.
func (o *Orderer) UpdateCounterMove(prevPiece board.Piece, prevTo board.Square, m board.Move) {
	if prevPiece == board.NoPiece {
		return
	}
	o.counterMoves[prevPiece][prevTo] = m
}

// GetCounterMove returns the recorded counter-move for (prevPiece, prevTo),
// or board.NoMove if none.
func (o *Orderer) GetCounterMove(prevPiece board.Piece, prevTo board.Square) board.Move {
	if prevPiece == board.NoPiece {
		return board.NoMove
	}
	return o.counterMoves[prevPiece][prevTo]
}
