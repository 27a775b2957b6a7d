package search

import "github.com/nullmoveai/chesscore/internal/board"

// CorrectionHistorySize entries, indexed by a mixed hash of the position
// key, grounded on internal/engine/correction.go's 2^18-entry table.
const (
	correctionHistorySize = 1 << 18
	correctionHistoryMask = correctionHistorySize - 1
)

// CorrectionHistory tracks how wrong the static evaluator has been for
// positions resembling ones already searched, and nudges future static
// evals toward the search's own verdict. Grounded on
// internal/engine/correction.go's Stockfish-derived gravity update; kept
// as a supplemental enrichment per SPEC_FULL.md §5.6 since spec.md's
// search algorithm is silent on it and it contradicts no step of the
// 13-step Negamax list (it only adjusts the evaluate() call's output).
type CorrectionHistory struct {
	entries [correctionHistorySize]int16
}

// NewCorrectionHistory returns an empty table, one per Searcher.
func NewCorrectionHistory() *CorrectionHistory {
	return &CorrectionHistory{}
}

func (ch *CorrectionHistory) index(hash uint64) int {
	return int((hash ^ (hash >> 18)) & correctionHistoryMask)
}

// Get returns the current correction for b's position, to be added to its
// raw static evaluation.
func (ch *CorrectionHistory) Get(b *board.Board) int {
	return int(ch.entries[ch.index(b.Hash)])
}

// Update records how far a completed search's score diverged from the
// static eval it started from, scaled by depth and damped by a 1/16
// gravity step toward the new target, per the teacher's formula.
func (ch *CorrectionHistory) Update(b *board.Board, searchScore, staticEval, depth int) {
	if depth < 1 {
		return
	}
	bonus := clampMax(clampMin((searchScore-staticEval)*depth/8, -256), 256)
	idx := ch.index(b.Hash)
	old := int(ch.entries[idx])
	updated := old + (bonus-old)/16
	ch.entries[idx] = int16(clampMax(clampMin(updated, -16000), 16000))
}

// Clear zeroes every entry.
func (ch *CorrectionHistory) Clear() {
	for i := range ch.entries {
		ch.entries[i] = 0
	}
}
