package search

import "github.com/nullmoveai/chesscore/internal/board"

// PawnEntry caches one pawn structure's tapered score, keyed by
// pawnOnlyKey's hash of both sides' pawn bitboards.
type PawnEntry struct {
	Key     uint64
	MgScore int16
	EgScore int16
}

// PawnTable caches pawn-structure scores across calls with an identical
// pawn skeleton, grounded on internal/engine/pawnhash.go's fixed-size,
// direct-mapped hash table (no replacement policy beyond last-write-wins,
// matching the teacher's).
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnTable sizes a table to sizeMB, rounding down to a power of two
// entries (12 bytes each), per the teacher's NewPawnTable.
func NewPawnTable(sizeMB int) *PawnTable {
	const entrySize = 12
	want := (sizeMB * 1024 * 1024) / entrySize
	size := 1
	for size*2 <= want {
		size *= 2
	}
	return &PawnTable{entries: make([]PawnEntry, size), mask: uint64(size - 1)}
}

// Probe returns a cached tapered score for key, if present.
func (pt *PawnTable) Probe(key uint64) (mg, eg int, found bool) {
	e := &pt.entries[key&pt.mask]
	if e.Key == key {
		return int(e.MgScore), int(e.EgScore), true
	}
	return 0, 0, false
}

// Store records a tapered score for key, overwriting whatever occupied the
// slot.
func (pt *PawnTable) Store(key uint64, mg, eg int) {
	e := &pt.entries[key&pt.mask]
	*e = PawnEntry{Key: key, MgScore: int16(mg), EgScore: int16(eg)}
}

// Clear empties every slot.
func (pt *PawnTable) Clear() {
	for i := range pt.entries {
		pt.entries[i] = PawnEntry{}
	}
}

// pawnStructureScore evaluates doubled, isolated, and passed pawns from
// White's perspective (positive favors White), grounded on
// internal/engine/eval.go's evaluatePawnStructure, narrowed to these three
// terms — the teacher's additional backward-pawn penalty depends on a
// PawnAttacks helper this module's board package doesn't expose, and
// SPEC_FULL.md §5.6 treats this whole term as an enrichment beyond the
// spec's floor rather than a literal requirement, so the narrower three-
// term version is adopted instead of porting a new attack helper just to
// match the teacher exactly.
func pawnStructureScore(b *board.Board) (mg, eg int) {
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		own := b.Pieces(board.Pawn, c)
		enemy := b.Pieces(board.Pawn, c.Other())
		all := own

		pawns := own
		for pawns != 0 {
			sq := pawns.PopLSB()
			file := sq.File()
			fileMask := fileBB(file)

			if (all & fileMask).PopCount() > 1 {
				mg += sign * doubledPawnMg
				eg += sign * doubledPawnEg
			}

			var adjacent board.Bitboard
			if file > 0 {
				adjacent |= fileBB(file - 1)
			}
			if file < 7 {
				adjacent |= fileBB(file + 1)
			}
			if (all & adjacent) == 0 {
				mg += sign * isolatedPawnMg
				eg += sign * isolatedPawnEg
			}

			if isPassedPawn(sq, c, enemy) {
				relRank := sq.RelativeRank(c)
				mg += sign * passedPawnMg[relRank]
				eg += sign * passedPawnEg[relRank]
			}
		}
	}
	return mg, eg
}

func fileBB(file int) board.Bitboard {
	return board.FileA << uint(file)
}

// isPassedPawn reports whether sq (owned by c) has no enemy pawn on its own
// file or an adjacent file at or ahead of its rank.
func isPassedPawn(sq board.Square, c board.Color, enemyPawns board.Bitboard) bool {
	file := sq.File()
	var files board.Bitboard
	for f := file - 1; f <= file+1; f++ {
		if f < 0 || f > 7 {
			continue
		}
		files |= fileBB(f)
	}

	ahead := enemyPawns & files
	for ahead != 0 {
		other := ahead.PopLSB()
		if c == board.White {
			if other.Rank() > sq.Rank() {
				return false
			}
		} else if other.Rank() < sq.Rank() {
			return false
		}
	}
	return true
}

const (
	doubledPawnMg  = -10
	doubledPawnEg  = -20
	isolatedPawnMg = -8
	isolatedPawnEg = -15
)

// passedPawnMg/Eg are indexed by RelativeRank (0 = own back rank, 7 = about
// to promote), matching the teacher's rank-scaled passed-pawn bonus shape.
var passedPawnMg = [8]int{0, 0, 5, 10, 20, 35, 55, 0}
var passedPawnEg = [8]int{0, 5, 10, 20, 35, 55, 80, 0}

// pawnStructureWithCache memoizes pawnStructureScore per pawn skeleton,
// grounded on the teacher's evaluatePawnStructureWithCache.
func pawnStructureWithCache(b *board.Board, pt *PawnTable) (mg, eg int) {
	key := pawnOnlyKey(b)
	if pt != nil {
		if cmg, ceg, ok := pt.Probe(key); ok {
			return cmg, ceg
		}
	}
	mg, eg = pawnStructureScore(b)
	if pt != nil {
		pt.Store(key, mg, eg)
	}
	return mg, eg
}

// pawnOnlyKey folds both sides' pawn bitboards into one cache key. It need
// not be a true incremental Zobrist key (board.Board carries no separate
// pawn-only hash) — collisions only cost a stale cache hit, never
// correctness, since the table is pure memoization with no fallback on
// miss beyond recomputation.
func pawnOnlyKey(b *board.Board) uint64 {
	white := uint64(b.Pieces(board.Pawn, board.White))
	black := uint64(b.Pieces(board.Pawn, board.Black))
	return white*0x9E3779B97F4A7C15 ^ black
}
