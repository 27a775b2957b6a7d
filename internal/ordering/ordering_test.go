package ordering

import (
	"testing"

	"github.com/nullmoveai/chesscore/internal/board"
)

func TestTTMoveScoresHighest(t *testing.T) {
	b := board.NewStartingBoard()
	o := New()
	tt := board.NewMove(board.SquareE2, board.SquareE4, board.Pawn, false)
	other := board.NewMove(board.SquareD2, board.SquareD4, board.Pawn, false)

	if got := o.Score(&b, tt, tt, 0, board.NoPiece, 0); got != ttMoveScore {
		t.Errorf("TT move score = %d, want %d", got, ttMoveScore)
	}
	if got := o.Score(&b, other, tt, 0, board.NoPiece, 0); got == ttMoveScore {
		t.Errorf("non-TT move should not score %d", ttMoveScore)
	}
}

func TestCounterMoveOutscoresQuiet(t *testing.T) {
	b := board.NewStartingBoard()
	o := New()
	prevPiece := board.NewPiece(board.Knight, board.Black)
	prevTo := board.SquareC6
	counter := board.NewMove(board.SquareD2, board.SquareD4, board.Pawn, false)
	quiet := board.NewMove(board.SquareA2, board.SquareA4, board.Pawn, false)

	o.UpdateCounterMove(prevPiece, prevTo, counter)

	got := o.Score(&b, counter, board.NoMove, 0, prevPiece, prevTo)
	if got != counterMoveScore {
		t.Errorf("counter-move score = %d, want %d", got, counterMoveScore)
	}
	if q := o.Score(&b, quiet, board.NoMove, 0, prevPiece, prevTo); q >= counterMoveScore {
		t.Errorf("quiet move score %d should be below counter-move score %d", q, counterMoveScore)
	}
}

func TestCaptureScoreUsesMVVLVA(t *testing.T) {
	// A white pawn e4 capturing a black knight on d5: victim=320, attacker=100.
	fen := "rnbqkbnr/ppp1pppp/8/3n4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 1"
	b, err := board.FromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	o := New()
	capture := board.NewMove(board.SquareE4, board.SquareD5, board.Pawn, true)

	got := o.Score(&b, capture, board.NoMove, 0, board.NoPiece, 0)
	want := mvvLvaBase + (320 - 100)
	if got != want {
		t.Errorf("capture score = %d, want %d", got, want)
	}
}

func TestKillerSlotsScorePrimaryAboveDemotedSecondary(t *testing.T) {
	b := board.NewStartingBoard()
	o := New()
	k1 := board.NewMove(board.SquareG1, board.SquareF3, board.Knight, false)
	k2 := board.NewMove(board.SquareB1, board.SquareC3, board.Knight, false)
	o.UpdateKillers(k1, 3)
	o.UpdateKillers(k2, 3)

	// k2 is now primary (most recently installed and not already primary),
	// k1 demoted to secondary.
	if got := o.Score(&b, k2, board.NoMove, 3, board.NoPiece, 0); got != killer1Score {
		t.Errorf("most recent killer score = %d, want %d", got, killer1Score)
	}
	if got := o.Score(&b, k1, board.NoMove, 3, board.NoPiece, 0); got != killer2Score {
		t.Errorf("demoted killer score = %d, want %d", got, killer2Score)
	}
}

func TestQuietMoveUsesClampedHistory(t *testing.T) {
	b := board.NewStartingBoard()
	o := New()
	m := board.NewMove(board.SquareA2, board.SquareA3, board.Pawn, false)

	// Push history for this (piece,to) well past the clamp via repeated
	// large cutoff bonuses.
	for i := 0; i < 50; i++ {
		o.UpdateHistory(&b, m, []board.Move{m}, 20)
	}

	got := o.Score(&b, m, board.NoMove, 0, board.NoPiece, 0)
	if got != historyClamp {
		t.Errorf("history score = %d, want clamp at %d", got, historyClamp)
	}
}

func TestHistoryPenalizesNonCutoffQuiets(t *testing.T) {
	b := board.NewStartingBoard()
	o := New()
	cutoff := board.NewMove(board.SquareA2, board.SquareA3, board.Pawn, false)
	other := board.NewMove(board.SquareB2, board.SquareB3, board.Pawn, false)

	o.UpdateHistory(&b, cutoff, []board.Move{other, cutoff}, 4)

	cutoffScore := o.Score(&b, cutoff, board.NoMove, 0, board.NoPiece, 0)
	otherScore := o.Score(&b, other, board.NoMove, 0, board.NoPiece, 0)
	if cutoffScore <= 0 {
		t.Errorf("cutoff move history = %d, want positive", cutoffScore)
	}
	if otherScore >= 0 {
		t.Errorf("non-cutoff quiet history = %d, want negative", otherScore)
	}
}

func TestClearAgesHistoryByNinetyPercent(t *testing.T) {
	b := board.NewStartingBoard()
	o := New()
	m := board.NewMove(board.SquareA2, board.SquareA3, board.Pawn, false)
	o.UpdateHistory(&b, m, []board.Move{m}, 10) // +100

	before := o.Score(&b, m, board.NoMove, 0, board.NoPiece, 0)
	o.Clear()
	after := o.Score(&b, m, board.NoMove, 0, board.NoPiece, 0)

	if after != before*9/10 {
		t.Errorf("after Clear, history = %d, want %d (90%% of %d)", after, before*9/10, before)
	}
}

func TestClearResetsKillersAndCounterMoves(t *testing.T) {
	b := board.NewStartingBoard()
	o := New()
	k := board.NewMove(board.SquareG1, board.SquareF3, board.Knight, false)
	o.UpdateKillers(k, 2)
	o.UpdateCounterMove(board.NewPiece(board.Pawn, board.Black), board.SquareE5, k)

	o.Clear()

	if got := o.Score(&b, k, board.NoMove, 2, board.NoPiece, 0); got == killer1Score {
		t.Errorf("killer should be cleared")
	}
	if got := o.GetCounterMove(board.NewPiece(board.Pawn, board.Black), board.SquareE5); got != board.NoMove {
		t.Errorf("counter-move should be cleared, got %v", got)
	}
}

func TestPromotionAddsPromotedPieceValue(t *testing.T) {
	fen := "8/P7/8/8/8/8/8/4K2k w - - 0 1"
	b, err := board.FromFEN(fen)
	if err != nil {
		t.Fatal(err)
	}
	o := New()
	promo := board.NewPromotion(board.SquareA7, board.SquareA8, board.Queen, false)
	plain := board.NewMove(board.SquareE1, board.SquareE2, board.King, false)

	promoScore := o.Score(&b, promo, board.NoMove, 0, board.NoPiece, 0)
	plainScore := o.Score(&b, plain, board.NoMove, 0, board.NoPiece, 0)

	if promoScore-plainScore != board.PieceValue[board.Queen] {
		t.Errorf("promotion bonus = %d, want %d", promoScore-plainScore, board.PieceValue[board.Queen])
	}
}

func TestSortMovesStableOnTies(t *testing.T) {
	moves := []board.Move{
		board.NewMove(board.SquareA2, board.SquareA3, board.Pawn, false),
		board.NewMove(board.SquareB2, board.SquareB3, board.Pawn, false),
		board.NewMove(board.SquareC2, board.SquareC3, board.Pawn, false),
	}
	scores := []int{5, 5, 5}
	SortMoves(moves, scores)

	want := []board.Move{
		board.NewMove(board.SquareA2, board.SquareA3, board.Pawn, false),
		board.NewMove(board.SquareB2, board.SquareB3, board.Pawn, false),
		board.NewMove(board.SquareC2, board.SquareC3, board.Pawn, false),
	}
	for i := range want {
		if moves[i] != want[i] {
			t.Errorf("tie-broken order changed at %d: got %v, want %v", i, moves[i], want[i])
		}
	}
}

func TestSortMovesDescending(t *testing.T) {
	moves := []board.Move{
		board.NewMove(board.SquareA2, board.SquareA3, board.Pawn, false),
		board.NewMove(board.SquareB2, board.SquareB3, board.Pawn, false),
		board.NewMove(board.SquareC2, board.SquareC3, board.Pawn, false),
	}
	scores := []int{1, 9000, 500}
	SortMoves(moves, scores)

	if scores[0] != 9000 || scores[1] != 500 || scores[2] != 1 {
		t.Errorf("scores not sorted descending: %v", scores)
	}
	if moves[0] != board.NewMove(board.SquareB2, board.SquareB3, board.Pawn, false) {
		t.Errorf("highest-scoring move not first: %v", moves[0])
	}
}
