package timeman

import (
	"testing"
	"time"
)

func TestFixedMoveTimeIgnoresClock(t *testing.T) {
	SetMoveOverhead(10 * time.Millisecond)
	m := Start(Limits{MoveTime: 500 * time.Millisecond, Time: [2]time.Duration{time.Minute, time.Minute}}, White)
	if m.Optimal() != 500*time.Millisecond || m.Max() != 500*time.Millisecond {
		t.Errorf("optimal=%v max=%v, want both 500ms", m.Optimal(), m.Max())
	}
}

func TestInfiniteUsesLongDeadline(t *testing.T) {
	SetMoveOverhead(10 * time.Millisecond)
	m := Start(Limits{Infinite: true}, White)
	if m.Max() < time.Minute {
		t.Errorf("infinite search max = %v, want a long deadline", m.Max())
	}
}

func TestAvailableSubtractsOverhead(t *testing.T) {
	SetMoveOverhead(100 * time.Millisecond)
	defer SetMoveOverhead(10 * time.Millisecond)

	m := Start(Limits{Time: [2]time.Duration{20 * time.Second, 20 * time.Second}, MovesToGo: 20}, White)
	// available = 19900ms, base = available/20 ≈ 995ms.
	if m.Optimal() < 900*time.Millisecond || m.Optimal() > 1100*time.Millisecond {
		t.Errorf("optimal = %v, want roughly 995ms", m.Optimal())
	}
}

func TestMaxBoundedByAvailableOverTen(t *testing.T) {
	SetMoveOverhead(0)
	m := Start(Limits{Time: [2]time.Duration{60 * time.Second, 60 * time.Second}, MovesToGo: 1}, White)
	// base = 60s, optimal ~= 60s, but max must not exceed available/10 = 6s.
	if m.Max() > 6*time.Second+10*time.Millisecond {
		t.Errorf("max = %v, want <= ~6s (available/10)", m.Max())
	}
}

func TestUnderFiveSecondsDoublesOptimal(t *testing.T) {
	SetMoveOverhead(0)
	m := Start(Limits{Time: [2]time.Duration{3 * time.Second, 3 * time.Second}, MovesToGo: 10}, White)
	want := 2 * m.Optimal()
	if m.Max() != want {
		t.Errorf("max = %v, want 2*optimal = %v", m.Max(), want)
	}
}

func TestHorizonTiersDecreaseWithRemainingTime(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      int
	}{
		{20 * time.Minute, 50},
		{7 * time.Minute, 40},
		{3 * time.Minute, 30},
		{1 * time.Minute, 20},
		{10 * time.Second, 15},
	}
	for _, c := range cases {
		if got := horizonTier(c.remaining); got != c.want {
			t.Errorf("horizonTier(%v) = %d, want %d", c.remaining, got, c.want)
		}
	}
}

func TestShouldStopAfterMaxElapsed(t *testing.T) {
	SetMoveOverhead(0)
	m := Start(Limits{MoveTime: 1 * time.Millisecond}, White)
	time.Sleep(5 * time.Millisecond)
	if !m.ShouldStop() {
		t.Errorf("expected ShouldStop to be true after max elapsed")
	}
}

func TestStabilityAdjustmentShrinksOptimal(t *testing.T) {
	SetMoveOverhead(0)
	m := Start(Limits{Time: [2]time.Duration{60 * time.Second, 60 * time.Second}, MovesToGo: 20}, White)
	before := m.Optimal()
	m.AdjustForStability(6)
	if m.Optimal() != before*40/100 {
		t.Errorf("stable optimal = %v, want %v", m.Optimal(), before*40/100)
	}
}

func TestInstabilityAdjustmentCapsAtMax(t *testing.T) {
	SetMoveOverhead(0)
	m := Start(Limits{Time: [2]time.Duration{60 * time.Second, 60 * time.Second}, MovesToGo: 20}, White)
	m.AdjustForInstability(10)
	if m.Optimal() > m.Max() {
		t.Errorf("optimal %v exceeds max %v after instability adjustment", m.Optimal(), m.Max())
	}
}
