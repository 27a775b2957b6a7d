// Package timeman allocates per-move search time from UCI clock
// parameters, per spec.md §4.7.
package timeman

import "time"

// Limits mirrors the UCI go command's time-control fields. Grounded on
// internal/engine/timeman.go's UCILimits.
type Limits struct {
	Time      [2]time.Duration // wtime, btime
	Inc       [2]time.Duration // winc, binc
	MovesToGo int
	MoveTime  time.Duration
	Depth     int
	Nodes     uint64
	Infinite  bool
	Ponder    bool
}

// Manager tracks the deadlines for one search, per spec.md §4.7.
type Manager struct {
	optimal time.Duration
	max     time.Duration
	start   time.Time
}

// Color indexes Limits.Time/Inc; kept local so this package has no
// dependency on internal/board for a single bit of information.
type Color int

const (
	White Color = 0
	Black Color = 1
)

// moveOverhead is the configured UCI "Move Overhead" cushion; callers set
// it via SetMoveOverhead before Start.
var moveOverhead = 10 * time.Millisecond

// SetMoveOverhead configures the time cushion subtracted from the clock
// before any allocation math runs, per spec.md §6's Move Overhead option.
func SetMoveOverhead(d time.Duration) { moveOverhead = d }

// Start computes (optimal, max) per spec.md §4.7 and begins timing.
func Start(limits Limits, us Color) *Manager {
	m := &Manager{start: time.Now()}

	if limits.MoveTime > 0 {
		m.optimal = limits.MoveTime
		m.max = limits.MoveTime
		return m
	}
	if limits.Infinite || limits.Time[us] == 0 {
		m.optimal = time.Hour
		m.max = time.Hour
		return m
	}

	available := limits.Time[us] - moveOverhead
	if available < 0 {
		available = 0
	}

	horizon := limits.MovesToGo
	if horizon == 0 {
		horizon = horizonTier(limits.Time[us])
	}

	base := available / time.Duration(horizon)

	incFraction := limits.Inc[us]
	if limits.Time[us] < 60*time.Second {
		incFraction = incFraction / 2
	}

	optimal := base + incFraction
	if optimal < 50*time.Millisecond && available >= 50*time.Millisecond {
		optimal = 50 * time.Millisecond
	}
	m.optimal = optimal

	var max time.Duration
	if limits.Time[us] < 5*time.Second {
		max = 2 * optimal
	} else {
		max = minDuration(available/10, 5*optimal, available/3)
	}
	m.max = max

	return m
}

// horizonTier picks the number of moves spec.md §4.7 assumes remain,
// scaled by remaining time when movestogo was not given.
func horizonTier(remaining time.Duration) int {
	switch {
	case remaining > 10*time.Minute:
		return 50
	case remaining > 5*time.Minute:
		return 40
	case remaining > 2*time.Minute:
		return 30
	case remaining > 30*time.Second:
		return 20
	default:
		return 15
	}
}

func minDuration(ds ...time.Duration) time.Duration {
	m := ds[0]
	for _, d := range ds[1:] {
		if d < m {
			m = d
		}
	}
	return m
}

// Elapsed returns time spent since Start.
func (m *Manager) Elapsed() time.Duration { return time.Since(m.start) }

// ShouldStop reports whether the search has exceeded its maximum budget,
// per spec.md §4.7/§5's cancellation-check wording.
func (m *Manager) ShouldStop() bool { return m.Elapsed() >= m.max }

// PastOptimal reports whether the search should not start another
// iterative-deepening iteration.
func (m *Manager) PastOptimal() bool { return m.Elapsed() >= m.optimal }

// Optimal and Max expose the computed deadlines, e.g. for UCI diagnostics.
func (m *Manager) Optimal() time.Duration { return m.optimal }
func (m *Manager) Max() time.Duration     { return m.max }

// AdjustForStability shortens the optimal deadline when the best move has
// held steady across consecutive iterations, grounded on
// internal/engine/timeman.go's AdjustForStability — carried forward as a
// supplemental enrichment since spec.md §4.7 does not forbid it and
// §4.6's iterative-deepening driver needs some way to react to a stable
// PV; the thresholds and ratios match the teacher's.
func (m *Manager) AdjustForStability(stability int) {
	switch {
	case stability >= 6:
		m.optimal = m.optimal * 40 / 100
	case stability >= 4:
		m.optimal = m.optimal * 60 / 100
	case stability >= 2:
		m.optimal = m.optimal * 80 / 100
	}
}

// AdjustForInstability lengthens the optimal deadline, capped at max, when
// the best move keeps changing between iterations. Same grounding as
// AdjustForStability.
func (m *Manager) AdjustForInstability(changes int) {
	switch {
	case changes >= 4:
		m.optimal = m.optimal * 200 / 100
	case changes >= 2:
		m.optimal = m.optimal * 150 / 100
	}
	if m.optimal > m.max {
		m.optimal = m.max
	}
}
