// Package engine wires the independently-testable cores — board, nnue, tt,
// ordering, search, timeman — into the single object spec.md §6 describes
// as the UCI layer's external collaborator: one that accepts a position,
// a time control, and produces bestmove/info output. It owns every piece
// of process-wide mutable state spec.md §5 names (the shared TT, the
// cancellation flag, the loaded NNUE network) and hands out fresh,
// thread-local search.Searcher values per spec.md §4.8.
//
// Grounded on internal/engine/engine.go's Engine/SearchLimits/SearchInfo
// shape, generalized from the teacher's single-threaded Easy/Medium/Hard
// difficulty ladder to spec.md §6's UCI option table (Hash, Threads,
// MultiPV, Move Overhead, Ponder, EvalFile) and §4.8's lazy-SMP driver.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nullmoveai/chesscore/internal/board"
	"github.com/nullmoveai/chesscore/internal/nnue"
	"github.com/nullmoveai/chesscore/internal/search"
	"github.com/nullmoveai/chesscore/internal/timeman"
	"github.com/nullmoveai/chesscore/internal/tt"
)

// DefaultEvalFile is the UCI EvalFile option's default, per spec.md §6.
const DefaultEvalFile = "nn-c0ae49f08b40.nnue"

// Options mirrors spec.md §6's UCI option table. Values are validated and
// clamped to their documented ranges by SetOption; callers reading Options
// directly (e.g. for the `uci` command's option lines) get the last
// accepted configuration.
type Options struct {
	HashMB       int           // Hash: 1..1024 MB
	EvalFile     string        // EvalFile: path, reloads NNUE on change
	MoveOverhead time.Duration // Move Overhead: 0..5000 ms
	MultiPV      int           // MultiPV: 1..500
	Ponder       bool          // Ponder: enables pondering
	Threads      int           // Threads: 1..512
}

// DefaultOptions returns spec.md §6's documented defaults.
func DefaultOptions() Options {
	return Options{
		HashMB:       64,
		EvalFile:     DefaultEvalFile,
		MoveOverhead: 10 * time.Millisecond,
		MultiPV:      1,
		Ponder:       false,
		Threads:      1,
	}
}

// OptionSpec describes one UCI option for the `uci` command's output lines.
type OptionSpec struct {
	Name    string
	Type    string // "spin", "check", "string"
	Default string
	Min     int
	Max     int
}

// OptionSpecs lists spec.md §6's UCI option table in declaration order.
func OptionSpecs() []OptionSpec {
	return []OptionSpec{
		{Name: "Hash", Type: "spin", Default: "64", Min: 1, Max: 1024},
		{Name: "EvalFile", Type: "string", Default: DefaultEvalFile},
		{Name: "Move Overhead", Type: "spin", Default: "10", Min: 0, Max: 5000},
		{Name: "MultiPV", Type: "spin", Default: "1", Min: 1, Max: 500},
		{Name: "Ponder", Type: "check", Default: "false"},
		{Name: "Threads", Type: "spin", Default: "1", Min: 1, Max: 512},
	}
}

// Limits is the parsed form of a UCI `go` command, handed to Search.
type Limits = timeman.Limits

// Info is re-exported so callers outside internal/search never need to
// import it directly.
type Info = search.Info

// Result is the outcome of one Search call.
type Result = search.RootResult

// Engine owns the cross-search state: the shared transposition table, the
// loaded (or fallback) NNUE evaluator, the current option values, and the
// single cancellation flag spec.md §5 requires. Everything else — killers,
// history, counter-moves, PV buffers, node counts — lives inside the
// per-thread search.Searcher values RunParallel creates fresh for every
// Search call.
type Engine struct {
	opts Options
	log  *slog.Logger

	table *tt.Table
	eval  *nnue.Evaluator
	cache *nnue.FileCache

	stop   atomic.Bool
	ponder atomic.Bool

	// searchMu guards the fields a concurrent Ponderhit needs to reinstate
	// deadlines for a search that started in ponder mode (tm left nil
	// because deadlines were suppressed), per spec.md §5's ponder/
	// ponderhit distinction.
	searchMu     sync.Mutex
	tm           *timeman.Manager
	activeLimits Limits
	activeSide   timeman.Color
	watchdogDone chan struct{}
}

// New constructs an Engine with the given options (zero-value fields are
// replaced by spec.md §6's defaults) and an optional cache directory for
// NNUE file decoding (empty disables the cache, per spec.md §9 — caching
// is a performance optimization, never a correctness requirement).
func New(opts Options, cacheDir string, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	defaults := DefaultOptions()
	if opts.HashMB <= 0 {
		opts.HashMB = defaults.HashMB
	}
	if opts.EvalFile == "" {
		opts.EvalFile = defaults.EvalFile
	}
	if opts.MoveOverhead <= 0 {
		opts.MoveOverhead = defaults.MoveOverhead
	}
	if opts.MultiPV <= 0 {
		opts.MultiPV = defaults.MultiPV
	}
	if opts.Threads <= 0 {
		opts.Threads = defaults.Threads
	}

	e := &Engine{
		opts:  opts,
		log:   log,
		table: tt.New(opts.HashMB),
	}

	if cacheDir != "" {
		cache, err := nnue.OpenFileCache(cacheDir)
		if err != nil {
			log.Warn("engine: NNUE file cache unavailable", "dir", cacheDir, "error", err)
		} else {
			e.cache = cache
		}
	}

	e.eval = nnue.NewEvaluator(opts.EvalFile, e.cache, log)
	timeman.SetMoveOverhead(opts.MoveOverhead)
	return e, nil
}

// Close releases the NNUE file cache's resources, if one was opened.
func (e *Engine) Close() error {
	if e.cache != nil {
		return e.cache.Close()
	}
	return nil
}

// Options returns the engine's current option values.
func (e *Engine) Options() Options { return e.opts }

// Initialized reports whether a real NNUE network is loaded, as opposed to
// the classical fallback evaluator.
func (e *Engine) Initialized() bool { return e.eval.Initialized() }

// SetOption applies one UCI `setoption` command, per spec.md §6's table.
// Unknown option names are silently ignored, matching real UCI engines'
// tolerance of GUI-sent options they don't implement.
func (e *Engine) SetOption(name, value string) error {
	switch name {
	case "Hash":
		mb, err := parseIntClamped(value, 1, 1024)
		if err != nil {
			return fmt.Errorf("engine: Hash: %w", err)
		}
		e.opts.HashMB = mb
		e.table = tt.New(mb)
		e.log.Info("engine: hash table resized", "mb", mb)
	case "EvalFile":
		e.opts.EvalFile = value
		e.eval = nnue.NewEvaluator(value, e.cache, e.log)
		if !e.eval.Initialized() {
			e.log.Warn("engine: EvalFile did not load, using classical fallback", "path", value)
		}
	case "Move Overhead":
		ms, err := parseIntClamped(value, 0, 5000)
		if err != nil {
			return fmt.Errorf("engine: Move Overhead: %w", err)
		}
		e.opts.MoveOverhead = time.Duration(ms) * time.Millisecond
		timeman.SetMoveOverhead(e.opts.MoveOverhead)
	case "MultiPV":
		n, err := parseIntClamped(value, 1, 500)
		if err != nil {
			return fmt.Errorf("engine: MultiPV: %w", err)
		}
		e.opts.MultiPV = n
	case "Ponder":
		e.opts.Ponder = value == "true"
	case "Threads":
		n, err := parseIntClamped(value, 1, 512)
		if err != nil {
			return fmt.Errorf("engine: Threads: %w", err)
		}
		e.opts.Threads = n
	}
	return nil
}

func parseIntClamped(s string, lo, hi int) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	return n, nil
}

// NewGame resets cross-game state, per spec.md §3's "process-wide state
// reset at the start of every new search" (here, every new game): the
// shared TT is cleared so stale entries from a previous game never leak
// into this one.
func (e *Engine) NewGame() {
	e.table.Clear()
}

// Stop requests cancellation of any in-progress Search, per spec.md §5's
// process-wide atomic stop flag.
func (e *Engine) Stop() { e.stop.Store(true) }

// Ponder reports and sets ponder mode, distinguishing it from ponderhit
// per spec.md §5's "additional atomic" requirement: while pondering, the
// time manager's deadlines are suppressed.
func (e *Engine) SetPonder(on bool) { e.ponder.Store(on) }
func (e *Engine) IsPondering() bool { return e.ponder.Load() }

// Ponderhit reinstates normal time deadlines mid-search, per spec.md §5:
// if the active search started in ponder mode (so Search left its
// timeman.Manager nil), Ponderhit creates one now from the limits that
// search recorded and starts the deadline watchdog late.
func (e *Engine) Ponderhit() {
	e.ponder.Store(false)

	e.searchMu.Lock()
	defer e.searchMu.Unlock()
	if e.tm != nil || e.watchdogDone == nil {
		return // either never suppressed, or no search is active
	}
	e.tm = timeman.Start(e.activeLimits, e.activeSide)
	go e.runWatchdog(e.tm, e.watchdogDone)
}

// runWatchdog polls tm's wall-clock deadline and turns it into the
// cooperative atomic stop flag every Negamax call polls, since timeman
// itself only answers "has the deadline passed?" on demand and the
// search core never calls back into it directly.
func (e *Engine) runWatchdog(tm *timeman.Manager, done chan struct{}) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if tm.ShouldStop() {
				e.stop.Store(true)
				return
			}
		}
	}
}

// Search runs one root search to completion (or cancellation), per
// spec.md §4.6's iterative deepening driven through §4.8's lazy-SMP
// RunParallel.
func (e *Engine) Search(root *board.Board, limits Limits, rootHistory []uint64, onInfo func(Info)) Result {
	e.stop.Store(false)
	e.table.NewSearch()

	us := timeman.White
	if root.Side == board.Black {
		us = timeman.Black
	}

	e.searchMu.Lock()
	e.activeLimits = limits
	e.activeSide = us
	e.watchdogDone = make(chan struct{})
	var tm *timeman.Manager
	if !e.IsPondering() {
		tm = timeman.Start(limits, us)
		e.tm = tm
	} else {
		e.tm = nil
	}
	done := e.watchdogDone
	e.searchMu.Unlock()

	if tm != nil {
		go e.runWatchdog(tm, done)
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 {
		maxDepth = search.MaxPly - 1
	}

	// A Ponderhit that arrives while tm is nil (pondering) installs e.tm
	// and starts its own watchdog, which still reaches the search via the
	// shared e.stop flag; IterativeDeepen's softer between-iteration
	// PastOptimal check only sees the tm captured here, so a ponderhit
	// stops the search exactly at its hard deadline rather than at the
	// optimal one in that case.
	result := search.RunParallel(root, e.opts.Threads, maxDepth, tm, e.opts.MultiPV, e.table, e.eval, rootHistory, &e.stop, onInfo)

	e.searchMu.Lock()
	close(e.watchdogDone)
	e.watchdogDone = nil
	e.tm = nil
	e.searchMu.Unlock()

	return result
}

// Perft counts leaf nodes of the legal-move tree to depth, grounded on
// internal/board/perft_test.go's perft helper — exposed here so the UCI
// debug `perft` command (spec.md §6 treats debug tooling as out of scope
// for the core, but the move generator it exercises is load-bearing, so a
// thin wrapper costs nothing to keep alongside Search) has a home outside
// internal/board's test files.
func Perft(b *board.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	for _, m := range board.LegalMoves(b) {
		nb, ok := board.MakeMove(*b, m)
		if !ok {
			continue
		}
		nodes += Perft(&nb, depth-1)
	}
	return nodes
}
