package search

import (
	"sync/atomic"

	"github.com/nullmoveai/chesscore/internal/board"
	"github.com/nullmoveai/chesscore/internal/nnue"
	"github.com/nullmoveai/chesscore/internal/timeman"
	"github.com/nullmoveai/chesscore/internal/tt"
	"golang.org/x/sync/errgroup"
)

// RunParallel drives spec.md §4.8's lazy-SMP search: the main thread (ID
// 0) runs the normal root search and emits UCI output; helper threads run
// the same root search on their own Searcher, TT shared, everything else
// thread-local, per spec.md §5. Odd-indexed helpers search one ply
// shallower for diversity. When the main thread finishes its deadline or
// depth limit, it signals every helper to stop and joins them before
// returning, per spec.md §4.8's closing sentence.
//
// Grounded on internal/engine/worker.go's Worker/WorkerResult fan-out,
// rewritten from the teacher's channel-based result collection (which
// exists to support its GUI-facing multi-difficulty engine) onto
// golang.org/x/sync/errgroup, the pack's own concurrency primitive for
// exactly this join-all-then-report shape (this is its only use in the
// module).
func RunParallel(root *board.Board, threads, maxDepth int, tm *timeman.Manager, multiPV int, table *tt.Table, eval *nnue.Evaluator, rootHistory []uint64, stop *atomic.Bool, onInfo func(Info)) RootResult {
	if threads < 1 {
		threads = 1
	}
	if stop == nil {
		stop = &atomic.Bool{}
	}
	var g errgroup.Group
	var mainResult RootResult

	for i := 0; i < threads; i++ {
		id := i
		searcher := New(id, table, eval, stop)
		searcher.SetRootHistory(rootHistory)
		searcher.Reset()

		isMain := id == 0
		searcher.Silent = !isMain

		depth := maxDepth
		if !isMain && id%2 == 1 && depth > 1 {
			depth--
		}

		threadTM := tm
		threadMultiPV := 1
		threadOnInfo := func(Info) {}
		if isMain {
			threadMultiPV = multiPV
			if onInfo != nil {
				threadOnInfo = onInfo
			}
		}

		g.Go(func() error {
			// Each helper gets its own board value, with freshly-allocated
			// accumulator backing storage, rather than sharing root: per
			// spec.md §4.8/§5/§9, boards are never shared across threads,
			// and *board.Board's Accumulators are slices that a plain
			// struct copy would still alias. Refresh reallocates both
			// perspectives from scratch, decoupling the copy entirely.
			rootCopy := *root
			eval.Refresh(&rootCopy)
			res := searcher.IterativeDeepen(&rootCopy, depth, threadTM, threadMultiPV, threadOnInfo)
			if isMain {
				mainResult = res
				stop.Store(true)
			}
			return nil
		})
	}

	g.Wait()
	return mainResult
}
