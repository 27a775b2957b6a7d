// Command chessplay-uci is the thin external-interface wrapper spec.md §1
// treats as an out-of-scope collaborator while §6 still specifies its
// command/option vocabulary. It does nothing but wire os.Stdin/os.Stdout
// to internal/uci.Protocol and internal/engine.Engine — no opening book,
// no tablebase probing, no GUI.
//
// Grounded on the teacher's cmd/chessplay-uci/main.go for the
// flag-parsing/auto-load/Run shape, trimmed of the CPU-profiling flag and
// the big/small dual-network auto-discovery (both teacher-specific
// enrichments with no counterpart in spec.md).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/nullmoveai/chesscore/internal/engine"
	"github.com/nullmoveai/chesscore/internal/uci"
)

var (
	evalFile = flag.String("evalfile", "", "path to an NNUE weights file (defaults to the engine's built-in EvalFile option)")
	hashMB   = flag.Int("hash", 0, "transposition table size in MB (defaults to the engine's built-in Hash option)")
	cacheDir = flag.String("nnue-cache", "", "directory for the NNUE file decode cache (empty disables caching)")
	debug    = flag.Bool("debug", false, "log diagnostics at debug level to stderr")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := engine.DefaultOptions()
	if *evalFile != "" {
		opts.EvalFile = *evalFile
	}
	if *hashMB > 0 {
		opts.HashMB = *hashMB
	}

	eng, err := engine.New(opts, *cacheDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chessplay-uci: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	protocol := uci.New(os.Stdin, os.Stdout, eng, log)
	protocol.Run()
}
