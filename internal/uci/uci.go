// Package uci implements the text protocol loop spec.md §1 names an
// external collaborator but §6 still specifies the shape of: the exact
// command/option vocabulary and output line format. It is deliberately
// thin — no opening book, no tablebase probing, no pondering UI beyond
// the bare Ponder/ponderhit plumbing spec.md §5 requires the search core
// itself to support — everything beyond parsing and formatting is
// delegated to internal/engine.
//
// Grounded on the teacher's internal/uci/uci.go for the read-a-line,
// dispatch-on-first-word shape and its Run/handleX method split, trimmed
// of the teacher's Syzygy/CPU-profiling/debug-dump commands that have no
// counterpart in spec.md §6's command table.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nullmoveai/chesscore/internal/board"
	"github.com/nullmoveai/chesscore/internal/engine"
)

// Protocol drives one UCI session: reads commands from in, writes
// responses to out, and logs diagnostics to log (never to out, since out
// is the protocol channel itself).
type Protocol struct {
	in  *bufio.Scanner
	out io.Writer
	log *slog.Logger

	eng      *engine.Engine
	position board.Board
	history  []uint64

	searching  bool
	searchDone chan struct{}
}

// New builds a Protocol reading from in and writing to out.
func New(in io.Reader, out io.Writer, eng *engine.Engine, log *slog.Logger) *Protocol {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Protocol{
		in:       bufio.NewScanner(in),
		out:      out,
		log:      log,
		eng:      eng,
		position: board.NewStartingBoard(),
	}
	p.history = []uint64{p.position.Hash}
	return p
}

func (p *Protocol) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Run reads commands until "quit" or end of input, per spec.md §6.
func (p *Protocol) Run() {
	for p.in.Scan() {
		line := strings.TrimSpace(p.in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			p.handleUCI()
		case "isready":
			p.printf("readyok\n")
		case "ucinewgame":
			p.handleNewGame()
		case "position":
			p.handlePosition(args)
		case "go":
			p.handleGo(args)
		case "stop":
			p.handleStop()
		case "ponderhit":
			p.eng.Ponderhit()
		case "setoption":
			p.handleSetOption(args)
		case "quit":
			p.handleStop()
			return
		case "d":
			p.printf("%s", p.position.String())
			p.printf("Material: %+d\n", p.position.Material())
		case "perft":
			p.handlePerft(args)
		}
	}
}

func (p *Protocol) handleUCI() {
	p.printf("id name ChessCore\n")
	p.printf("id author ChessCore Team\n")
	for _, spec := range engine.OptionSpecs() {
		switch spec.Type {
		case "spin":
			p.printf("option name %s type spin default %s min %d max %d\n", spec.Name, spec.Default, spec.Min, spec.Max)
		case "check":
			p.printf("option name %s type check default %s\n", spec.Name, spec.Default)
		default:
			p.printf("option name %s type string default %s\n", spec.Name, spec.Default)
		}
	}
	p.printf("uciok\n")
}

func (p *Protocol) handleNewGame() {
	p.eng.NewGame()
	p.position = board.NewStartingBoard()
	p.history = []uint64{p.position.Hash}
}

// handlePosition implements spec.md §6's "position [startpos|fen <FEN>]
// [moves …]".
func (p *Protocol) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int
	switch args[0] {
	case "startpos":
		p.position = board.NewStartingBoard()
		moveStart = findMoves(args, 1)
	case "fen":
		fenEnd := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				fenEnd = i
				break
			}
		}
		fenStr := strings.Join(args[1:fenEnd], " ")
		b, err := board.FromFEN(fenStr)
		if err != nil {
			p.log.Warn("uci: invalid FEN, position unchanged", "fen", fenStr, "error", err)
			return
		}
		p.position = b
		moveStart = findMoves(args, fenEnd)
	default:
		return
	}

	p.history = []uint64{p.position.Hash}
	for _, tok := range args[moveStart:] {
		m := p.parseMove(tok)
		if m == board.NoMove {
			p.log.Warn("uci: dropping invalid move string mid-position", "move", tok)
			return
		}
		nb, ok := board.MakeMove(p.position, m)
		if !ok {
			p.log.Warn("uci: dropping illegal move string mid-position", "move", tok)
			return
		}
		p.position = nb
		p.history = append(p.history, p.position.Hash)
	}
}

func findMoves(args []string, from int) int {
	for i := from; i < len(args); i++ {
		if args[i] == "moves" {
			return i + 1
		}
	}
	return len(args)
}

// parseMove matches long-algebraic text against the current position's
// legal moves, per spec.md §6's "source square, target square, optional
// promotion letter" format.
func (p *Protocol) parseMove(tok string) board.Move {
	if len(tok) < 4 {
		return board.NoMove
	}
	from, err1 := board.ParseSquare(tok[0:2])
	to, err2 := board.ParseSquare(tok[2:4])
	if err1 != nil || err2 != nil {
		return board.NoMove
	}
	var promo board.PieceType = board.NoPieceType
	if len(tok) >= 5 {
		switch tok[4] {
		case 'q':
			promo = board.Queen
		case 'r':
			promo = board.Rook
		case 'b':
			promo = board.Bishop
		case 'n':
			promo = board.Knight
		}
	}
	for _, m := range board.LegalMoves(&p.position) {
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() {
			if m.Promotion() == promo {
				return m
			}
			continue
		}
		if promo == board.NoPieceType {
			return m
		}
	}
	return board.NoMove
}

// handleGo parses spec.md §6's "go [depth N] [wtime W] [btime B]
// [winc I] [binc I] [movestogo M] [ponder] [infinite]" and starts a
// search in the background so Run keeps reading "stop"/"ponderhit".
func (p *Protocol) handleGo(args []string) {
	limits := engine.Limits{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			i++
			if i < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i])
			}
		case "nodes":
			i++
			if i < len(args) {
				n, _ := strconv.ParseUint(args[i], 10, 64)
				limits.Nodes = n
			}
		case "movetime":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				limits.MoveTime = time.Duration(ms) * time.Millisecond
			}
		case "wtime":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				limits.Time[board.White] = time.Duration(ms) * time.Millisecond
			}
		case "btime":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				limits.Time[board.Black] = time.Duration(ms) * time.Millisecond
			}
		case "winc":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				limits.Inc[board.White] = time.Duration(ms) * time.Millisecond
			}
		case "binc":
			i++
			if i < len(args) {
				ms, _ := strconv.Atoi(args[i])
				limits.Inc[board.Black] = time.Duration(ms) * time.Millisecond
			}
		case "movestogo":
			i++
			if i < len(args) {
				limits.MovesToGo, _ = strconv.Atoi(args[i])
			}
		case "ponder":
			limits.Ponder = true
			p.eng.SetPonder(true)
		case "infinite":
			limits.Infinite = true
		}
	}

	root := p.position
	rootHistory := append([]uint64(nil), p.history...)

	p.searching = true
	p.searchDone = make(chan struct{})

	go func() {
		defer close(p.searchDone)
		result := p.eng.Search(&root, limits, rootHistory, func(info engine.Info) {
			p.sendInfo(info)
		})
		p.eng.SetPonder(false)
		p.searching = false

		if result.Move != board.NoMove {
			p.printf("bestmove %s\n", result.Move.String())
			return
		}
		// No PV move was ever recorded (e.g. depth-0 cancellation): fall
		// back to the first legal move, or 0000 if there is none
		// (checkmate/stalemate), per spec.md §6.
		legal := board.LegalMoves(&root)
		if len(legal) > 0 {
			p.printf("bestmove %s\n", legal[0].String())
		} else {
			p.printf("bestmove 0000\n")
		}
	}()
}

func (p *Protocol) sendInfo(info engine.Info) {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d", info.Depth)
	if info.MultiPV > 1 {
		fmt.Fprintf(&b, " multipv %d", info.MultiPV)
	}
	fmt.Fprintf(&b, " score cp %d", info.Score)
	fmt.Fprintf(&b, " nodes %d", info.Nodes)
	fmt.Fprintf(&b, " time %d", info.Time.Milliseconds())
	if info.Time > 0 {
		nps := float64(info.Nodes) / info.Time.Seconds()
		fmt.Fprintf(&b, " nps %d", int64(nps))
	}
	if len(info.PV) > 0 {
		b.WriteString(" pv")
		for _, m := range info.PV {
			b.WriteString(" ")
			b.WriteString(m.String())
		}
	}
	b.WriteString("\n")
	p.printf("%s", b.String())
}

func (p *Protocol) handleStop() {
	if !p.searching {
		return
	}
	p.eng.Stop()
	<-p.searchDone
}

func (p *Protocol) handleSetOption(args []string) {
	var name, value string
	mode := 0 // 0 = none, 1 = name, 2 = value
	for _, tok := range args {
		switch tok {
		case "name":
			mode = 1
			continue
		case "value":
			mode = 2
			continue
		}
		switch mode {
		case 1:
			if name != "" {
				name += " "
			}
			name += tok
		case 2:
			if value != "" {
				value += " "
			}
			value += tok
		}
	}
	if err := p.eng.SetOption(name, value); err != nil {
		p.log.Warn("uci: setoption failed", "name", name, "value", value, "error", err)
	}
}

func (p *Protocol) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}
	start := time.Now()
	nodes := engine.Perft(&p.position, depth)
	elapsed := time.Since(start)
	p.printf("Nodes: %d\n", nodes)
	p.printf("Time: %s\n", elapsed)
	if elapsed > 0 {
		p.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
