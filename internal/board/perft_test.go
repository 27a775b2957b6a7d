package board

import "testing"

func perft(b Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	pseudo := GenerateMoves(&b)
	for _, m := range pseudo.Slice() {
		if nb, ok := MakeMove(b, m); ok {
			nodes += perft(nb, depth-1)
		}
	}
	return nodes
}

func TestPerftStartingPosition(t *testing.T) {
	cases := []struct {
		depth int
		want  uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
		{5, 4865609},
	}
	b := NewStartingBoard()
	for _, c := range cases {
		if got := perft(b, c.depth); got != c.want {
			t.Errorf("perft(start, %d) = %d, want %d", c.depth, got, c.want)
		}
	}
}

func TestPerftKiwipete(t *testing.T) {
	b, err := FromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := perft(b, 4), uint64(4085603); got != want {
		t.Errorf("perft(kiwipete, 4) = %d, want %d", got, want)
	}
}

func TestPerftPosition3(t *testing.T) {
	b, err := FromFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := perft(b, 5), uint64(674624); got != want {
		t.Errorf("perft(position3, 5) = %d, want %d", got, want)
	}
}

func TestPerftPosition4(t *testing.T) {
	b, err := FromFEN("r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := perft(b, 3), uint64(9467); got != want {
		t.Errorf("perft(position4, 3) = %d, want %d", got, want)
	}
}

func TestPerftPosition5(t *testing.T) {
	b, err := FromFEN("rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := perft(b, 3), uint64(62379); got != want {
		t.Errorf("perft(position5, 3) = %d, want %d", got, want)
	}
}

func TestPerftPosition6(t *testing.T) {
	b, err := FromFEN("r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := perft(b, 3), uint64(89890); got != want {
		t.Errorf("perft(position6, 3) = %d, want %d", got, want)
	}
}

func TestMagicAttacksMatchSlow(t *testing.T) {
	for s := Square(0); s < 64; s++ {
		mask := rookMask(s)
		for i := 0; i < 1<<mask.PopCount() && i < 256; i++ {
			occ := indexToOccupancy(i, mask)
			if RookAttacks(s, occ) != rookAttacksSlow(s, occ) {
				t.Fatalf("rook attacks mismatch at %s, occ %d", s, i)
			}
		}
		bmask := bishopMask(s)
		for i := 0; i < 1<<bmask.PopCount() && i < 256; i++ {
			occ := indexToOccupancy(i, bmask)
			if BishopAttacks(s, occ) != bishopAttacksSlow(s, occ) {
				t.Fatalf("bishop attacks mismatch at %s, occ %d", s, i)
			}
		}
	}
}
