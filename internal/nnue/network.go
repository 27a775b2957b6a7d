package nnue

import "github.com/nullmoveai/chesscore/internal/board"

// Network holds the quantized weights for one loaded NNUE file: a
// HalfKA feature transformer and three dense layers (H->32, 32->32,
// 32->1), per spec.md §4.3. LoadNetwork sets NumFeatures and HiddenSize to
// DefaultFeatures and DefaultHiddenSize; neither is read from the file.
type Network struct {
	NumFeatures int
	HiddenSize  int

	FeatureBias   []int16 // len HiddenSize
	InputWeights  []int16 // len NumFeatures*HiddenSize, column-major per feature

	L2Weights []int8 // len (2*HiddenSize)*L2Size
	L2Bias    []int32
	L3Weights []int8 // len L2Size*L3Size
	L3Bias    []int32
	OutWeights []int8 // len L3Size
	OutBias    int32

	Description string
}

func clippedReLU(x int32) int32 {
	if x < 0 {
		return 0
	}
	if x > 127 {
		return 127
	}
	return x
}

// Forward runs the quantized forward pass described in spec.md §4.3: clip
// each perspective's accumulator to [0,QA], concatenate "us" then "them",
// two 32-wide dense layers with clipped-ReLU, then a scalar output
// divided by OutputScale.
func (n *Network) Forward(b *board.Board, sideToMove board.Color) int {
	us := b.Accumulators[sideToMove].Values
	them := b.Accumulators[sideToMove.Other()].Values

	input := make([]int32, 2*n.HiddenSize)
	for i, v := range us {
		input[i] = clippedReLU(int32(v))
	}
	for i, v := range them {
		input[n.HiddenSize+i] = clippedReLU(int32(v))
	}

	l2 := make([]int32, L2Size)
	for j := 0; j < L2Size; j++ {
		acc := n.L2Bias[j]
		row := n.L2Weights[j*2*n.HiddenSize : (j+1)*2*n.HiddenSize]
		for i, v := range input {
			acc += int32(row[i]) * v
		}
		l2[j] = clippedReLU(acc >> 6)
	}

	l3 := make([]int32, L3Size)
	for j := 0; j < L3Size; j++ {
		acc := n.L3Bias[j]
		row := n.L3Weights[j*L2Size : (j+1)*L2Size]
		for i, v := range l2 {
			acc += int32(row[i]) * v
		}
		l3[j] = clippedReLU(acc >> 6)
	}

	out := n.OutBias
	for i, v := range l3 {
		out += int32(n.OutWeights[i]) * v
	}
	return int(out / OutputScale)
}

// InitRandom fills a Network with deterministic pseudo-random weights, for
// tests that need a network shape without a file on disk.
func InitRandom(seed uint64, numFeatures, hiddenSize int) *Network {
	g := newTestPRNG(seed)
	n := &Network{NumFeatures: numFeatures, HiddenSize: hiddenSize}
	n.FeatureBias = make([]int16, hiddenSize)
	n.InputWeights = make([]int16, numFeatures*hiddenSize)
	for i := range n.InputWeights {
		n.InputWeights[i] = int16(g.next()%41) - 20
	}
	n.L2Weights = make([]int8, 2*hiddenSize*L2Size)
	for i := range n.L2Weights {
		n.L2Weights[i] = int8(g.next()%21) - 10
	}
	n.L2Bias = make([]int32, L2Size)
	n.L3Weights = make([]int8, L2Size*L3Size)
	for i := range n.L3Weights {
		n.L3Weights[i] = int8(g.next()%21) - 10
	}
	n.L3Bias = make([]int32, L3Size)
	n.OutWeights = make([]int8, L3Size)
	for i := range n.OutWeights {
		n.OutWeights[i] = int8(g.next()%21) - 10
	}
	return n
}

type testPRNG struct{ state uint64 }

func newTestPRNG(seed uint64) *testPRNG { return &testPRNG{state: seed | 1} }

func (g *testPRNG) next() uint64 {
	g.state ^= g.state >> 12
	g.state ^= g.state << 25
	g.state ^= g.state >> 27
	return g.state * 2685821657736338717
}
