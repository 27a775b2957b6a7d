package nnue

import (
	"bufio"
	"fmt"
	"os"
)

// LoadNetwork parses an NNUE file per spec.md §4.3/§6: version/hash/
// description header, then feature-transformer, dense-1, dense-2 and
// output layer blocks in order, each either LEB128- or natively-encoded.
// Each block's hash is read and discarded, not compared. Layer shapes are
// not read from the file: the feature transformer is always sized
// DefaultFeatures x DefaultHiddenSize and the dense layers by L2Size and
// L3Size, so a file built for other dimensions is not recognised as such.
// A block that ends early, compressed data that does not decode to exactly
// the expected count, or a marker naming the wrong layer returns an error
// so the caller can fall back to classical evaluation (spec.md §4.3 —
// never crash on a malformed file).
func LoadNetwork(path string, cache *FileCache) (*Network, error) {
	if cache != nil {
		if net, ok := cache.Get(path); ok {
			return net, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nnue: opening %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	_, description, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	n := &Network{Description: description}

	if err := readFeatureTransformer(br, n); err != nil {
		return nil, fmt.Errorf("nnue: feature transformer: %w", err)
	}
	if err := readDenseLayer(br, "Dense1", n.HiddenSize*2, L2Size, &n.L2Weights, &n.L2Bias); err != nil {
		return nil, fmt.Errorf("nnue: dense layer 1: %w", err)
	}
	if err := readDenseLayer(br, "Dense2", L2Size, L3Size, &n.L3Weights, &n.L3Bias); err != nil {
		return nil, fmt.Errorf("nnue: dense layer 2: %w", err)
	}
	if err := readOutputLayer(br, L3Size, n); err != nil {
		return nil, fmt.Errorf("nnue: output layer: %w", err)
	}

	if cache != nil {
		cache.Put(path, n)
	}
	return n, nil
}

func readFeatureTransformer(r *bufio.Reader, n *Network) error {
	_, compressed, typeName, err := readLayerMarker(r)
	if err != nil {
		return err
	}
	numFeatures := DefaultFeatures
	hiddenSize := DefaultHiddenSize
	n.NumFeatures = numFeatures
	n.HiddenSize = hiddenSize

	n.FeatureBias = make([]int16, hiddenSize)
	n.InputWeights = make([]int16, numFeatures*hiddenSize)

	if compressed {
		if err := readLEB128(r, n.FeatureBias); err != nil {
			return err
		}
		return readLEB128(r, n.InputWeights)
	}
	if typeName != "int16" {
		return fmt.Errorf("unrecognized feature transformer marker %q", typeName)
	}
	if err := readNative(r, n.FeatureBias); err != nil {
		return err
	}
	return readNative(r, n.InputWeights)
}

func readDenseLayer(r *bufio.Reader, name string, inSize, outSize int, weights *[]int8, bias *[]int32) error {
	_, compressed, typeName, err := readLayerMarker(r)
	if err != nil {
		return err
	}
	*weights = make([]int8, inSize*outSize)
	*bias = make([]int32, outSize)
	if compressed {
		w16 := make([]int16, inSize*outSize)
		if err := readLEB128(r, w16); err != nil {
			return err
		}
		for i, v := range w16 {
			(*weights)[i] = int8(v)
		}
		return readLEB128(r, *bias)
	}
	if typeName != name {
		return fmt.Errorf("unexpected dense layer marker %q, want %q", typeName, name)
	}
	if err := readNative(r, *weights); err != nil {
		return err
	}
	return readNative(r, *bias)
}

func readOutputLayer(r *bufio.Reader, inSize int, n *Network) error {
	_, compressed, typeName, err := readLayerMarker(r)
	if err != nil {
		return err
	}
	n.OutWeights = make([]int8, inSize)
	var biasSlice = make([]int32, 1)
	if compressed {
		w16 := make([]int16, inSize)
		if err := readLEB128(r, w16); err != nil {
			return err
		}
		for i, v := range w16 {
			n.OutWeights[i] = int8(v)
		}
		if err := readLEB128(r, biasSlice); err != nil {
			return err
		}
		n.OutBias = biasSlice[0]
		return nil
	}
	if typeName != "Output" {
		return fmt.Errorf("unexpected output layer marker %q", typeName)
	}
	if err := readNative(r, n.OutWeights); err != nil {
		return err
	}
	if err := readNative(r, biasSlice); err != nil {
		return err
	}
	n.OutBias = biasSlice[0]
	return nil
}
