package nnue

// NNUE file I/O: the version/hash/description header and the LEB128
// decoder for compressed layer blocks, grounded on
// sfnnue/nnue_common.go's ReadLEB128/WriteLEB128 and sfnnue/network.go's
// readHeader — the closest available implementation in the pack to
// spec.md §4.3's loader and §6's exact file-format description.

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	fileVersion = uint32(0x7AF32F20)

	leb128Magic     = "COMPRESSED_LEB128"
	leb128MagicSize = len(leb128Magic)
)

// readHeader reads the version/hash/description-length/description
// preamble spec.md §6 describes.
func readHeader(r io.Reader) (hash uint32, description string, err error) {
	var version uint32
	if err = binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, "", fmt.Errorf("nnue: reading version: %w", err)
	}
	if version != fileVersion {
		return 0, "", fmt.Errorf("nnue: unsupported version %#x, want %#x", version, fileVersion)
	}
	if err = binary.Read(r, binary.LittleEndian, &hash); err != nil {
		return 0, "", fmt.Errorf("nnue: reading hash: %w", err)
	}
	var descLen uint32
	if err = binary.Read(r, binary.LittleEndian, &descLen); err != nil {
		return 0, "", fmt.Errorf("nnue: reading description length: %w", err)
	}
	buf := make([]byte, descLen)
	if _, err = io.ReadFull(r, buf); err != nil {
		return 0, "", fmt.Errorf("nnue: reading description: %w", err)
	}
	return hash, string(buf), nil
}

// readLayerMarker reads a layer block's 4-byte hash and type marker from a
// buffered reader (so the fixed-vs-length-prefixed ambiguity can be
// resolved by peeking instead of over-reading into the payload). It
// returns isCompressed=true when the marker was the fixed 17-byte
// COMPRESSED_LEB128 literal, otherwise typeName holds the length-prefixed
// ASCII name spec.md §6 describes.
func readLayerMarker(r *bufio.Reader) (hash uint32, isCompressed bool, typeName string, err error) {
	if err = binary.Read(r, binary.LittleEndian, &hash); err != nil {
		return 0, false, "", fmt.Errorf("nnue: reading layer hash: %w", err)
	}
	peek, perr := r.Peek(leb128MagicSize)
	if perr == nil && string(peek) == leb128Magic {
		if _, err = r.Discard(leb128MagicSize); err != nil {
			return 0, false, "", err
		}
		return hash, true, "", nil
	}
	var nameLen uint32
	if err = binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return 0, false, "", fmt.Errorf("nnue: reading layer type name length: %w", err)
	}
	buf := make([]byte, nameLen)
	if _, err = io.ReadFull(r, buf); err != nil {
		return 0, false, "", fmt.Errorf("nnue: reading layer type name: %w", err)
	}
	return hash, false, string(buf), nil
}

// readLEB128 decodes signed LEB128-compressed integers, per
// sfnnue/nnue_common.go:ReadLEB128 — unchanged algorithm, retargeted to
// this package's int16/int32 slice types via a generic parameter.
func readLEB128[T int16 | int32](r io.Reader, out []T) error {
	var byteCount uint32
	if err := binary.Read(r, binary.LittleEndian, &byteCount); err != nil {
		return fmt.Errorf("nnue: reading LEB128 byte count: %w", err)
	}
	buf := make([]byte, byteCount)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("nnue: reading LEB128 payload: %w", err)
	}
	pos := 0
	bitSize := uint(8 * sizeOf[T]())
	for i := range out {
		var result T
		var shift uint
		for {
			if pos >= len(buf) {
				return fmt.Errorf("nnue: LEB128 stream exhausted early")
			}
			b := buf[pos]
			pos++
			result |= T(b&0x7f) << shift
			shift += 7
			if b&0x80 == 0 {
				if shift < bitSize && b&0x40 != 0 {
					result |= ^T(0) << shift
				}
				break
			}
			if shift >= bitSize {
				break
			}
		}
		out[i] = result
	}
	if pos != len(buf) {
		return fmt.Errorf("nnue: LEB128 bytes remaining: %d", len(buf)-pos)
	}
	return nil
}

func sizeOf[T int16 | int32]() int {
	var zero T
	switch any(zero).(type) {
	case int16:
		return 2
	case int32:
		return 4
	}
	return 0
}

// readNative reads a native little-endian slice, used for the
// length-prefixed-ASCII-name (uncompressed) layer variant.
func readNative[T int8 | int16 | int32](r io.Reader, out []T) error {
	return binary.Read(r, binary.LittleEndian, out)
}
