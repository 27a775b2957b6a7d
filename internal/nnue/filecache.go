package nnue

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	badger "github.com/dgraph-io/badger/v4"
)

// FileCache persists decoded *Network values keyed by file path + size +
// mtime, so repeated engine startups against the same weights file skip
// re-parsing and re-decoding LEB128 blocks. Grounded on
// internal/storage/storage.go's BadgerDB wrapper; the key is hashed with
// xxhash rather than used as the raw path, matching how the rest of the
// pack uses xxhash as badger's default hashing primitive.
type FileCache struct {
	db *badger.DB
}

// OpenFileCache opens (or creates) a BadgerDB-backed cache at dir.
func OpenFileCache(dir string) (*FileCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("nnue: opening file cache at %s: %w", dir, err)
	}
	return &FileCache{db: db}, nil
}

// Close closes the underlying database.
func (c *FileCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func cacheKey(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	h := xxhash.New()
	h.WriteString(path)
	var stamp [16]byte
	binary.LittleEndian.PutUint64(stamp[0:8], uint64(info.Size()))
	binary.LittleEndian.PutUint64(stamp[8:16], uint64(info.ModTime().UnixNano()))
	h.Write(stamp[:])
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, h.Sum64())
	return key, nil
}

// Get returns a previously-cached Network for path, if its size and mtime
// still match the cached entry.
func (c *FileCache) Get(path string) (*Network, bool) {
	key, err := cacheKey(path)
	if err != nil {
		return nil, false
	}
	var net Network
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&net)
		})
	})
	if err != nil {
		return nil, false
	}
	return &net, true
}

// Put stores net under path's cache key.
func (c *FileCache) Put(path string, net *Network) error {
	key, err := cacheKey(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(net); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf.Bytes())
	})
}
