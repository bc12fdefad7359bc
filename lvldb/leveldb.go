// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb backs the contract state with goleveldb.
package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/pocm/kv"
)

var _ kv.Store = (*LevelDB)(nil)

const minCacheMiB = 16

// Options tunes the database. Zero values take defaults.
type Options struct {
	CacheSize              int // MiB, split between block cache and write buffer
	OpenFilesCacheCapacity int
	// NoSync skips the fsync of committed batches. Only for throwaway data.
	NoSync bool
}

type LevelDB struct {
	db       *leveldb.DB
	stg      storage.Storage
	writeOpt *opt.WriteOptions
}

// New opens the database at path, creating it when missing.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "open storage %s", path)
	}
	return open(stg, opts)
}

// NewMem creates a database in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{NoSync: true})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, minCacheMiB)
	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: max(opts.OpenFilesCacheCapacity, 16),
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{
		db:       db,
		stg:      stg,
		writeOpt: &opt.WriteOptions{Sync: !opts.NoSync},
	}, nil
}

func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get returns the value of key, or an error matched by IsNotFound.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, nil)
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, ldb.writeOpt)
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, ldb.writeOpt)
}

// Close releases the database and its file lock. Later operations fail.
func (ldb *LevelDB) Close() error {
	if err := ldb.db.Close(); err != nil {
		return err
	}
	return ldb.stg.Close()
}

// NewBatch collects writes applied atomically by Write.
func (ldb *LevelDB) NewBatch() kv.Batch {
	return &batch{ldb, new(leveldb.Batch)}
}

// Iterate walks the keys of r in ascending order. A nil limit runs to the end.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, nil)
}

type batch struct {
	ldb *LevelDB
	*leveldb.Batch
}

func (b *batch) Put(key, value []byte) error {
	b.Batch.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.Batch.Delete(key)
	return nil
}

func (b *batch) Write() error {
	return b.ldb.db.Write(b.Batch, b.ldb.writeOpt)
}
