// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	lvlerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	writeOpt = &opt.WriteOptions{}
	readOpt  = &opt.ReadOptions{}
)

// lvldb implements the Store interface over goleveldb.
type lvldb struct {
	db *leveldb.DB
}

// Options options for creating a level db instance.
type Options struct {
	CacheSize              int
	OpenFilesCacheCapacity int
}

// OpenLevelDB opens or creates a persistent level db store at the given path.
func OpenLevelDB(path string, options Options) (Store, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open level db file storage")
	}
	return openLevelDB(stg, options)
}

// NewMemStore creates a level db store backed by memory, for tests and tooling.
func NewMemStore() Store {
	db, _ := openLevelDB(storage.NewMemStorage(), Options{})
	return db
}

func openLevelDB(stg storage.Storage, options Options) (Store, error) {
	if options.CacheSize < 128 {
		options.CacheSize = 128
	}
	if options.OpenFilesCacheCapacity < 64 {
		options.OpenFilesCacheCapacity = 64
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: options.OpenFilesCacheCapacity,
		BlockCacheCapacity:     options.CacheSize / 2 * opt.MiB,
		WriteBuffer:            options.CacheSize / 4 * opt.MiB, // two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &lvldb{db: db}, nil
}

func (l *lvldb) Get(key []byte) ([]byte, error) {
	return l.db.Get(key, readOpt)
}

func (l *lvldb) Has(key []byte) (bool, error) {
	return l.db.Has(key, readOpt)
}

func (l *lvldb) IsNotFound(err error) bool {
	return err == lvlerrors.ErrNotFound
}

func (l *lvldb) Put(key, val []byte) error {
	return l.db.Put(key, val, writeOpt)
}

func (l *lvldb) Delete(key []byte) error {
	return l.db.Delete(key, writeOpt)
}

func (l *lvldb) NewBatch() Batch {
	return &lvldbBatch{l.db, &leveldb.Batch{}}
}

func (l *lvldb) NewIterator(r Range) Iterator {
	return l.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, readOpt)
}

func (l *lvldb) Close() error {
	return l.db.Close()
}

type lvldbBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *lvldbBatch) Put(key, val []byte) error {
	b.batch.Put(key, val)
	return nil
}

func (b *lvldbBatch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *lvldbBatch) Len() int {
	return b.batch.Len()
}

func (b *lvldbBatch) Write() error {
	return b.db.Write(b.batch, writeOpt)
}
