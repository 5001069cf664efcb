// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "bytes"

// Bucket provides logical bucket for the kv store, by prefixing all keys.
type Bucket []byte

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		getFunc
		hasFunc
		isNotFoundFunc
	}{
		func(key []byte) ([]byte, error) { return src.Get(b.makeKey(key)) },
		func(key []byte) (bool, error) { return src.Has(b.makeKey(key)) },
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		putFunc
		deleteFunc
	}{
		func(key, val []byte) error { return src.Put(b.makeKey(key), val) },
		func(key []byte) error { return src.Delete(b.makeKey(key)) },
	}
}

// NewRange creates a range prefixed with the bucket.
func (b Bucket) NewRange(r Range) Range {
	start := b.makeKey(r.Start)
	var limit []byte
	if len(r.Limit) == 0 {
		limit = bucketUpperBound(b)
	} else {
		limit = b.makeKey(r.Limit)
	}
	return Range{start, limit}
}

func (b Bucket) makeKey(key []byte) []byte {
	newKey := make([]byte, 0, len(b)+len(key))
	return append(append(newKey, b...), key...)
}

func bucketUpperBound(b Bucket) []byte {
	upper := bytes.Clone([]byte(b))
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] < 0xff {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil
}

type (
	getFunc        func(key []byte) ([]byte, error)
	hasFunc        func(key []byte) (bool, error)
	isNotFoundFunc func(err error) bool
	putFunc        func(key, val []byte) error
	deleteFunc     func(key []byte) error
)

func (f getFunc) Get(key []byte) ([]byte, error)   { return f(key) }
func (f hasFunc) Has(key []byte) (bool, error)     { return f(key) }
func (f isNotFoundFunc) IsNotFound(err error) bool { return f(err) }
func (f putFunc) Put(key, val []byte) error        { return f(key, val) }
func (f deleteFunc) Delete(key []byte) error       { return f(key) }
