// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state implements the world state of the built-in engines: a flat
// keyed storage with checkpoint/revert semantics, persisted into a kv store.
// Mutations accumulate in a journal until Commit flushes them, so a failed
// operation can be rolled back to its checkpoint without touching the store.
package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/orionchain/orion/kv"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/stackedmap"
)

var storageBucket = kv.Bucket("st-")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// State manages the world state.
type State struct {
	store kv.Store
	sm    *stackedmap.StackedMap // keeps revisions of state
}

// New creates a state object backed by the given kv store.
func New(store kv.Store) *State {
	getter := storageBucket.NewGetter(store)
	st := &State{store: store}
	st.sm = stackedmap.New(func(key any) (any, bool, error) {
		raw, err := getter.Get(key.(orion.Bytes32).Bytes())
		if err != nil {
			if getter.IsNotFound(err) {
				return rlp.RawValue(nil), true, nil
			}
			return nil, false, &Error{err}
		}
		return rlp.RawValue(raw), true, nil
	})
	// base journal level, so mutations work outside any checkpoint
	st.sm.Push()
	return st
}

// GetRawStorage returns the raw rlp-encoded value of the given storage key.
// An absent key yields an empty raw value.
func (s *State) GetRawStorage(key orion.Bytes32) (rlp.RawValue, error) {
	raw, _, err := s.sm.Get(key)
	if err != nil {
		return nil, err
	}
	return raw.(rlp.RawValue), nil
}

// SetRawStorage sets the raw rlp-encoded value of the given storage key.
// Setting an empty value deletes the key on commit.
func (s *State) SetRawStorage(key orion.Bytes32, raw rlp.RawValue) {
	s.sm.Put(key, raw)
}

// GetStorage returns the value of the given storage key.
func (s *State) GetStorage(key orion.Bytes32) (orion.Bytes32, error) {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return orion.Bytes32{}, err
	}
	if len(raw) == 0 {
		return orion.Bytes32{}, nil
	}
	var content []byte
	if err := rlp.DecodeBytes(raw, &content); err != nil {
		return orion.Bytes32{}, &Error{err}
	}
	return orion.BytesToBytes32(content), nil
}

// SetStorage sets the value of the given storage key.
func (s *State) SetStorage(key, value orion.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(key, nil)
		return
	}
	// rlp encoding of a byte slice cannot fail
	trimmed, _ := rlp.EncodeToBytes(trimLeadingZeros(value.Bytes()))
	s.SetRawStorage(key, trimmed)
}

// DecodeStorage decodes the raw value of the given storage key with the
// decoder. The decoder receives a nil slice when the key is absent.
func (s *State) DecodeStorage(key orion.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// EncodeStorage encodes a value with the encoder and stores it under the given
// storage key. A nil encoded value deletes the key.
func (s *State) EncodeStorage(key orion.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.SetRawStorage(key, raw)
	return nil
}

// NewCheckpoint makes a checkpoint of the current state.
// It returns a checkpoint that can be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts the state to the given checkpoint.
// All checkpoints in between are also reverted.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// Commit flushes all journaled changes into the backing store.
// The journal is kept, so the state remains usable after committing.
func (s *State) Commit() error {
	batch := s.store.NewBatch()
	putter := storageBucket.NewPutter(batch)

	var err error
	s.sm.Journal(func(key, value any) bool {
		k := key.(orion.Bytes32)
		raw := value.(rlp.RawValue)
		if len(raw) == 0 {
			err = putter.Delete(k.Bytes())
		} else {
			err = putter.Put(k.Bytes(), raw)
		}
		return err == nil
	})
	if err != nil {
		return &Error{err}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	return nil
}

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}
