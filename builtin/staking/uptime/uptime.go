// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package uptime maintains a rolling average of per-validator uptime over a
// configurable window of sealed epochs. The average is a running mean whose
// entry count saturates at the window size, so the oldest contributions decay
// instead of being dropped outright.
package uptime

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/orion"
)

var slotWindows = orion.BytesToBytes32([]byte("uptime-windows"))

type idKey uint64

func (k idKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

// Window is the stored running average of one validator.
type Window struct {
	// Average uptime fraction in fixed-point units.
	Average *big.Int
	// Entries counted into the average, saturating at the window size.
	Entries uint64
}

// Service exposes the uptime window.
type Service struct {
	windows *storage.Mapping[idKey, *Window]
}

// New creates the uptime window service.
func New(ctx *storage.Context) *Service {
	return &Service{
		windows: storage.NewMapping[idKey, *Window](ctx, slotWindows),
	}
}

func (s *Service) get(id uint64) (*Window, error) {
	w, err := s.windows.Get(idKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get uptime window")
	}
	if w.Average == nil {
		w.Average = new(big.Int)
	}
	return w, nil
}

// Add folds one sealed epoch's uptime fraction into the window. The division
// truncates, matching the configured rounding everywhere else.
func (s *Service) Add(id uint64, fraction *big.Int, windowSize uint64) error {
	w, err := s.get(id)
	if err != nil {
		return err
	}
	n := w.Entries
	if n > windowSize {
		n = windowSize
	}
	sum := new(big.Int).Mul(w.Average, new(big.Int).SetUint64(n))
	sum.Add(sum, fraction)
	w.Average = sum.Div(sum, new(big.Int).SetUint64(n+1))
	if w.Entries < windowSize {
		w.Entries++
	}
	if err := s.windows.Set(idKey(id), w, false); err != nil {
		return errors.Wrap(err, "failed to set uptime window")
	}
	return nil
}

// Average returns the validator's current windowed uptime fraction.
func (s *Service) Average(id uint64) (*big.Int, error) {
	w, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return w.Average, nil
}
