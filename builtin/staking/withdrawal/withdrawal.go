// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package withdrawal tracks in-flight undelegation requests until their
// epoch and time lockups both elapse.
package withdrawal

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/orionchain/orion/builtin/reverts"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/orion"
)

var slotRequests = orion.BytesToBytes32([]byte("withdrawal-requests"))

var (
	errRequestExists  = reverts.New("request id already exists")
	errRequestMissing = reverts.New("request doesn't exist")
)

// Request is one pending withdrawal.
type Request struct {
	Amount *big.Int
	// Epoch and Time the request was created at. Both the configured epoch
	// and time lockups must elapse from here before withdrawal.
	Epoch uint64
	Time  uint64
}

type requestKey struct {
	account   orion.Address
	validator uint64
	requestID uint64
}

func (k requestKey) Bytes() []byte {
	b := make([]byte, 0, 36)
	b = append(b, k.account.Bytes()...)
	var num [8]byte
	binary.BigEndian.PutUint64(num[:], k.validator)
	b = append(b, num[:]...)
	binary.BigEndian.PutUint64(num[:], k.requestID)
	return append(b, num[:]...)
}

// Service exposes the withdrawal request ledger.
type Service struct {
	requests *storage.Mapping[requestKey, *Request]
}

// New creates the ledger service.
func New(ctx *storage.Context) *Service {
	return &Service{
		requests: storage.NewMapping[requestKey, *Request](ctx, slotRequests),
	}
}

// Create records a new request. The request ID is chosen by the caller and
// must be unused for the (account, validator) pair.
func (s *Service) Create(account orion.Address, validator, requestID uint64, amount *big.Int, epoch, time uint64) error {
	key := requestKey{account, validator, requestID}
	exists, err := s.requests.Has(key)
	if err != nil {
		return errors.Wrap(err, "failed to probe request")
	}
	if exists {
		return errRequestExists
	}
	req := &Request{Amount: amount, Epoch: epoch, Time: time}
	if err := s.requests.Set(key, req, true); err != nil {
		return errors.Wrap(err, "failed to store request")
	}
	return nil
}

// Get returns the pending request, failing when it does not exist.
func (s *Service) Get(account orion.Address, validator, requestID uint64) (*Request, error) {
	key := requestKey{account, validator, requestID}
	exists, err := s.requests.Has(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to probe request")
	}
	if !exists {
		return nil, errRequestMissing
	}
	req, err := s.requests.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get request")
	}
	return req, nil
}

// Delete removes a consumed request.
func (s *Service) Delete(account orion.Address, validator, requestID uint64) error {
	if err := s.requests.Delete(requestKey{account, validator, requestID}); err != nil {
		return errors.Wrap(err, "failed to delete request")
	}
	return nil
}
