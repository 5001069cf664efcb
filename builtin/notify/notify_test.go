// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package notify

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueOrderingAndDrain(t *testing.T) {
	q := NewQueue()
	q.Push(ValidatorWeightChanged{ValidatorID: 1, NewWeight: big.NewInt(100)})
	q.Push(ValidatorPubkeySet{ValidatorID: 1, Pubkey: []byte{0xAA}})

	msgs := q.Drain()
	assert.Len(t, msgs, 2)
	assert.IsType(t, ValidatorWeightChanged{}, msgs[0])
	assert.IsType(t, ValidatorPubkeySet{}, msgs[1])
	assert.Zero(t, q.Len())
}

func TestQueueRevert(t *testing.T) {
	q := NewQueue()
	q.Push(EpochAdvanceRequest{Count: 1})

	cp := q.NewCheckpoint()
	q.Push(NetworkVersionUpdated{Version: 2})
	q.Push(NetworkRulesUpdated{Diff: []byte("diff")})
	q.RevertTo(cp)

	msgs := q.Drain()
	assert.Len(t, msgs, 1)
	assert.IsType(t, EpochAdvanceRequest{}, msgs[0])
}
