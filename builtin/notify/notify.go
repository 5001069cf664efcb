// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package notify implements the outbound notification queue the engines push
// messages into for the node driver to consume. The queue is checkpointed
// together with state, so messages from a reverted operation never leak out.
package notify

import (
	"math/big"

	"github.com/orionchain/orion/orion"
)

// Message is an outbound notification for the consensus client.
type Message interface {
	isMessage()
}

// ValidatorWeightChanged signals that the weight of a validator in the next
// epoch's set changed. A zero weight removes the validator from the set.
type ValidatorWeightChanged struct {
	ValidatorID uint64
	NewWeight   *big.Int
}

// ValidatorPubkeySet signals that a validator registered its pubkey.
type ValidatorPubkeySet struct {
	ValidatorID uint64
	Pubkey      []byte
}

// NetworkRulesUpdated carries an opaque network-rules diff.
type NetworkRulesUpdated struct {
	Diff []byte
}

// NetworkVersionUpdated announces a new network version.
type NetworkVersionUpdated struct {
	Version uint64
}

// EpochAdvanceRequest asks the client to advance the given number of epochs.
type EpochAdvanceRequest struct {
	Count uint64
}

// TreasuryResolved reports a previously unresolved treasury amount being paid.
type TreasuryResolved struct {
	Treasury orion.Address
	Amount   *big.Int
}

// ExtraRewardDistributed reports the post-rounding total credited by an
// extra-reward distribution, and the share burned up front.
type ExtraRewardDistributed struct {
	Epoch       uint64
	Distributed *big.Int
	Burnt       *big.Int
}

func (ValidatorWeightChanged) isMessage() {}
func (ValidatorPubkeySet) isMessage()     {}
func (NetworkRulesUpdated) isMessage()    {}
func (NetworkVersionUpdated) isMessage()  {}
func (EpochAdvanceRequest) isMessage()    {}
func (TreasuryResolved) isMessage()       {}
func (ExtraRewardDistributed) isMessage() {}

// Queue collects outbound messages in operation order.
type Queue struct {
	messages []Message
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a message.
func (q *Queue) Push(msg Message) {
	q.messages = append(q.messages, msg)
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	return len(q.messages)
}

// NewCheckpoint marks the current queue position.
func (q *Queue) NewCheckpoint() int {
	return len(q.messages)
}

// RevertTo drops all messages pushed after the checkpoint.
func (q *Queue) RevertTo(checkpoint int) {
	if checkpoint < len(q.messages) {
		q.messages = q.messages[:checkpoint]
	}
}

// Drain returns all queued messages and empties the queue.
func (q *Queue) Drain() []Message {
	out := q.messages
	q.messages = nil
	return out
}
