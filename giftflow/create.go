package giftflow

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/fhe"
	"github.com/cgift-network/cgift/params"
)

// CreateGift validates everything client-side, seals the amount and the
// three message chunks into one encrypted input (positional order: amount
// first), and submits. The gift id is assigned by the ledger, never by the
// client.
func (s *Session) CreateGift(ctx context.Context, recipient common.Address, amount, message string, unlockTime uint64) (uint64, error) {
	if recipient == (common.Address{}) || recipient == s.account {
		return 0, gift.ErrInvalidRecipient
	}
	minor, err := gift.EncodeAmount(amount)
	if err != nil {
		return 0, err
	}
	if minor == 0 {
		return 0, gift.ErrInvalidAmount
	}
	if unlockTime <= s.nowUnix() {
		return 0, gift.ErrInvalidUnlockTime
	}
	chunks := gift.EncodeMessage(message)
	enc, err := fhe.BuildEncryptedInput(ctx, s.enc, s.client.Address(), s.account,
		fhe.Uint64Value(minor),
		fhe.Uint256Value(chunks[0]),
		fhe.Uint256Value(chunks[1]),
		fhe.Uint256Value(chunks[2]))
	if err != nil {
		return 0, err
	}
	var messageHandles [params.MessageChunkCount]gift.Handle
	copy(messageHandles[:], enc.Handles[1:])
	return s.client.CreateGift(ctx, recipient, enc.Handles[0], messageHandles, unlockTime, enc.Proof)
}
