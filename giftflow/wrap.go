package giftflow

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cgift-network/cgift/core/gift"
)

type WrapResult struct {
	AmountWei *big.Int
	TxHash    common.Hash
}

// Wrap deposits native value and receives confidential balance 1:1 in
// minor units. The ledger mints straight from the plaintext deposit, so no
// ciphertext is built client-side. Deposits below one minor unit are
// rejected before submission.
func (s *Session) Wrap(ctx context.Context, amount string) (*WrapResult, error) {
	wei, err := gift.EncodeWei(amount)
	if err != nil {
		return nil, err
	}
	receipt, err := s.client.Wrap(ctx, wei)
	if err != nil {
		return nil, err
	}
	s.logger.Info("wrap confirmed", "amount", amount, "tx", receipt.TxHash)
	return &WrapResult{AmountWei: wei, TxHash: receipt.TxHash}, nil
}
