package giftflow

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/fhe"
	"github.com/cgift-network/cgift/internal/gifttracker"
)

type UnwrapResult struct {
	Amount string
	Minor  uint64
	TxHash common.Hash
}

// Unwrap redeems confidential balance back to native value through three
// strictly sequential phases: commit the amount on-chain via prepareUnwrap,
// publicly decrypt the prepared handle, then finalize with the cleartext
// and its decryption proof. The prepared handle is recorded in the tracker
// before phase two, so a run interrupted after prepare resumes with
// ResumeUnwrap instead of preparing again.
func (s *Session) Unwrap(ctx context.Context, amount string) (*UnwrapResult, error) {
	minor, err := gift.EncodeAmount(amount)
	if err != nil {
		return nil, err
	}
	if minor == 0 {
		return nil, gift.ErrInvalidAmount
	}
	enc, err := fhe.BuildEncryptedInput(ctx, s.enc, s.client.Address(), s.account, fhe.Uint64Value(minor))
	if err != nil {
		return nil, err
	}
	prepared, err := s.client.PrepareUnwrap(ctx, enc.Handles[0], enc.Proof)
	if err != nil {
		return nil, err
	}
	s.saveTracker(func(st *gifttracker.State) { st.PendingUnwrap = prepared.Hex() })
	return s.finishUnwrap(ctx, prepared)
}

// ResumeUnwrap finishes an unwrap whose prepare confirmed but whose
// finalize never ran. A prepared handle with no finalize is inert on the
// ledger; nothing is lost by leaving it, but the balance stays debited
// until the pipeline completes.
func (s *Session) ResumeUnwrap(ctx context.Context) (*UnwrapResult, error) {
	st := s.loadTracker()
	if st == nil || st.PendingUnwrap == "" {
		return nil, ErrNoPendingUnwrap
	}
	prepared, err := gift.HandleFromHex(st.PendingUnwrap)
	if err != nil {
		return nil, fmt.Errorf("giftflow: corrupt pending unwrap record: %w", err)
	}
	s.logger.Info("resuming unwrap", "handle", prepared.Hex())
	return s.finishUnwrap(ctx, prepared)
}

func (s *Session) finishUnwrap(ctx context.Context, prepared gift.Handle) (*UnwrapResult, error) {
	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	res, err := s.dec.PublicDecrypt(dctx, []gift.Handle{prepared})
	cancel()
	if err != nil {
		return nil, decryptErr(err)
	}
	v, ok := res.Values[prepared]
	if !ok {
		return nil, fmt.Errorf("giftflow: public decryption omitted handle %s", prepared.Hex())
	}
	minor := v.Uint64()
	receipt, err := s.client.FinalizeUnwrap(ctx, prepared, minor, res.Proof)
	if err != nil {
		return nil, err
	}
	s.saveTracker(func(st *gifttracker.State) { st.PendingUnwrap = "" })
	amount := gift.DecodeAmount(minor)
	s.logger.Info("unwrap finalized", "amount", amount, "tx", receipt.TxHash)
	return &UnwrapResult{Amount: amount, Minor: minor, TxHash: receipt.TxHash}, nil
}
