package giftflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/fhe"
	"github.com/cgift-network/cgift/internal/gifttracker"
	"github.com/cgift-network/cgift/params"
)

// DecryptOptions narrows what a decrypt run resolves.
type DecryptOptions struct {
	// AmountOnly scopes the grant to the amount handle alone; the message
	// stays encrypted. The amount is the more sensitive of the two values
	// and may warrant the narrower request.
	AmountOnly bool
}

// DecryptGift resolves the cleartext contents of an opened gift. The
// amount and the message settle independently, each under its own grant
// and bounded wait: a message failure does not discard an amount that
// already resolved. Whatever settled is cached, the partial result is
// returned alongside the first error, and re-invoking the same call is
// safe: settled values are never re-requested and no ledger transaction is
// ever submitted here.
func (s *Session) DecryptGift(ctx context.Context, id uint64, opts DecryptOptions) (*gift.Contents, error) {
	g, err := s.client.GetGiftInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Recipient != s.account {
		return nil, gift.ErrNotRecipient
	}
	if !g.Opened {
		return nil, gift.ErrGiftNotOpened
	}

	contents := s.cachedContents(id)
	if contents.AmountSettled && (opts.AmountOnly || contents.MessageSettled) {
		return contents, nil
	}

	handles, err := s.client.GetGiftHandles(ctx, id)
	if err != nil {
		return nil, err
	}

	var firstErr error
	if !contents.AmountSettled {
		vals, err := s.userDecrypt(ctx, []gift.Handle{handles.Amount})
		switch {
		case err != nil:
			firstErr = err
		default:
			v, ok := vals[handles.Amount]
			if !ok {
				firstErr = fmt.Errorf("giftflow: decryption omitted the amount handle")
				break
			}
			contents.Amount = gift.DecodeAmount(v.Uint64())
			contents.AmountSettled = true
		}
	}

	if !opts.AmountOnly && !contents.MessageSettled {
		vals, err := s.userDecrypt(ctx, handles.Message[:])
		switch {
		case err != nil:
			if firstErr == nil {
				firstErr = err
			}
		default:
			var chunks [params.MessageChunkCount]*uint256.Int
			complete := true
			for i, h := range handles.Message {
				v, ok := vals[h]
				if !ok {
					complete = false
					break
				}
				chunks[i] = v
			}
			if !complete {
				if firstErr == nil {
					firstErr = fmt.Errorf("giftflow: decryption omitted message chunks")
				}
				break
			}
			contents.Message = gift.DecodeMessage(chunks)
			contents.MessageSettled = true
		}
	}

	s.storeContents(id, contents)
	s.recordProgress(id, func(p *gifttracker.Progress) {
		p.Opened = true
		p.AmountDecrypted = p.AmountDecrypted || contents.AmountSettled
		p.MessageDecrypted = p.MessageDecrypted || contents.MessageSettled
	})
	if firstErr != nil {
		return contents, firstErr
	}
	return contents, nil
}

// userDecrypt negotiates a fresh grant for the handle set and performs the
// authorized decryption under the session's bounded wait.
func (s *Session) userDecrypt(ctx context.Context, handles []gift.Handle) (map[gift.Handle]*uint256.Int, error) {
	contract := s.client.Address()
	grant, err := s.neg.RequestGrant(ctx, []common.Address{contract})
	if err != nil {
		return nil, err
	}
	pairs := make([]fhe.HandleContractPair, len(handles))
	for i, h := range handles {
		pairs[i] = fhe.HandleContractPair{Handle: h, Contract: contract}
	}
	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	vals, err := s.dec.UserDecrypt(dctx, pairs, grant)
	if err != nil {
		return nil, decryptErr(err)
	}
	return vals, nil
}

func decryptErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return gift.ErrDecryptionTimeout
	}
	return err
}
