package giftflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/fhe"
)

// ConfidentialBalance returns the opaque handle of the session account's
// balance without decrypting it.
func (s *Session) ConfidentialBalance(ctx context.Context) (gift.Handle, error) {
	return s.client.ConfidentialBalanceOf(ctx, s.account)
}

// DecryptBalance resolves the session account's own confidential balance.
// The public path is probed first and abandoned only on the service's
// typed not-publicly-decryptable signal; any other failure surfaces as-is
// rather than silently falling back.
func (s *Session) DecryptBalance(ctx context.Context) (string, error) {
	h, err := s.client.ConfidentialBalanceOf(ctx, s.account)
	if err != nil {
		return "", err
	}
	if h.IsZero() {
		return "0", nil
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	res, err := s.dec.PublicDecrypt(dctx, []gift.Handle{h})
	cancel()
	if err == nil {
		v, ok := res.Values[h]
		if !ok {
			return "", fmt.Errorf("giftflow: public decryption omitted the balance handle")
		}
		return gift.DecodeAmount(v.Uint64()), nil
	}
	if !errors.Is(err, fhe.ErrUnsupportedHandle) {
		return "", decryptErr(err)
	}

	vals, err := s.userDecrypt(ctx, []gift.Handle{h})
	if err != nil {
		return "", err
	}
	v, ok := vals[h]
	if !ok {
		return "", fmt.Errorf("giftflow: decryption omitted the balance handle")
	}
	return gift.DecodeAmount(v.Uint64()), nil
}
