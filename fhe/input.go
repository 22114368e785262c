package fhe

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/cgift-network/cgift/core/gift"
)

// Value is one plaintext queued into an encrypted input.
type Value struct {
	Bits  uint
	Small uint64
	Big   *uint256.Int
}

// Uint64Value wraps a 64-bit plaintext, the width of token amounts.
func Uint64Value(v uint64) Value {
	return Value{Bits: 64, Small: v}
}

// Uint256Value wraps a 256-bit plaintext, the width of message chunks.
func Uint256Value(v *uint256.Int) Value {
	return Value{Bits: 256, Big: v}
}

// BuildEncryptedInput runs one encryption session: it binds the given values
// to (contract, signer) in order and seals them into handles plus a proof.
// The handle at index i corresponds to values[i].
func BuildEncryptedInput(ctx context.Context, enc Encryptor, contract, signer common.Address, values ...Value) (*EncryptedInput, error) {
	if enc == nil {
		return nil, gift.ErrEncryptionUnavailable
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("fhe: empty encrypted input")
	}
	in, err := enc.CreateEncryptedInput(ctx, contract, signer)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		switch v.Bits {
		case 64:
			in.Add64(v.Small)
		case 256:
			in.Add256(v.Big)
		default:
			return nil, fmt.Errorf("fhe: unsupported value width %d", v.Bits)
		}
	}
	out, err := in.Encrypt(ctx)
	if err != nil {
		return nil, err
	}
	if len(out.Handles) != len(values) {
		return nil, fmt.Errorf("fhe: encrypted input returned %d handles for %d values", len(out.Handles), len(values))
	}
	return out, nil
}
