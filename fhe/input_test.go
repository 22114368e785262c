package fhe

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/cgift-network/cgift/core/gift"
)

type recordingEncryptor struct {
	contract common.Address
	signer   common.Address
}

type recordingInput struct {
	enc    *recordingEncryptor
	widths []uint
	values []*uint256.Int
}

func (e *recordingEncryptor) CreateEncryptedInput(_ context.Context, contract, signer common.Address) (Input, error) {
	e.contract, e.signer = contract, signer
	return &recordingInput{enc: e}, nil
}

func (in *recordingInput) Add64(v uint64) {
	in.widths = append(in.widths, 64)
	in.values = append(in.values, new(uint256.Int).SetUint64(v))
}

func (in *recordingInput) Add256(v *uint256.Int) {
	in.widths = append(in.widths, 256)
	in.values = append(in.values, v)
}

func (in *recordingInput) Encrypt(context.Context) (*EncryptedInput, error) {
	out := &EncryptedInput{Proof: []byte("proof")}
	for i := range in.values {
		var h gift.Handle
		copy(h[:], crypto.Keccak256([]byte{byte(i)}))
		out.Handles = append(out.Handles, h)
	}
	return out, nil
}

func TestBuildEncryptedInput(t *testing.T) {
	enc := &recordingEncryptor{}
	contract := common.HexToAddress("0x3333333333333333333333333333333333333333")
	signer := common.HexToAddress("0x4444444444444444444444444444444444444444")

	chunk := new(uint256.Int).SetUint64(777)
	out, err := BuildEncryptedInput(context.Background(), enc, contract, signer,
		Uint64Value(500_000), Uint256Value(chunk))
	if err != nil {
		t.Fatalf("BuildEncryptedInput: %v", err)
	}
	if len(out.Handles) != 2 {
		t.Fatalf("handle count = %d, want 2", len(out.Handles))
	}
	if len(out.Proof) == 0 {
		t.Fatal("missing proof")
	}
	if enc.contract != contract || enc.signer != signer {
		t.Fatal("input not bound to contract and signer")
	}
}

func TestBuildEncryptedInputNilEncryptor(t *testing.T) {
	_, err := BuildEncryptedInput(context.Background(), nil, common.Address{}, common.Address{}, Uint64Value(1))
	if !errors.Is(err, gift.ErrEncryptionUnavailable) {
		t.Fatalf("expected ErrEncryptionUnavailable, got %v", err)
	}
}

func TestBuildEncryptedInputEmpty(t *testing.T) {
	if _, err := BuildEncryptedInput(context.Background(), &recordingEncryptor{}, common.Address{}, common.Address{}); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestBuildEncryptedInputBadWidth(t *testing.T) {
	_, err := BuildEncryptedInput(context.Background(), &recordingEncryptor{}, common.Address{}, common.Address{}, Value{Bits: 128})
	if err == nil {
		t.Fatal("expected error for unsupported width")
	}
}
