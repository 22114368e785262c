// Package fhe drives the encryption coprocessor from the client side:
// building encrypted inputs bound to a contract and signer, negotiating
// time-boxed decryption grants, and talking to the relayer that fronts the
// decryption service.
package fhe

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/cgift-network/cgift/core/gift"
)

// ErrUnsupportedHandle reports a handle the decryption service cannot
// publicly decrypt. Callers probing for public decryptability fall back to
// the authorized path on exactly this error, never on a blanket catch.
var ErrUnsupportedHandle = errors.New("fhe: handle is not publicly decryptable")

// Encryptor mints encrypted inputs. All values added to one input share a
// single validity proof and are cryptographically bound to the
// (contract, signer) pair given at creation.
type Encryptor interface {
	CreateEncryptedInput(ctx context.Context, contract, signer common.Address) (Input, error)
}

// Input accumulates plaintext values for one encrypted input. Insertion
// order is significant: Encrypt returns one handle per value in the same
// order.
type Input interface {
	Add64(v uint64)
	Add256(v *uint256.Int)
	Encrypt(ctx context.Context) (*EncryptedInput, error)
}

// EncryptedInput is the sealed result of an encryption session: ciphertext
// handles in insertion order plus the proof binding them together. The
// proof must accompany the handles on submission, unmodified and unsplit.
type EncryptedInput struct {
	Handles []gift.Handle
	Proof   []byte
}

// HandleContractPair scopes a handle to the contract it belongs to for
// authorized decryption.
type HandleContractPair struct {
	Handle   gift.Handle
	Contract common.Address
}

// PublicDecryption is the result of a public decrypt: cleartext values per
// handle plus the decryption proof the ledger verifies on finalize.
type PublicDecryption struct {
	Values map[gift.Handle]*uint256.Int
	Proof  []byte
}

// Decryptor is the decryption service surface the client consumes.
type Decryptor interface {
	// PublicDecrypt reveals the given handles to everyone. No grant is
	// required; it fails with ErrUnsupportedHandle for handles that are
	// not flagged publicly decryptable.
	PublicDecrypt(ctx context.Context, handles []gift.Handle) (*PublicDecryption, error)

	// UserDecrypt reveals the given handles only to the holder of the
	// grant's keypair.
	UserDecrypt(ctx context.Context, pairs []HandleContractPair, grant *Grant) (map[gift.Handle]*uint256.Int, error)
}
