// Package gift defines the data model of the cGIFT confidential gift token:
// ciphertext handles, the public gift record, the plaintext codec and the
// client error taxonomy.
package gift

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/cgift-network/cgift/params"
)

// HandleSize is the byte length of a ciphertext handle.
const HandleSize = 32

// Handle is an opaque reference to an encrypted value held by the
// coprocessor. The client never interprets its contents; it only passes
// handles between the ledger and the decryption service.
type Handle [HandleSize]byte

var errInvalidHandle = errors.New("gift: invalid handle length")

// HandleFromBytes converts b to a Handle, requiring exactly HandleSize bytes.
func HandleFromBytes(b []byte) (Handle, error) {
	if len(b) != HandleSize {
		return Handle{}, errInvalidHandle
	}
	var h Handle
	copy(h[:], b)
	return h, nil
}

// HandleFromHex parses a 0x-prefixed hex handle.
func HandleFromHex(s string) (Handle, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Handle{}, errInvalidHandle
	}
	return HandleFromBytes(b)
}

func (h Handle) Hex() string {
	return hexutil.Encode(h[:])
}

func (h Handle) IsZero() bool {
	return h == Handle{}
}

// Gift mirrors the public, never-encrypted fields of an on-chain gift.
// The ciphertext payload lives in Handles and is only released by the
// ledger once the gift has been opened.
type Gift struct {
	ID         uint64
	Sender     common.Address
	Recipient  common.Address
	UnlockTime uint64
	Opened     bool
	Claimed    bool
}

// Openable reports whether the time lock has elapsed. It is a pure time
// predicate, not a transaction.
func (g *Gift) Openable(now uint64) bool {
	return now >= g.UnlockTime
}

// Handles is the ciphertext payload of a gift: the encrypted amount plus
// the ordered message chunks.
type Handles struct {
	Amount  Handle
	Message [params.MessageChunkCount]Handle
}

// Contents is the decrypted view of a gift. Amount and message settle
// independently: a failed message decryption does not discard an amount
// that already resolved.
type Contents struct {
	Amount         string `json:"amount,omitempty"`
	AmountSettled  bool   `json:"amountSettled"`
	Message        string `json:"message,omitempty"`
	MessageSettled bool   `json:"messageSettled"`
}

// Settled reports whether both logical values have been resolved.
func (c *Contents) Settled() bool {
	return c.AmountSettled && c.MessageSettled
}
