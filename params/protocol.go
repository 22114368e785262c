// Package params holds protocol-level constants shared across the cGIFT
// client packages.
package params

import "time"

// Protocol-level frozen constants for cGIFT v1.
//
// Any change to these values is incompatible with deployed contracts and must
// be treated as a protocol upgrade.
const (
	// TokenDecimals is the fixed decimal scaling of the confidential token.
	TokenDecimals = 6

	// MinorUnitsPerToken is 10^TokenDecimals. One minor unit is the smallest
	// representable confidential quantity.
	MinorUnitsPerToken uint64 = 1_000_000

	// WeiPerMinorUnit maps one minor unit to 10^12 wei, so a whole token
	// wraps exactly one ether. Deposits below one minor unit round to zero
	// and are rejected client-side.
	WeiPerMinorUnit uint64 = 1_000_000_000_000

	// MessageChunkSize is the usable byte width of one encrypted message
	// chunk: 31 bytes packed big-endian into a 256-bit ciphertext.
	MessageChunkSize = 31

	// MessageChunkCount is the fixed number of chunks per gift message.
	MessageChunkCount = 3

	// MaxMessageBytes is the message capacity; longer UTF-8 input is
	// truncated silently before encryption.
	MaxMessageBytes = MessageChunkSize * MessageChunkCount

	// GrantValidityDays bounds the validity window of a decryption grant,
	// counted from its issuance timestamp.
	GrantValidityDays uint64 = 1
)

// DecryptTimeout bounds each decryption round trip against the relayer.
// A timed-out decryption is safely retryable from the same state.
const DecryptTimeout = 60 * time.Second
