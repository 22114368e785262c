package gift

import "errors"

// Client-side validation failures. Raised before anything is submitted, so
// they never cost gas and never leave partial state.
var (
	// ErrInvalidAmount indicates an amount that is empty, negative, zero,
	// or not representable in 6 decimal places.
	ErrInvalidAmount = errors.New("gift: invalid amount")

	// ErrInvalidRecipient indicates a malformed or empty recipient address.
	ErrInvalidRecipient = errors.New("gift: invalid recipient")

	// ErrInvalidUnlockTime indicates an unlock time not strictly in the future.
	ErrInvalidUnlockTime = errors.New("gift: unlock time must be in the future")
)

// Ledger-rejected submissions, mapped back from contract revert data and
// surfaced verbatim. The ledger guarantees no partial state change.
var (
	// ErrGiftLocked indicates an open attempt before the unlock time.
	ErrGiftLocked = errors.New("gift: gift is still locked")

	// ErrNotRecipient indicates an open or claim attempt by an address
	// other than the gift's recipient.
	ErrNotRecipient = errors.New("gift: caller is not the recipient")

	// ErrAlreadyOpened indicates a second open attempt.
	ErrAlreadyOpened = errors.New("gift: gift already opened")

	// ErrAlreadyClaimed indicates a second claim attempt.
	ErrAlreadyClaimed = errors.New("gift: gift already claimed")

	// ErrGiftNotOpened indicates a claim or handle read before open.
	ErrGiftNotOpened = errors.New("gift: gift not opened")

	// ErrUnknownGift indicates a gift id the ledger has never assigned.
	ErrUnknownGift = errors.New("gift: unknown gift")
)

// Off-ledger service failures. Always retryable by re-invoking the same
// step; the gift stays in a well-defined resumable state.
var (
	// ErrEncryptionUnavailable indicates the encryption service is not
	// initialized or unreachable.
	ErrEncryptionUnavailable = errors.New("gift: encryption service unavailable")

	// ErrSigningRejected indicates the requester declined to sign a
	// decryption grant.
	ErrSigningRejected = errors.New("gift: signing rejected")

	// ErrServiceUnavailable indicates the decryption service or wallet
	// link is not ready.
	ErrServiceUnavailable = errors.New("gift: service unavailable")

	// ErrDecryptionTimeout indicates a decryption exceeded its bounded
	// wait. The operation is safely retryable from the same state.
	ErrDecryptionTimeout = errors.New("gift: decryption timed out")
)
