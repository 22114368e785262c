package giftflow

import "errors"

var (
	// ErrNoPendingUnwrap means resume was requested but the tracker holds
	// no prepared handle.
	ErrNoPendingUnwrap = errors.New("giftflow: no pending unwrap to resume")

	// ErrAmountNotDecrypted gates the claim affordance until the gift's
	// amount has settled. The ledger itself would accept the claim; this
	// is a session-side safeguard and can be forced past.
	ErrAmountNotDecrypted = errors.New("giftflow: gift amount not decrypted yet")
)
