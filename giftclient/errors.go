package giftclient

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/cgift-network/cgift/core/gift"
)

// revertSelectors maps contract custom-error selectors back onto the client
// error taxonomy, so a reverted submission surfaces as the same sentinel the
// client-side gates raise.
var revertSelectors = map[[4]byte]error{}

func init() {
	for name, sentinel := range map[string]error{
		"GiftLocked":     gift.ErrGiftLocked,
		"NotRecipient":   gift.ErrNotRecipient,
		"AlreadyOpened":  gift.ErrAlreadyOpened,
		"AlreadyClaimed": gift.ErrAlreadyClaimed,
		"GiftNotOpened":  gift.ErrGiftNotOpened,
		"InvalidGift":    gift.ErrUnknownGift,
	} {
		def, ok := giftABI.Errors[name]
		if !ok {
			panic("giftclient: abi is missing error " + name)
		}
		var sel [4]byte
		copy(sel[:], def.ID[:4])
		revertSelectors[sel] = sentinel
	}
}

// RevertError decodes revert data into a client error. Unrecognized or
// empty revert data yields nil and the caller keeps its transport error.
func RevertError(data []byte) error {
	if len(data) < 4 {
		return nil
	}
	var sel [4]byte
	copy(sel[:], data[:4])
	if err, ok := revertSelectors[sel]; ok {
		return err
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return fmt.Errorf("giftclient: execution reverted: %s", reason)
	}
	return nil
}
