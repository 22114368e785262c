package giftclient

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// giftTokenABI is the application surface of the cGIFT token contract:
// wrap/unwrap of native value, gift creation, the open/claim transitions,
// and the read-only views the projection consumes.
const giftTokenABI = `[
	{"type":"function","name":"wrap","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"function","name":"prepareUnwrap","stateMutability":"nonpayable","inputs":[{"name":"encryptedAmount","type":"bytes32"},{"name":"inputProof","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"finalizeUnwrap","stateMutability":"nonpayable","inputs":[{"name":"handle","type":"bytes32"},{"name":"cleartexts","type":"bytes"},{"name":"decryptionProof","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"createGift","stateMutability":"nonpayable","inputs":[{"name":"recipient","type":"address"},{"name":"encryptedAmount","type":"bytes32"},{"name":"chunk0","type":"bytes32"},{"name":"chunk1","type":"bytes32"},{"name":"chunk2","type":"bytes32"},{"name":"unlockTime","type":"uint64"},{"name":"inputProof","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"openGift","stateMutability":"nonpayable","inputs":[{"name":"giftId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"claimGift","stateMutability":"nonpayable","inputs":[{"name":"giftId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"giftCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getGiftInfo","stateMutability":"view","inputs":[{"name":"giftId","type":"uint256"}],"outputs":[{"name":"sender","type":"address"},{"name":"recipient","type":"address"},{"name":"unlockTime","type":"uint64"},{"name":"opened","type":"bool"},{"name":"claimed","type":"bool"}]},
	{"type":"function","name":"getGiftHandles","stateMutability":"view","inputs":[{"name":"giftId","type":"uint256"}],"outputs":[{"name":"amountHandle","type":"bytes32"},{"name":"messageHandles","type":"bytes32[3]"}]},
	{"type":"function","name":"getSentGifts","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"getReceivedGifts","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"canOpen","stateMutability":"view","inputs":[{"name":"giftId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"timeUntilUnlock","stateMutability":"view","inputs":[{"name":"giftId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"confidentialBalanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bytes32"}]},
	{"type":"event","name":"Wrapped","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"UnwrapPrepared","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"handle","type":"bytes32","indexed":false}]},
	{"type":"event","name":"UnwrapFinalized","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"amount","type":"uint64","indexed":false}]},
	{"type":"event","name":"GiftCreated","anonymous":false,"inputs":[{"name":"giftId","type":"uint256","indexed":true},{"name":"sender","type":"address","indexed":true},{"name":"recipient","type":"address","indexed":true},{"name":"unlockTime","type":"uint64","indexed":false}]},
	{"type":"event","name":"GiftOpened","anonymous":false,"inputs":[{"name":"giftId","type":"uint256","indexed":true},{"name":"amountHandle","type":"bytes32","indexed":false},{"name":"messageHandles","type":"bytes32[3]","indexed":false}]},
	{"type":"event","name":"GiftClaimed","anonymous":false,"inputs":[{"name":"giftId","type":"uint256","indexed":true},{"name":"recipient","type":"address","indexed":true}]},
	{"type":"error","name":"GiftLocked","inputs":[]},
	{"type":"error","name":"NotRecipient","inputs":[]},
	{"type":"error","name":"AlreadyOpened","inputs":[]},
	{"type":"error","name":"AlreadyClaimed","inputs":[]},
	{"type":"error","name":"GiftNotOpened","inputs":[]},
	{"type":"error","name":"InvalidGift","inputs":[]}
]`

var giftABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(giftTokenABI))
	if err != nil {
		panic("giftclient: bad contract abi: " + err.Error())
	}
	return parsed
}()

// ABI returns the parsed contract ABI. Fakes use it to decode the calldata
// the client produces.
func ABI() abi.ABI {
	return giftABI
}
