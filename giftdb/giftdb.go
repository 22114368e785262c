// Package giftdb caches decrypted gift contents per account, so a new
// session does not renegotiate grants for gifts it already resolved. The
// cache holds plaintext the account owner has legitimately decrypted; it is
// advisory and can be deleted at any time.
package giftdb

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cgift-network/cgift/core/gift"
)

// Store is a point-lookup cache keyed by (account, gift id). A missing
// record is (nil, nil), not an error.
type Store interface {
	GetContents(account common.Address, id uint64) (*gift.Contents, error)
	PutContents(account common.Address, id uint64, c *gift.Contents) error
	Close() error
}

var contentsPrefix = []byte("gc-")

func contentsKey(account common.Address, id uint64) []byte {
	key := make([]byte, 0, len(contentsPrefix)+common.AddressLength+8)
	key = append(key, contentsPrefix...)
	key = append(key, account.Bytes()...)
	return binary.BigEndian.AppendUint64(key, id)
}
