// Package giftclient is the typed ledger client for the cGIFT token
// contract: it packs calldata, submits transactions through a Backend,
// parses receipt events and maps contract reverts onto the client error
// taxonomy.
package giftclient

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/params"
)

// Client wraps one deployed cGIFT token contract.
type Client struct {
	contract common.Address
	backend  Backend
	logger   log.Logger
}

func New(contract common.Address, backend Backend) *Client {
	return &Client{
		contract: contract,
		backend:  backend,
		logger:   log.New("module", "giftclient", "contract", contract),
	}
}

// Address returns the contract address.
func (c *Client) Address() common.Address {
	return c.contract
}

// From returns the transaction origin of the underlying backend.
func (c *Client) From() common.Address {
	return c.backend.From()
}

// Wrap deposits valueWei of native value, minting confidential balance 1:1
// in minor units.
func (c *Client) Wrap(ctx context.Context, valueWei *big.Int) (*types.Receipt, error) {
	data, err := giftABI.Pack("wrap")
	if err != nil {
		return nil, err
	}
	return c.backend.Submit(ctx, c.contract, valueWei, data)
}

// PrepareUnwrap commits an encrypted amount for redemption and returns the
// prepared handle from the UnwrapPrepared event.
func (c *Client) PrepareUnwrap(ctx context.Context, encryptedAmount gift.Handle, inputProof []byte) (gift.Handle, error) {
	data, err := giftABI.Pack("prepareUnwrap", [32]byte(encryptedAmount), inputProof)
	if err != nil {
		return gift.Handle{}, err
	}
	receipt, err := c.backend.Submit(ctx, c.contract, nil, data)
	if err != nil {
		return gift.Handle{}, err
	}
	lg, ok := c.receiptEvent(receipt, "UnwrapPrepared")
	if !ok {
		return gift.Handle{}, fmt.Errorf("giftclient: receipt %s is missing UnwrapPrepared", receipt.TxHash)
	}
	vals, err := giftABI.Unpack("UnwrapPrepared", lg.Data)
	if err != nil {
		return gift.Handle{}, err
	}
	return gift.Handle(vals[0].([32]byte)), nil
}

// FinalizeUnwrap burns the prepared handle against its publicly decrypted
// cleartext. The cleartext is ABI-encoded as a single uint64, the layout
// the contract verifies the decryption proof over.
func (c *Client) FinalizeUnwrap(ctx context.Context, handle gift.Handle, clearMinor uint64, decryptionProof []byte) (*types.Receipt, error) {
	cleartexts, err := abi.Arguments{{Type: uint64Type}}.Pack(clearMinor)
	if err != nil {
		return nil, err
	}
	data, err := giftABI.Pack("finalizeUnwrap", [32]byte(handle), cleartexts, decryptionProof)
	if err != nil {
		return nil, err
	}
	return c.backend.Submit(ctx, c.contract, nil, data)
}

// CreateGift submits a new gift and returns the contract-assigned id from
// the GiftCreated event. Handle order is positional: amount first, then the
// three message chunks.
func (c *Client) CreateGift(ctx context.Context, recipient common.Address, amount gift.Handle, message [params.MessageChunkCount]gift.Handle, unlockTime uint64, inputProof []byte) (uint64, error) {
	data, err := giftABI.Pack("createGift", recipient,
		[32]byte(amount), [32]byte(message[0]), [32]byte(message[1]), [32]byte(message[2]),
		unlockTime, inputProof)
	if err != nil {
		return 0, err
	}
	receipt, err := c.backend.Submit(ctx, c.contract, nil, data)
	if err != nil {
		return 0, err
	}
	lg, ok := c.receiptEvent(receipt, "GiftCreated")
	if !ok {
		return 0, fmt.Errorf("giftclient: receipt %s is missing GiftCreated", receipt.TxHash)
	}
	id := new(big.Int).SetBytes(lg.Topics[1][:])
	c.logger.Info("gift created", "id", id, "recipient", recipient, "unlock", unlockTime)
	return id.Uint64(), nil
}

// OpenGift submits the open transition. On success it returns the gift's
// ciphertext handles captured from the GiftOpened event; a nil result with
// nil error means the receipt carried no event and the caller should fall
// back to GetGiftHandles.
func (c *Client) OpenGift(ctx context.Context, id uint64) (*gift.Handles, error) {
	data, err := giftABI.Pack("openGift", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	receipt, err := c.backend.Submit(ctx, c.contract, nil, data)
	if err != nil {
		return nil, err
	}
	lg, ok := c.receiptEvent(receipt, "GiftOpened")
	if !ok {
		c.logger.Warn("open receipt is missing GiftOpened", "id", id, "tx", receipt.TxHash)
		return nil, nil
	}
	vals, err := giftABI.Unpack("GiftOpened", lg.Data)
	if err != nil {
		return nil, err
	}
	return handlesFromABI(vals[0].([32]byte), vals[1].([3][32]byte)), nil
}

// ClaimGift submits the claim transition.
func (c *Client) ClaimGift(ctx context.Context, id uint64) error {
	data, err := giftABI.Pack("claimGift", new(big.Int).SetUint64(id))
	if err != nil {
		return err
	}
	_, err = c.backend.Submit(ctx, c.contract, nil, data)
	return err
}

// GiftCount returns the total number of gifts ever created.
func (c *Client) GiftCount(ctx context.Context) (uint64, error) {
	vals, err := c.view(ctx, "giftCount")
	if err != nil {
		return 0, err
	}
	return vals[0].(*big.Int).Uint64(), nil
}

// GetGiftInfo fetches the public fields of a gift.
func (c *Client) GetGiftInfo(ctx context.Context, id uint64) (*gift.Gift, error) {
	vals, err := c.view(ctx, "getGiftInfo", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return &gift.Gift{
		ID:         id,
		Sender:     vals[0].(common.Address),
		Recipient:  vals[1].(common.Address),
		UnlockTime: vals[2].(uint64),
		Opened:     vals[3].(bool),
		Claimed:    vals[4].(bool),
	}, nil
}

// GetGiftHandles fetches the ciphertext handles of an opened gift, the
// recovery path when the open receipt is no longer at hand.
func (c *Client) GetGiftHandles(ctx context.Context, id uint64) (*gift.Handles, error) {
	vals, err := c.view(ctx, "getGiftHandles", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	return handlesFromABI(vals[0].([32]byte), vals[1].([3][32]byte)), nil
}

// GetSentGifts lists the ids of gifts sent by account, in creation order.
func (c *Client) GetSentGifts(ctx context.Context, account common.Address) ([]uint64, error) {
	return c.idList(ctx, "getSentGifts", account)
}

// GetReceivedGifts lists the ids of gifts addressed to account, in creation
// order.
func (c *Client) GetReceivedGifts(ctx context.Context, account common.Address) ([]uint64, error) {
	return c.idList(ctx, "getReceivedGifts", account)
}

// CanOpen reports whether the gift's time lock has elapsed on-chain.
func (c *Client) CanOpen(ctx context.Context, id uint64) (bool, error) {
	vals, err := c.view(ctx, "canOpen", new(big.Int).SetUint64(id))
	if err != nil {
		return false, err
	}
	return vals[0].(bool), nil
}

// TimeUntilUnlock returns the remaining lock time in seconds, zero once
// openable.
func (c *Client) TimeUntilUnlock(ctx context.Context, id uint64) (uint64, error) {
	vals, err := c.view(ctx, "timeUntilUnlock", new(big.Int).SetUint64(id))
	if err != nil {
		return 0, err
	}
	return vals[0].(*big.Int).Uint64(), nil
}

// ConfidentialBalanceOf returns the opaque balance handle of account.
func (c *Client) ConfidentialBalanceOf(ctx context.Context, account common.Address) (gift.Handle, error) {
	vals, err := c.view(ctx, "confidentialBalanceOf", account)
	if err != nil {
		return gift.Handle{}, err
	}
	return gift.Handle(vals[0].([32]byte)), nil
}

func (c *Client) view(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := giftABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := c.backend.Call(ctx, c.contract, data)
	if err != nil {
		return nil, err
	}
	return giftABI.Unpack(method, out)
}

func (c *Client) idList(ctx context.Context, method string, account common.Address) ([]uint64, error) {
	vals, err := c.view(ctx, method, account)
	if err != nil {
		return nil, err
	}
	raw := vals[0].([]*big.Int)
	ids := make([]uint64, len(raw))
	for i, v := range raw {
		ids[i] = v.Uint64()
	}
	return ids, nil
}

func (c *Client) receiptEvent(receipt *types.Receipt, name string) (*types.Log, bool) {
	ev, ok := giftABI.Events[name]
	if !ok {
		return nil, false
	}
	for _, lg := range receipt.Logs {
		if lg.Address == c.contract && len(lg.Topics) > 0 && lg.Topics[0] == ev.ID {
			return lg, true
		}
	}
	return nil, false
}

func handlesFromABI(amount [32]byte, message [3][32]byte) *gift.Handles {
	out := &gift.Handles{Amount: gift.Handle(amount)}
	for i, m := range message {
		out.Message[i] = gift.Handle(m)
	}
	return out
}

var uint64Type = mustNewType("uint64")

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}
