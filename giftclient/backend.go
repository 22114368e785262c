package giftclient

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
)

// Backend is the ledger surface the client needs: read-only calls and
// signed submissions awaited to a receipt. A reverted execution comes back
// as an error, mapped through RevertError when the revert data is known.
type Backend interface {
	// From is the transaction origin of every submission.
	From() common.Address

	// Call executes a read-only contract call against the latest block.
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)

	// Submit signs, broadcasts and waits for inclusion. The returned
	// receipt always has a successful status.
	Submit(ctx context.Context, to common.Address, value *big.Int, data []byte) (*types.Receipt, error)
}

// rpcBackend drives a JSON-RPC node with a local signing key.
type rpcBackend struct {
	ec      *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	logger  log.Logger
}

// NewRPCBackend dials the node at rawurl and signs with key.
func NewRPCBackend(ctx context.Context, rawurl string, key *ecdsa.PrivateKey) (Backend, error) {
	ec, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("giftclient: dial %s: %w", rawurl, err)
	}
	chainID, err := ec.ChainID(ctx)
	if err != nil {
		ec.Close()
		return nil, fmt.Errorf("giftclient: chain id: %w", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	return &rpcBackend{
		ec:      ec,
		key:     key,
		from:    from,
		chainID: chainID,
		logger:  log.New("module", "giftclient", "from", from),
	}, nil
}

func (b *rpcBackend) From() common.Address {
	return b.from
}

func (b *rpcBackend) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := b.ec.CallContract(ctx, ethereum.CallMsg{From: b.from, To: &to, Data: data}, nil)
	if err != nil {
		if mapped := RevertError(revertData(err)); mapped != nil {
			return nil, mapped
		}
		return nil, err
	}
	return out, nil
}

func (b *rpcBackend) Submit(ctx context.Context, to common.Address, value *big.Int, data []byte) (*types.Receipt, error) {
	msg := ethereum.CallMsg{From: b.from, To: &to, Value: value, Data: data}

	// Preflight the call: a raw send only reports status 0, the eth_call
	// error carries the custom-error revert data.
	if _, err := b.ec.CallContract(ctx, msg, nil); err != nil {
		if mapped := RevertError(revertData(err)); mapped != nil {
			return nil, mapped
		}
		return nil, err
	}
	nonce, err := b.ec.PendingNonceAt(ctx, b.from)
	if err != nil {
		return nil, err
	}
	gasPrice, err := b.ec.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	gas, err := b.ec.EstimateGas(ctx, msg)
	if err != nil {
		if mapped := RevertError(revertData(err)); mapped != nil {
			return nil, mapped
		}
		return nil, err
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    value,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(b.chainID), b.key)
	if err != nil {
		return nil, err
	}
	if err := b.ec.SendTransaction(ctx, signed); err != nil {
		return nil, err
	}
	b.logger.Debug("transaction submitted", "tx", signed.Hash(), "nonce", nonce, "gas", gas)

	receipt, err := bind.WaitMined(ctx, b.ec, signed)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("giftclient: transaction %s reverted", signed.Hash())
	}
	return receipt, nil
}

// revertData digs the revert payload out of a JSON-RPC error.
func revertData(err error) []byte {
	var de interface{ ErrorData() interface{} }
	if !errors.As(err, &de) {
		return nil
	}
	hexed, ok := de.ErrorData().(string)
	if !ok {
		return nil
	}
	data, decErr := hexutil.Decode(hexed)
	if decErr != nil {
		return nil
	}
	return data
}
