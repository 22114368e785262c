package giftflow_test

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/fhe"
	"github.com/cgift-network/cgift/giftclient"
	"github.com/cgift-network/cgift/giftdb"
	"github.com/cgift-network/cgift/giftflow"
)

var (
	contractAddr = common.HexToAddress("0x00000000000000000000000000000000000000cf")
	aliceAddr    = common.HexToAddress("0xaaa0000000000000000000000000000000000001")
	bobAddr      = common.HexToAddress("0xaaa0000000000000000000000000000000000002")
	carolAddr    = common.HexToAddress("0xaaa0000000000000000000000000000000000003")
)

var (
	fakeInputProof      = []byte("input-proof")
	fakeDecryptionProof = []byte("decryption-proof")
)

// fakeCoprocessor plays both the encryption service and the decryption
// service: it mints handles for plaintexts and hands the plaintexts back on
// decrypt.
type fakeCoprocessor struct {
	mu         sync.Mutex
	counter    uint64
	plaintexts map[gift.Handle]*uint256.Int
	nonPublic  map[gift.Handle]bool
	failUser   map[gift.Handle]bool

	publicErr   error // one-shot PublicDecrypt failure
	userHang    bool  // block UserDecrypt until the context expires
	userFetches map[gift.Handle]int
}

func newFakeCoprocessor() *fakeCoprocessor {
	return &fakeCoprocessor{
		plaintexts:  make(map[gift.Handle]*uint256.Int),
		nonPublic:   make(map[gift.Handle]bool),
		failUser:    make(map[gift.Handle]bool),
		userFetches: make(map[gift.Handle]int),
	}
}

func (c *fakeCoprocessor) register(v *uint256.Int) gift.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	var h gift.Handle
	copy(h[:], crypto.Keccak256(new(uint256.Int).SetUint64(c.counter).Bytes()))
	c.plaintexts[h] = v.Clone()
	return h
}

func (c *fakeCoprocessor) value(h gift.Handle) (*uint256.Int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.plaintexts[h]
	return v, ok
}

func (c *fakeCoprocessor) CreateEncryptedInput(_ context.Context, contract, signer common.Address) (fhe.Input, error) {
	return &fakeInput{cop: c}, nil
}

type fakeInput struct {
	cop    *fakeCoprocessor
	values []*uint256.Int
}

func (in *fakeInput) Add64(v uint64) {
	in.values = append(in.values, new(uint256.Int).SetUint64(v))
}

func (in *fakeInput) Add256(v *uint256.Int) {
	in.values = append(in.values, v.Clone())
}

func (in *fakeInput) Encrypt(context.Context) (*fhe.EncryptedInput, error) {
	out := &fhe.EncryptedInput{Proof: fakeInputProof}
	for _, v := range in.values {
		out.Handles = append(out.Handles, in.cop.register(v))
	}
	return out, nil
}

func (c *fakeCoprocessor) PublicDecrypt(_ context.Context, handles []gift.Handle) (*fhe.PublicDecryption, error) {
	c.mu.Lock()
	if err := c.publicErr; err != nil {
		c.publicErr = nil
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()
	out := &fhe.PublicDecryption{
		Values: make(map[gift.Handle]*uint256.Int, len(handles)),
		Proof:  fakeDecryptionProof,
	}
	for _, h := range handles {
		if c.nonPublic[h] {
			return nil, fhe.ErrUnsupportedHandle
		}
		v, ok := c.value(h)
		if !ok {
			return nil, fmt.Errorf("unknown handle %s", h.Hex())
		}
		out.Values[h] = v.Clone()
	}
	return out, nil
}

func (c *fakeCoprocessor) UserDecrypt(ctx context.Context, pairs []fhe.HandleContractPair, grant *fhe.Grant) (map[gift.Handle]*uint256.Int, error) {
	if grant == nil || len(grant.Signature) == 0 {
		return nil, fmt.Errorf("missing grant")
	}
	if c.userHang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	out := make(map[gift.Handle]*uint256.Int, len(pairs))
	for _, p := range pairs {
		if c.failUser[p.Handle] {
			return nil, fmt.Errorf("decryption oracle failure")
		}
		v, ok := c.value(p.Handle)
		if !ok {
			return nil, fmt.Errorf("unknown handle %s", p.Handle.Hex())
		}
		c.mu.Lock()
		c.userFetches[p.Handle]++
		c.mu.Unlock()
		out[p.Handle] = v.Clone()
	}
	return out, nil
}

// fakeLedger implements the contract semantics against the shared
// coprocessor: it resolves handles to plaintexts the way the homomorphic
// runtime would.
type fakeLedger struct {
	mu  sync.Mutex
	cop *fakeCoprocessor
	now func() uint64

	native   map[common.Address]*big.Int
	balances map[common.Address]uint64
	gifts    []*ledgerGift
	prepared map[gift.Handle]uint64

	suppressOpenEvent bool
	submissions       int
}

type ledgerGift struct {
	sender, recipient common.Address
	unlockTime        uint64
	opened, claimed   bool
	amountMinor       uint64
	amountHandle      gift.Handle
	messageHandles    [3]gift.Handle
}

func newFakeLedger(cop *fakeCoprocessor, now func() uint64) *fakeLedger {
	return &fakeLedger{
		cop:      cop,
		now:      now,
		native:   make(map[common.Address]*big.Int),
		balances: make(map[common.Address]uint64),
		prepared: make(map[gift.Handle]uint64),
	}
}

// fakeBackend binds one transaction origin to the shared ledger.
type fakeBackend struct {
	ledger *fakeLedger
	from   common.Address
}

func (b *fakeBackend) From() common.Address { return b.from }

func (b *fakeBackend) Call(_ context.Context, _ common.Address, data []byte) ([]byte, error) {
	return b.ledger.call(data)
}

func (b *fakeBackend) Submit(_ context.Context, _ common.Address, value *big.Int, data []byte) (*types.Receipt, error) {
	return b.ledger.submit(b.from, value, data)
}

func (l *fakeLedger) handleValue(h gift.Handle) (uint64, error) {
	v, ok := l.cop.value(h)
	if !ok {
		return 0, fmt.Errorf("ledger: unknown handle %s", h.Hex())
	}
	return v.Uint64(), nil
}

func (l *fakeLedger) giftByID(id uint64) (*ledgerGift, error) {
	if id >= uint64(len(l.gifts)) {
		return nil, gift.ErrUnknownGift
	}
	return l.gifts[id], nil
}

func (l *fakeLedger) submit(from common.Address, value *big.Int, data []byte) (*types.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submissions++

	abi := giftclient.ABI()
	method, err := abi.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	receipt := &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: common.BytesToHash(crypto.Keccak256(data)),
	}

	switch method.Name {
	case "wrap":
		if value == nil || value.Sign() <= 0 {
			return nil, fmt.Errorf("ledger: wrap needs value")
		}
		minor := new(big.Int).Div(value, big.NewInt(1_000_000_000_000))
		l.balances[from] += minor.Uint64()

	case "prepareUnwrap":
		if !bytes.Equal(args[1].([]byte), fakeInputProof) {
			return nil, fmt.Errorf("ledger: bad input proof")
		}
		amount, err := l.handleValue(gift.Handle(args[0].([32]byte)))
		if err != nil {
			return nil, err
		}
		if l.balances[from] < amount {
			return nil, fmt.Errorf("ledger: insufficient confidential balance")
		}
		l.balances[from] -= amount
		prepared := l.cop.register(new(uint256.Int).SetUint64(amount))
		l.prepared[prepared] = amount
		l.appendLog(receipt, "UnwrapPrepared",
			[]common.Hash{common.BytesToHash(from.Bytes())}, [32]byte(prepared))

	case "finalizeUnwrap":
		handle := gift.Handle(args[0].([32]byte))
		amount, ok := l.prepared[handle]
		if !ok {
			return nil, fmt.Errorf("ledger: no prepared unwrap for handle")
		}
		if !bytes.Equal(args[2].([]byte), fakeDecryptionProof) {
			return nil, fmt.Errorf("ledger: bad decryption proof")
		}
		clear, err := unpackCleartextUint64(args[1].([]byte))
		if err != nil || clear != amount {
			return nil, fmt.Errorf("ledger: cleartext does not match commitment")
		}
		delete(l.prepared, handle)
		wei := new(big.Int).Mul(new(big.Int).SetUint64(amount), big.NewInt(1_000_000_000_000))
		l.creditNative(from, wei)

	case "createGift":
		if !bytes.Equal(args[6].([]byte), fakeInputProof) {
			return nil, fmt.Errorf("ledger: bad input proof")
		}
		amountHandle := gift.Handle(args[1].([32]byte))
		amount, err := l.handleValue(amountHandle)
		if err != nil {
			return nil, err
		}
		if l.balances[from] < amount {
			return nil, fmt.Errorf("ledger: insufficient confidential balance")
		}
		l.balances[from] -= amount
		g := &ledgerGift{
			sender:       from,
			recipient:    args[0].(common.Address),
			unlockTime:   args[5].(uint64),
			amountMinor:  amount,
			amountHandle: amountHandle,
		}
		for i := 0; i < 3; i++ {
			g.messageHandles[i] = gift.Handle(args[2+i].([32]byte))
		}
		id := uint64(len(l.gifts))
		l.gifts = append(l.gifts, g)
		l.appendLog(receipt, "GiftCreated",
			[]common.Hash{
				common.BigToHash(new(big.Int).SetUint64(id)),
				common.BytesToHash(g.sender.Bytes()),
				common.BytesToHash(g.recipient.Bytes()),
			}, g.unlockTime)

	case "openGift":
		g, err := l.giftByID(args[0].(*big.Int).Uint64())
		if err != nil {
			return nil, err
		}
		if from != g.recipient {
			return nil, gift.ErrNotRecipient
		}
		if g.opened {
			return nil, gift.ErrAlreadyOpened
		}
		if l.now() < g.unlockTime {
			return nil, gift.ErrGiftLocked
		}
		g.opened = true
		if !l.suppressOpenEvent {
			var msg [3][32]byte
			for i, h := range g.messageHandles {
				msg[i] = h
			}
			l.appendLog(receipt, "GiftOpened",
				[]common.Hash{common.BigToHash(args[0].(*big.Int))},
				[32]byte(g.amountHandle), msg)
		}

	case "claimGift":
		g, err := l.giftByID(args[0].(*big.Int).Uint64())
		if err != nil {
			return nil, err
		}
		if from != g.recipient {
			return nil, gift.ErrNotRecipient
		}
		if !g.opened {
			return nil, gift.ErrGiftNotOpened
		}
		if g.claimed {
			return nil, gift.ErrAlreadyClaimed
		}
		g.claimed = true
		l.balances[g.recipient] += g.amountMinor

	default:
		return nil, fmt.Errorf("ledger: unexpected submission %s", method.Name)
	}
	return receipt, nil
}

func (l *fakeLedger) call(data []byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	abi := giftclient.ABI()
	method, err := abi.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "giftCount":
		return method.Outputs.Pack(new(big.Int).SetUint64(uint64(len(l.gifts))))

	case "getGiftInfo":
		g, err := l.giftByID(args[0].(*big.Int).Uint64())
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(g.sender, g.recipient, g.unlockTime, g.opened, g.claimed)

	case "getGiftHandles":
		g, err := l.giftByID(args[0].(*big.Int).Uint64())
		if err != nil {
			return nil, err
		}
		if !g.opened {
			return nil, gift.ErrGiftNotOpened
		}
		var msg [3][32]byte
		for i, h := range g.messageHandles {
			msg[i] = h
		}
		return method.Outputs.Pack([32]byte(g.amountHandle), msg)

	case "getSentGifts", "getReceivedGifts":
		account := args[0].(common.Address)
		var ids []*big.Int
		for i, g := range l.gifts {
			if (method.Name == "getSentGifts" && g.sender == account) ||
				(method.Name == "getReceivedGifts" && g.recipient == account) {
				ids = append(ids, new(big.Int).SetUint64(uint64(i)))
			}
		}
		return method.Outputs.Pack(ids)

	case "canOpen":
		g, err := l.giftByID(args[0].(*big.Int).Uint64())
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(l.now() >= g.unlockTime)

	case "timeUntilUnlock":
		g, err := l.giftByID(args[0].(*big.Int).Uint64())
		if err != nil {
			return nil, err
		}
		remaining := uint64(0)
		if now := l.now(); now < g.unlockTime {
			remaining = g.unlockTime - now
		}
		return method.Outputs.Pack(new(big.Int).SetUint64(remaining))

	case "confidentialBalanceOf":
		account := args[0].(common.Address)
		minor := l.balances[account]
		if minor == 0 {
			return method.Outputs.Pack([32]byte{})
		}
		h := l.cop.register(new(uint256.Int).SetUint64(minor))
		l.cop.nonPublic[h] = true
		return method.Outputs.Pack([32]byte(h))
	}
	return nil, fmt.Errorf("ledger: unexpected call %s", method.Name)
}

func (l *fakeLedger) appendLog(receipt *types.Receipt, event string, topics []common.Hash, args ...interface{}) {
	ev := giftclient.ABI().Events[event]
	data, err := ev.Inputs.NonIndexed().Pack(args...)
	if err != nil {
		panic(err)
	}
	receipt.Logs = append(receipt.Logs, &types.Log{
		Address: contractAddr,
		Topics:  append([]common.Hash{ev.ID}, topics...),
		Data:    data,
	})
}

func (l *fakeLedger) creditNative(account common.Address, wei *big.Int) {
	cur, ok := l.native[account]
	if !ok {
		cur = new(big.Int)
	}
	l.native[account] = new(big.Int).Add(cur, wei)
}

func unpackCleartextUint64(data []byte) (uint64, error) {
	typ, err := abi.NewType("uint64", "", nil)
	if err != nil {
		return 0, err
	}
	vals, err := abi.Arguments{{Type: typ}}.Unpack(data)
	if err != nil {
		return 0, err
	}
	v, ok := vals[0].(uint64)
	if !ok {
		return 0, fmt.Errorf("cleartext is not a uint64")
	}
	return v, nil
}

// env wires one shared ledger and coprocessor with per-account sessions
// under a controllable clock.
type env struct {
	t      *testing.T
	now    uint64
	cop    *fakeCoprocessor
	ledger *fakeLedger
	store  giftdb.Store
}

func newEnv(t *testing.T) *env {
	e := &env{t: t, now: 1_700_000_000, cop: newFakeCoprocessor(), store: giftdb.NewMemStore()}
	e.ledger = newFakeLedger(e.cop, func() uint64 { return e.now })
	return e
}

func (e *env) advance(seconds uint64) {
	e.now += seconds
}

func (e *env) session(addr common.Address, trackerPath string) *giftflow.Session {
	return e.sessionWith(addr, trackerPath, 0)
}

func (e *env) sessionWith(addr common.Address, trackerPath string, timeout time.Duration) *giftflow.Session {
	e.t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		e.t.Fatalf("generate key: %v", err)
	}
	client := giftclient.New(contractAddr, &fakeBackend{ledger: e.ledger, from: addr})
	neg := fhe.NewNegotiator(fhe.NewPrivateKeySigner(key), big.NewInt(55815), contractAddr)
	sess, err := giftflow.NewSession(giftflow.Config{
		Client:         client,
		Encryptor:      e.cop,
		Decryptor:      e.cop,
		Negotiator:     neg,
		Store:          e.store,
		TrackerPath:    trackerPath,
		DecryptTimeout: timeout,
		Now:            func() time.Time { return time.Unix(int64(e.now), 0) },
	})
	if err != nil {
		e.t.Fatalf("NewSession: %v", err)
	}
	return sess
}
