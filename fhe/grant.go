package fhe

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"golang.org/x/crypto/nacl/box"

	"github.com/cgift-network/cgift/core/gift"
	"github.com/cgift-network/cgift/params"
)

// grantPrimaryType is the EIP-712 primary type the decryption service
// verifies grant signatures against.
const grantPrimaryType = "UserDecryptRequestVerification"

// Grant authorizes user decryption of handles under the listed contracts
// for a bounded validity window. The keypair is generated fresh per grant
// and never reused across handle sets; the private key never leaves the
// process.
type Grant struct {
	PublicKey    [32]byte
	PrivateKey   [32]byte
	Contracts    []common.Address
	Requester    common.Address
	StartTime    uint64
	DurationDays uint64
	Signature    []byte
}

// ExpiresAt returns the end of the grant's validity window.
func (g *Grant) ExpiresAt() time.Time {
	return time.Unix(int64(g.StartTime+g.DurationDays*86400), 0)
}

// TypedDataSigner signs EIP-712 structured data on behalf of an account.
type TypedDataSigner interface {
	Address() common.Address
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
}

// Negotiator obtains decryption grants from the session's signer. Grant
// requests are serialized: overlapping concurrent requests from one session
// would contend for the signer, so the second waits for the first.
type Negotiator struct {
	signer   TypedDataSigner
	chainID  *big.Int
	verifier common.Address
	now      func() time.Time

	mu sync.Mutex
}

// NewNegotiator wires a negotiator to the signer and the decryption
// service's EIP-712 domain (gateway chain id and verifying contract).
func NewNegotiator(signer TypedDataSigner, chainID *big.Int, verifier common.Address) *Negotiator {
	return &Negotiator{
		signer:   signer,
		chainID:  chainID,
		verifier: verifier,
		now:      time.Now,
	}
}

// RequestGrant issues a fresh grant scoped to the given contracts. A new
// keypair is generated on every call so a stale signature can never be
// replayed against unrelated ciphertexts.
func (n *Negotiator) RequestGrant(ctx context.Context, contracts []common.Address) (*Grant, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.signer == nil {
		return nil, gift.ErrServiceUnavailable
	}
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("fhe: generate grant keypair: %w", err)
	}
	start := uint64(n.now().Unix())
	data := grantTypedData(*pub, contracts, start, params.GrantValidityDays, n.chainID, n.verifier)
	sig, err := n.signer.SignTypedData(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gift.ErrSigningRejected, err)
	}
	return &Grant{
		PublicKey:    *pub,
		PrivateKey:   *priv,
		Contracts:    append([]common.Address(nil), contracts...),
		Requester:    n.signer.Address(),
		StartTime:    start,
		DurationDays: params.GrantValidityDays,
		Signature:    sig,
	}, nil
}

func grantTypedData(publicKey [32]byte, contracts []common.Address, start, durationDays uint64, chainID *big.Int, verifier common.Address) apitypes.TypedData {
	addrs := make([]interface{}, len(contracts))
	for i, c := range contracts {
		addrs[i] = c.Hex()
	}
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			grantPrimaryType: {
				{Name: "publicKey", Type: "bytes"},
				{Name: "contractAddresses", Type: "address[]"},
				{Name: "startTimestamp", Type: "uint256"},
				{Name: "durationDays", Type: "uint256"},
			},
		},
		PrimaryType: grantPrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              "Decryption",
			Version:           "1",
			ChainId:           (*math.HexOrDecimal256)(chainID),
			VerifyingContract: verifier.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"publicKey":         hexutil.Encode(publicKey[:]),
			"contractAddresses": addrs,
			"startTimestamp":    strconv.FormatUint(start, 10),
			"durationDays":      strconv.FormatUint(durationDays, 10),
		},
	}
}
