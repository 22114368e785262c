package fhe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/nacl/box"

	"github.com/cgift-network/cgift/core/gift"
)

// RelayerClient talks to the HTTP relayer fronting the encryption
// coprocessor and the decryption service. It implements both Encryptor and
// Decryptor.
type RelayerClient struct {
	url    string
	client *http.Client
	logger log.Logger
}

// NewRelayerClient builds a client for the relayer at rawurl. Request
// deadlines come from the caller's context; the flows bound decrypt calls
// themselves.
func NewRelayerClient(rawurl string) *RelayerClient {
	return &RelayerClient{
		url:    strings.TrimRight(rawurl, "/"),
		client: &http.Client{},
		logger: log.New("module", "fhe"),
	}
}

type relayerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type inputProofRequest struct {
	ContractAddress common.Address `json:"contractAddress"`
	UserAddress     common.Address `json:"userAddress"`
	Bits            []uint         `json:"bits"`
	Values          []string       `json:"values"`
}

type inputProofResponse struct {
	Handles    []hexutil.Bytes `json:"handles"`
	InputProof hexutil.Bytes   `json:"inputProof"`
}

type publicDecryptRequest struct {
	Handles []string `json:"handles"`
}

type publicDecryptResponse struct {
	Values          map[string]string `json:"values"`
	DecryptionProof hexutil.Bytes     `json:"decryptionProof"`
}

type handleContractPairJSON struct {
	Handle          string         `json:"handle"`
	ContractAddress common.Address `json:"contractAddress"`
}

type userDecryptRequest struct {
	HandleContractPairs []handleContractPairJSON `json:"handleContractPairs"`
	PublicKey           string                   `json:"publicKey"`
	Signature           string                   `json:"signature"`
	RequesterAddress    common.Address           `json:"requesterAddress"`
	ContractAddresses   []common.Address         `json:"contractAddresses"`
	StartTimestamp      uint64                   `json:"startTimestamp"`
	DurationDays        uint64                   `json:"durationDays"`
}

type userDecryptResponse struct {
	// Per-handle sealed boxes, encrypted to the grant's public key.
	SealedValues map[string]hexutil.Bytes `json:"sealedValues"`
}

func (c *RelayerClient) CreateEncryptedInput(ctx context.Context, contract, signer common.Address) (Input, error) {
	if c == nil || c.url == "" {
		return nil, gift.ErrEncryptionUnavailable
	}
	return &relayerInput{client: c, contract: contract, signer: signer}, nil
}

type relayerInput struct {
	client   *RelayerClient
	contract common.Address
	signer   common.Address
	bits     []uint
	values   []string
}

func (in *relayerInput) Add64(v uint64) {
	in.bits = append(in.bits, 64)
	in.values = append(in.values, new(uint256.Int).SetUint64(v).Dec())
}

func (in *relayerInput) Add256(v *uint256.Int) {
	if v == nil {
		v = new(uint256.Int)
	}
	in.bits = append(in.bits, 256)
	in.values = append(in.values, v.Dec())
}

func (in *relayerInput) Encrypt(ctx context.Context) (*EncryptedInput, error) {
	req := inputProofRequest{
		ContractAddress: in.contract,
		UserAddress:     in.signer,
		Bits:            in.bits,
		Values:          in.values,
	}
	var resp inputProofResponse
	if err := in.client.post(ctx, "/v1/input-proof", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", gift.ErrEncryptionUnavailable, err)
	}
	out := &EncryptedInput{Proof: resp.InputProof}
	for _, raw := range resp.Handles {
		h, err := gift.HandleFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("fhe: relayer returned malformed handle %x", raw)
		}
		out.Handles = append(out.Handles, h)
	}
	return out, nil
}

func (c *RelayerClient) PublicDecrypt(ctx context.Context, handles []gift.Handle) (*PublicDecryption, error) {
	req := publicDecryptRequest{Handles: handleHexes(handles)}
	var resp publicDecryptResponse
	if err := c.post(ctx, "/v1/public-decrypt", req, &resp); err != nil {
		return nil, err
	}
	out := &PublicDecryption{
		Values: make(map[gift.Handle]*uint256.Int, len(resp.Values)),
		Proof:  resp.DecryptionProof,
	}
	for hex, dec := range resp.Values {
		h, err := gift.HandleFromHex(hex)
		if err != nil {
			return nil, fmt.Errorf("fhe: relayer returned malformed handle %q", hex)
		}
		v, err := uint256.FromDecimal(dec)
		if err != nil {
			return nil, fmt.Errorf("fhe: relayer returned malformed value %q", dec)
		}
		out.Values[h] = v
	}
	return out, nil
}

func (c *RelayerClient) UserDecrypt(ctx context.Context, pairs []HandleContractPair, grant *Grant) (map[gift.Handle]*uint256.Int, error) {
	req := userDecryptRequest{
		PublicKey:         hexutil.Encode(grant.PublicKey[:]),
		Signature:         hexutil.Encode(grant.Signature),
		RequesterAddress:  grant.Requester,
		ContractAddresses: grant.Contracts,
		StartTimestamp:    grant.StartTime,
		DurationDays:      grant.DurationDays,
	}
	for _, p := range pairs {
		req.HandleContractPairs = append(req.HandleContractPairs, handleContractPairJSON{
			Handle:          p.Handle.Hex(),
			ContractAddress: p.Contract,
		})
	}
	var resp userDecryptResponse
	if err := c.post(ctx, "/v1/user-decrypt", req, &resp); err != nil {
		return nil, err
	}
	out := make(map[gift.Handle]*uint256.Int, len(resp.SealedValues))
	for hex, sealed := range resp.SealedValues {
		h, err := gift.HandleFromHex(hex)
		if err != nil {
			return nil, fmt.Errorf("fhe: relayer returned malformed handle %q", hex)
		}
		plain, ok := box.OpenAnonymous(nil, sealed, &grant.PublicKey, &grant.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("fhe: sealed value for %s does not open under the grant keypair", h.Hex())
		}
		out[h] = new(uint256.Int).SetBytes(plain)
	}
	return out, nil
}

func (c *RelayerClient) post(ctx context.Context, path string, in, out interface{}) error {
	if c == nil || c.url == "" {
		return gift.ErrServiceUnavailable
	}
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", gift.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var relErr relayerError
		if json.Unmarshal(raw, &relErr) == nil && relErr.Code == "handle_not_public" {
			return ErrUnsupportedHandle
		}
		c.logger.Debug("relayer request failed", "path", path, "status", resp.StatusCode, "body", string(raw))
		if relErr.Message != "" {
			return fmt.Errorf("%w: relayer %s: %s", gift.ErrServiceUnavailable, path, relErr.Message)
		}
		return fmt.Errorf("%w: relayer %s: status %d", gift.ErrServiceUnavailable, path, resp.StatusCode)
	}
	return json.Unmarshal(raw, out)
}

func handleHexes(handles []gift.Handle) []string {
	out := make([]string, len(handles))
	for i, h := range handles {
		out[i] = h.Hex()
	}
	return out
}
