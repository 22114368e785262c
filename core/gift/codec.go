package gift

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/cgift-network/cgift/params"
)

// EncodeAmount parses a decimal token amount into minor units (10^-6 of a
// whole token). It rejects signs, non-digits, and more than 6 fractional
// digits; an amount that does not scale to an integer is not representable.
func EncodeAmount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > params.TokenDecimals {
		return 0, ErrInvalidAmount
	}
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, ErrInvalidAmount
			}
		}
	}
	frac += strings.Repeat("0", params.TokenDecimals-len(frac))

	minor, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok || !minor.IsUint64() {
		return 0, ErrInvalidAmount
	}
	return minor.Uint64(), nil
}

// DecodeAmount renders minor units as a decimal string with up to 6
// fractional digits, dropping trailing zeros beyond what round-trips.
func DecodeAmount(minor uint64) string {
	whole := minor / params.MinorUnitsPerToken
	frac := minor % params.MinorUnitsPerToken
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	digits := strings.TrimRight(padFrac(frac), "0")
	return strconv.FormatUint(whole, 10) + "." + digits
}

func padFrac(frac uint64) string {
	s := strconv.FormatUint(frac, 10)
	return strings.Repeat("0", params.TokenDecimals-len(s)) + s
}

// EncodeWei converts a decimal token amount to the wei value of the matching
// native deposit. Amounts below one minor unit round to zero and are
// rejected before any submission.
func EncodeWei(s string) (*big.Int, error) {
	minor, err := EncodeAmount(s)
	if err != nil {
		return nil, err
	}
	if minor == 0 {
		return nil, ErrInvalidAmount
	}
	wei := new(big.Int).SetUint64(minor)
	return wei.Mul(wei, new(big.Int).SetUint64(params.WeiPerMinorUnit)), nil
}

// EncodeMessage packs UTF-8 text into the fixed three message chunks. Bytes
// beyond MaxMessageBytes are truncated silently. Each 31-byte window is
// packed big-endian with the text at the most significant end and zero
// padding behind it.
func EncodeMessage(text string) [params.MessageChunkCount]*uint256.Int {
	raw := []byte(text)
	if len(raw) > params.MaxMessageBytes {
		raw = raw[:params.MaxMessageBytes]
	}
	var out [params.MessageChunkCount]*uint256.Int
	for i := range out {
		var window [params.MessageChunkSize]byte
		if start := i * params.MessageChunkSize; start < len(raw) {
			copy(window[:], raw[start:])
		}
		out[i] = new(uint256.Int).SetBytes(window[:])
	}
	return out
}

// DecodeMessage reverses EncodeMessage. Every zero byte of each chunk is
// dropped, matching the packing scheme's padding convention; an embedded
// NUL in user-supplied text is indistinguishable from padding and is lost.
// This is a documented protocol limitation, not a decoder bug.
func DecodeMessage(chunks [params.MessageChunkCount]*uint256.Int) string {
	out := make([]byte, 0, params.MaxMessageBytes)
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		window := chunk.Bytes32()
		for _, b := range window[HandleSize-params.MessageChunkSize:] {
			if b != 0 {
				out = append(out, b)
			}
		}
	}
	return strings.TrimSpace(string(out))
}
