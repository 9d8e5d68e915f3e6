package common

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Digest256 is keccak256 over the UTF-8 bytes of a normalized string.
// The all-zero value is reserved for "absent" / "no passphrase".
type Digest256 [32]byte

// ZeroDigest is the absent sentinel
var ZeroDigest Digest256

var limbMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Digest hashes the UTF-8 encoding of s
func Digest(s string) Digest256 {
	return Digest256(crypto.Keccak256Hash([]byte(s)))
}

// DigestOrZero returns ZeroDigest for the empty string instead of hash("")
func DigestOrZero(s string) Digest256 {
	if s == "" {
		return ZeroDigest
	}
	return Digest(s)
}

func (d Digest256) IsZero() bool {
	return d == ZeroDigest
}

// Big interprets the digest as one big-endian 256-bit integer
func (d Digest256) Big() *big.Int {
	return new(big.Int).SetBytes(d[:])
}

func (d Digest256) Hex() string {
	return hexutil.Encode(d[:])
}

// Limb128Pair is the big-endian split of a 256-bit value:
// value == Hi<<128 | Lo.
type Limb128Pair struct {
	Hi *big.Int
	Lo *big.Int
}

// SplitLimbs splits the digest bytes as one big-endian integer. This is the
// circuit's byte-to-field convention, not the field's internal little-endian
// layout.
func SplitLimbs(d Digest256) Limb128Pair {
	return Limb128Pair{
		Hi: new(big.Int).SetBytes(d[:16]),
		Lo: new(big.Int).SetBytes(d[16:]),
	}
}

// SplitValue splits a non-negative integer below 2^256
func SplitValue(v *big.Int) (Limb128Pair, error) {
	if v == nil || v.Sign() < 0 || v.BitLen() > 256 {
		return Limb128Pair{}, fmt.Errorf("value does not fit 256 bits")
	}
	return Limb128Pair{
		Hi: new(big.Int).Rsh(v, 128),
		Lo: new(big.Int).And(v, limbMask),
	}, nil
}

// LimbsToValue recombines Hi<<128 | Lo
func LimbsToValue(p Limb128Pair) *big.Int {
	v := new(big.Int).Lsh(p.Hi, 128)
	return v.Or(v, p.Lo)
}

// Digest converts the limbs back to 32 bytes
func (p Limb128Pair) Digest() Digest256 {
	var d Digest256
	copy(d[:], PadTo32Bytes(LimbsToValue(p).Bytes()))
	return d
}

// Strings renders [hi, lo] as decimal strings
func (p Limb128Pair) Strings() [2]string {
	return [2]string{p.Hi.String(), p.Lo.String()}
}

// ZeroLimbs is the limb pair of an absent commitment
func ZeroLimbs() Limb128Pair {
	return Limb128Pair{Hi: new(big.Int), Lo: new(big.Int)}
}
