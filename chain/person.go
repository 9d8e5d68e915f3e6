// Package chain holds the off-chain halves of the registry contract's
// bindings: the person identifier it derives from public signals and the
// argument encoding of its proof-accepting call.
package chain

import (
	"fmt"
	"math/big"

	"github.com/deepfamily/identity-zk/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var limbBound = new(big.Int).Lsh(big.NewInt(1), 128)

// PersonID is keccak256 of the 32-byte big-endian value hi<<128 | lo, the key
// the registry stores a person under.
func PersonID(hi, lo *big.Int) (ethcommon.Hash, error) {
	if !isLimb(hi) || !isLimb(lo) {
		return ethcommon.Hash{}, fmt.Errorf("person limbs must be 128-bit values")
	}
	d := common.Limb128Pair{Hi: hi, Lo: lo}.Digest()
	return crypto.Keccak256Hash(d[:]), nil
}

// PersonIDFromSignals derives the identifier from publicSignals[0..1]
func PersonIDFromSignals(signals []string) (ethcommon.Hash, error) {
	if len(signals) < 2 {
		return ethcommon.Hash{}, fmt.Errorf("need at least 2 public signals, got %d", len(signals))
	}
	hi, ok := new(big.Int).SetString(signals[0], 10)
	if !ok {
		return ethcommon.Hash{}, fmt.Errorf("public signal 0 %q is not a decimal integer", signals[0])
	}
	lo, ok := new(big.Int).SetString(signals[1], 10)
	if !ok {
		return ethcommon.Hash{}, fmt.Errorf("public signal 1 %q is not a decimal integer", signals[1])
	}
	return PersonID(hi, lo)
}

func isLimb(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(limbBound) < 0
}
