package common

import (
	"math/big"
	"strings"

	"github.com/deepfamily/identity-zk/models"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// SubmitterBits bounds the account value bound into a proof
const SubmitterBits = 160

var submitterBound = new(big.Int).Lsh(big.NewInt(1), SubmitterBits)

// ParseSubmitter accepts a 0x-prefixed 20-byte account or a decimal string.
// field names the witness field (minter or submitter) in errors.
func ParseSubmitter(field, raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, models.NewValidationError(field, "value is required")
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if !ethcommon.IsHexAddress(s) {
			return nil, models.NewValidationError(field, "%q is not a 20-byte hex account", s)
		}
		return ethcommon.HexToAddress(s).Big(), nil
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, models.NewValidationError(field, "%q is not a decimal integer", s)
	}
	if err := CheckSubmitter(field, v); err != nil {
		return nil, err
	}
	return v, nil
}

// CheckSubmitter enforces 0 <= v < 2^160
func CheckSubmitter(field string, v *big.Int) error {
	if v == nil {
		return models.NewValidationError(field, "value is required")
	}
	if v.Sign() < 0 || v.Cmp(submitterBound) >= 0 {
		return models.NewValidationError(field, "%s is outside [0, 2^%d)", v.String(), SubmitterBits)
	}
	return nil
}

// SubmitterAddress renders a bound submitter value as a checksummed account
func SubmitterAddress(v *big.Int) string {
	return ethcommon.BigToAddress(v).Hex()
}
