package chain

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/deepfamily/identity-zk/models"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	uint256Pair, _  = abi.NewType("uint256[2]", "", nil)
	uint256Pair2, _ = abi.NewType("uint256[2][2]", "", nil)
	bigPtr          = reflect.TypeOf((*big.Int)(nil))
)

// ProofArguments builds the ABI argument list
// (uint256[2] a, uint256[2][2] b, uint256[2] c, uint256[n] publicSignals)
func ProofArguments(n int) (abi.Arguments, error) {
	signals, err := abi.NewType(fmt.Sprintf("uint256[%d]", n), "", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build signal type: %w", err)
	}
	return abi.Arguments{
		{Name: "a", Type: uint256Pair},
		{Name: "b", Type: uint256Pair2},
		{Name: "c", Type: uint256Pair},
		{Name: "publicSignals", Type: signals},
	}, nil
}

// EncodeProofArguments ABI-encodes a normalized proof and its signals the way
// the registry's proof-accepting function receives them
func EncodeProofArguments(p models.Proof, signals []string) ([]byte, error) {
	if len(signals) == 0 {
		return nil, fmt.Errorf("no public signals")
	}
	args, err := ProofArguments(len(signals))
	if err != nil {
		return nil, err
	}

	a, err := pair(p.A)
	if err != nil {
		return nil, fmt.Errorf("a: %w", err)
	}
	b0, err := pair(p.B[0])
	if err != nil {
		return nil, fmt.Errorf("b[0]: %w", err)
	}
	b1, err := pair(p.B[1])
	if err != nil {
		return nil, fmt.Errorf("b[1]: %w", err)
	}
	c, err := pair(p.C)
	if err != nil {
		return nil, fmt.Errorf("c: %w", err)
	}

	pub := reflect.New(reflect.ArrayOf(len(signals), bigPtr)).Elem()
	for i, s := range signals {
		v, err := parseUint256(s)
		if err != nil {
			return nil, fmt.Errorf("public signal %d: %w", i, err)
		}
		pub.Index(i).Set(reflect.ValueOf(v))
	}

	data, err := args.Pack(a, [2][2]*big.Int{b0, b1}, c, pub.Interface())
	if err != nil {
		return nil, fmt.Errorf("failed to encode proof arguments: %w", err)
	}
	return data, nil
}

// ProofArgumentsHex is EncodeProofArguments as 0x-prefixed hex, ready to be
// appended to a function selector
func ProofArgumentsHex(p models.Proof, signals []string) (string, error) {
	data, err := EncodeProofArguments(p, signals)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(data), nil
}

// SolidityCalldata renders the arguments as snarkjs' soliditycalldata does:
// ["0x..","0x.."],[["0x..","0x.."],["0x..","0x.."]],["0x..","0x.."],["0x..",...]
func SolidityCalldata(p models.Proof, signals []string) (string, error) {
	hexed := func(values ...string) (string, error) {
		out := make([]string, len(values))
		for i, s := range values {
			v, err := parseUint256(s)
			if err != nil {
				return "", err
			}
			out[i] = fmt.Sprintf("%q", fmt.Sprintf("0x%064x", v))
		}
		return "[" + strings.Join(out, ",") + "]", nil
	}

	var parts []string
	for _, group := range [][]string{p.A[:], p.B[0][:], p.B[1][:], p.C[:], signals} {
		s, err := hexed(group...)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return fmt.Sprintf("%s,[%s,%s],%s,%s", parts[0], parts[1], parts[2], parts[3], parts[4]), nil
}

func pair(v [2]string) ([2]*big.Int, error) {
	var out [2]*big.Int
	for i, s := range v {
		n, err := parseUint256(s)
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}

func parseUint256(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.BitLen() > 256 {
		return nil, fmt.Errorf("%q is not a uint256", s)
	}
	return v, nil
}
