package csn

import (
	"fmt"
	"math/big"

	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
)

const (
	// Name of the circuit and the base name of its artifacts
	Name = "salted-name"
	// Arity is the number of public signals the circuit exposes
	Arity = 5
)

// Request is the user-facing input of the salted-name circuit
type Request struct {
	FullName   string `json:"fullName"`
	Passphrase string `json:"passphrase,omitempty"`
	Minter     string `json:"minter"`
}

// Subject is a validated request
type Subject struct {
	FullName   string
	Passphrase string
	Minter     *big.Int
}

// Input is the witness file consumed by the proving toolchain.
// Field names are part of the circuit interface.
type Input struct {
	FullNameHash [32]byte `json:"fullNameHash"`
	SaltHash     [32]byte `json:"saltHash"`
	Minter       string   `json:"minter"`
}

// Subject validates the request. The name must not be blank and the minter
// must be below 2^160.
func (r Request) Subject() (*Subject, error) {
	if common.IsBlankName(r.FullName) {
		return nil, models.NewValidationError("fullName", "name must not be empty")
	}
	minter, err := common.ParseSubmitter("minter", r.Minter)
	if err != nil {
		return nil, err
	}
	return &Subject{FullName: r.FullName, Passphrase: r.Passphrase, Minter: minter}, nil
}

// BuildWitness assembles the circuit input for s
func BuildWitness(s *Subject) (*Input, error) {
	if err := common.CheckSubmitter("minter", s.Minter); err != nil {
		return nil, err
	}
	nameHash, saltHash, err := common.Digests(models.RoleSelf, models.IdentityRecord{
		FullName:   s.FullName,
		Passphrase: s.Passphrase,
	})
	if err != nil {
		return nil, err
	}
	return &Input{
		FullNameHash: nameHash,
		SaltHash:     saltHash,
		Minter:       s.Minter.String(),
	}, nil
}

// PublicSignals evaluates the circuit's public outputs from the witness:
// [saltedHi, saltedLo, nameHashHi, nameHashLo, minter].
func (in *Input) PublicSignals() ([]string, error) {
	minter, ok := new(big.Int).SetString(in.Minter, 10)
	if !ok {
		return nil, models.NewValidationError("minter", "%q is not a decimal integer", in.Minter)
	}
	if err := common.CheckSubmitter("minter", minter); err != nil {
		return nil, err
	}

	name := common.SplitLimbs(in.FullNameHash)
	salted, err := common.SaltedNameCommitment(name, common.SplitLimbs(in.SaltHash))
	if err != nil {
		return nil, err
	}
	saltedLimbs, err := common.SplitValue(salted)
	if err != nil {
		return nil, err
	}
	return common.BigsToStrings(saltedLimbs.Hi, saltedLimbs.Lo, name.Hi, name.Lo, minter), nil
}

// InputParser builds witness and expected signals from a JSON Request
type InputParser struct{}

func (InputParser) Parse(data []byte) (any, []string, error) {
	var req Request
	if err := common.DecodeRequest(data, &req); err != nil {
		return nil, nil, err
	}
	s, err := req.Subject()
	if err != nil {
		return nil, nil, err
	}
	in, err := BuildWitness(s)
	if err != nil {
		return nil, nil, err
	}
	expected, err := ExpectedSignals(s)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive expected signals: %w", err)
	}
	return in, expected, nil
}
