package common

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/iden3/go-rapidsnark/types"
)

// FixtureCircuit exposes Public[i] = Secret^2 + i. It is small enough to run
// a full Groth16 setup in tests and in the verifier self-check.
type FixtureCircuit struct {
	Public []frontend.Variable `gnark:",public"`
	Secret frontend.Variable
}

// NewFixtureCircuit returns a circuit template with nbPublic public signals
func NewFixtureCircuit(nbPublic int) *FixtureCircuit {
	return &FixtureCircuit{Public: make([]frontend.Variable, nbPublic)}
}

func (c *FixtureCircuit) Define(api frontend.API) error {
	sq := api.Mul(c.Secret, c.Secret)
	for i := range c.Public {
		api.AssertIsEqual(c.Public[i], api.Add(sq, i))
	}
	return nil
}

// SetupCircuit compiles a circuit template and runs a fresh Groth16 setup
func SetupCircuit(circuitTemplate frontend.Circuit) (constraint.ConstraintSystem, groth16.ProvingKey, groth16.VerifyingKey, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuitTemplate)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to compile circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("setup failed: %w", err)
	}
	return ccs, pk, vk, nil
}

// Fixture is a genuine BN254 Groth16 proof in snarkjs JSON form
type Fixture struct {
	VerificationKey *VerificationKey
	Proof           *types.ProofData // raw prover coordinate order
	PublicSignals   []string
}

// MintFixture sets up FixtureCircuit with nbPublic signals, proves it for
// secret and exports key, proof and signals the way snarkjs writes them.
func MintFixture(nbPublic int, secret int64) (*Fixture, error) {
	ccs, pk, vk, err := SetupCircuit(NewFixtureCircuit(nbPublic))
	if err != nil {
		return nil, err
	}

	sq := new(big.Int).Mul(big.NewInt(secret), big.NewInt(secret))
	assignment := NewFixtureCircuit(nbPublic)
	assignment.Secret = secret
	signals := make([]string, nbPublic)
	for i := range assignment.Public {
		v := new(big.Int).Add(sq, big.NewInt(int64(i)))
		assignment.Public[i] = v
		signals[i] = v.String()
	}

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("failed to prove: %w", err)
	}

	bnProof, ok := proof.(*groth16_bn254.Proof)
	if !ok {
		return nil, fmt.Errorf("unexpected proof type %T", proof)
	}
	bnVK, ok := vk.(*groth16_bn254.VerifyingKey)
	if !ok {
		return nil, fmt.Errorf("unexpected verifying key type %T", vk)
	}

	return &Fixture{
		VerificationKey: exportVerificationKey(bnVK, nbPublic),
		Proof: &types.ProofData{
			A:        g1Strings(&bnProof.Ar),
			B:        g2Strings(&bnProof.Bs),
			C:        g1Strings(&bnProof.Krs),
			Protocol: "groth16",
		},
		PublicSignals: signals,
	}, nil
}

func exportVerificationKey(vk *groth16_bn254.VerifyingKey, nbPublic int) *VerificationKey {
	ic := make([][]string, len(vk.G1.K))
	for i := range vk.G1.K {
		ic[i] = g1Strings(&vk.G1.K[i])
	}
	return &VerificationKey{
		Protocol: "groth16",
		Curve:    "bn128",
		NPublic:  nbPublic,
		Alpha1:   g1Strings(&vk.G1.Alpha),
		Beta2:    g2Strings(&vk.G2.Beta),
		Gamma2:   g2Strings(&vk.G2.Gamma),
		Delta2:   g2Strings(&vk.G2.Delta),
		IC:       ic,
	}
}

// projective form with Z = 1, as snarkjs prints affine points
func g1Strings(p *curve.G1Affine) []string {
	return []string{p.X.String(), p.Y.String(), "1"}
}

func g2Strings(p *curve.G2Affine) [][]string {
	return [][]string{
		{p.X.A0.String(), p.X.A1.String()},
		{p.Y.A0.String(), p.Y.A1.String()},
		{"1", "0"},
	}
}
