package prover

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/deepfamily/identity-zk/models"
	"github.com/iden3/go-rapidsnark/types"
)

// ToVerifierCoordinateOrder swaps the two field elements of each row of the
// G2 point. Provers print Fp2 elements as (c0, c1); the pairing precompile
// takes (c1, c0). Without the swap the proof is well formed but never verifies.
func ToVerifierCoordinateOrder(b [2][2]string) [2][2]string {
	return [2][2]string{
		{b[0][1], b[0][0]},
		{b[1][1], b[1][0]},
	}
}

// FromVerifierCoordinateOrder undoes ToVerifierCoordinateOrder
func FromVerifierCoordinateOrder(b [2][2]string) [2][2]string {
	return [2][2]string{
		{b[0][1], b[0][0]},
		{b[1][1], b[1][0]},
	}
}

// NormalizeProof checks the raw prover output and converts it to verifier
// order. The projective third coordinate of each point is dropped.
func NormalizeProof(circuit string, raw *types.ProofData) (models.Proof, error) {
	fail := func(format string, args ...any) (models.Proof, error) {
		return models.Proof{}, &models.ProofStructureError{Circuit: circuit, Reason: fmt.Sprintf(format, args...)}
	}

	if raw == nil {
		return fail("proof is missing")
	}
	if raw.Protocol != "" && raw.Protocol != "groth16" {
		return fail("unsupported protocol %q", raw.Protocol)
	}
	if len(raw.A) < 2 {
		return fail("pi_a has %d coordinates, want at least 2", len(raw.A))
	}
	if len(raw.C) < 2 {
		return fail("pi_c has %d coordinates, want at least 2", len(raw.C))
	}
	if len(raw.B) < 2 {
		return fail("pi_b has %d rows, want at least 2", len(raw.B))
	}
	for i := 0; i < 2; i++ {
		if len(raw.B[i]) != 2 {
			return fail("pi_b[%d] has %d elements, want 2", i, len(raw.B[i]))
		}
	}

	p := models.Proof{
		A: [2]string{raw.A[0], raw.A[1]},
		B: ToVerifierCoordinateOrder([2][2]string{
			{raw.B[0][0], raw.B[0][1]},
			{raw.B[1][0], raw.B[1][1]},
		}),
		C: [2]string{raw.C[0], raw.C[1]},
	}
	if err := CheckProof(circuit, p); err != nil {
		return models.Proof{}, err
	}
	return p, nil
}

// RawProof converts a normalized proof back to the snarkjs layout
func RawProof(p models.Proof) *types.ProofData {
	b := FromVerifierCoordinateOrder(p.B)
	return &types.ProofData{
		A:        []string{p.A[0], p.A[1], "1"},
		B:        [][]string{{b[0][0], b[0][1]}, {b[1][0], b[1][1]}, {"1", "0"}},
		C:        []string{p.C[0], p.C[1], "1"},
		Protocol: "groth16",
	}
}

// CheckProof verifies every coordinate is a canonical base field element
func CheckProof(circuit string, p models.Proof) error {
	coords := []struct{ name, value string }{
		{"a[0]", p.A[0]}, {"a[1]", p.A[1]},
		{"b[0][0]", p.B[0][0]}, {"b[0][1]", p.B[0][1]},
		{"b[1][0]", p.B[1][0]}, {"b[1][1]", p.B[1][1]},
		{"c[0]", p.C[0]}, {"c[1]", p.C[1]},
	}
	for _, c := range coords {
		if _, err := parseElement(c.value, fp.Modulus()); err != nil {
			return &models.ProofStructureError{Circuit: circuit, Reason: fmt.Sprintf("%s: %v", c.name, err)}
		}
	}
	return nil
}

// NormalizePublicSignals enforces the circuit's fixed arity. A short or long
// vector is an error, never padded or truncated.
func NormalizePublicSignals(circuit string, raw []string, arity int) ([]string, error) {
	if len(raw) != arity {
		return nil, &models.ProofStructureError{
			Circuit: circuit,
			Reason:  fmt.Sprintf("expected %d public signals, got %d", arity, len(raw)),
		}
	}
	out := make([]string, len(raw))
	for i, s := range raw {
		v, err := parseElement(s, fr.Modulus())
		if err != nil {
			return nil, &models.ProofStructureError{Circuit: circuit, Reason: fmt.Sprintf("public signal %d: %v", i, err)}
		}
		out[i] = v.String()
	}
	return out, nil
}

func parseElement(s string, modulus *big.Int) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%q is not a decimal integer", s)
	}
	if v.Sign() < 0 || v.Cmp(modulus) >= 0 {
		return nil, fmt.Errorf("%s is outside the field", s)
	}
	return v, nil
}
