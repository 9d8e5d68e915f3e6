package prover

import (
	"fmt"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
)

// Verify checks a normalized proof against a snarkjs verification key with
// gnark's BN254 Groth16 verifier. Malformed or off-curve points are reported
// as ProofStructureError; a well formed proof that fails the pairing check
// returns a plain error.
func Verify(circuit string, vkey *common.VerificationKey, proof models.Proof, signals []string) error {
	vk, err := convertVerificationKey(vkey)
	if err != nil {
		return fmt.Errorf("invalid verification key: %w", err)
	}
	if len(signals) != len(vk.G1.K)-1 {
		return &models.ProofStructureError{
			Circuit: circuit,
			Reason:  fmt.Sprintf("verification key expects %d public signals, got %d", len(vk.G1.K)-1, len(signals)),
		}
	}

	p, err := convertProof(proof)
	if err != nil {
		return &models.ProofStructureError{Circuit: circuit, Reason: err.Error()}
	}

	public := make(fr.Vector, len(signals))
	for i, s := range signals {
		v, err := parseElement(s, fr.Modulus())
		if err != nil {
			return &models.ProofStructureError{Circuit: circuit, Reason: fmt.Sprintf("public signal %d: %v", i, err)}
		}
		public[i].SetBigInt(v)
	}

	if err := groth16_bn254.Verify(p, vk, public); err != nil {
		return fmt.Errorf("proof verification failed: %w", err)
	}
	return nil
}

func convertVerificationKey(in *common.VerificationKey) (*groth16_bn254.VerifyingKey, error) {
	if in == nil {
		return nil, fmt.Errorf("verification key is missing")
	}
	if len(in.IC) == 0 {
		return nil, fmt.Errorf("IC is empty")
	}
	if in.NPublic != 0 && in.NPublic != len(in.IC)-1 {
		return nil, fmt.Errorf("nPublic is %d but IC has %d points", in.NPublic, len(in.IC))
	}

	vk := new(groth16_bn254.VerifyingKey)
	var err error
	if vk.G1.Alpha, err = g1Point("vk_alpha_1", in.Alpha1); err != nil {
		return nil, err
	}
	if vk.G2.Beta, err = g2Point("vk_beta_2", rawRows(in.Beta2)); err != nil {
		return nil, err
	}
	if vk.G2.Gamma, err = g2Point("vk_gamma_2", rawRows(in.Gamma2)); err != nil {
		return nil, err
	}
	if vk.G2.Delta, err = g2Point("vk_delta_2", rawRows(in.Delta2)); err != nil {
		return nil, err
	}

	vk.G1.K = make([]curve.G1Affine, len(in.IC))
	for i, ic := range in.IC {
		if vk.G1.K[i], err = g1Point(fmt.Sprintf("IC[%d]", i), ic); err != nil {
			return nil, err
		}
	}

	if err := vk.Precompute(); err != nil {
		return nil, fmt.Errorf("failed to precompute verification key: %w", err)
	}
	return vk, nil
}

func convertProof(p models.Proof) (*groth16_bn254.Proof, error) {
	var out groth16_bn254.Proof
	var err error
	if out.Ar, err = g1Point("a", p.A[:]); err != nil {
		return nil, err
	}
	if out.Bs, err = g2Point("b", FromVerifierCoordinateOrder(p.B)); err != nil {
		return nil, err
	}
	if out.Krs, err = g1Point("c", p.C[:]); err != nil {
		return nil, err
	}
	return &out, nil
}

// rawRows takes the first two rows of a snarkjs G2 point, which are in
// (c0, c1) order
func rawRows(rows [][]string) [2][2]string {
	var out [2][2]string
	for i := 0; i < 2 && i < len(rows); i++ {
		for j := 0; j < 2 && j < len(rows[i]); j++ {
			out[i][j] = rows[i][j]
		}
	}
	return out
}

func g1Point(name string, coords []string) (curve.G1Affine, error) {
	var p curve.G1Affine
	if len(coords) < 2 {
		return p, fmt.Errorf("%s: want 2 coordinates, got %d", name, len(coords))
	}
	if err := setFp(&p.X, coords[0]); err != nil {
		return p, fmt.Errorf("%s.x: %w", name, err)
	}
	if err := setFp(&p.Y, coords[1]); err != nil {
		return p, fmt.Errorf("%s.y: %w", name, err)
	}
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return p, fmt.Errorf("%s is not a point of the BN254 G1 subgroup", name)
	}
	return p, nil
}

// g2Point reads rows in prover (c0, c1) order
func g2Point(name string, rows [2][2]string) (curve.G2Affine, error) {
	var p curve.G2Affine
	fields := []struct {
		dst *fp.Element
		val string
		tag string
	}{
		{&p.X.A0, rows[0][0], "x.c0"},
		{&p.X.A1, rows[0][1], "x.c1"},
		{&p.Y.A0, rows[1][0], "y.c0"},
		{&p.Y.A1, rows[1][1], "y.c1"},
	}
	for _, f := range fields {
		if err := setFp(f.dst, f.val); err != nil {
			return p, fmt.Errorf("%s.%s: %w", name, f.tag, err)
		}
	}
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return p, fmt.Errorf("%s is not a point of the BN254 G2 subgroup", name)
	}
	return p, nil
}

func setFp(dst *fp.Element, s string) error {
	v, err := parseElement(s, fp.Modulus())
	if err != nil {
		return err
	}
	dst.SetBigInt(v)
	return nil
}
