package prover

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/deepfamily/identity-zk/models"
	"github.com/iden3/go-rapidsnark/types"
)

// ReadProofFile loads a proof written either by the prover (pi_a/pi_b/pi_c,
// raw order) or by this tool (a/b/c, verifier order). A {"proof": ...}
// wrapper is unwrapped first. Raw proofs are normalized, normalized proofs are
// returned unchanged.
func ReadProofFile(path string) (models.Proof, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Proof{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	p, err := ParseProof(path, data)
	if err != nil {
		return models.Proof{}, err
	}
	return p, nil
}

// ParseProof decodes a proof document, see ReadProofFile
func ParseProof(circuit string, data []byte) (models.Proof, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return models.Proof{}, &models.ProofStructureError{Circuit: circuit, Reason: fmt.Sprintf("not a JSON object: %v", err)}
	}

	if inner, ok := fields["proof"]; ok {
		return ParseProof(circuit, inner)
	}

	switch {
	case fields["pi_a"] != nil:
		var raw types.ProofData
		if err := json.Unmarshal(data, &raw); err != nil {
			return models.Proof{}, &models.ProofStructureError{Circuit: circuit, Reason: err.Error()}
		}
		return NormalizeProof(circuit, &raw)
	case fields["a"] != nil:
		var p models.Proof
		if err := json.Unmarshal(data, &p); err != nil {
			return models.Proof{}, &models.ProofStructureError{Circuit: circuit, Reason: err.Error()}
		}
		if err := CheckProof(circuit, p); err != nil {
			return models.Proof{}, err
		}
		return p, nil
	default:
		return models.Proof{}, &models.ProofStructureError{Circuit: circuit, Reason: "no proof points found"}
	}
}
