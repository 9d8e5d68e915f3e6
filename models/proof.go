package models

// Proof is a Groth16 proof in the coordinate order the on-chain pairing
// verifier expects. Every coordinate is a decimal string of a base field
// element. B rows are already swapped, see prover.ToVerifierCoordinateOrder.
type Proof struct {
	A [2]string    `json:"a"`
	B [2][2]string `json:"b"`
	C [2]string    `json:"c"`
}

// ProofBundle is the persisted result of one proving call
type ProofBundle struct {
	Circuit       string   `json:"circuit,omitempty"`
	Proof         Proof    `json:"proof"`
	PublicSignals []string `json:"publicSignals"`
}

// CompareResult is the outcome of an index-wise signal comparison
type CompareResult struct {
	Match      bool       `json:"match"`
	Mismatches []Mismatch `json:"mismatches"`
}
