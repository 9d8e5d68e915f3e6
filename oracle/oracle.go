// Package oracle compares expected public signals with the ones a proof
// exposes. Expected vectors come from the circuit packages, which recompute
// them from raw identity fields without running the prover.
package oracle

import (
	"math/big"

	"github.com/deepfamily/identity-zk/models"
)

// Compare checks expected and actual index by index over the longer of the
// two vectors. An index present on one side only is a mismatch whose other
// side is nil.
func Compare(expected, actual []string) models.CompareResult {
	n := max(len(expected), len(actual))
	mismatches := []models.Mismatch{}
	for i := 0; i < n; i++ {
		var e, a *string
		if i < len(expected) {
			e = &expected[i]
		}
		if i < len(actual) {
			a = &actual[i]
		}
		if e != nil && a != nil && sameSignal(*e, *a) {
			continue
		}
		mismatches = append(mismatches, models.Mismatch{Index: i, Expected: e, Actual: a})
	}
	return models.CompareResult{Match: len(mismatches) == 0, Mismatches: mismatches}
}

// Check is Compare as an error: nil on match, otherwise a
// SignalMismatchError carrying every differing index.
func Check(circuit string, expected, actual []string) error {
	res := Compare(expected, actual)
	if res.Match {
		return nil
	}
	return &models.SignalMismatchError{Circuit: circuit, Mismatches: res.Mismatches}
}

// sameSignal compares decimal values, so "007" equals "7"
func sameSignal(a, b string) bool {
	if a == b {
		return true
	}
	x, okx := new(big.Int).SetString(a, 10)
	y, oky := new(big.Int).SetString(b, 10)
	return okx && oky && x.Cmp(y) == 0
}
