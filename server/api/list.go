package api

import (
	"sort"

	cph "github.com/deepfamily/identity-zk/circuits/person-hash"
	csn "github.com/deepfamily/identity-zk/circuits/salted-name"
)

var CircuitList = map[string]CircuitInfo{
	csn.Name: {
		Name:        csn.Name,
		Version:     1,
		Description: "Salted name commitment bound to a minter",
		Arity:       csn.Arity,
		Signals:     []string{"saltedHi", "saltedLo", "nameHashHi", "nameHashLo", "minter"},
		InputParser: csn.InputParser{},
	},
	cph.Name: {
		Name:        cph.Name,
		Version:     1,
		Description: "Person commitment with optional father and mother commitments, bound to a submitter",
		Arity:       cph.Arity,
		Signals:     []string{"personHi", "personLo", "fatherHi", "fatherLo", "motherHi", "motherLo", "submitter"},
		InputParser: cph.InputParser{},
	},
}

// CircuitNames returns the known circuit names in sorted order
func CircuitNames() []string {
	names := make([]string, 0, len(CircuitList))
	for name := range CircuitList {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
