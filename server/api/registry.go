package api

import (
	"fmt"
	"sync"
)

// CircuitRegistry stores circuits by name
type CircuitRegistry struct {
	mu       sync.RWMutex
	Circuits map[string]*Circuit
}

// NewCircuitRegistry creates a new registry
func NewCircuitRegistry() *CircuitRegistry {
	return &CircuitRegistry{
		Circuits: make(map[string]*Circuit),
	}
}

// LoadAll registers every circuit of CircuitList
func (cr *CircuitRegistry) LoadAll(src *ArtifactSource) error {
	for _, name := range CircuitNames() {
		if err := cr.LoadCircuit(CircuitList[name], src); err != nil {
			return err
		}
	}
	return nil
}

// LoadCircuit registers one circuit. Missing artifacts do not prevent
// registration; witness and signal derivation work without them.
func (cr *CircuitRegistry) LoadCircuit(ci CircuitInfo, src *ArtifactSource) error {
	if ci.InputParser == nil {
		return fmt.Errorf("circuit %s has no input parser", ci.Name)
	}
	return cr.Register(ci.Name, &Circuit{Info: ci, Source: src})
}

// Get returns a circuit by name
func (cr *CircuitRegistry) Get(name string) (*Circuit, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	if c, ok := cr.Circuits[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("circuit %s not found", name)
}

// Register registers a new circuit by user-defined name
func (cr *CircuitRegistry) Register(name string, circuit *Circuit) error {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if _, ok := cr.Circuits[name]; ok {
		return fmt.Errorf("circuit with name %s already exists", name)
	}
	cr.Circuits[name] = circuit
	return nil
}

// Loaded reports whether name is registered
func (cr *CircuitRegistry) Loaded(name string) bool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	_, ok := cr.Circuits[name]
	return ok
}
