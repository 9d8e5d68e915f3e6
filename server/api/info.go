package api

import (
	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/config"
	"github.com/deepfamily/identity-zk/prover"
)

// contains a list of circuits
type CircuitInfo struct {
	Name        string
	Version     uint
	Description string
	Arity       int
	Signals     []string // public signal names, in order
	InputParser InputParser
}

// Prover returns the engine's view of the circuit
func (ci CircuitInfo) Prover() prover.Circuit {
	return prover.Circuit{Name: ci.Name, Arity: ci.Arity}
}

// ArtifactSource locates circuit artifacts: explicit per-circuit paths first,
// then the conventional names below each search directory.
type ArtifactSource struct {
	Resolver   *common.Resolver
	SearchDirs []string
	Explicit   map[string]config.CircuitConfig
}

// NewArtifactSource builds a source from the configuration file settings
func NewArtifactSource(cfg *config.Config) (*ArtifactSource, error) {
	resolver, err := common.NewResolver(cfg.Artifacts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &ArtifactSource{
		Resolver:   resolver,
		SearchDirs: cfg.Artifacts.SearchDirs,
		Explicit:   cfg.Circuits,
	}, nil
}

// Resolve finds one artifact of circuit name
func (s *ArtifactSource) Resolve(name string, kind common.ArtifactKind) (string, error) {
	explicit := s.Explicit[name]
	var path string
	switch kind {
	case common.ArtifactWasm:
		path = explicit.Wasm
	case common.ArtifactZkey:
		path = explicit.Zkey
	case common.ArtifactVkey:
		path = explicit.Vkey
	}
	return s.Resolver.Resolve(kind, path, common.DefaultCandidates(s.SearchDirs, name, kind))
}

// ProvingArtifacts resolves the witness program and proving key
func (s *ArtifactSource) ProvingArtifacts(name string) (prover.Artifacts, error) {
	wasm, err := s.Resolve(name, common.ArtifactWasm)
	if err != nil {
		return prover.Artifacts{}, err
	}
	zkey, err := s.Resolve(name, common.ArtifactZkey)
	if err != nil {
		return prover.Artifacts{}, err
	}
	return prover.Artifacts{Wasm: wasm, Zkey: zkey}, nil
}
