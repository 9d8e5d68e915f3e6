package api

import (
	"context"
	"fmt"

	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
	"github.com/deepfamily/identity-zk/oracle"
	"github.com/deepfamily/identity-zk/prover"
)

// InputParser converts a JSON identity request into the circuit's witness and
// the public signals the circuit must expose for it
type InputParser interface {
	Parse(request []byte) (witness any, expected []string, err error)
}

// Circuit is a registered circuit. Artifacts are resolved per call through
// the source, so files added after startup are picked up.
type Circuit struct {
	Info   CircuitInfo
	Source *ArtifactSource
}

// Witness builds the witness and expected signals for a request
func (c *Circuit) Witness(request []byte) (any, []string, error) {
	if c.Info.InputParser == nil {
		return nil, nil, fmt.Errorf("circuit %s has no input parser", c.Info.Name)
	}
	return c.Info.InputParser.Parse(request)
}

// Prove proves a request and checks the resulting public signals against
// the independently derived ones. On a mismatch the bundle is returned
// together with a SignalMismatchError.
func (c *Circuit) Prove(ctx context.Context, engine *prover.Engine, request []byte) (*models.ProofBundle, error) {
	witness, expected, err := c.Witness(request)
	if err != nil {
		return nil, err
	}
	artifacts, err := c.Source.ProvingArtifacts(c.Info.Name)
	if err != nil {
		return nil, err
	}

	bundle, err := engine.Prove(ctx, c.Info.Prover(), witness, artifacts)
	if err != nil {
		return nil, err
	}
	if err := oracle.Check(c.Info.Name, expected, bundle.PublicSignals); err != nil {
		return bundle, err
	}
	return bundle, nil
}

// Verify checks a proof locally against the circuit's verification key
func (c *Circuit) Verify(proof models.Proof, signals []string) error {
	signals, err := prover.NormalizePublicSignals(c.Info.Name, signals, c.Info.Arity)
	if err != nil {
		return err
	}
	path, err := c.Source.Resolve(c.Info.Name, common.ArtifactVkey)
	if err != nil {
		return err
	}
	vk, err := common.LoadVerificationKey(path)
	if err != nil {
		return err
	}
	return prover.Verify(c.Info.Name, vk, proof, signals)
}

// ProvingReady reports whether the proving artifacts can be found
func (c *Circuit) ProvingReady() bool {
	_, err := c.Source.ProvingArtifacts(c.Info.Name)
	return err == nil
}
