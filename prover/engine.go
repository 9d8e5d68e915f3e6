package prover

import (
	"context"
	"fmt"
	"time"

	"github.com/deepfamily/identity-zk/models"
)

// Logger is the structured logger the engine reports to
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Circuit identifies a circuit and its public-signal arity
type Circuit struct {
	Name  string
	Arity int
}

// Observer is told about every finished proving call
type Observer func(circuit string, took time.Duration, err error)

// Engine drives the toolchain and normalizes its output
type Engine struct {
	toolchain Toolchain
	logger    Logger
	observer  Observer
}

type Option func(*Engine)

func WithLogger(l Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine creates an engine proving with tc
func NewEngine(tc Toolchain, opts ...Option) *Engine {
	e := &Engine{toolchain: tc, logger: nopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Prove runs the toolchain on witness and returns the proof in verifier
// order with the public signals checked against the circuit's arity.
// Proving is CPU bound and runs to completion unless ctx is cancelled.
func (e *Engine) Prove(ctx context.Context, c Circuit, witness any, artifacts Artifacts) (*models.ProofBundle, error) {
	start := time.Now()
	bundle, err := e.prove(ctx, c, witness, artifacts)
	took := time.Since(start)

	if e.observer != nil {
		e.observer(c.Name, took, err)
	}
	if err != nil {
		e.logger.Error("Proof generation failed", "circuit", c.Name, "duration_ms", took.Milliseconds(), "error", err)
		return nil, err
	}
	e.logger.Info("Proof generated", "circuit", c.Name, "duration_ms", took.Milliseconds())
	return bundle, nil
}

func (e *Engine) prove(ctx context.Context, c Circuit, witness any, artifacts Artifacts) (*models.ProofBundle, error) {
	input, err := encodeWitness(witness)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Running toolchain", "circuit", c.Name, "wasm", artifacts.Wasm, "zkey", artifacts.Zkey)
	raw, err := e.toolchain.FullProve(ctx, input, artifacts)
	if err != nil {
		return nil, fmt.Errorf("proof creation failed: %w", err)
	}
	if raw == nil {
		return nil, &models.ProofStructureError{Circuit: c.Name, Reason: "toolchain returned no output"}
	}

	proof, err := NormalizeProof(c.Name, raw.Proof)
	if err != nil {
		return nil, err
	}
	signals, err := NormalizePublicSignals(c.Name, raw.PubSignals, c.Arity)
	if err != nil {
		return nil, err
	}

	return &models.ProofBundle{
		Circuit:       c.Name,
		Proof:         proof,
		PublicSignals: signals,
	}, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
