package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/deepfamily/identity-zk/common"
	"github.com/iden3/go-rapidsnark/types"
)

// Artifacts are the resolved paths of one circuit's proving artifacts
type Artifacts struct {
	Wasm string
	Zkey string
}

// Toolchain turns a witness file into a raw proof and public signals
type Toolchain interface {
	FullProve(ctx context.Context, witness []byte, artifacts Artifacts) (*types.ZKProof, error)
}

// DefaultSnarkJS is the command used when none is configured
var DefaultSnarkJS = []string{"snarkjs"}

// SnarkJS runs `snarkjs groth16 fullprove` in a scratch directory
type SnarkJS struct {
	// Command is the binary followed by leading arguments, e.g. npx snarkjs
	Command []string
	// TempDir is the parent of scratch directories, os.TempDir if empty
	TempDir string
}

// NewSnarkJS returns a toolchain running command, or DefaultSnarkJS
func NewSnarkJS(command ...string) *SnarkJS {
	if len(command) == 0 {
		command = DefaultSnarkJS
	}
	return &SnarkJS{Command: command}
}

func (s *SnarkJS) FullProve(ctx context.Context, witness []byte, artifacts Artifacts) (*types.ZKProof, error) {
	command := s.Command
	if len(command) == 0 {
		command = DefaultSnarkJS
	}

	dir, err := os.MkdirTemp(s.TempDir, "zkpi-prove-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, common.WitnessFile)
	proofPath := filepath.Join(dir, common.ProofFile)
	publicPath := filepath.Join(dir, common.PublicFile)
	if err := os.WriteFile(inputPath, witness, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write witness: %w", err)
	}

	args := append(append([]string{}, command[1:]...),
		"groth16", "fullprove", inputPath, artifacts.Wasm, artifacts.Zkey, proofPath, publicPath)
	cmd := exec.CommandContext(ctx, command[0], args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s groth16 fullprove failed: %w: %s",
			strings.Join(command, " "), err, strings.TrimSpace(output.String()))
	}

	var proof types.ProofData
	if err := common.ReadJSON(proofPath, &proof); err != nil {
		return nil, err
	}
	signals, err := common.ReadPublicSignals(publicPath)
	if err != nil {
		return nil, err
	}
	return &types.ZKProof{Proof: &proof, PubSignals: signals}, nil
}

// encodeWitness renders a witness the way the toolchain reads it
func encodeWitness(witness any) ([]byte, error) {
	if raw, ok := witness.([]byte); ok {
		return raw, nil
	}
	data, err := json.Marshal(witness)
	if err != nil {
		return nil, fmt.Errorf("failed to encode witness: %w", err)
	}
	return data, nil
}
