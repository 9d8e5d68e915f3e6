package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepfamily/identity-zk/models"
)

// File names of a persisted proving run
const (
	WitnessFile = "input.json"
	ProofFile   = "proof.json"
	PublicFile  = "public.json"
)

// DecodeRequest unmarshals a JSON identity request. A value of the wrong type
// or range is reported against its witness field name, so father.birthMonth
// becomes father_birthMonth. Other decoding failures name "request".
func DecodeRequest(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return models.NewValidationError(requestField(typeErr.Field), "%s does not fit %s", typeErr.Value, typeErr.Type)
	}
	return models.NewValidationError("request", "%v", err)
}

func requestField(path string) string {
	parts := strings.Split(path, ".")
	if len(parts) != 2 {
		return path
	}
	switch role := models.Role(parts[0]); role {
	case models.RoleFather, models.RoleMother:
		return role.Field(parts[1])
	}
	if parts[0] == "self" {
		return parts[1]
	}
	return path
}

// VerificationKey is the snarkjs verification_key.json layout for Groth16
type VerificationKey struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	Alpha1   []string   `json:"vk_alpha_1"`
	Beta2    [][]string `json:"vk_beta_2"`
	Gamma2   [][]string `json:"vk_gamma_2"`
	Delta2   [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

// WriteJSON writes v as indented JSON, creating parent directories
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadJSON decodes the file at path into v
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// SaveBundle persists the witness, proof and public signals of one run into
// dir as input.json, proof.json and public.json. A nil witness is skipped.
func SaveBundle(dir string, witness any, bundle *models.ProofBundle) error {
	if witness != nil {
		if err := WriteJSON(filepath.Join(dir, WitnessFile), witness); err != nil {
			return err
		}
	}
	if bundle == nil {
		return nil
	}
	if err := WriteJSON(filepath.Join(dir, ProofFile), bundle.Proof); err != nil {
		return err
	}
	return WriteJSON(filepath.Join(dir, PublicFile), bundle.PublicSignals)
}

// LoadVerificationKey reads a snarkjs verification key
func LoadVerificationKey(path string) (*VerificationKey, error) {
	var vk VerificationKey
	if err := ReadJSON(path, &vk); err != nil {
		return nil, err
	}
	if vk.Protocol != "" && vk.Protocol != "groth16" {
		return nil, fmt.Errorf("verification key %s: unsupported protocol %q", path, vk.Protocol)
	}
	return &vk, nil
}

// ReadPublicSignals reads a public-signal file
func ReadPublicSignals(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	signals, err := ParseSignals(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return signals, nil
}

// ParseSignals accepts a bare JSON array or {"publicSignals": [...]}.
// Elements may be decimal strings or JSON numbers; both are returned as
// canonical decimal strings.
func ParseSignals(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse public signals: %w", err)
	}

	if obj, ok := raw.(map[string]any); ok {
		inner, found := obj["publicSignals"]
		if !found {
			return nil, fmt.Errorf("public signals object has no publicSignals field")
		}
		raw = inner
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("public signals must be an array")
	}

	out := make([]string, len(list))
	for i, el := range list {
		var s string
		switch v := el.(type) {
		case string:
			s = v
		case json.Number:
			s = v.String()
		default:
			return nil, fmt.Errorf("public signal %d is not a number", i)
		}
		n, ok := new(big.Int).SetString(s, 10)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("public signal %d: %q is not a non-negative integer", i, s)
		}
		out[i] = n.String()
	}
	return out, nil
}
