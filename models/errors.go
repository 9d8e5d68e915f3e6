package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrProofStructure   = errors.New("malformed proof")
	ErrSignalMismatch   = errors.New("public signal mismatch")
)

// ValidationError reports a rejected input field. Values are never clamped.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError with a formatted reason
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ArtifactNotFoundError lists every location that was checked for an artifact
type ArtifactNotFoundError struct {
	Kind     string
	Searched []string
}

func (e *ArtifactNotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return fmt.Sprintf("%s artifact not found: no locations configured", e.Kind)
	}
	return fmt.Sprintf("%s artifact not found, searched:\n  - %s", e.Kind, strings.Join(e.Searched, "\n  - "))
}

func (e *ArtifactNotFoundError) Unwrap() error { return ErrArtifactNotFound }

// ProofStructureError means the prover returned something the verifier
// cannot consume. It signals a toolchain or circuit version mismatch.
type ProofStructureError struct {
	Circuit string
	Reason  string
}

func (e *ProofStructureError) Error() string {
	if e.Circuit == "" {
		return fmt.Sprintf("malformed proof: %s", e.Reason)
	}
	return fmt.Sprintf("malformed proof from %s: %s", e.Circuit, e.Reason)
}

func (e *ProofStructureError) Unwrap() error { return ErrProofStructure }

// Mismatch is one index-wise difference between two signal vectors.
// A nil side means the vector was too short to have that index.
type Mismatch struct {
	Index    int     `json:"index"`
	Expected *string `json:"expected"`
	Actual   *string `json:"actual"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("[%d] expected %s, got %s", m.Index, orUndefined(m.Expected), orUndefined(m.Actual))
}

func orUndefined(s *string) string {
	if s == nil {
		return "undefined"
	}
	return *s
}

// SignalMismatchError carries the full per-index diff
type SignalMismatchError struct {
	Circuit    string
	Mismatches []Mismatch
}

func (e *SignalMismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d public signal(s) differ", e.Circuit, len(e.Mismatches))
	for _, m := range e.Mismatches {
		b.WriteString("\n  ")
		b.WriteString(m.String())
	}
	return b.String()
}

func (e *SignalMismatchError) Unwrap() error { return ErrSignalMismatch }
