package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/deepfamily/identity-zk/chain"
	cph "github.com/deepfamily/identity-zk/circuits/person-hash"
	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
	"github.com/deepfamily/identity-zk/oracle"
	"github.com/deepfamily/identity-zk/prover"
)

// Server handles HTTP requests for ZK proof operations
type Server struct {
	registry   *CircuitRegistry
	engine     *prover.Engine
	onMismatch func(circuit string)
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithMismatchHook is called every time a produced proof carries public
// signals that differ from the derived ones
func WithMismatchHook(fn func(circuit string)) ServerOption {
	return func(s *Server) { s.onMismatch = fn }
}

// NewServer creates a new HTTP server
func NewServer(registry *CircuitRegistry, engine *prover.Engine, opts ...ServerOption) *Server {
	s := &Server{
		registry: registry,
		engine:   engine,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ==== Request/Response Types ====

// WitnessResponse carries the witness the proving toolchain consumes
type WitnessResponse struct {
	Circuit string `json:"circuit"`
	Witness any    `json:"witness"`
}

// SignalsResponse carries the public signals the circuit must expose
type SignalsResponse struct {
	Circuit       string   `json:"circuit"`
	Names         []string `json:"names"`
	PublicSignals []string `json:"publicSignals"`
	Account       string   `json:"account"`
	PersonID      string   `json:"personId,omitempty"`
}

// ProveResponse represents a proof generation response
type ProveResponse struct {
	models.ProofBundle
	PersonID  string    `json:"personId,omitempty"`
	Calldata  string    `json:"calldata"`
	ABI       string    `json:"abi"`
	Timestamp time.Time `json:"timestamp"`
}

// VerifyRequest represents a proof verification request. The proof may be
// in prover order (pi_a/pi_b/pi_c) or verifier order (a/b/c).
type VerifyRequest struct {
	Proof         json.RawMessage `json:"proof"`
	PublicSignals []string        `json:"publicSignals"`
}

// VerifyResponse represents a proof verification response
type VerifyResponse struct {
	Valid     bool      `json:"valid"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
}

// CompareRequest holds two signal vectors
type CompareRequest struct {
	Expected []string `json:"expected"`
	Actual   []string `json:"actual"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error      string            `json:"error"`
	Code       string            `json:"code,omitempty"`
	Field      string            `json:"field,omitempty"`
	Mismatches []models.Mismatch `json:"mismatches,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// CircuitInfoResponse represents circuit information
type CircuitInfoResponse struct {
	Name         string   `json:"name"`
	Version      uint     `json:"version"`
	Description  string   `json:"description,omitempty"`
	Signals      []string `json:"signals"`
	Loaded       bool     `json:"loaded"`
	ProvingReady bool     `json:"provingReady"`
}

// CircuitListResponse represents a list of circuits
type CircuitListResponse struct {
	Circuits []CircuitInfoResponse `json:"circuits"`
	Count    int                   `json:"count"`
}

// ==== Handlers ====

// HandleHealth handles health check requests
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// HandleListCircuits lists all available circuits
func (s *Server) HandleListCircuits(w http.ResponseWriter, r *http.Request) {
	circuits := make([]CircuitInfoResponse, 0, len(CircuitList))
	for _, name := range CircuitNames() {
		circuits = append(circuits, s.circuitInfo(CircuitList[name]))
	}

	respondJSON(w, http.StatusOK, CircuitListResponse{
		Circuits: circuits,
		Count:    len(circuits),
	})
}

// HandleGetCircuit gets information about a specific circuit
func (s *Server) HandleGetCircuit(w http.ResponseWriter, r *http.Request) {
	circuitName := chi.URLParam(r, "circuit")

	info, ok := CircuitList[circuitName]
	if !ok {
		respondError(w, http.StatusNotFound, "circuit_not_found",
			fmt.Sprintf("circuit '%s' not found", circuitName))
		return
	}

	respondJSON(w, http.StatusOK, s.circuitInfo(info))
}

// HandleWitness builds the witness for an identity request
func (s *Server) HandleWitness(w http.ResponseWriter, r *http.Request) {
	circuit, body, ok := s.circuitRequest(w, r)
	if !ok {
		return
	}

	witness, _, err := circuit.Witness(body)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, WitnessResponse{Circuit: circuit.Info.Name, Witness: witness})
}

// HandleSignals derives the public signals a proof for the request must carry
func (s *Server) HandleSignals(w http.ResponseWriter, r *http.Request) {
	circuit, body, ok := s.circuitRequest(w, r)
	if !ok {
		return
	}

	_, expected, err := circuit.Witness(body)
	if err != nil {
		respondErr(w, err)
		return
	}

	account, ok := new(big.Int).SetString(expected[len(expected)-1], 10)
	if !ok {
		respondErr(w, fmt.Errorf("account signal %q is not a decimal integer", expected[len(expected)-1]))
		return
	}
	resp := SignalsResponse{
		Circuit:       circuit.Info.Name,
		Names:         circuit.Info.Signals,
		PublicSignals: expected,
		Account:       common.SubmitterAddress(account),
	}
	if circuit.Info.Name == cph.Name {
		id, err := chain.PersonIDFromSignals(expected)
		if err != nil {
			respondErr(w, err)
			return
		}
		resp.PersonID = id.Hex()
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleProve handles proof generation requests
func (s *Server) HandleProve(w http.ResponseWriter, r *http.Request) {
	circuit, body, ok := s.circuitRequest(w, r)
	if !ok {
		return
	}

	bundle, err := circuit.Prove(r.Context(), s.engine, body)
	if err != nil {
		if errors.Is(err, models.ErrSignalMismatch) && s.onMismatch != nil {
			s.onMismatch(circuit.Info.Name)
		}
		respondErr(w, err)
		return
	}

	calldata, err := chain.SolidityCalldata(bundle.Proof, bundle.PublicSignals)
	if err != nil {
		respondErr(w, err)
		return
	}
	encoded, err := chain.ProofArgumentsHex(bundle.Proof, bundle.PublicSignals)
	if err != nil {
		respondErr(w, err)
		return
	}
	resp := ProveResponse{
		ProofBundle: *bundle,
		Calldata:    calldata,
		ABI:         encoded,
		Timestamp:   time.Now(),
	}
	if circuit.Info.Name == cph.Name {
		id, err := chain.PersonIDFromSignals(bundle.PublicSignals)
		if err != nil {
			respondErr(w, err)
			return
		}
		resp.PersonID = id.Hex()
	}

	respondJSON(w, http.StatusOK, resp)
}

// HandleVerify handles proof verification requests
func (s *Server) HandleVerify(w http.ResponseWriter, r *http.Request) {
	circuit, body, ok := s.circuitRequest(w, r)
	if !ok {
		return
	}

	var req VerifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json",
			fmt.Sprintf("failed to parse request: %v", err))
		return
	}

	if len(req.Proof) == 0 || req.PublicSignals == nil {
		respondError(w, http.StatusBadRequest, "missing_input",
			"both proof and publicSignals are required")
		return
	}

	// a malformed proof here is the caller's input, not a toolchain fault
	proof, err := prover.ParseProof(circuit.Info.Name, req.Proof)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_proof", err.Error())
		return
	}

	err = circuit.Verify(proof, req.PublicSignals)
	var notFound *models.ArtifactNotFoundError
	if errors.As(err, &notFound) {
		respondErr(w, err)
		return
	}

	response := VerifyResponse{
		Valid:     err == nil,
		Timestamp: time.Now(),
	}

	if err != nil {
		response.Message = fmt.Sprintf("verification failed: %v", err)
	} else {
		response.Message = "proof is valid"
	}

	respondJSON(w, http.StatusOK, response)
}

// HandleCompare compares two public signal vectors index by index
func (s *Server) HandleCompare(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request",
			"failed to read request body")
		return
	}
	defer r.Body.Close()

	var req CompareRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json",
			fmt.Sprintf("failed to parse request: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, oracle.Compare(req.Expected, req.Actual))
}

// ==== Helper Functions ====

func (s *Server) circuitInfo(info CircuitInfo) CircuitInfoResponse {
	resp := CircuitInfoResponse{
		Name:        info.Name,
		Version:     info.Version,
		Description: info.Description,
		Signals:     info.Signals,
	}
	resp.Loaded = s.registry.Loaded(info.Name)
	if !resp.Loaded {
		return resp
	}
	if c, err := s.registry.Get(info.Name); err == nil {
		resp.ProvingReady = c.ProvingReady()
	}
	return resp
}

// circuitRequest looks up the {circuit} URL parameter and reads the body.
// It writes the error response itself and reports false on failure.
func (s *Server) circuitRequest(w http.ResponseWriter, r *http.Request) (*Circuit, []byte, bool) {
	circuitName := chi.URLParam(r, "circuit")

	// Check if circuit exists
	if _, ok := CircuitList[circuitName]; !ok {
		respondError(w, http.StatusNotFound, "circuit_not_found",
			fmt.Sprintf("circuit '%s' not found", circuitName))
		return nil, nil, false
	}

	// Check if circuit is loaded
	circuit, err := s.registry.Get(circuitName)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "circuit_not_loaded",
			fmt.Sprintf("circuit '%s' is not loaded: %v", circuitName, err))
		return nil, nil, false
	}

	// Parse request body
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request",
			"failed to read request body")
		return nil, nil, false
	}
	defer r.Body.Close()

	return circuit, body, true
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:     message,
		Code:      code,
		Timestamp: time.Now(),
	})
}

// respondErr maps pipeline errors to status codes
func respondErr(w http.ResponseWriter, err error) {
	var (
		validation *models.ValidationError
		mismatch   *models.SignalMismatchError
	)
	switch {
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:     err.Error(),
			Code:      "invalid_input",
			Field:     validation.Field,
			Timestamp: time.Now(),
		})
	case errors.Is(err, models.ErrArtifactNotFound):
		respondError(w, http.StatusServiceUnavailable, "artifact_not_found", err.Error())
	case errors.Is(err, models.ErrProofStructure):
		respondError(w, http.StatusBadGateway, "proof_structure", err.Error())
	case errors.As(err, &mismatch):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:      err.Error(),
			Code:       "signal_mismatch",
			Mismatches: mismatch.Mismatches,
			Timestamp:  time.Now(),
		})
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
