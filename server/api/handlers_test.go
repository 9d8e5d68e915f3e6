package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/iden3/go-rapidsnark/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepfamily/identity-zk/chain"
	cph "github.com/deepfamily/identity-zk/circuits/person-hash"
	csn "github.com/deepfamily/identity-zk/circuits/salted-name"
	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/config"
	"github.com/deepfamily/identity-zk/models"
	"github.com/deepfamily/identity-zk/prover"
	"github.com/deepfamily/identity-zk/server/api"
)

var (
	fixtureOnce sync.Once
	fixture     *common.Fixture
	fixtureErr  error
)

func mintFixture(t *testing.T) *common.Fixture {
	t.Helper()
	fixtureOnce.Do(func() {
		fixture, fixtureErr = common.MintFixture(csn.Arity, 3)
	})
	require.NoError(t, fixtureErr)
	return fixture
}

// circuitToolchain evaluates the circuit natively from the witness, the way
// the compiled circuit would, and attaches a structurally valid proof
type circuitToolchain struct {
	proof  *types.ProofData
	tamper bool
}

func (c *circuitToolchain) FullProve(_ context.Context, witness []byte, artifacts prover.Artifacts) (*types.ZKProof, error) {
	var signals []string
	var err error
	if strings.Contains(artifacts.Wasm, cph.Name) {
		var in cph.Input
		if err := json.Unmarshal(witness, &in); err != nil {
			return nil, err
		}
		signals, err = in.PublicSignals()
	} else {
		var in csn.Input
		if err := json.Unmarshal(witness, &in); err != nil {
			return nil, err
		}
		signals, err = in.PublicSignals()
	}
	if err != nil {
		return nil, err
	}
	if c.tamper {
		signals[0], signals[1] = signals[1], signals[0]
	}
	return &types.ZKProof{Proof: c.proof, PubSignals: signals}, nil
}

type testEnv struct {
	router     *chi.Mux
	dir        string
	mismatches []string
}

func newTestEnv(t *testing.T, tc prover.Toolchain, withArtifacts bool) *testEnv {
	t.Helper()
	env := &testEnv{dir: t.TempDir()}

	if withArtifacts {
		for _, name := range []string{csn.Name, cph.Name} {
			require.NoError(t, os.WriteFile(filepath.Join(env.dir, name+".wasm"), []byte("wasm"), 0o644))
			require.NoError(t, os.WriteFile(filepath.Join(env.dir, name+"_final.zkey"), []byte("zkey"), 0o644))
		}
	}

	cfg := config.Default()
	cfg.Artifacts.SearchDirs = []string{env.dir}
	src, err := api.NewArtifactSource(&cfg)
	require.NoError(t, err)

	registry := api.NewCircuitRegistry()
	require.NoError(t, registry.LoadAll(src))

	server := api.NewServer(registry, prover.NewEngine(tc), api.WithMismatchHook(func(circuit string) {
		env.mismatches = append(env.mismatches, circuit)
	}))

	r := chi.NewRouter()
	r.Get("/health", server.HandleHealth)
	r.Get("/circuits", server.HandleListCircuits)
	r.Get("/circuits/{circuit}", server.HandleGetCircuit)
	r.Post("/witness/{circuit}", server.HandleWitness)
	r.Post("/signals/{circuit}", server.HandleSignals)
	r.Post("/compare", server.HandleCompare)
	r.Post("/prove/{circuit}", server.HandleProve)
	r.Post("/verify/{circuit}", server.HandleVerify)
	env.router = r
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func demoPersonRequest() cph.Request {
	return cph.Request{Self: models.GetDemoIdentity(), Submitter: models.DemoSubmitter}
}

func TestHealthAndCircuits(t *testing.T) {
	env := newTestEnv(t, &circuitToolchain{}, false)

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	list := decode[api.CircuitListResponse](t, env.do(t, http.MethodGet, "/circuits", nil))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, cph.Name, list.Circuits[0].Name)
	assert.Equal(t, csn.Name, list.Circuits[1].Name)
	for _, c := range list.Circuits {
		assert.True(t, c.Loaded)
		assert.False(t, c.ProvingReady)
	}

	info := decode[api.CircuitInfoResponse](t, env.do(t, http.MethodGet, "/circuits/"+cph.Name, nil))
	assert.Len(t, info.Signals, cph.Arity)

	rec = env.do(t, http.MethodGet, "/circuits/over18", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCircuitInfoPartialRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.Artifacts.SearchDirs = []string{t.TempDir()}
	src, err := api.NewArtifactSource(&cfg)
	require.NoError(t, err)

	registry := api.NewCircuitRegistry()
	require.NoError(t, registry.LoadCircuit(api.CircuitList[csn.Name], src))
	assert.True(t, registry.Loaded(csn.Name))
	assert.False(t, registry.Loaded(cph.Name))

	server := api.NewServer(registry, prover.NewEngine(&circuitToolchain{}))
	r := chi.NewRouter()
	r.Get("/circuits", server.HandleListCircuits)
	r.Post("/signals/{circuit}", server.HandleSignals)
	env := &testEnv{router: r}

	list := decode[api.CircuitListResponse](t, env.do(t, http.MethodGet, "/circuits", nil))
	require.Equal(t, 2, list.Count)
	assert.False(t, list.Circuits[0].Loaded)
	assert.True(t, list.Circuits[1].Loaded)

	rec := env.do(t, http.MethodPost, "/signals/"+cph.Name, demoPersonRequest())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "circuit_not_loaded", decode[api.ErrorResponse](t, rec).Code)
}

func TestWitnessAndSignals(t *testing.T) {
	env := newTestEnv(t, &circuitToolchain{}, false)

	rec := env.do(t, http.MethodPost, "/witness/"+cph.Name, demoPersonRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var w struct {
		Witness map[string]any `json:"witness"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
	assert.EqualValues(t, 1990, w.Witness["birthYear"])
	assert.EqualValues(t, 0, w.Witness["hasFather"])

	signals := decode[api.SignalsResponse](t, env.do(t, http.MethodPost, "/signals/"+cph.Name, demoPersonRequest()))
	require.Len(t, signals.PublicSignals, cph.Arity)
	assert.Equal(t, []string{"0", "0", "0", "0"}, signals.PublicSignals[2:6])
	assert.Equal(t, "1390849295786071768276380950238675083608645509734", signals.PublicSignals[6])
	assert.Equal(t, models.DemoSubmitter, signals.Account)
	assert.True(t, strings.HasPrefix(signals.PersonID, "0x"))
	assert.Len(t, signals.PersonID, 66)
}

func TestValidationErrors(t *testing.T) {
	env := newTestEnv(t, &circuitToolchain{}, false)

	req := demoPersonRequest()
	req.Self.BirthYear = 65536
	rec := env.do(t, http.MethodPost, "/signals/"+cph.Name, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "invalid_input", errResp.Code)
	assert.Equal(t, "birthYear", errResp.Field)

	rec = env.do(t, http.MethodPost, "/witness/"+csn.Name, csn.Request{FullName: "  ", Minter: "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/witness/"+csn.Name, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request", decode[api.ErrorResponse](t, rec).Field)

	rec = env.do(t, http.MethodPost, "/signals/"+cph.Name,
		`{"self":{"fullName":"A"},"father":{"fullName":"B","birthMonth":300},"submitter":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "father_birthMonth", decode[api.ErrorResponse](t, rec).Field)
}

func TestProve(t *testing.T) {
	fx := mintFixture(t)
	env := newTestEnv(t, &circuitToolchain{proof: fx.Proof}, true)

	rec := env.do(t, http.MethodPost, "/prove/"+cph.Name, demoPersonRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[api.ProveResponse](t, rec)
	assert.Len(t, resp.PublicSignals, cph.Arity)
	assert.Equal(t, prover.ToVerifierCoordinateOrder([2][2]string{
		{fx.Proof.B[0][0], fx.Proof.B[0][1]},
		{fx.Proof.B[1][0], fx.Proof.B[1][1]},
	}), resp.Proof.B)
	assert.Equal(t, "0x084c79d13ec7b478f21d648be00243ea89d1833f56b8e1c9cca6d5ee60631c11", resp.PersonID)
	assert.True(t, strings.HasPrefix(resp.Calldata, "["))

	// 8 proof words then one word per public signal
	require.True(t, strings.HasPrefix(resp.ABI, "0x"))
	assert.Len(t, resp.ABI, 2+(8+cph.Arity)*64)
	encoded, err := chain.ProofArgumentsHex(resp.Proof, resp.PublicSignals)
	require.NoError(t, err)
	assert.Equal(t, encoded, resp.ABI)

	rec = env.do(t, http.MethodPost, "/prove/"+csn.Name, csn.Request{FullName: "Alice Smith", Minter: models.DemoSubmitter})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decode[api.ProveResponse](t, rec)
	assert.Len(t, resp.PublicSignals, csn.Arity)
	assert.Empty(t, resp.PersonID)
	assert.Empty(t, env.mismatches)
}

func TestProveWithoutArtifacts(t *testing.T) {
	env := newTestEnv(t, &circuitToolchain{}, false)

	rec := env.do(t, http.MethodPost, "/prove/"+csn.Name, csn.Request{FullName: "Alice Smith", Minter: "1"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "artifact_not_found", decode[api.ErrorResponse](t, rec).Code)
}

func TestProveSignalMismatch(t *testing.T) {
	fx := mintFixture(t)
	env := newTestEnv(t, &circuitToolchain{proof: fx.Proof, tamper: true}, true)

	rec := env.do(t, http.MethodPost, "/prove/"+csn.Name, csn.Request{FullName: "Alice Smith", Minter: "1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	errResp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "signal_mismatch", errResp.Code)
	require.Len(t, errResp.Mismatches, 2)
	assert.Equal(t, 0, errResp.Mismatches[0].Index)
	assert.Equal(t, []string{csn.Name}, env.mismatches)
}

func TestProveMalformedToolchainOutput(t *testing.T) {
	env := newTestEnv(t, &circuitToolchain{proof: &types.ProofData{Protocol: "groth16"}}, true)

	rec := env.do(t, http.MethodPost, "/prove/"+csn.Name, csn.Request{FullName: "Alice Smith", Minter: "1"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "proof_structure", decode[api.ErrorResponse](t, rec).Code)
}

func TestVerify(t *testing.T) {
	fx := mintFixture(t)
	env := newTestEnv(t, &circuitToolchain{}, false)
	require.NoError(t, common.WriteJSON(filepath.Join(env.dir, csn.Name+"_verification_key.json"), fx.VerificationKey))

	rec := env.do(t, http.MethodPost, "/verify/"+csn.Name, map[string]any{
		"proof":         fx.Proof,
		"publicSignals": fx.PublicSignals,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[api.VerifyResponse](t, rec).Valid)

	wrong := append([]string(nil), fx.PublicSignals...)
	wrong[4] = "1"
	rec = env.do(t, http.MethodPost, "/verify/"+csn.Name, map[string]any{
		"proof":         fx.Proof,
		"publicSignals": wrong,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[api.VerifyResponse](t, rec).Valid)

	rec = env.do(t, http.MethodPost, "/verify/"+csn.Name, map[string]any{
		"proof":         map[string]any{"pi_a": []string{"1"}},
		"publicSignals": fx.PublicSignals,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_proof", decode[api.ErrorResponse](t, rec).Code)

	rec = env.do(t, http.MethodPost, "/verify/"+csn.Name, map[string]any{"publicSignals": fx.PublicSignals})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyWithoutKey(t *testing.T) {
	fx := mintFixture(t)
	env := newTestEnv(t, &circuitToolchain{}, false)

	rec := env.do(t, http.MethodPost, "/verify/"+csn.Name, map[string]any{
		"proof":         fx.Proof,
		"publicSignals": fx.PublicSignals,
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCompare(t *testing.T) {
	env := newTestEnv(t, &circuitToolchain{}, false)

	res := decode[models.CompareResult](t, env.do(t, http.MethodPost, "/compare", api.CompareRequest{
		Expected: []string{"1", "2", "3"},
		Actual:   []string{"1", "02"},
	}))
	assert.False(t, res.Match)
	require.Len(t, res.Mismatches, 1)
	assert.Equal(t, 2, res.Mismatches[0].Index)
	assert.Nil(t, res.Mismatches[0].Actual)

	res = decode[models.CompareResult](t, env.do(t, http.MethodPost, "/compare", api.CompareRequest{
		Expected: []string{"7"},
		Actual:   []string{"7"},
	}))
	assert.True(t, res.Match)
}
