package server_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepfamily/identity-zk/config"
	"github.com/deepfamily/identity-zk/server"
)

func testConfig(t *testing.T) *server.ServeConfig {
	app := config.Default()
	app.Artifacts.SearchDirs = []string{t.TempDir()}
	return &server.ServeConfig{
		Host:           "localhost",
		Port:           8080,
		App:            &app,
		MaxRequestSize: 1 << 20,
		WriteTimeout:   5 * time.Second,
		EnableCORS:     true,
		CorsOrigins:    []string{"*"},
		EnableMetrics:  true,
	}
}

func TestNewHandlerRoutes(t *testing.T) {
	var logs bytes.Buffer
	h, err := server.NewHandler(testConfig(t), server.NewLogger(&logs, "info", "json"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), `"path":"/health"`)
	assert.Contains(t, logs.String(), "Proving artifacts missing")

	body := `{"fullName":"Alice Smith","minter":"1"}`
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signals/salted-name", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoadSubsetOfCircuits(t *testing.T) {
	cfg := testConfig(t)
	cfg.Circuits = []string{"person-hash"}
	h, err := server.NewHandler(cfg, server.NewLogger(io.Discard, "error", "text"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signals/salted-name", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	cfg.Circuits = []string{"over18"}
	_, err = server.NewHandler(cfg, server.NewLogger(io.Discard, "error", "text"))
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	m := server.NewMetrics()
	m.ObserveProof("person-hash", 2*time.Second, nil)
	m.ObserveProof("person-hash", time.Second, errors.New("boom"))
	m.SignalMismatch("salted-name")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := rec.Body.String()
	assert.Contains(t, out, `zkpi_proofs_total{circuit="person-hash",status="ok"} 1`)
	assert.Contains(t, out, `zkpi_proofs_total{circuit="person-hash",status="error"} 1`)
	assert.Contains(t, out, `zkpi_proof_duration_seconds_count{circuit="person-hash"} 2`)
	assert.Contains(t, out, `zkpi_signal_mismatches_total{circuit="salted-name"} 1`)
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := server.NewLogger(&buf, "warn", "text")
	logger.Info("hidden")
	logger.Warn("shown", "circuit", "person-hash")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "circuit=person-hash")
}
