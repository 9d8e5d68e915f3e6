package prover_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deepfamily/identity-zk/models"
	"github.com/deepfamily/identity-zk/prover"
	"github.com/iden3/go-rapidsnark/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToolchain echoes the "signals" field of the witness as public signals
type fakeToolchain struct {
	mu        sync.Mutex
	inputs    [][]byte
	delay     time.Duration
	fail      error
	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *fakeToolchain) FullProve(ctx context.Context, witness []byte, _ prover.Artifacts) (*types.ZKProof, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxActive.Load()
		if n <= m || f.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.inputs = append(f.inputs, witness)
	f.mu.Unlock()

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var in struct {
		Signals []string `json:"signals"`
		Fail    bool     `json:"fail"`
	}
	if err := json.Unmarshal(witness, &in); err != nil {
		return nil, err
	}
	if f.fail != nil {
		return nil, f.fail
	}
	if in.Fail {
		return nil, errors.New("toolchain exploded")
	}
	return &types.ZKProof{Proof: rawFixture, PubSignals: in.Signals}, nil
}

type witness struct {
	Signals []string `json:"signals"`
	Fail    bool     `json:"fail,omitempty"`
}

func TestEngineProve(t *testing.T) {
	tc := &fakeToolchain{}
	var observed []string
	engine := prover.NewEngine(tc, prover.WithObserver(func(circuit string, _ time.Duration, err error) {
		assert.NoError(t, err)
		observed = append(observed, circuit)
	}))

	bundle, err := engine.Prove(context.Background(),
		prover.Circuit{Name: "salted-name", Arity: 5},
		witness{Signals: []string{"1", "2", "3", "4", "5"}},
		prover.Artifacts{Wasm: "c.wasm", Zkey: "c.zkey"})
	require.NoError(t, err)

	assert.Equal(t, "salted-name", bundle.Circuit)
	assert.Equal(t, normalizedFixture, bundle.Proof)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, bundle.PublicSignals)
	assert.Equal(t, []string{"salted-name"}, observed)
	require.Len(t, tc.inputs, 1)
	assert.JSONEq(t, `{"signals":["1","2","3","4","5"]}`, string(tc.inputs[0]))
}

func TestEngineProveArityMismatch(t *testing.T) {
	engine := prover.NewEngine(&fakeToolchain{})
	_, err := engine.Prove(context.Background(),
		prover.Circuit{Name: "person-hash", Arity: 7},
		witness{Signals: []string{"1", "2", "3", "4", "5", "6"}},
		prover.Artifacts{})

	var perr *models.ProofStructureError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "person-hash", perr.Circuit)
}

func TestEngineProveToolchainError(t *testing.T) {
	boom := errors.New("boom")
	var observedErr error
	engine := prover.NewEngine(&fakeToolchain{fail: boom}, prover.WithObserver(func(_ string, _ time.Duration, err error) {
		observedErr = err
	}))

	_, err := engine.Prove(context.Background(), prover.Circuit{Name: "x", Arity: 1}, witness{}, prover.Artifacts{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, observedErr, boom)
	assert.False(t, errors.Is(err, models.ErrProofStructure))
}

type nilToolchain struct{}

func (nilToolchain) FullProve(context.Context, []byte, prover.Artifacts) (*types.ZKProof, error) {
	return &types.ZKProof{PubSignals: []string{"1"}}, nil
}

func TestEngineProveMissingProof(t *testing.T) {
	engine := prover.NewEngine(nilToolchain{})
	_, err := engine.Prove(context.Background(), prover.Circuit{Name: "x", Arity: 1}, witness{}, prover.Artifacts{})
	assert.ErrorIs(t, err, models.ErrProofStructure)
}
