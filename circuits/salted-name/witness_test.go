package csn_test

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	csn "github.com/deepfamily/identity-zk/circuits/salted-name"
	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoSubject(t *testing.T) *csn.Subject {
	t.Helper()
	s, err := csn.Request{FullName: "Alice Smith", Minter: models.DemoSubmitter}.Subject()
	require.NoError(t, err)
	return s
}

func TestBuildWitness(t *testing.T) {
	in, err := csn.BuildWitness(demoSubject(t))
	require.NoError(t, err)

	assert.Equal(t, [32]byte(common.Digest("Alice Smith")), in.FullNameHash)
	assert.Equal(t, [32]byte{}, in.SaltHash)
	assert.Equal(t, "1390849295786071768276380950238675083608645509734", in.Minter)
}

func TestWitnessJSONShape(t *testing.T) {
	in, err := csn.BuildWitness(demoSubject(t))
	require.NoError(t, err)

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Len(t, fields, 3)

	var nameBytes []int
	require.NoError(t, json.Unmarshal(fields["fullNameHash"], &nameBytes))
	assert.Len(t, nameBytes, 32)

	var minter string
	require.NoError(t, json.Unmarshal(fields["minter"], &minter))
	assert.Equal(t, in.Minter, minter)
}

func TestExpectedSignalsMatchWitness(t *testing.T) {
	for _, req := range []csn.Request{
		{FullName: "Alice Smith", Minter: models.DemoSubmitter},
		{FullName: " Alice Smith ", Passphrase: " pass ", Minter: "7"},
		{FullName: "José", Passphrase: "José", Minter: "0"},
	} {
		s, err := req.Subject()
		require.NoError(t, err)

		expected, err := csn.ExpectedSignals(s)
		require.NoError(t, err)
		require.Len(t, expected, csn.Arity)

		in, err := csn.BuildWitness(s)
		require.NoError(t, err)
		got, err := in.PublicSignals()
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

func TestExpectedSignalsLayout(t *testing.T) {
	s := demoSubject(t)
	signals, err := csn.ExpectedSignals(s)
	require.NoError(t, err)

	name := common.SplitLimbs(common.Digest("Alice Smith"))
	salted, err := common.SaltedNameCommitment(name, common.ZeroLimbs())
	require.NoError(t, err)
	limbs, err := common.SplitValue(salted)
	require.NoError(t, err)

	assert.Equal(t, []string{
		limbs.Hi.String(), limbs.Lo.String(),
		name.Hi.String(), name.Lo.String(),
		s.Minter.String(),
	}, signals)

	again, err := csn.ExpectedSignals(s)
	require.NoError(t, err)
	assert.Equal(t, signals, again)
}

func TestSubjectRejects(t *testing.T) {
	cases := map[string]csn.Request{
		"fullName": {FullName: "  ", Minter: "1"},
		"minter":   {FullName: "Alice", Minter: new(big.Int).Lsh(big.NewInt(1), 160).String()},
	}
	for field, req := range cases {
		_, err := req.Subject()
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr), field)
		assert.Equal(t, field, verr.Field)
	}
}

func TestInputParser(t *testing.T) {
	witness, expected, err := csn.InputParser{}.Parse([]byte(`{"fullName":"Alice Smith","minter":"42"}`))
	require.NoError(t, err)
	require.IsType(t, &csn.Input{}, witness)
	assert.Len(t, expected, csn.Arity)
	assert.Equal(t, "42", expected[4])

	_, _, err = csn.InputParser{}.Parse([]byte(`{`))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAliceSmithVector(t *testing.T) {
	s, err := csn.Request{FullName: "Alice Smith", Minter: "1"}.Subject()
	require.NoError(t, err)
	expected, err := csn.ExpectedSignals(s)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"50570068201687554200819710666913357097",
		"67626119761229008191458055507034449160",
		"209282530912662390224268633157162002277",
		"317008160677423077337944802376308460620",
		"1",
	}, expected)
}
