package oracle_test

import (
	"errors"
	"testing"

	cph "github.com/deepfamily/identity-zk/circuits/person-hash"
	"github.com/deepfamily/identity-zk/models"
	"github.com/deepfamily/identity-zk/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareMatch(t *testing.T) {
	res := oracle.Compare([]string{"1", "2", "3"}, []string{"1", "2", "003"})
	assert.True(t, res.Match)
	assert.Empty(t, res.Mismatches)
	assert.NotNil(t, res.Mismatches)
}

func TestCompareReportsEveryIndex(t *testing.T) {
	res := oracle.Compare([]string{"1", "2", "3"}, []string{"1", "9", "8"})
	require.False(t, res.Match)
	require.Len(t, res.Mismatches, 2)

	assert.Equal(t, 1, res.Mismatches[0].Index)
	assert.Equal(t, "2", *res.Mismatches[0].Expected)
	assert.Equal(t, "9", *res.Mismatches[0].Actual)
	assert.Equal(t, 2, res.Mismatches[1].Index)
}

func TestCompareLengthMismatch(t *testing.T) {
	res := oracle.Compare([]string{"1", "2", "3", "4", "5", "6", "7"}, []string{"1", "2", "3", "4", "5", "6"})
	require.False(t, res.Match)
	require.Len(t, res.Mismatches, 1)
	m := res.Mismatches[0]
	assert.Equal(t, 6, m.Index)
	assert.Equal(t, "7", *m.Expected)
	assert.Nil(t, m.Actual)
	assert.Equal(t, "[6] expected 7, got undefined", m.String())

	res = oracle.Compare(nil, []string{"1"})
	require.Len(t, res.Mismatches, 1)
	assert.Nil(t, res.Mismatches[0].Expected)
	assert.Equal(t, "[0] expected undefined, got 1", res.Mismatches[0].String())
}

func TestCheck(t *testing.T) {
	assert.NoError(t, oracle.Check("salted-name", []string{"1"}, []string{"1"}))

	err := oracle.Check("salted-name", []string{"1", "2"}, []string{"1", "3"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSignalMismatch))

	var serr *models.SignalMismatchError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "salted-name", serr.Circuit)
	assert.Contains(t, err.Error(), "[1] expected 2, got 3")
}

func TestCheckDetectsEncoderDrift(t *testing.T) {
	s, err := cph.Request{Self: models.GetDemoIdentity(), Submitter: models.DemoSubmitter}.Subject()
	require.NoError(t, err)
	expected, err := cph.ExpectedSignals(s)
	require.NoError(t, err)

	// limbs swapped, as a drifted encoder would produce
	drifted := append([]string{}, expected...)
	drifted[0], drifted[1] = drifted[1], drifted[0]

	err = oracle.Check(cph.Name, expected, drifted)
	var serr *models.SignalMismatchError
	require.True(t, errors.As(err, &serr))
	assert.Len(t, serr.Mismatches, 2)
}
