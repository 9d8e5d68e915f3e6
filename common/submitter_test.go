package common_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubmitter(t *testing.T) {
	v, err := common.ParseSubmitter("submitter", models.DemoSubmitter)
	require.NoError(t, err)
	assert.Equal(t, "1390849295786071768276380950238675083608645509734", v.String())
	assert.Equal(t, models.DemoSubmitter, common.SubmitterAddress(v))

	v, err = common.ParseSubmitter("minter", " 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())

	top := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))
	v, err = common.ParseSubmitter("minter", top.String())
	require.NoError(t, err)
	assert.Equal(t, 0, top.Cmp(v))
}

func TestParseSubmitterRejects(t *testing.T) {
	bound := new(big.Int).Lsh(big.NewInt(1), 160).String()
	for _, raw := range []string{"", "-1", bound, "0x1234", "0xZZ9Fd6e51aad88F6F4ce6aB8827279cffFb92266", "abc"} {
		_, err := common.ParseSubmitter("minter", raw)
		require.Error(t, err, raw)

		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr), raw)
		assert.Equal(t, "minter", verr.Field)
	}
}
