package common_test

import (
	"math/big"
	"testing"

	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoseidonVector(t *testing.T) {
	// circomlib poseidon([1, 2])
	h, err := poseidon.Hash([]*big.Int{big.NewInt(1), big.NewInt(2)})
	require.NoError(t, err)
	assert.Equal(t, "7853200120776062878684798364095072458815029376092732009249414926327459813530", h.String())
}

func TestSaltedNameCommitmentMatchesFormula(t *testing.T) {
	name := common.SplitLimbs(common.Digest("Alice Smith"))
	salt := common.SplitLimbs(common.ZeroDigest)

	got, err := common.SaltedNameCommitment(name, salt)
	require.NoError(t, err)

	want, err := poseidon.Hash([]*big.Int{name.Hi, name.Lo, big.NewInt(0), big.NewInt(0), big.NewInt(0)})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// order sensitive
	swapped, err := common.SaltedNameCommitment(common.Limb128Pair{Hi: name.Lo, Lo: name.Hi}, salt)
	require.NoError(t, err)
	assert.NotEqual(t, got, swapped)
}

func TestPersonCommitmentMatchesFormula(t *testing.T) {
	c, err := common.CommitIdentity(models.RoleSelf, models.GetDemoIdentity())
	require.NoError(t, err)

	salted := c.SaltedLimbs()
	want, err := poseidon.Hash([]*big.Int{salted.Hi, salted.Lo, big.NewInt(33386659842)})
	require.NoError(t, err)
	assert.Equal(t, want, c.Person)
	assert.Equal(t, "17208102503023527043108365957859527816976175727200221590829079084395368752392", c.Salted.String())
	assert.Equal(t, "18558270472206605314820110008495024034696455455002405123136595635825029951481", c.Person.String())
	assert.True(t, c.SaltHash.IsZero())
	assert.Equal(t, common.Digest("Alice Smith"), c.NameHash)
}

func TestCommitIdentitySensitivity(t *testing.T) {
	base := models.GetDemoIdentity()
	ref, err := common.CommitIdentity(models.RoleSelf, base)
	require.NoError(t, err)

	variants := map[string]func(r *models.IdentityRecord){
		"name":       func(r *models.IdentityRecord) { r.FullName = "Alice Smyth" },
		"passphrase": func(r *models.IdentityRecord) { r.Passphrase = "x" },
		"year":       func(r *models.IdentityRecord) { r.BirthYear++ },
		"month":      func(r *models.IdentityRecord) { r.BirthMonth = 1 },
		"day":        func(r *models.IdentityRecord) { r.BirthDay = 1 },
		"gender":     func(r *models.IdentityRecord) { r.Gender = 2 },
		"bc":         func(r *models.IdentityRecord) { r.IsBirthBC = true },
	}
	for name, mutate := range variants {
		rec := base
		mutate(&rec)
		c, err := common.CommitIdentity(models.RoleSelf, rec)
		require.NoError(t, err, name)
		assert.NotEqual(t, ref.Person, c.Person, name)
	}

	// formatting differences normalize away
	padded := base
	padded.FullName = "  Alice Smith "
	c, err := common.CommitIdentity(models.RoleSelf, padded)
	require.NoError(t, err)
	assert.Equal(t, ref.Person, c.Person)
}

func TestCommitIdentityDeterministic(t *testing.T) {
	a, err := common.CommitIdentity(models.RoleSelf, models.GetDemoIdentity())
	require.NoError(t, err)
	b, err := common.CommitIdentity(models.RoleSelf, models.GetDemoIdentity())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
