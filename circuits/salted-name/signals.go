package csn

import (
	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
)

// ExpectedSignals recomputes the public signals directly from the subject,
// without going through the witness.
func ExpectedSignals(s *Subject) ([]string, error) {
	if err := common.CheckSubmitter("minter", s.Minter); err != nil {
		return nil, err
	}
	c, err := common.CommitIdentity(models.RoleSelf, models.IdentityRecord{
		FullName:   s.FullName,
		Passphrase: s.Passphrase,
	})
	if err != nil {
		return nil, err
	}

	salted := c.SaltedLimbs()
	name := common.SplitLimbs(c.NameHash)
	return common.BigsToStrings(salted.Hi, salted.Lo, name.Hi, name.Lo, s.Minter), nil
}
