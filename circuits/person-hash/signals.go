package cph

import (
	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
)

// ExpectedSignals recomputes the public signals directly from the subject,
// without going through the witness. An absent parent contributes 0, 0.
func ExpectedSignals(s *Subject) ([]string, error) {
	if err := common.CheckSubmitter("submitter", s.Submitter); err != nil {
		return nil, err
	}

	self, err := common.CommitIdentity(models.RoleSelf, s.Self)
	if err != nil {
		return nil, err
	}
	father, err := parentLimbs(models.RoleFather, s.Father)
	if err != nil {
		return nil, err
	}
	mother, err := parentLimbs(models.RoleMother, s.Mother)
	if err != nil {
		return nil, err
	}

	person := self.PersonLimbs()
	return common.BigsToStrings(
		person.Hi, person.Lo,
		father.Hi, father.Lo,
		mother.Hi, mother.Lo,
		s.Submitter,
	), nil
}

func parentLimbs(role models.Role, p models.ParentInput) (common.Limb128Pair, error) {
	rec, ok := p.Record()
	if !ok {
		return common.ZeroLimbs(), nil
	}
	c, err := common.CommitIdentity(role, rec)
	if err != nil {
		return common.Limb128Pair{}, err
	}
	return c.PersonLimbs(), nil
}
