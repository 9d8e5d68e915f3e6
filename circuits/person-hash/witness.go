package cph

import (
	"fmt"
	"math/big"

	"github.com/deepfamily/identity-zk/common"
	"github.com/deepfamily/identity-zk/models"
)

const (
	// Name of the circuit and the base name of its artifacts
	Name = "person-hash"
	// Arity is the number of public signals the circuit exposes
	Arity = 7
)

// Request is the user-facing input of the person-hash circuit. A parent that
// is nil or has a blank name is absent.
type Request struct {
	Self      models.IdentityRecord  `json:"self"`
	Father    *models.IdentityRecord `json:"father,omitempty"`
	Mother    *models.IdentityRecord `json:"mother,omitempty"`
	Submitter string                 `json:"submitter"`
}

// Subject is a validated request with parents resolved to Present or Absent
type Subject struct {
	Self      models.IdentityRecord
	Father    models.ParentInput
	Mother    models.ParentInput
	Submitter *big.Int
}

// Input is the witness file consumed by the proving toolchain.
// Field names are part of the circuit interface.
type Input struct {
	FullNameHash [32]byte `json:"fullNameHash"`
	SaltHash     [32]byte `json:"saltHash"`
	IsBirthBC    uint8    `json:"isBirthBC"`
	BirthYear    uint32   `json:"birthYear"`
	BirthMonth   uint8    `json:"birthMonth"`
	BirthDay     uint8    `json:"birthDay"`
	Gender       uint8    `json:"gender"`

	FatherFullNameHash [32]byte `json:"father_fullNameHash"`
	FatherSaltHash     [32]byte `json:"father_saltHash"`
	FatherIsBirthBC    uint8    `json:"father_isBirthBC"`
	FatherBirthYear    uint32   `json:"father_birthYear"`
	FatherBirthMonth   uint8    `json:"father_birthMonth"`
	FatherBirthDay     uint8    `json:"father_birthDay"`
	FatherGender       uint8    `json:"father_gender"`
	HasFather          uint8    `json:"hasFather"`

	MotherFullNameHash [32]byte `json:"mother_fullNameHash"`
	MotherSaltHash     [32]byte `json:"mother_saltHash"`
	MotherIsBirthBC    uint8    `json:"mother_isBirthBC"`
	MotherBirthYear    uint32   `json:"mother_birthYear"`
	MotherBirthMonth   uint8    `json:"mother_birthMonth"`
	MotherBirthDay     uint8    `json:"mother_birthDay"`
	MotherGender       uint8    `json:"mother_gender"`
	HasMother          uint8    `json:"hasMother"`

	Submitter string `json:"submitter"`
}

// person is the seven per-role witness fields
type person struct {
	fullNameHash [32]byte
	saltHash     [32]byte
	isBirthBC    uint8
	birthYear    uint32
	birthMonth   uint8
	birthDay     uint8
	gender       uint8
}

// Subject validates the request
func (r Request) Subject() (*Subject, error) {
	submitter, err := common.ParseSubmitter("submitter", r.Submitter)
	if err != nil {
		return nil, err
	}
	return &Subject{
		Self:      r.Self,
		Father:    common.ParentInput(r.Father),
		Mother:    common.ParentInput(r.Mother),
		Submitter: submitter,
	}, nil
}

// BuildWitness assembles the circuit input. An absent parent yields all-zero
// fields and a zero has-flag. A present parent is taken as given; zero birth
// fields are not rejected.
func BuildWitness(s *Subject) (*Input, error) {
	if err := common.CheckSubmitter("submitter", s.Submitter); err != nil {
		return nil, err
	}

	self, err := personFields(models.RoleSelf, s.Self)
	if err != nil {
		return nil, err
	}
	in := &Input{
		FullNameHash: self.fullNameHash,
		SaltHash:     self.saltHash,
		IsBirthBC:    self.isBirthBC,
		BirthYear:    self.birthYear,
		BirthMonth:   self.birthMonth,
		BirthDay:     self.birthDay,
		Gender:       self.gender,
		Submitter:    s.Submitter.String(),
	}

	if rec, ok := s.Father.Record(); ok {
		f, err := personFields(models.RoleFather, rec)
		if err != nil {
			return nil, err
		}
		in.FatherFullNameHash = f.fullNameHash
		in.FatherSaltHash = f.saltHash
		in.FatherIsBirthBC = f.isBirthBC
		in.FatherBirthYear = f.birthYear
		in.FatherBirthMonth = f.birthMonth
		in.FatherBirthDay = f.birthDay
		in.FatherGender = f.gender
		in.HasFather = 1
	}

	if rec, ok := s.Mother.Record(); ok {
		m, err := personFields(models.RoleMother, rec)
		if err != nil {
			return nil, err
		}
		in.MotherFullNameHash = m.fullNameHash
		in.MotherSaltHash = m.saltHash
		in.MotherIsBirthBC = m.isBirthBC
		in.MotherBirthYear = m.birthYear
		in.MotherBirthMonth = m.birthMonth
		in.MotherBirthDay = m.birthDay
		in.MotherGender = m.gender
		in.HasMother = 1
	}

	return in, nil
}

func personFields(role models.Role, r models.IdentityRecord) (person, error) {
	nameHash, saltHash, err := common.Digests(role, r)
	if err != nil {
		return person{}, err
	}
	if _, err := common.PackBirthDataAs(role, r); err != nil {
		return person{}, err
	}
	return person{
		fullNameHash: nameHash,
		saltHash:     saltHash,
		isBirthBC:    common.BoolToUint(r.IsBirthBC),
		birthYear:    r.BirthYear,
		birthMonth:   r.BirthMonth,
		birthDay:     r.BirthDay,
		gender:       r.Gender,
	}, nil
}

// PublicSignals evaluates the circuit's public outputs from the witness:
// [personHi, personLo, fatherHi, fatherLo, motherHi, motherLo, submitter].
func (in *Input) PublicSignals() ([]string, error) {
	submitter, ok := new(big.Int).SetString(in.Submitter, 10)
	if !ok {
		return nil, models.NewValidationError("submitter", "%q is not a decimal integer", in.Submitter)
	}
	if err := common.CheckSubmitter("submitter", submitter); err != nil {
		return nil, err
	}

	self, err := in.commitment(models.RoleSelf, person{
		in.FullNameHash, in.SaltHash, in.IsBirthBC, in.BirthYear, in.BirthMonth, in.BirthDay, in.Gender,
	}, 1)
	if err != nil {
		return nil, err
	}
	father, err := in.commitment(models.RoleFather, person{
		in.FatherFullNameHash, in.FatherSaltHash, in.FatherIsBirthBC, in.FatherBirthYear,
		in.FatherBirthMonth, in.FatherBirthDay, in.FatherGender,
	}, in.HasFather)
	if err != nil {
		return nil, err
	}
	mother, err := in.commitment(models.RoleMother, person{
		in.MotherFullNameHash, in.MotherSaltHash, in.MotherIsBirthBC, in.MotherBirthYear,
		in.MotherBirthMonth, in.MotherBirthDay, in.MotherGender,
	}, in.HasMother)
	if err != nil {
		return nil, err
	}

	return common.BigsToStrings(self.Hi, self.Lo, father.Hi, father.Lo, mother.Hi, mother.Lo, submitter), nil
}

func (in *Input) commitment(role models.Role, p person, present uint8) (common.Limb128Pair, error) {
	switch present {
	case 0:
		return common.ZeroLimbs(), nil
	case 1:
	default:
		return common.Limb128Pair{}, models.NewValidationError(hasField(role), "must be 0 or 1, got %d", present)
	}
	if p.isBirthBC > 1 {
		return common.Limb128Pair{}, models.NewValidationError(role.Field("isBirthBC"), "must be 0 or 1, got %d", p.isBirthBC)
	}

	packed, err := common.PackBirthDataAs(role, models.IdentityRecord{
		IsBirthBC:  p.isBirthBC == 1,
		BirthYear:  p.birthYear,
		BirthMonth: p.birthMonth,
		BirthDay:   p.birthDay,
		Gender:     p.gender,
	})
	if err != nil {
		return common.Limb128Pair{}, err
	}
	salted, err := common.SaltedNameCommitment(common.SplitLimbs(p.fullNameHash), common.SplitLimbs(p.saltHash))
	if err != nil {
		return common.Limb128Pair{}, err
	}
	h, err := common.PersonCommitment(salted, packed)
	if err != nil {
		return common.Limb128Pair{}, err
	}
	return common.SplitValue(h)
}

func hasField(role models.Role) string {
	if role == models.RoleMother {
		return "hasMother"
	}
	return "hasFather"
}

// InputParser builds witness and expected signals from a JSON Request
type InputParser struct{}

func (InputParser) Parse(data []byte) (any, []string, error) {
	var req Request
	if err := common.DecodeRequest(data, &req); err != nil {
		return nil, nil, err
	}
	s, err := req.Subject()
	if err != nil {
		return nil, nil, err
	}
	in, err := BuildWitness(s)
	if err != nil {
		return nil, nil, err
	}
	expected, err := ExpectedSignals(s)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive expected signals: %w", err)
	}
	return in, expected, nil
}
