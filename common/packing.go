package common

import (
	"math/big"

	"github.com/deepfamily/identity-zk/models"
)

const (
	MaxBirthYear  = 0xFFFF
	MaxBirthMonth = 12
	MaxBirthDay   = 31
	MaxGender     = 3
)

// PackedBirthData layout:
//
//	birthYear<<24 | birthMonth<<16 | birthDay<<8 | gender<<1 | isBirthBC
type PackedBirthData uint64

// PackBirthData range-checks and packs the birth metadata of r
func PackBirthData(r models.IdentityRecord) (PackedBirthData, error) {
	return PackBirthDataAs(models.RoleSelf, r)
}

// PackBirthDataAs is PackBirthData naming the role's witness fields in errors
func PackBirthDataAs(role models.Role, r models.IdentityRecord) (PackedBirthData, error) {
	if r.BirthYear > MaxBirthYear {
		return 0, models.NewValidationError(role.Field("birthYear"), "%d exceeds %d", r.BirthYear, MaxBirthYear)
	}
	if r.BirthMonth > MaxBirthMonth {
		return 0, models.NewValidationError(role.Field("birthMonth"), "%d exceeds %d", r.BirthMonth, MaxBirthMonth)
	}
	if r.BirthDay > MaxBirthDay {
		return 0, models.NewValidationError(role.Field("birthDay"), "%d exceeds %d", r.BirthDay, MaxBirthDay)
	}
	if r.Gender > MaxGender {
		return 0, models.NewValidationError(role.Field("gender"), "%d exceeds %d", r.Gender, MaxGender)
	}

	packed := uint64(r.BirthYear)<<24 |
		uint64(r.BirthMonth)<<16 |
		uint64(r.BirthDay)<<8 |
		uint64(r.Gender)<<1 |
		uint64(BoolToUint(r.IsBirthBC))
	return PackedBirthData(packed), nil
}

// Unpack reverses PackBirthData. Only the birth fields of the result are set.
func (p PackedBirthData) Unpack() models.IdentityRecord {
	return models.IdentityRecord{
		BirthYear:  uint32(p>>24) & MaxBirthYear,
		BirthMonth: uint8(p >> 16),
		BirthDay:   uint8(p >> 8),
		Gender:     uint8(p>>1) & MaxGender,
		IsBirthBC:  p&1 == 1,
	}
}

func (p PackedBirthData) BigInt() *big.Int {
	return new(big.Int).SetUint64(uint64(p))
}
