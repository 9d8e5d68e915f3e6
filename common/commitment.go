package common

import (
	"fmt"
	"math/big"

	"github.com/deepfamily/identity-zk/models"
	"github.com/iden3/go-iden3-crypto/poseidon"
)

// SaltedNameCommitment = Poseidon5(nameHi, nameLo, saltHi, saltLo, 0).
// The trailing zero is a padding slot fixed by the circuit.
func SaltedNameCommitment(name, salt Limb128Pair) (*big.Int, error) {
	h, err := poseidon.Hash([]*big.Int{name.Hi, name.Lo, salt.Hi, salt.Lo, big.NewInt(0)})
	if err != nil {
		return nil, fmt.Errorf("salted name commitment: %w", err)
	}
	return h, nil
}

// PersonCommitment = Poseidon3(saltedHi, saltedLo, packedBirthData)
func PersonCommitment(salted *big.Int, packed PackedBirthData) (*big.Int, error) {
	limbs, err := SplitValue(salted)
	if err != nil {
		return nil, fmt.Errorf("person commitment: %w", err)
	}
	h, err := poseidon.Hash([]*big.Int{limbs.Hi, limbs.Lo, packed.BigInt()})
	if err != nil {
		return nil, fmt.Errorf("person commitment: %w", err)
	}
	return h, nil
}

// IdentityCommitment holds every intermediate value derived from one record
type IdentityCommitment struct {
	NameHash Digest256
	SaltHash Digest256
	Salted   *big.Int
	Packed   PackedBirthData
	Person   *big.Int
}

// SaltedLimbs splits the salted-name commitment
func (c *IdentityCommitment) SaltedLimbs() Limb128Pair {
	l, _ := SplitValue(c.Salted)
	return l
}

// PersonLimbs splits the person commitment
func (c *IdentityCommitment) PersonLimbs() Limb128Pair {
	l, _ := SplitValue(c.Person)
	return l
}

// Digests normalizes the name and passphrase of r and hashes them. An empty
// passphrase yields ZeroDigest.
func Digests(role models.Role, r models.IdentityRecord) (nameHash, saltHash Digest256, err error) {
	name, err := NormalizeNameAs(role, r.FullName)
	if err != nil {
		return ZeroDigest, ZeroDigest, err
	}
	return Digest(name), DigestOrZero(NormalizePassphrase(r.Passphrase)), nil
}

// CommitIdentity runs normalize -> digest -> salted commitment -> person
// commitment for one record.
func CommitIdentity(role models.Role, r models.IdentityRecord) (*IdentityCommitment, error) {
	nameHash, saltHash, err := Digests(role, r)
	if err != nil {
		return nil, err
	}
	packed, err := PackBirthDataAs(role, r)
	if err != nil {
		return nil, err
	}

	salted, err := SaltedNameCommitment(SplitLimbs(nameHash), SplitLimbs(saltHash))
	if err != nil {
		return nil, err
	}
	person, err := PersonCommitment(salted, packed)
	if err != nil {
		return nil, err
	}

	return &IdentityCommitment{
		NameHash: nameHash,
		SaltHash: saltHash,
		Salted:   salted,
		Packed:   packed,
		Person:   person,
	}, nil
}
