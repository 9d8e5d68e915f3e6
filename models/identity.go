package models

// IdentityRecord is one person snapshot (self, father or mother) as
// collected from the user. Changing any field yields a different commitment.
type IdentityRecord struct {
	FullName   string `json:"fullName"`
	Passphrase string `json:"passphrase,omitempty"`
	IsBirthBC  bool   `json:"isBirthBC,omitempty"`
	BirthYear  uint32 `json:"birthYear"`            // must fit 16 bits
	BirthMonth uint8  `json:"birthMonth,omitempty"` // 0 = unknown
	BirthDay   uint8  `json:"birthDay,omitempty"`   // 0 = unknown
	Gender     uint8  `json:"gender,omitempty"`     // 0..3
}

// ParentInput is either a present parent record or the absent marker.
// The zero value is Absent.
type ParentInput struct {
	record *IdentityRecord
}

// Present wraps a known parent
func Present(r IdentityRecord) ParentInput {
	return ParentInput{record: &r}
}

// Absent marks a parent as unknown
func Absent() ParentInput {
	return ParentInput{}
}

// Record returns the parent record and whether it is present
func (p ParentInput) Record() (IdentityRecord, bool) {
	if p.record == nil {
		return IdentityRecord{}, false
	}
	return *p.record, true
}

// IsPresent reports whether a parent record was supplied
func (p ParentInput) IsPresent() bool {
	return p.record != nil
}

// GetDemoIdentity returns the canonical regression fixture subject
func GetDemoIdentity() IdentityRecord {
	return IdentityRecord{
		FullName:   "Alice Smith",
		Passphrase: "",
		IsBirthBC:  false,
		BirthYear:  1990,
		BirthMonth: 0,
		BirthDay:   0,
		Gender:     1,
	}
}

// DemoSubmitter is the fixed account used with GetDemoIdentity
const DemoSubmitter = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

// Role names whose record a witness field or error refers to
type Role string

const (
	RoleSelf   Role = ""
	RoleFather Role = "father"
	RoleMother Role = "mother"
)

// Field returns the witness field name for this role, e.g. father_birthYear
func (r Role) Field(name string) string {
	if r == RoleSelf {
		return name
	}
	return string(r) + "_" + name
}
