package common

import (
	"strings"
	"unicode"

	"github.com/deepfamily/identity-zk/models"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding whitespace and composes the result (NFC).
// A blank name is rejected; callers decide separately whether a blank parent
// name means "absent" (see IsBlankName).
func NormalizeName(raw string) (string, error) {
	return NormalizeNameAs(models.RoleSelf, raw)
}

// NormalizeNameAs is NormalizeName reporting errors against the role's field
func NormalizeNameAs(role models.Role, raw string) (string, error) {
	name := norm.NFC.String(trimName(raw))
	if name == "" {
		return "", models.NewValidationError(role.Field("fullName"), "name must not be empty")
	}
	return name, nil
}

// IsBlankName reports whether raw normalizes to the empty name
func IsBlankName(raw string) bool {
	return trimName(raw) == ""
}

// NormalizePassphrase decomposes the passphrase (NFD) and keeps surrounding
// whitespace, which is significant for a passphrase.
func NormalizePassphrase(raw string) string {
	return norm.NFD.String(raw)
}

// trimName strips the same set String.prototype.trim does: the ECMAScript
// WhiteSpace and LineTerminator code points. U+0085 is not among them.
func trimName(s string) string {
	return strings.TrimFunc(s, isTrimSpace)
}

func isTrimSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00A0', '\uFEFF', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// ParentInput maps an optional parent record onto the tagged variant: nil or
// a blank name is Absent. Birth fields of a named parent are kept as given,
// zero values included.
func ParentInput(r *models.IdentityRecord) models.ParentInput {
	if r == nil || IsBlankName(r.FullName) {
		return models.Absent()
	}
	return models.Present(*r)
}
