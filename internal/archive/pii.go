package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// HashPhone returns the hex SHA-256 of the phone's digits so manifests can
// group visits without storing the number.
func HashPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	sum := sha256.Sum256([]byte(digits))
	return hex.EncodeToString(sum[:])
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return ""
	}
	return local[:1] + "***@" + domain
}
