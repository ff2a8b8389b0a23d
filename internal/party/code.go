package party

import (
	"math/rand"
	"strings"
)

// Party codes are short, human-shareable and case-insensitive. The alphabet
// drops easily confused characters (I, L, O, 0, 1).
const (
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

func generateCode() string {
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// NormalizeCode folds a user-supplied party code into canonical form.
// Comparison is always done on normalized codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
