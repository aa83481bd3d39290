package auth

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// GenerateCode returns a uniformly random numeric code of the given length.
func GenerateCode(digits int) (string, error) {
	if digits <= 0 {
		digits = 6
	}
	var b strings.Builder
	b.Grow(digits)
	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
