package test

import (
	"math/rand"
	"strings"
)

const (
	loginAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#%"
	digits           = "0123456789"
)

// RandomLogin returns a lowercase account login of 7 to 14 characters.
func RandomLogin() string {
	return randomFrom(loginAlphabet, 7+rand.Intn(8))
}

// RandomPassword returns a password long enough to pass registration checks.
func RandomPassword() string {
	return randomFrom(passwordAlphabet, 16+rand.Intn(17))
}

// RandomMobile returns an E.164-looking number.
func RandomMobile() string {
	return "+" + randomFrom(digits, 11)
}

// RandomCode returns n decimal digits, the shape of an OTP code.
func RandomCode(n int) string {
	return randomFrom(digits, n)
}

func randomFrom(alphabet string, n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[rand.Intn(len(alphabet))])
	}
	return b.String()
}
