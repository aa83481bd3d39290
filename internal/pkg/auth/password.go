package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a secret does not match its stored hash.
var ErrMismatch = errors.New("secret does not match")

// PasswordHasher defines hashing strategy for credentials and one-time codes.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Compare(hash string, secret string) error
}

// BcryptHasher uses bcrypt to hash secrets.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates BcryptHasher with provided cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// NewCodeHasher returns a hasher for short-lived one-time codes.
func NewCodeHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.MinCost}
}

// Hash returns bcrypt hash for provided secret.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Compare checks secret against stored hash.
func (h *BcryptHasher) Compare(hash string, secret string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return err
}
