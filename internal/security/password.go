package security

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
)

// bcrypt only reads the first 72 bytes of its input.
const maxBcryptBytes = 72

// PasswordHasher turns a plaintext password into its stored form and back.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(stored, plain string) error
}

type BcryptHasher struct {
	Cost int
}

// Hash password hashes a plain text password with bcrypt.
func (h BcryptHasher) Hash(plain string) (string, error) {
	if len(plain) > maxBcryptBytes {
		return "", ErrPasswordTooLong
	}

	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func (BcryptHasher) Verify(stored, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
		return ErrPasswordMismatch
	}
	return err
}

// PlaintextHasher stores passwords as given. Only for compatibility with
// legacy user tables that were written without hashing.
type PlaintextHasher struct{}

func (PlaintextHasher) Hash(plain string) (string, error) { return plain, nil }

func (PlaintextHasher) Verify(stored, plain string) error {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// NewHasher picks a hasher by PASSWORD_MODE.
func NewHasher(mode string) (PasswordHasher, error) {
	switch strings.ToLower(mode) {
	case "", "bcrypt":
		return BcryptHasher{}, nil
	case "plaintext":
		return PlaintextHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password mode %q", mode)
	}
}
