// Package code generates and validates support codes and one-time session
// passwords.
package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the fixed length of a support code.
const Length = 6

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// PasswordLength is sized so a password drawn from a 62-symbol alphabet
// carries more than 128 bits of entropy (62^22 > 2^130).
const PasswordLength = 22

// Generate returns a fresh 6-digit support code. Uniqueness against other
// active codes is not checked here; the caller inserts against the
// active-code index and regenerates on collision.
func Generate() (string, error) {
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to draw random digit: %w", err)
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}

// Validate reports whether s is a well-formed support code: exactly
// 6 ASCII digits. Submitted codes are validated client-side already, but
// the boundary re-validates.
func Validate(s string) error {
	if len(s) != Length {
		return fmt.Errorf("support code must be exactly %d digits", Length)
	}
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return fmt.Errorf("support code must contain only digits")
		}
	}
	return nil
}

// GeneratePassword returns a one-time session password strong enough to
// resist offline brute force for the life of a session TTL.
func GeneratePassword() (string, error) {
	buf := make([]byte, PasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random symbol: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
