package security

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	pinMin  = 100000
	pinSpan = 900000

	// MinPINCost is the floor for the bcrypt cost factor. Ten rounds is
	// the minimum acceptable work factor for a six-digit secret.
	MinPINCost = 10
)

// GeneratePIN draws a uniform 6-digit numeric PIN (100000-999999) from the
// system CSPRNG.
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinSpan))
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+pinMin), nil
}

// HashPIN hashes the plaintext PIN with bcrypt. Costs below MinPINCost are
// raised to it, so a misconfigured deployment can never weaken storage.
func HashPIN(pin string, cost int) (string, error) {
	if cost < MinPINCost {
		cost = MinPINCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// HashPINWithCost is HashPIN without the cost floor. Only tests use low
// costs; production callers go through HashPIN.
func HashPINWithCost(pin string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// VerifyPIN compares a plaintext PIN against the stored bcrypt hash. The
// comparison does not leak which bytes differed.
func VerifyPIN(pin, hash string) bool {
	if pin == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
