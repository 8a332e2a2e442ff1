package security

import (
	"regexp"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestGeneratePINFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[1-9]\d{5}$`)

	for i := 0; i < 200; i++ {
		pin, err := GeneratePIN()
		if err != nil {
			t.Fatalf("GeneratePIN returned error: %v", err)
		}
		if !pattern.MatchString(pin) {
			t.Fatalf("expected 6-digit pin in 100000-999999, got %q", pin)
		}
	}
}

func TestHashPINRoundTrip(t *testing.T) {
	hash, err := HashPINWithCost("483921", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPINWithCost returned error: %v", err)
	}

	if !VerifyPIN("483921", hash) {
		t.Fatalf("expected correct pin to verify")
	}

	// Every one-character perturbation must fail.
	for i := 0; i < 6; i++ {
		wrong := []byte("483921")
		wrong[i] = '0' + (wrong[i]-'0'+1)%10
		if VerifyPIN(string(wrong), hash) {
			t.Fatalf("perturbed pin %s unexpectedly verified", wrong)
		}
	}
}

func TestVerifyPINEmptyInputs(t *testing.T) {
	hash, err := HashPINWithCost("123456", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPINWithCost returned error: %v", err)
	}

	if VerifyPIN("", hash) {
		t.Fatalf("empty pin must not verify")
	}
	if VerifyPIN("123456", "") {
		t.Fatalf("empty hash must not verify")
	}
}

func TestHashPINEnforcesCostFloor(t *testing.T) {
	hash, err := HashPIN("123456", 4)
	if err != nil {
		t.Fatalf("HashPIN returned error: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost returned error: %v", err)
	}
	if cost < MinPINCost {
		t.Fatalf("expected cost >= %d, got %d", MinPINCost, cost)
	}
}
