package security

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, expiresAt, err := IssueAccessToken(42, "ta-attendance", "test-key", time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	claims, err := ParseAccessToken(token, "test-key", "ta-attendance")
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.WorkerID != 42 {
		t.Fatalf("expected worker id 42, got %d", claims.WorkerID)
	}
	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
}

func TestParseAccessTokenRejectsWrongKey(t *testing.T) {
	token, _, err := IssueAccessToken(7, "ta-attendance", "key-a", time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	if _, err := ParseAccessToken(token, "key-b", "ta-attendance"); err == nil {
		t.Fatalf("expected error for wrong signing key")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	token, _, err := IssueAccessToken(7, "someone-else", "key", time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken returned error: %v", err)
	}

	if _, err := ParseAccessToken(token, "key", "ta-attendance"); err == nil {
		t.Fatalf("expected error for issuer mismatch")
	}
}
