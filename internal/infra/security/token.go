package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates the token failed signature, issuer, or claim
// validation.
var ErrInvalidToken = errors.New("invalid access token")

// AccessClaims is the JWT payload issued on sign-in. Subject carries the
// worker id in decimal form.
type AccessClaims struct {
	WorkerID int64 `json:"wid"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs an HS256 token for the worker.
func IssueAccessToken(workerID int64, issuer, signingKey string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := AccessClaims{
		WorkerID: workerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(workerID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseAccessToken validates an HS256 token and returns its claims.
func ParseAccessToken(token, signingKey, issuer string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(signingKey), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, ErrInvalidToken
	}

	if parsed == nil || !parsed.Valid || claims.WorkerID <= 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
