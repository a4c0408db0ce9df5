package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Plan is the subscription tier carried by a session token.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Claims is the session token payload. Pla holds the active plan as issued
// by the identity provider, e.g. "u:premium".
type Claims struct {
	Pla string `json:"pla,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the verified caller.
type Principal struct {
	UserID string
	Plan   Plan
}

var (
	ErrInvalidToken  = errors.New("invalid token")
	errMissingSecret = errors.New("jwt verification key not configured")
	errHMACDisabled  = errors.New("hs256 tokens are not accepted while a public key is configured")
)

// Verifier validates session tokens. RS256 tokens are checked against
// PublicKey; HS256 tokens against Secret, and only when PublicKey is nil.
type Verifier struct {
	PublicKey *rsa.PublicKey
	Secret    []byte
	Leeway    time.Duration
}

// NewVerifier builds a Verifier from a PEM public key and/or a shared secret.
func NewVerifier(publicKeyPEM, secret string) (*Verifier, error) {
	v := &Verifier{Leeway: 5 * time.Second}
	if pem := strings.TrimSpace(publicKeyPEM); pem != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(strings.ReplaceAll(pem, `\n`, "\n")))
		if err != nil {
			return nil, fmt.Errorf("parse identity public key: %w", err)
		}
		v.PublicKey = key
	}
	if s := strings.TrimSpace(secret); s != "" {
		v.Secret = []byte(s)
	}
	if v.PublicKey == nil && v.Secret == nil {
		return nil, errMissingSecret
	}
	return v, nil
}

// Verify parses and validates a raw token and returns the caller identity.
func (v *Verifier) Verify(raw string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg(), jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.Leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Principal{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return Principal{UserID: claims.Subject, Plan: ParsePlan(claims.Pla)}, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (interface{}, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodRSA:
		if v.PublicKey == nil {
			return nil, errMissingSecret
		}
		return v.PublicKey, nil
	case *jwt.SigningMethodHMAC:
		if v.PublicKey != nil {
			return nil, errHMACDisabled
		}
		if v.Secret == nil {
			return nil, errMissingSecret
		}
		return v.Secret, nil
	default:
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
}

// ParsePlan normalizes a plan claim. Scoped values such as "u:premium" or
// "o:premium" are accepted; anything unrecognised is free.
func ParsePlan(raw string) Plan {
	val := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(val, ":"); i >= 0 {
		val = val[i+1:]
	}
	if val == string(PlanPremium) {
		return PlanPremium
	}
	return PlanFree
}

// SignHS256 mints a development token for userID on plan.
func SignHS256(secret []byte, userID string, plan Plan, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errMissingSecret
	}
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("sub is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Pla: "u:" + string(plan),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(secret)
}
