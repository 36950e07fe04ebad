package util

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the lifetime of an issued session token.
const TokenTTL = 24 * time.Hour

var (
	ErrMissingSecret          = errors.New("jwt secret is not configured")
	ErrTokenExpired           = errors.New("token expired")
	ErrTokenMalformed         = errors.New("token malformed")
	ErrTokenSignatureMismatch = errors.New("token signature mismatch")
)

// Identity is the authenticated principal carried in a token.
type Identity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Claims is the JWT payload: the identity plus registered claims (jti, iat, exp).
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the principal stored in the claims.
func (c *Claims) Identity() (Identity, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return Identity{}, ErrTokenMalformed
	}
	return Identity{ID: uint(id), Username: c.Username, Role: c.Role}, nil
}

// IssueToken signs a token for the identity valid for TokenTTL from now.
func IssueToken(ident Identity) (string, *Claims, error) {
	return issueTokenAt(ident, time.Now())
}

func issueTokenAt(ident Identity, now time.Time) (string, *Claims, error) {
	secret := GetJWTSecretByte()
	if len(secret) == 0 {
		return "", nil, ErrMissingSecret
	}
	claims := &Claims{
		Username: ident.Username,
		Role:     ident.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(ident.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// VerifyToken validates signature and expiry and returns the claims.
func VerifyToken(tokenString string) (*Claims, error) {
	secret := GetJWTSecretByte()
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureMismatch
		default:
			return nil, ErrTokenMalformed
		}
	}
	if _, err := claims.Identity(); err != nil {
		return nil, err
	}
	return claims, nil
}
