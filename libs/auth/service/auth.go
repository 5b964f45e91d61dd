package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const accessTokenType = "access"

// ErrInvalidToken is returned for tokens that fail validation
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload of an academy access token
type Claims struct {
	UserID int    `json:"user_id"`
	Role   int    `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenGenerator handles JWT access token signing and validation.
// Tokens are issued by the academy login flow; this service mostly validates them.
type TokenGenerator struct {
	secret            []byte
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:            []byte(secret),
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}
}

// GenerateAccessToken signs an access token carrying the user ID and role
func (tg *TokenGenerator) GenerateAccessToken(userID int, role int) (string, error) {
	now := tg.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Type:   accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tg.accessTokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tg.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns its claims
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tg.secret, nil
	}, jwt.WithTimeFunc(tg.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != accessTokenType {
		return nil, fmt.Errorf("%w: not an access token", ErrInvalidToken)
	}

	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: user_id not found in token", ErrInvalidToken)
	}

	return claims, nil
}
