package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sahelys/sahelys-backend/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// JWTClaims carries the subject identity baked into each bearer token. Role
// and status are re-checked against the live user record on every request,
// so a stale claim cannot outlive an account change.
type JWTClaims struct {
	UserID string          `json:"sub"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey     string
	method        jwt.SigningMethod
	tokenDuration time.Duration
}

// NewJWTManager builds a manager for the configured HMAC algorithm
// (HS256/HS384/HS512; anything else falls back to HS256).
func NewJWTManager(secretKey, algorithm string, tokenDuration time.Duration) *JWTManager {
	var method jwt.SigningMethod
	switch algorithm {
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		method = jwt.SigningMethodHS256
	}
	return &JWTManager{secretKey: secretKey, method: method, tokenDuration: tokenDuration}
}

// GenerateToken issues a signed token for the user.
func (manager *JWTManager) GenerateToken(user *models.User) (string, error) {
	now := time.Now()

	claims := JWTClaims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(manager.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(manager.method, claims)
	return token.SignedString([]byte(manager.secretKey))
}

// VerifyToken parses and validates a token string and returns its claims.
func (manager *JWTManager) VerifyToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(manager.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// TokenDuration exposes the configured lifetime, used for expires_in fields.
func (manager *JWTManager) TokenDuration() time.Duration {
	return manager.tokenDuration
}
