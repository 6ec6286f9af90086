// Package auth provides functionality for generating and parsing JSON Web Tokens (JWT)
// for dispatcher sessions. A token acts for exactly one chat account.
package auth

import (
	"errors"
	"time"

	"chat_economy/internal/config"

	"github.com/golang-jwt/jwt/v4"
)

// secretKey is the key used to sign the JWT, taken from JWT_SECRET.
var secretKey = []byte(config.JWTSecret)

// TOKENEXP defines the token expiration duration.
const TOKENEXP = time.Hour * 3

// ErrMissingAccount is returned for tokens that do not name an account.
var ErrMissingAccount = errors.New("auth: token carries no account id")

// Claims represents the custom JWT claims that include the account ID and standard claims.
// It embeds jwt.RegisteredClaims for standard fields like expiration time.
type Claims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a new JWT token for a given accountID.
// It sets the expiration time based on TOKENEXP and includes the accountID in the claims.
func GenerateToken(accountID string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TOKENEXP)),
			Subject:   accountID,
		},
		AccountID: accountID,
	}
	// Create a new token with HS256 signing method and the specified claims.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	// Sign the token using the secret key and return the signed token string.
	return token.SignedString(secretKey)
}

// ParseToken validates the provided JWT token string and parses its claims.
// It returns the Claims if the token is valid, or an error otherwise.
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	// Validate and extract the claims.
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.AccountID == "" {
			return nil, ErrMissingAccount
		}
		return claims, nil
	}
	// Return an error if the token signature is invalid.
	return nil, jwt.ErrSignatureInvalid
}
