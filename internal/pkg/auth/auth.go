// Package auth provides functionality for handling JSON Web Token (JWT) based authentication.
// Dispatcher sessions carry one chat account id; the middleware resolves it into the request context.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"chat_economy/internal/models"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

// ContextAccountID is the request context key holding the authenticated account id.
const ContextAccountID contextKey = "contextAccountID"

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CheckJWTMiddleware rejects requests without a valid dispatcher token with 401.
// Accepted requests carry the token's account id, readable through AccountID.
func CheckJWTMiddleware() func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeErrorResponse(w, "missing auth header", http.StatusUnauthorized)
				return
			}
			token, ok := bearerToken(header)
			if !ok {
				writeErrorResponse(w, "invalid auth header", http.StatusUnauthorized)
				return
			}

			claims, err := ParseToken(token)
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				writeErrorResponse(w, "token expired", http.StatusUnauthorized)
				return
			case err != nil:
				writeErrorResponse(w, "invalid token", http.StatusUnauthorized)
				return
			}

			h.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), claims.AccountID)))
		}
		return http.HandlerFunc(fn)
	}
}

// WithAccountID returns a copy of ctx carrying accountID.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, ContextAccountID, accountID)
}

// AccountID returns the account ID stored by CheckJWTMiddleware, or "".
func AccountID(ctx context.Context) string {
	id, _ := ctx.Value(ContextAccountID).(string)
	return id
}

func writeErrorResponse(res http.ResponseWriter, errorInfo string, statusCode int) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	json.NewEncoder(res).Encode(models.ErrorResponse{Errors: errorInfo})
}
