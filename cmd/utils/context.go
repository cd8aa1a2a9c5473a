package utils

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const UserIDKey contextKey = "userID"

// GetUserIDFromContext returns the authenticated caller's ID. It only
// succeeds behind AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (uint, error) {
    userID, ok := ctx.Value(UserIDKey).(uint)
    if !ok {
        return 0, errors.New("user ID not found in context")
    }
    return userID, nil
}

// IdentityFromRequest resolves the caller's identity if a valid bearer token
// is present, nil otherwise. Public read paths use this to widen what an
// event owner may see without requiring authentication.
func IdentityFromRequest(r *http.Request) *uint {
    if userID, ok := r.Context().Value(UserIDKey).(uint); ok {
        return &userID
    }
    authHeader := r.Header.Get("Authorization")
    if authHeader == "" {
        return nil
    }
    userID, err := parseBearerToken(authHeader)
    if err != nil {
        return nil
    }
    return &userID
}

func parseBearerToken(authHeader string) (uint, error) {
    tokenString := strings.Replace(authHeader, "Bearer ", "", 1)

    claims := &jwt.RegisteredClaims{}
    token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
        return []byte(os.Getenv("SECRET_KEY")), nil
    })
    if err != nil {
        return 0, err
    }
    if !token.Valid {
        return 0, errors.New("invalid token")
    }

    userID, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil {
        return 0, err
    }
    return uint(userID), nil
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// caller's ID on the request context.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        authHeader := r.Header.Get("Authorization")
        if authHeader == "" {
            WriteError(w, ErrUnauthorized, "Authorization header required")
            return
        }

        userID, err := parseBearerToken(authHeader)
        if err != nil {
            WriteError(w, ErrUnauthorized, "Invalid token")
            return
        }

        ctx := context.WithValue(r.Context(), UserIDKey, userID)
        next.ServeHTTP(w, r.WithContext(ctx))
    }
}
