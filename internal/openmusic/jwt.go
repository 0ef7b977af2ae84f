package openmusic

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenClaims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *Server) issueAccessToken(userID string) (string, error) {
	return s.issueToken(userID, "access", s.accessTTL)
}

func (s *Server) issueRefreshToken(userID string) (string, error) {
	return s.issueToken(userID, "refresh", s.refreshTTL)
}

// parseToken verifies the signature, expiry and token type.
func (s *Server) parseToken(raw, wantType string) (*TokenClaims, bool) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid || claims.TokenType != wantType {
		return nil, false
	}
	return claims, true
}

type ctxUserIDKey struct{}

// authMiddleware guards the bearer-token route group. It only authenticates;
// per-playlist authorization happens in the handlers.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeFail(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeFail(w, http.StatusUnauthorized, "invalid Authorization header")
			return
		}

		claims, ok := s.parseToken(parts[1], "access")
		if !ok {
			writeFail(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserIDKey{}, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(ctxUserIDKey{}).(string)
	return id, ok && id != ""
}
