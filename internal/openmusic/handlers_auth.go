package openmusic

import (
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handlePostAuthentication(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, hash, err := s.store.GetUserCredentials(r.Context(), payload.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeFail(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
			return
		}
		writeDomainError(w, err, "get user credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(payload.Password)); err != nil {
		writeFail(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	}

	accessToken, err := s.issueAccessToken(userID)
	if err != nil {
		log.Printf("openmusic: issue access token: %v", err)
		writeServerError(w)
		return
	}
	refreshToken, err := s.issueRefreshToken(userID)
	if err != nil {
		log.Printf("openmusic: issue refresh token: %v", err)
		writeServerError(w)
		return
	}

	if err := s.store.AddRefreshToken(r.Context(), refreshToken); err != nil {
		log.Printf("openmusic: persist refresh token: %v", err)
		writeServerError(w)
		return
	}

	writeSuccess(w, http.StatusCreated, "authenticated", map[string]any{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

func (s *Server) handlePutAuthentication(w http.ResponseWriter, r *http.Request) {
	var payload RefreshTokenPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	// The token must both verify and still be on record; a logged-out
	// token is rejected even if its signature is valid.
	claims, ok := s.parseToken(payload.RefreshToken, "refresh")
	if !ok {
		writeFail(w, http.StatusBadRequest, ErrInvalidRefreshToken.Error())
		return
	}

	known, err := s.store.HasRefreshToken(r.Context(), payload.RefreshToken)
	if err != nil {
		writeDomainError(w, err, "check refresh token")
		return
	}
	if !known {
		writeFail(w, http.StatusBadRequest, ErrInvalidRefreshToken.Error())
		return
	}

	accessToken, err := s.issueAccessToken(claims.UserID)
	if err != nil {
		log.Printf("openmusic: refresh access token: %v", err)
		writeServerError(w)
		return
	}

	writeSuccess(w, http.StatusOK, "access token refreshed", map[string]any{
		"accessToken": accessToken,
	})
}

func (s *Server) handleDeleteAuthentication(w http.ResponseWriter, r *http.Request) {
	var payload RefreshTokenPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteRefreshToken(r.Context(), payload.RefreshToken); err != nil {
		writeDomainError(w, err, "delete refresh token")
		return
	}

	writeSuccess(w, http.StatusOK, "refresh token revoked", nil)
}
