package openmusic

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handlePostUser(w http.ResponseWriter, r *http.Request) {
	var payload UserPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("openmusic: hash password: %v", err)
		writeServerError(w)
		return
	}

	userID, err := s.store.AddUser(r.Context(), payload.Username, string(hash), payload.Fullname)
	if err != nil {
		writeDomainError(w, err, "add user")
		return
	}

	writeSuccess(w, http.StatusCreated, "user registered", map[string]any{
		"userId": userID,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	key := userKey(id)

	if cached, ok := s.cache.Lookup(ctx, key); ok {
		w.Header().Set(dataSourceHeader, "cache")
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"user": json.RawMessage(cached),
		})
		return
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		writeDomainError(w, err, "get user")
		return
	}

	if buf, err := json.Marshal(user); err == nil {
		s.cache.Store(ctx, key, string(buf))
	}

	w.Header().Set(dataSourceHeader, "database")
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"user": user,
	})
}
