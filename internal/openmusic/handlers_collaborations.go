package openmusic

import (
	"net/http"
)

func (s *Server) handlePostCollaboration(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload CollaborationPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	// Only the owner may share a playlist.
	if err := s.verifyPlaylistOwner(ctx, payload.PlaylistID, userID); err != nil {
		writeDomainError(w, err, "verify playlist owner")
		return
	}

	// The collaborator must exist; the insert's foreign key catches a
	// race, but a missing user should read as 404, not 500.
	if _, err := s.store.GetUserByID(ctx, payload.UserID); err != nil {
		writeDomainError(w, err, "get collaborator")
		return
	}

	collaborationID, err := s.store.AddCollaboration(ctx, payload.PlaylistID, payload.UserID)
	if err != nil {
		writeDomainError(w, err, "add collaboration")
		return
	}

	// The collaborator now sees this playlist in their listing.
	s.cache.Drop(ctx, playlistsKey(payload.UserID))

	writeSuccess(w, http.StatusCreated, "collaboration added", map[string]any{
		"collaborationId": collaborationID,
	})
}

func (s *Server) handleDeleteCollaboration(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload CollaborationPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()

	if err := s.verifyPlaylistOwner(ctx, payload.PlaylistID, userID); err != nil {
		writeDomainError(w, err, "verify playlist owner")
		return
	}

	if err := s.store.DeleteCollaboration(ctx, payload.PlaylistID, payload.UserID); err != nil {
		writeDomainError(w, err, "delete collaboration")
		return
	}

	s.cache.Drop(ctx, playlistsKey(payload.UserID))

	writeSuccess(w, http.StatusOK, "collaboration deleted", nil)
}
