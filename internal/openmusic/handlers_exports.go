package openmusic

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handlePostExportPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload ExportPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	// Exporting is an owner-only operation, collaborators excluded.
	if err := s.verifyPlaylistOwner(ctx, playlistID, userID); err != nil {
		writeDomainError(w, err, "verify playlist owner")
		return
	}

	if err := s.exports.PublishPlaylistExport(ctx, playlistID, payload.TargetEmail); err != nil {
		log.Printf("openmusic: publish export request: %v", err)
		writeServerError(w)
		return
	}

	writeSuccess(w, http.StatusCreated, "export request queued", nil)
}
