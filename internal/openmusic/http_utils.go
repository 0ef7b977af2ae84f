package openmusic

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Status: "success", Message: message, Data: data})
}

// writeFail is for client-caused errors (4xx).
func writeFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Status: "fail", Message: msg})
}

// writeServerError masks internal detail; the cause must already be logged.
func writeServerError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, envelope{
		Status:  "error",
		Message: "an internal server error occurred",
	})
}

// writeDomainError maps store/guard errors onto the envelope. Unknown
// errors are logged with logCtx and masked as a 500.
func writeDomainError(w http.ResponseWriter, err error, logCtx string) {
	switch {
	case errors.Is(err, ErrAlbumNotFound),
		errors.Is(err, ErrSongNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrPlaylistNotFound),
		errors.Is(err, ErrSongNotInPlaylist):
		writeFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		writeFail(w, http.StatusForbidden, "you are not allowed to access this resource")
	case errors.Is(err, ErrInvalidCredentials):
		writeFail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrDuplicateLike),
		errors.Is(err, ErrLikeNotFound),
		errors.Is(err, ErrDuplicatePlaylistSong),
		errors.Is(err, ErrDuplicateCollaboration),
		errors.Is(err, ErrCollaborationNotFound),
		errors.Is(err, ErrInvalidRefreshToken):
		writeFail(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("openmusic: %s: %v", logCtx, err)
		writeServerError(w)
	}
}
