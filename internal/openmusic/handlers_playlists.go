package openmusic

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handlePostPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload PlaylistPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	playlistID, err := s.store.AddPlaylist(r.Context(), payload.Name, userID)
	if err != nil {
		writeDomainError(w, err, "add playlist")
		return
	}

	s.cache.Drop(r.Context(), playlistsKey(userID))

	writeSuccess(w, http.StatusCreated, "playlist added", map[string]any{
		"playlistId": playlistID,
	})
}

func (s *Server) handleGetPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx := r.Context()
	key := playlistsKey(userID)

	if cached, ok := s.cache.Lookup(ctx, key); ok {
		w.Header().Set(dataSourceHeader, "cache")
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"playlists": json.RawMessage(cached),
		})
		return
	}

	playlists, err := s.store.GetPlaylistsForUser(ctx, userID)
	if err != nil {
		writeDomainError(w, err, "list playlists")
		return
	}

	if buf, err := json.Marshal(playlists); err == nil {
		s.cache.Store(ctx, key, string(buf))
	}

	w.Header().Set(dataSourceHeader, "database")
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"playlists": playlists,
	})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	// Destructive: owner only.
	if err := s.verifyPlaylistOwner(ctx, playlistID, userID); err != nil {
		writeDomainError(w, err, "verify playlist owner")
		return
	}

	if err := s.store.DeletePlaylist(ctx, playlistID); err != nil {
		writeDomainError(w, err, "delete playlist")
		return
	}

	s.cache.Drop(ctx,
		playlistsKey(userID),
		playlistSongsKey(playlistID),
		playlistActivitiesKey(playlistID),
	)

	writeSuccess(w, http.StatusOK, "playlist deleted", nil)
}

func (s *Server) handlePostPlaylistSong(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload PlaylistSongPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	if err := s.verifyPlaylistAccess(ctx, playlistID, userID); err != nil {
		writeDomainError(w, err, "verify playlist access")
		return
	}

	if _, err := s.store.AddSongToPlaylist(ctx, playlistID, payload.SongID); err != nil {
		writeDomainError(w, err, "add song to playlist")
		return
	}

	// The mutation stands even if the activity append fails, but the
	// failure is surfaced as a server error rather than swallowed.
	if err := s.store.AddActivity(ctx, playlistID, payload.SongID, userID, activityAdd); err != nil {
		log.Printf("openmusic: log add activity: %v", err)
		writeServerError(w)
		return
	}

	s.cache.Drop(ctx, playlistSongsKey(playlistID), playlistActivitiesKey(playlistID))

	writeSuccess(w, http.StatusCreated, "song added to playlist", nil)
}

func (s *Server) handleGetPlaylistSongs(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	if err := s.verifyPlaylistAccess(ctx, playlistID, userID); err != nil {
		writeDomainError(w, err, "verify playlist access")
		return
	}

	key := playlistSongsKey(playlistID)
	if cached, ok := s.cache.Lookup(ctx, key); ok {
		w.Header().Set(dataSourceHeader, "cache")
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"playlist": json.RawMessage(cached),
		})
		return
	}

	playlist, err := s.store.GetPlaylistByID(ctx, playlistID)
	if err != nil {
		writeDomainError(w, err, "get playlist")
		return
	}
	songs, err := s.store.GetPlaylistSongs(ctx, playlistID)
	if err != nil {
		writeDomainError(w, err, "get playlist songs")
		return
	}

	detail := PlaylistDetail{Playlist: playlist, Songs: songs}
	if buf, err := json.Marshal(detail); err == nil {
		s.cache.Store(ctx, key, string(buf))
	}

	w.Header().Set(dataSourceHeader, "database")
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"playlist": detail,
	})
}

func (s *Server) handleDeletePlaylistSong(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload PlaylistSongPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	if err := s.verifyPlaylistAccess(ctx, playlistID, userID); err != nil {
		writeDomainError(w, err, "verify playlist access")
		return
	}

	if err := s.store.RemoveSongFromPlaylist(ctx, playlistID, payload.SongID); err != nil {
		writeDomainError(w, err, "remove song from playlist")
		return
	}

	if err := s.store.AddActivity(ctx, playlistID, payload.SongID, userID, activityDelete); err != nil {
		log.Printf("openmusic: log delete activity: %v", err)
		writeServerError(w)
		return
	}

	s.cache.Drop(ctx, playlistSongsKey(playlistID), playlistActivitiesKey(playlistID))

	writeSuccess(w, http.StatusOK, "song removed from playlist", nil)
}

func (s *Server) handleGetPlaylistActivities(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	if err := s.verifyPlaylistAccess(ctx, playlistID, userID); err != nil {
		writeDomainError(w, err, "verify playlist access")
		return
	}

	key := playlistActivitiesKey(playlistID)
	if cached, ok := s.cache.Lookup(ctx, key); ok {
		w.Header().Set(dataSourceHeader, "cache")
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"playlistId": playlistID,
			"activities": json.RawMessage(cached),
		})
		return
	}

	activities, err := s.store.GetActivities(ctx, playlistID)
	if err != nil {
		writeDomainError(w, err, "get playlist activities")
		return
	}

	if buf, err := json.Marshal(activities); err == nil {
		s.cache.Store(ctx, key, string(buf))
	}

	w.Header().Set(dataSourceHeader, "database")
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"playlistId": playlistID,
		"activities": activities,
	})
}
