package openmusic

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handlePostSong(w http.ResponseWriter, r *http.Request) {
	var payload SongPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	songID, err := s.store.AddSong(r.Context(), payload)
	if err != nil {
		writeDomainError(w, err, "add song")
		return
	}

	s.cache.DropPrefix(r.Context(), songsKeyPrefix)
	if payload.AlbumID != nil {
		s.cache.Drop(r.Context(), albumKey(*payload.AlbumID))
	}

	writeSuccess(w, http.StatusCreated, "song added", map[string]any{
		"songId": songID,
	})
}

func (s *Server) handleGetSongs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	title := r.URL.Query().Get("title")
	performer := r.URL.Query().Get("performer")
	key := songsKey(title, performer)

	if cached, ok := s.cache.Lookup(ctx, key); ok {
		w.Header().Set(dataSourceHeader, "cache")
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"songs": json.RawMessage(cached),
		})
		return
	}

	songs, err := s.store.SearchSongs(ctx, title, performer)
	if err != nil {
		writeDomainError(w, err, "search songs")
		return
	}

	if buf, err := json.Marshal(songs); err == nil {
		s.cache.Store(ctx, key, string(buf))
	}

	w.Header().Set(dataSourceHeader, "database")
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"songs": songs,
	})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	key := songKey(id)

	if cached, ok := s.cache.Lookup(ctx, key); ok {
		w.Header().Set(dataSourceHeader, "cache")
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"song": json.RawMessage(cached),
		})
		return
	}

	song, err := s.store.GetSongByID(ctx, id)
	if err != nil {
		writeDomainError(w, err, "get song")
		return
	}

	if buf, err := json.Marshal(song); err == nil {
		s.cache.Store(ctx, key, string(buf))
	}

	w.Header().Set(dataSourceHeader, "database")
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"song": song,
	})
}

func (s *Server) handlePutSong(w http.ResponseWriter, r *http.Request) {
	var payload SongPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")

	// The previous album reference is needed so its cached detail can be
	// invalidated alongside the new one.
	existing, err := s.store.GetSongByID(ctx, id)
	if err != nil {
		writeDomainError(w, err, "get song for update")
		return
	}

	if err := s.store.UpdateSong(ctx, id, payload); err != nil {
		writeDomainError(w, err, "update song")
		return
	}

	s.cache.Drop(ctx, songKey(id))
	s.cache.DropPrefix(ctx, songsKeyPrefix)
	if existing.AlbumID != nil {
		s.cache.Drop(ctx, albumKey(*existing.AlbumID))
	}
	if payload.AlbumID != nil {
		s.cache.Drop(ctx, albumKey(*payload.AlbumID))
	}

	writeSuccess(w, http.StatusOK, "song updated", nil)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := s.store.GetSongByID(ctx, id)
	if err != nil {
		writeDomainError(w, err, "get song for delete")
		return
	}

	if err := s.store.DeleteSong(ctx, id); err != nil {
		writeDomainError(w, err, "delete song")
		return
	}

	s.cache.Drop(ctx, songKey(id))
	s.cache.DropPrefix(ctx, songsKeyPrefix)
	if existing.AlbumID != nil {
		s.cache.Drop(ctx, albumKey(*existing.AlbumID))
	}

	writeSuccess(w, http.StatusOK, "song deleted", nil)
}
