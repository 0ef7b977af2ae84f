package openmusic

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const dataSourceHeader = "X-Data-Source"

// maxCoverBytes bounds album cover uploads (500KB).
const maxCoverBytes = 512000

func (s *Server) handlePostAlbum(w http.ResponseWriter, r *http.Request) {
	var payload AlbumPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	albumID, err := s.store.AddAlbum(r.Context(), payload.Name, payload.Year)
	if err != nil {
		writeDomainError(w, err, "add album")
		return
	}

	writeSuccess(w, http.StatusCreated, "album added", map[string]any{
		"albumId": albumID,
	})
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	key := albumKey(id)

	if cached, ok := s.cache.Lookup(ctx, key); ok {
		w.Header().Set(dataSourceHeader, "cache")
		writeSuccess(w, http.StatusOK, "", map[string]any{
			"album": json.RawMessage(cached),
		})
		return
	}

	album, err := s.store.GetAlbumByID(ctx, id)
	if err != nil {
		writeDomainError(w, err, "get album")
		return
	}
	songs, err := s.store.GetSongsByAlbumID(ctx, id)
	if err != nil {
		writeDomainError(w, err, "get album songs")
		return
	}

	detail := AlbumDetail{Album: album, Songs: songs}
	if buf, err := json.Marshal(detail); err == nil {
		s.cache.Store(ctx, key, string(buf))
	}

	w.Header().Set(dataSourceHeader, "database")
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"album": detail,
	})
}

func (s *Server) handlePutAlbum(w http.ResponseWriter, r *http.Request) {
	var payload AlbumPayload
	if err := decodePayload(r, &payload); err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.store.UpdateAlbum(r.Context(), id, payload.Name, payload.Year); err != nil {
		writeDomainError(w, err, "update album")
		return
	}

	s.cache.Drop(r.Context(), albumKey(id))

	writeSuccess(w, http.StatusOK, "album updated", nil)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteAlbum(r.Context(), id); err != nil {
		writeDomainError(w, err, "delete album")
		return
	}

	// Songs that referenced the album had their albumId nulled, so the
	// cached song listings are stale too.
	s.cache.Drop(r.Context(), albumKey(id), albumLikesKey(id))
	s.cache.DropPrefix(r.Context(), songsKeyPrefix)

	writeSuccess(w, http.StatusOK, "album deleted", nil)
}

func (s *Server) handlePostAlbumCover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxCoverBytes)
	if err := r.ParseMultipartForm(maxCoverBytes); err != nil {
		writeFail(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "cover file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeFail(w, http.StatusBadRequest, "cover must be an image")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".img"
	}
	path := "covers/" + newID("cover") + ext

	if err := s.storage.Save(ctx, file, header.Size, path, contentType); err != nil {
		log.Printf("openmusic: save cover: %v", err)
		writeServerError(w)
		return
	}

	coverURL, err := s.storage.URL(ctx, path)
	if err != nil {
		log.Printf("openmusic: resolve cover url: %v", err)
		writeServerError(w)
		return
	}

	if err := s.store.SetAlbumCover(ctx, id, coverURL); err != nil {
		writeDomainError(w, err, "set album cover")
		return
	}

	s.cache.Drop(ctx, albumKey(id))

	writeSuccess(w, http.StatusCreated, "cover uploaded", nil)
}

func (s *Server) handlePostAlbumLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	if err := s.store.LikeAlbum(r.Context(), userID, id); err != nil {
		writeDomainError(w, err, "like album")
		return
	}

	s.cache.Drop(r.Context(), albumLikesKey(id))

	writeSuccess(w, http.StatusCreated, "album liked", nil)
}

func (s *Server) handleDeleteAlbumLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	if err := s.store.UnlikeAlbum(r.Context(), userID, id); err != nil {
		writeDomainError(w, err, "unlike album")
		return
	}

	s.cache.Drop(r.Context(), albumLikesKey(id))

	writeSuccess(w, http.StatusOK, "album unliked", nil)
}

func (s *Server) handleGetAlbumLikes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	key := albumLikesKey(id)

	if cached, ok := s.cache.Lookup(ctx, key); ok {
		if n, err := strconv.Atoi(cached); err == nil {
			w.Header().Set(dataSourceHeader, "cache")
			writeSuccess(w, http.StatusOK, "", map[string]any{"likes": n})
			return
		}
	}

	n, err := s.store.CountAlbumLikes(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAlbumNotFound) {
			writeFail(w, http.StatusNotFound, ErrAlbumNotFound.Error())
			return
		}
		writeDomainError(w, err, "count album likes")
		return
	}

	s.cache.Store(ctx, key, strconv.Itoa(n))

	w.Header().Set(dataSourceHeader, "database")
	writeSuccess(w, http.StatusOK, "", map[string]any{"likes": n})
}
