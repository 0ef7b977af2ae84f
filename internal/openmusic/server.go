package openmusic

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	store   Store
	cache   *Cache
	storage FileStorage
	exports ExportPublisher

	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewServer(store Store, cache *Cache, storage FileStorage, exports ExportPublisher, jwtSecret []byte, accessTTL, refreshTTL time.Duration) *Server {
	return &Server{
		store:      store,
		cache:      cache,
		storage:    storage,
		exports:    exports,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Post("/albums", s.handlePostAlbum)
	r.Get("/albums/{id}", s.handleGetAlbum)
	r.Put("/albums/{id}", s.handlePutAlbum)
	r.Delete("/albums/{id}", s.handleDeleteAlbum)
	r.Post("/albums/{id}/covers", s.handlePostAlbumCover)
	r.Get("/albums/{id}/likes", s.handleGetAlbumLikes)

	r.Post("/songs", s.handlePostSong)
	r.Get("/songs", s.handleGetSongs)
	r.Get("/songs/{id}", s.handleGetSong)
	r.Put("/songs/{id}", s.handlePutSong)
	r.Delete("/songs/{id}", s.handleDeleteSong)

	r.Post("/users", s.handlePostUser)
	r.Get("/users/{id}", s.handleGetUser)

	r.Post("/authentications", s.handlePostAuthentication)
	r.Put("/authentications", s.handlePutAuthentication)
	r.Delete("/authentications", s.handleDeleteAuthentication)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/albums/{id}/likes", s.handlePostAlbumLike)
		r.Delete("/albums/{id}/likes", s.handleDeleteAlbumLike)

		r.Post("/playlists", s.handlePostPlaylist)
		r.Get("/playlists", s.handleGetPlaylists)
		r.Delete("/playlists/{id}", s.handleDeletePlaylist)

		r.Post("/playlists/{id}/songs", s.handlePostPlaylistSong)
		r.Get("/playlists/{id}/songs", s.handleGetPlaylistSongs)
		r.Delete("/playlists/{id}/songs", s.handleDeletePlaylistSong)
		r.Get("/playlists/{id}/activities", s.handleGetPlaylistActivities)

		r.Post("/collaborations", s.handlePostCollaboration)
		r.Delete("/collaborations", s.handleDeleteCollaboration)

		r.Post("/export/playlists/{id}", s.handlePostExportPlaylist)
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "OpenMusic API", map[string]any{
		"name":    "openmusic-api",
		"version": "v3",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "openmusic-api",
	})
}
