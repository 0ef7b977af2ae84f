package openmusic

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) AddAlbum(ctx context.Context, name string, year int) (string, error) {
	args := m.Called(ctx, name, year)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetAlbumByID(ctx context.Context, id string) (Album, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Album), args.Error(1)
}

func (m *MockStore) UpdateAlbum(ctx context.Context, id, name string, year int) error {
	args := m.Called(ctx, id, name, year)
	return args.Error(0)
}

func (m *MockStore) DeleteAlbum(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) SetAlbumCover(ctx context.Context, id, coverURL string) error {
	args := m.Called(ctx, id, coverURL)
	return args.Error(0)
}

func (m *MockStore) LikeAlbum(ctx context.Context, userID, albumID string) error {
	args := m.Called(ctx, userID, albumID)
	return args.Error(0)
}

func (m *MockStore) UnlikeAlbum(ctx context.Context, userID, albumID string) error {
	args := m.Called(ctx, userID, albumID)
	return args.Error(0)
}

func (m *MockStore) CountAlbumLikes(ctx context.Context, albumID string) (int, error) {
	args := m.Called(ctx, albumID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) AddSong(ctx context.Context, in SongPayload) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockStore) SearchSongs(ctx context.Context, title, performer string) ([]SongSummary, error) {
	args := m.Called(ctx, title, performer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SongSummary), args.Error(1)
}

func (m *MockStore) GetSongByID(ctx context.Context, id string) (Song, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Song), args.Error(1)
}

func (m *MockStore) GetSongsByAlbumID(ctx context.Context, albumID string) ([]SongSummary, error) {
	args := m.Called(ctx, albumID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SongSummary), args.Error(1)
}

func (m *MockStore) UpdateSong(ctx context.Context, id string, in SongPayload) error {
	args := m.Called(ctx, id, in)
	return args.Error(0)
}

func (m *MockStore) DeleteSong(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) AddUser(ctx context.Context, username, passwordHash, fullname string) (string, error) {
	args := m.Called(ctx, username, passwordHash, fullname)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetUserByID(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockStore) GetUserCredentials(ctx context.Context, username string) (string, string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockStore) AddRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockStore) HasRefreshToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) DeleteRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockStore) AddPlaylist(ctx context.Context, name, ownerID string) (string, error) {
	args := m.Called(ctx, name, ownerID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetPlaylistsForUser(ctx context.Context, userID string) ([]Playlist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Playlist), args.Error(1)
}

func (m *MockStore) GetPlaylistByID(ctx context.Context, id string) (Playlist, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Playlist), args.Error(1)
}

func (m *MockStore) GetPlaylistOwner(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockStore) DeletePlaylist(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) AddSongToPlaylist(ctx context.Context, playlistID, songID string) (string, error) {
	args := m.Called(ctx, playlistID, songID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) GetPlaylistSongs(ctx context.Context, playlistID string) ([]SongSummary, error) {
	args := m.Called(ctx, playlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SongSummary), args.Error(1)
}

func (m *MockStore) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) error {
	args := m.Called(ctx, playlistID, songID)
	return args.Error(0)
}

func (m *MockStore) IsCollaborator(ctx context.Context, playlistID, userID string) (bool, error) {
	args := m.Called(ctx, playlistID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) AddCollaboration(ctx context.Context, playlistID, userID string) (string, error) {
	args := m.Called(ctx, playlistID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) DeleteCollaboration(ctx context.Context, playlistID, userID string) error {
	args := m.Called(ctx, playlistID, userID)
	return args.Error(0)
}

func (m *MockStore) AddActivity(ctx context.Context, playlistID, songID, userID, action string) error {
	args := m.Called(ctx, playlistID, songID, userID, action)
	return args.Error(0)
}

func (m *MockStore) GetActivities(ctx context.Context, playlistID string) ([]Activity, error) {
	args := m.Called(ctx, playlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Activity), args.Error(1)
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) PublishPlaylistExport(ctx context.Context, playlistID, targetEmail string) error {
	args := m.Called(ctx, playlistID, targetEmail)
	return args.Error(0)
}

// newTestServer builds a Server with a miniredis-backed cache. The miniredis
// instance is returned so tests can seed, inspect or expire entries.
func newTestServer(t *testing.T, store Store) (*Server, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	srv := NewServer(store, NewCache(rdb), NewLocalStorage(t.TempDir()), nil,
		[]byte("test-secret"), 30*time.Minute, time.Hour)
	return srv, mr
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
