package openmusic

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the data-access surface of the API. The relational database is
// the single source of truth; uniqueness and referential invariants are
// enforced there, not in Go.
type Store interface {
	AddAlbum(ctx context.Context, name string, year int) (string, error)
	GetAlbumByID(ctx context.Context, id string) (Album, error)
	UpdateAlbum(ctx context.Context, id, name string, year int) error
	DeleteAlbum(ctx context.Context, id string) error
	SetAlbumCover(ctx context.Context, id, coverURL string) error

	LikeAlbum(ctx context.Context, userID, albumID string) error
	UnlikeAlbum(ctx context.Context, userID, albumID string) error
	CountAlbumLikes(ctx context.Context, albumID string) (int, error)

	AddSong(ctx context.Context, in SongPayload) (string, error)
	SearchSongs(ctx context.Context, title, performer string) ([]SongSummary, error)
	GetSongByID(ctx context.Context, id string) (Song, error)
	GetSongsByAlbumID(ctx context.Context, albumID string) ([]SongSummary, error)
	UpdateSong(ctx context.Context, id string, in SongPayload) error
	DeleteSong(ctx context.Context, id string) error

	AddUser(ctx context.Context, username, passwordHash, fullname string) (string, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserCredentials(ctx context.Context, username string) (id, passwordHash string, err error)

	AddRefreshToken(ctx context.Context, token string) error
	HasRefreshToken(ctx context.Context, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, token string) error

	AddPlaylist(ctx context.Context, name, ownerID string) (string, error)
	GetPlaylistsForUser(ctx context.Context, userID string) ([]Playlist, error)
	GetPlaylistByID(ctx context.Context, id string) (Playlist, error)
	GetPlaylistOwner(ctx context.Context, id string) (string, error)
	DeletePlaylist(ctx context.Context, id string) error

	AddSongToPlaylist(ctx context.Context, playlistID, songID string) (string, error)
	GetPlaylistSongs(ctx context.Context, playlistID string) ([]SongSummary, error)
	RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) error

	IsCollaborator(ctx context.Context, playlistID, userID string) (bool, error)
	AddCollaboration(ctx context.Context, playlistID, userID string) (string, error)
	DeleteCollaboration(ctx context.Context, playlistID, userID string) error

	AddActivity(ctx context.Context, playlistID, songID, userID, action string) error
	GetActivities(ctx context.Context, playlistID string) ([]Activity, error)
}

// DBOps is the subset of pgxpool.Pool methods the store uses. It lets
// pgxmock stand in for the pool in tests.
type DBOps interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db DBOps
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithDB exists for tests that inject a mock connection.
func NewPostgresStoreWithDB(db DBOps) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// --- albums ---

func (s *PostgresStore) AddAlbum(ctx context.Context, name string, year int) (string, error) {
	id := newID("album")
	_, err := s.db.Exec(ctx, `
		INSERT INTO albums (id, name, year)
		VALUES ($1, $2, $3)
	`, id, name, year)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) GetAlbumByID(ctx context.Context, id string) (Album, error) {
	var a Album
	err := s.db.QueryRow(ctx, `
		SELECT id, name, year, cover_url FROM albums WHERE id = $1
	`, id).Scan(&a.ID, &a.Name, &a.Year, &a.CoverURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return Album{}, ErrAlbumNotFound
	}
	if err != nil {
		return Album{}, err
	}
	return a, nil
}

func (s *PostgresStore) UpdateAlbum(ctx context.Context, id, name string, year int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE albums SET name = $2, year = $3, updated_at = now() WHERE id = $1
	`, id, name, year)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAlbum(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

func (s *PostgresStore) SetAlbumCover(ctx context.Context, id, coverURL string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE albums SET cover_url = $2, updated_at = now() WHERE id = $1
	`, id, coverURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlbumNotFound
	}
	return nil
}

// --- album likes ---

func (s *PostgresStore) LikeAlbum(ctx context.Context, userID, albumID string) error {
	if err := s.albumExists(ctx, albumID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_album_likes (id, user_id, album_id)
		VALUES ($1, $2, $3)
	`, newID("like"), userID, albumID)
	if pgErrCode(err) == pgUniqueViolation {
		return ErrDuplicateLike
	}
	return err
}

func (s *PostgresStore) UnlikeAlbum(ctx context.Context, userID, albumID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM user_album_likes WHERE user_id = $1 AND album_id = $2
	`, userID, albumID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLikeNotFound
	}
	return nil
}

func (s *PostgresStore) CountAlbumLikes(ctx context.Context, albumID string) (int, error) {
	if err := s.albumExists(ctx, albumID); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_album_likes WHERE album_id = $1
	`, albumID).Scan(&n)
	return n, err
}

func (s *PostgresStore) albumExists(ctx context.Context, id string) error {
	var found string
	err := s.db.QueryRow(ctx, `SELECT id FROM albums WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlbumNotFound
	}
	return err
}

// --- songs ---

func (s *PostgresStore) AddSong(ctx context.Context, in SongPayload) (string, error) {
	id := newID("song")
	_, err := s.db.Exec(ctx, `
		INSERT INTO songs (id, title, year, genre, performer, duration, album_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, in.Title, in.Year, in.Genre, in.Performer, in.Duration, in.AlbumID)
	if pgErrCode(err) == pgForeignKeyViolation {
		return "", ErrAlbumNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) SearchSongs(ctx context.Context, title, performer string) ([]SongSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, performer
		FROM songs
		WHERE title ILIKE '%' || $1 || '%'
		  AND performer ILIKE '%' || $2 || '%'
		ORDER BY title
	`, title, performer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSongSummaries(rows)
}

func (s *PostgresStore) GetSongByID(ctx context.Context, id string) (Song, error) {
	var sg Song
	err := s.db.QueryRow(ctx, `
		SELECT id, title, year, genre, performer, duration, album_id
		FROM songs WHERE id = $1
	`, id).Scan(&sg.ID, &sg.Title, &sg.Year, &sg.Genre, &sg.Performer, &sg.Duration, &sg.AlbumID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Song{}, ErrSongNotFound
	}
	if err != nil {
		return Song{}, err
	}
	return sg, nil
}

func (s *PostgresStore) GetSongsByAlbumID(ctx context.Context, albumID string) ([]SongSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, performer FROM songs WHERE album_id = $1 ORDER BY title
	`, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSongSummaries(rows)
}

func (s *PostgresStore) UpdateSong(ctx context.Context, id string, in SongPayload) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE songs
		SET title = $2, year = $3, genre = $4, performer = $5,
		    duration = $6, album_id = $7, updated_at = now()
		WHERE id = $1
	`, id, in.Title, in.Year, in.Genre, in.Performer, in.Duration, in.AlbumID)
	if pgErrCode(err) == pgForeignKeyViolation {
		return ErrAlbumNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSongNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSong(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSongNotFound
	}
	return nil
}

func scanSongSummaries(rows pgx.Rows) ([]SongSummary, error) {
	songs := []SongSummary{}
	for rows.Next() {
		var sg SongSummary
		if err := rows.Scan(&sg.ID, &sg.Title, &sg.Performer); err != nil {
			return nil, err
		}
		songs = append(songs, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return songs, nil
}

// --- users ---

func (s *PostgresStore) AddUser(ctx context.Context, username, passwordHash, fullname string) (string, error) {
	id := newID("user")
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, username, password, fullname)
		VALUES ($1, $2, $3, $4)
	`, id, username, passwordHash, fullname)
	if pgErrCode(err) == pgUniqueViolation {
		return "", ErrUsernameTaken
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT id, username, fullname FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Fullname)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) GetUserCredentials(ctx context.Context, username string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRow(ctx, `
		SELECT id, password FROM users WHERE username = $1
	`, username).Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrUserNotFound
	}
	if err != nil {
		return "", "", err
	}
	return id, hash, nil
}

// --- refresh tokens ---

func (s *PostgresStore) AddRefreshToken(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO authentications (token) VALUES ($1) ON CONFLICT (token) DO NOTHING
	`, token)
	return err
}

func (s *PostgresStore) HasRefreshToken(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM authentications WHERE token = $1)
	`, token).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) DeleteRefreshToken(ctx context.Context, token string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM authentications WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidRefreshToken
	}
	return nil
}

// --- playlists ---

func (s *PostgresStore) AddPlaylist(ctx context.Context, name, ownerID string) (string, error) {
	id := newID("playlist")
	_, err := s.db.Exec(ctx, `
		INSERT INTO playlists (id, name, owner)
		VALUES ($1, $2, $3)
	`, id, name, ownerID)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) GetPlaylistsForUser(ctx context.Context, userID string) ([]Playlist, error) {
	// Own playlists plus playlists shared through a collaboration.
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT p.id, p.name, u.username
		FROM playlists p
		JOIN users u ON u.id = p.owner
		LEFT JOIN collaborations c ON c.playlist_id = p.id AND c.user_id = $1
		WHERE p.owner = $1 OR c.user_id IS NOT NULL
		ORDER BY p.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists := []Playlist{}
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.Username); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return playlists, nil
}

func (s *PostgresStore) GetPlaylistByID(ctx context.Context, id string) (Playlist, error) {
	var p Playlist
	err := s.db.QueryRow(ctx, `
		SELECT p.id, p.name, u.username
		FROM playlists p
		JOIN users u ON u.id = p.owner
		WHERE p.id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return Playlist{}, ErrPlaylistNotFound
	}
	if err != nil {
		return Playlist{}, err
	}
	return p, nil
}

func (s *PostgresStore) GetPlaylistOwner(ctx context.Context, id string) (string, error) {
	var owner string
	err := s.db.QueryRow(ctx, `SELECT owner FROM playlists WHERE id = $1`, id).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrPlaylistNotFound
	}
	if err != nil {
		return "", err
	}
	return owner, nil
}

func (s *PostgresStore) DeletePlaylist(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// --- playlist songs ---

func (s *PostgresStore) AddSongToPlaylist(ctx context.Context, playlistID, songID string) (string, error) {
	id := newID("playlist_song")
	_, err := s.db.Exec(ctx, `
		INSERT INTO playlist_songs (id, playlist_id, song_id)
		VALUES ($1, $2, $3)
	`, id, playlistID, songID)
	switch pgErrCode(err) {
	case pgUniqueViolation:
		return "", ErrDuplicatePlaylistSong
	case pgForeignKeyViolation:
		// The playlist was already verified by the access guard, so a
		// missing referenced row means the song.
		return "", ErrSongNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) GetPlaylistSongs(ctx context.Context, playlistID string) ([]SongSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT s.id, s.title, s.performer
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = $1
		ORDER BY s.title
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSongSummaries(rows)
}

func (s *PostgresStore) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSongNotInPlaylist
	}
	return nil
}

// --- collaborations ---

func (s *PostgresStore) IsCollaborator(ctx context.Context, playlistID, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM collaborations WHERE playlist_id = $1 AND user_id = $2)
	`, playlistID, userID).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) AddCollaboration(ctx context.Context, playlistID, userID string) (string, error) {
	id := newID("collab")
	_, err := s.db.Exec(ctx, `
		INSERT INTO collaborations (id, playlist_id, user_id)
		VALUES ($1, $2, $3)
	`, id, playlistID, userID)
	switch pgErrCode(err) {
	case pgUniqueViolation:
		return "", ErrDuplicateCollaboration
	case pgForeignKeyViolation:
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) DeleteCollaboration(ctx context.Context, playlistID, userID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM collaborations WHERE playlist_id = $1 AND user_id = $2
	`, playlistID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCollaborationNotFound
	}
	return nil
}

// --- activities ---

func (s *PostgresStore) AddActivity(ctx context.Context, playlistID, songID, userID, action string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO playlist_song_activities (id, playlist_id, song_id, user_id, action)
		VALUES ($1, $2, $3, $4, $5)
	`, newID("activity"), playlistID, songID, userID, action)
	return err
}

func (s *PostgresStore) GetActivities(ctx context.Context, playlistID string) ([]Activity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.username, s.title, a.action, a.time
		FROM playlist_song_activities a
		JOIN users u ON u.id = a.user_id
		JOIN songs s ON s.id = a.song_id
		WHERE a.playlist_id = $1
		ORDER BY a.time
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.Username, &a.Title, &a.Action, &a.Time); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}
