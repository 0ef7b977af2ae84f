package openmusic

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AutoMigrate creates the schema on startup. Strong ownership cascades
// (playlist rows, likes, collaborations); the song→album reference is weak
// and nulls out when the album goes away.
func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS albums (
          id         VARCHAR(50) PRIMARY KEY,
          name       TEXT NOT NULL,
          year       INT NOT NULL,
          cover_url  TEXT,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		log.Printf("openmusic: migrate albums: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS songs (
          id         VARCHAR(50) PRIMARY KEY,
          title      TEXT NOT NULL,
          year       INT NOT NULL,
          genre      TEXT NOT NULL,
          performer  TEXT NOT NULL,
          duration   INT,
          album_id   VARCHAR(50) REFERENCES albums(id) ON DELETE SET NULL,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_songs_album_id ON songs(album_id)
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS users (
          id         VARCHAR(50) PRIMARY KEY,
          username   TEXT NOT NULL UNIQUE,
          password   TEXT NOT NULL,
          fullname   TEXT NOT NULL,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS authentications (
          token TEXT PRIMARY KEY
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlists (
          id         VARCHAR(50) PRIMARY KEY,
          name       TEXT NOT NULL,
          owner      VARCHAR(50) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_playlists_owner ON playlists(owner)
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlist_songs (
          id          VARCHAR(50) PRIMARY KEY,
          playlist_id VARCHAR(50) NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
          song_id     VARCHAR(50) NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          UNIQUE(playlist_id, song_id)
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS collaborations (
          id          VARCHAR(50) PRIMARY KEY,
          playlist_id VARCHAR(50) NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
          user_id     VARCHAR(50) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          UNIQUE(playlist_id, user_id)
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlist_song_activities (
          id          VARCHAR(50) PRIMARY KEY,
          playlist_id VARCHAR(50) NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
          song_id     VARCHAR(50) NOT NULL,
          user_id     VARCHAR(50) NOT NULL,
          action      TEXT NOT NULL,
          time        TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS user_album_likes (
          id         VARCHAR(50) PRIMARY KEY,
          user_id    VARCHAR(50) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
          album_id   VARCHAR(50) NOT NULL REFERENCES albums(id) ON DELETE CASCADE,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          UNIQUE(user_id, album_id)
      )
    `); err != nil {
		return err
	}

	return nil
}
