package openmusic

import (
	"time"
)

// Album groups songs under a name and release year. The cover reference is
// set only after an image has been uploaded for the album.
type Album struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Year     int     `json:"year"`
	CoverURL *string `json:"coverUrl"`
}

// AlbumDetail is the GET /albums/{id} representation: the album plus every
// song that references it.
type AlbumDetail struct {
	Album
	Songs []SongSummary `json:"songs"`
}

// Song is the full representation returned by GET /songs/{id}.
type Song struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Year      int     `json:"year"`
	Genre     string  `json:"genre"`
	Performer string  `json:"performer"`
	Duration  *int    `json:"duration"`
	AlbumID   *string `json:"albumId"`
}

// SongSummary is the listing shape used by song search, album detail and
// playlist song listings.
type SongSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Performer string `json:"performer"`
}

// User never carries the password hash out of the store layer.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

// Playlist lists the owner by username, not id, to match the public shape.
type Playlist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// PlaylistDetail is a playlist together with its songs.
type PlaylistDetail struct {
	Playlist
	Songs []SongSummary `json:"songs"`
}

// Activity is one append-only log entry for a playlist. Entries are written
// on every add/delete of a song and removed only when the playlist itself
// is deleted.
type Activity struct {
	Username string    `json:"username"`
	Title    string    `json:"title"`
	Action   string    `json:"action"`
	Time     time.Time `json:"time"`
}

const (
	activityAdd    = "add"
	activityDelete = "delete"
)
