package openmusic

import "errors"

// Domain errors returned by the store and guard layers. Handlers map these
// to the response envelope; anything unrecognized becomes a 500.
var (
	ErrAlbumNotFound    = errors.New("album not found")
	ErrSongNotFound     = errors.New("song not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrPlaylistNotFound = errors.New("playlist not found")

	ErrSongNotInPlaylist = errors.New("song not found in playlist")

	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUsernameTaken          = errors.New("username already taken")
	ErrDuplicateLike          = errors.New("album already liked")
	ErrLikeNotFound           = errors.New("album is not liked")
	ErrDuplicatePlaylistSong  = errors.New("song already in playlist")
	ErrDuplicateCollaboration = errors.New("user is already a collaborator")
	ErrCollaborationNotFound  = errors.New("collaboration not found")

	ErrInvalidRefreshToken = errors.New("refresh token is invalid")
)
