package openmusic

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AlbumPayload covers POST and PUT /albums.
type AlbumPayload struct {
	Name string `json:"name" validate:"required,max=200"`
	Year int    `json:"year" validate:"required,gte=1900,lte=2100"`
}

// SongPayload covers POST and PUT /songs. Duration and AlbumID are optional.
type SongPayload struct {
	Title     string  `json:"title" validate:"required,max=200"`
	Year      int     `json:"year" validate:"required,gte=1900,lte=2100"`
	Genre     string  `json:"genre" validate:"required,max=100"`
	Performer string  `json:"performer" validate:"required,max=200"`
	Duration  *int    `json:"duration" validate:"omitempty,gte=0"`
	AlbumID   *string `json:"albumId" validate:"omitempty,max=50"`
}

type UserPayload struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	Fullname string `json:"fullname" validate:"required,max=200"`
}

type LoginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenPayload struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type PlaylistPayload struct {
	Name string `json:"name" validate:"required,max=200"`
}

type PlaylistSongPayload struct {
	SongID string `json:"songId" validate:"required"`
}

type CollaborationPayload struct {
	PlaylistID string `json:"playlistId" validate:"required"`
	UserID     string `json:"userId" validate:"required"`
}

type ExportPayload struct {
	TargetEmail string `json:"targetEmail" validate:"required,email"`
}

var errInvalidJSON = errors.New("invalid JSON body")

// decodePayload decodes the request body into dst and runs the schema
// validation. The returned error carries a client-safe message.
func decodePayload(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidJSON
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s is missing or invalid", strings.ToLower(fe.Field()))
		}
		return errors.New("invalid request payload")
	}
	return nil
}
