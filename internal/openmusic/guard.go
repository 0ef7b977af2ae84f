package openmusic

import (
	"context"
	"errors"
)

// verifyPlaylistOwner succeeds only for the playlist's owner. A missing
// playlist is reported as not-found, never as forbidden.
func (s *Server) verifyPlaylistOwner(ctx context.Context, playlistID, userID string) error {
	owner, err := s.store.GetPlaylistOwner(ctx, playlistID)
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrForbidden
	}
	return nil
}

// verifyPlaylistAccess succeeds for the owner or any collaborator.
func (s *Server) verifyPlaylistAccess(ctx context.Context, playlistID, userID string) error {
	err := s.verifyPlaylistOwner(ctx, playlistID, userID)
	if err == nil || !errors.Is(err, ErrForbidden) {
		return err
	}
	ok, err := s.store.IsCollaborator(ctx, playlistID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
