package ports

import (
	"context"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

type SongRepository interface {
	FindAll(ctx context.Context) ([]domain.Song, error)
	FindByID(ctx context.Context, id string) (domain.Song, error)
	// FindByName looks a song up by its unique name; used as a cheap advisory
	// check before any file is stored.
	FindByName(ctx context.Context, name string) (domain.Song, error)
	// Insert persists a new song. The store's unique constraint on name is the
	// authoritative guard; violations surface as domain.ErrDuplicateName.
	Insert(ctx context.Context, s domain.Song) error
	Update(ctx context.Context, id string, upd domain.SongUpdate) error
	Delete(ctx context.Context, id string) error
	// SetDuration records the probed audio duration for a song.
	SetDuration(ctx context.Context, id string, seconds float64) error
}

type PlaylistRepository interface {
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Playlist, error)
	FindPublic(ctx context.Context) ([]domain.Playlist, error)
	FindByID(ctx context.Context, id string) (domain.Playlist, error)
	Insert(ctx context.Context, p domain.Playlist) error
	Update(ctx context.Context, id string, upd domain.PlaylistUpdate) error
	Delete(ctx context.Context, id string) error
	// AddSong adds a song to a playlist's set atomically at the store. Adding a
	// song that is already present is a no-op, never a duplicate.
	AddSong(ctx context.Context, playlistID, songID string) error
}
