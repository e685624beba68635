package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
	"github.com/ewilliams-labs/chorus/internal/core/ports"
)

// Playlists gates every playlist read and write through the ownership and
// visibility rules, and runs the bulk membership engine.
type Playlists struct {
	playlists ports.PlaylistRepository
	songs     ports.SongRepository
	logger    *log.Logger
}

func NewPlaylists(playlists ports.PlaylistRepository, songs ports.SongRepository, logger *log.Logger) *Playlists {
	return &Playlists{playlists: playlists, songs: songs, logger: logger.With("service", "playlists")}
}

// PlaylistInput is the creation payload. Visibility is never part of it; the
// controller assigns it from the caller's role.
type PlaylistInput struct {
	Name  string
	Color string
	Songs []string
}

// List returns all public playlists for admins, otherwise the caller's own.
func (s *Playlists) List(ctx context.Context, caller domain.Caller) ([]domain.Playlist, error) {
	if caller.Admin {
		return s.playlists.FindPublic(ctx)
	}
	return s.playlists.FindByOwner(ctx, caller.UserID)
}

// Public returns all public playlists, for anonymous browsing.
func (s *Playlists) Public(ctx context.Context) ([]domain.Playlist, error) {
	return s.playlists.FindPublic(ctx)
}

// Get returns a playlist by id. Reads are not ownership-gated; this mirrors
// the documented behavior of the system this replaces.
func (s *Playlists) Get(ctx context.Context, id string) (domain.Playlist, error) {
	p, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("service: failed to load playlist: %w", err)
	}
	return p, nil
}

func (s *Playlists) Create(ctx context.Context, caller domain.Caller, in PlaylistInput) (domain.Playlist, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Playlist{}, fmt.Errorf("service: playlist name is required: %w", domain.ErrInvalidInput)
	}

	p := domain.Playlist{
		ID:         uuid.New().String(),
		Name:       in.Name,
		Color:      in.Color,
		Visibility: domain.VisibilityFor(caller),
		OwnerID:    caller.UserID,
		Songs:      dedupe(in.Songs),
	}
	if err := s.playlists.Insert(ctx, p); err != nil {
		return domain.Playlist{}, fmt.Errorf("service: failed to create playlist: %w", err)
	}
	return p, nil
}

func (s *Playlists) Update(ctx context.Context, caller domain.Caller, id string, upd domain.PlaylistUpdate) error {
	p, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to load playlist: %w", err)
	}
	if !p.CanUpdate(caller) {
		return domain.ErrForbidden
	}
	if upd.Songs != nil {
		upd.Songs = dedupe(upd.Songs)
	}
	if err := s.playlists.Update(ctx, id, upd); err != nil {
		return fmt.Errorf("service: failed to update playlist: %w", err)
	}
	return nil
}

func (s *Playlists) Delete(ctx context.Context, caller domain.Caller, id string) error {
	p, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service: failed to load playlist: %w", err)
	}
	if !p.CanDelete(caller) {
		return domain.ErrForbidden
	}
	if err := s.playlists.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete playlist: %w", err)
	}
	return nil
}

// AddToPlaylists adds one song to many playlists, one goroutine per playlist.
// Per-playlist problems are collected instead of failing the whole call; the
// membership write itself is an atomic set-add at the store, so concurrent
// calls against the same playlist cannot lose updates.
func (s *Playlists) AddToPlaylists(ctx context.Context, caller domain.Caller, songID string, playlistIDs []string) ([]domain.MembershipFailure, error) {
	if _, err := s.songs.FindByID(ctx, songID); err != nil {
		return nil, fmt.Errorf("service: failed to load song: %w", err)
	}
	if len(playlistIDs) == 0 {
		return nil, fmt.Errorf("service: no playlists given: %w", domain.ErrInvalidInput)
	}

	var (
		mu     sync.Mutex
		failed []domain.MembershipFailure
		wg     sync.WaitGroup
	)
	record := func(id, reason string) {
		mu.Lock()
		failed = append(failed, domain.MembershipFailure{ID: id, Reason: reason})
		mu.Unlock()
	}

	for _, id := range playlistIDs {
		wg.Add(1)
		go func(playlistID string) {
			defer wg.Done()

			p, err := s.playlists.FindByID(ctx, playlistID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					record(playlistID, "does not exist")
				} else {
					s.logger.Error("playlist lookup failed", "playlist", playlistID, "err", err)
					record(playlistID, "could not be updated")
				}
				return
			}
			if p.OwnerID != caller.UserID {
				record(playlistID, "does not have access")
				return
			}
			if err := s.playlists.AddSong(ctx, playlistID, songID); err != nil {
				s.logger.Error("membership write failed", "playlist", playlistID, "song", songID, "err", err)
				record(playlistID, "could not be updated")
			}
		}(id)
	}
	wg.Wait()

	return failed, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
