// Package services contains the core application logic, agnostic of transport
// and storage adapters.
package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/ewilliams-labs/chorus/internal/core/domain"
	"github.com/ewilliams-labs/chorus/internal/core/ports"
)

// Catalog owns song records: listing, lookup, ingestion and removal.
type Catalog struct {
	songs  ports.SongRepository
	blobs  ports.BlobStore
	logger *log.Logger
}

// NewCatalog constructs a Catalog service.
func NewCatalog(songs ports.SongRepository, blobs ports.BlobStore, logger *log.Logger) *Catalog {
	return &Catalog{songs: songs, blobs: blobs, logger: logger.With("service", "catalog")}
}

func (c *Catalog) List(ctx context.Context) ([]domain.Song, error) {
	songs, err := c.songs.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list songs: %w", err)
	}
	return songs, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (domain.Song, error) {
	song, err := c.songs.FindByID(ctx, id)
	if err != nil {
		return domain.Song{}, fmt.Errorf("service: failed to load song: %w", err)
	}
	return song, nil
}

// Delete removes the registry record. Stored asset bytes are not purged.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.songs.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete song: %w", err)
	}
	return nil
}

// ListAssets surfaces the blob store inventory.
func (c *Catalog) ListAssets(ctx context.Context) ([]ports.ObjectInfo, error) {
	objects, err := c.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list assets: %w", err)
	}
	return objects, nil
}
