package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

// Ingest runs the full ingestion pipeline: validate metadata, classify files,
// store every file, then insert the registry record. The steps are strictly
// sequential; each store call is awaited and checked before the registry is
// touched, and on registry failure the stored blobs are deleted best-effort so
// no record ever references an unstored asset.
func (c *Catalog) Ingest(ctx context.Context, meta domain.SongMetadata, uploads []domain.Upload) (domain.Song, error) {
	if err := meta.Validate(); err != nil {
		return domain.Song{}, fmt.Errorf("service: invalid song metadata: %w", err)
	}
	if err := domain.ValidateUploads(uploads); err != nil {
		return domain.Song{}, err
	}

	// Advisory name check so an obvious duplicate fails before any file is
	// stored. The unique index on insert remains the authoritative guard.
	if _, err := c.songs.FindByName(ctx, meta.Name); err == nil {
		return domain.Song{}, fmt.Errorf("%w: song %q", domain.ErrDuplicateName, meta.Name)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Song{}, fmt.Errorf("service: failed to check song name: %w", err)
	}

	song := domain.Song{
		ID:      uuid.New().String(),
		Name:    meta.Name,
		Lyrics:  meta.Lyrics,
		Artists: meta.Artists,
	}

	stored, err := c.storeUploads(ctx, uploads)
	if err != nil {
		return domain.Song{}, err
	}
	for i := range stored {
		switch stored[i].Role {
		case domain.RoleSong:
			song.SongAsset = &stored[i]
		case domain.RoleThumbnail:
			song.ThumbnailAsset = &stored[i]
		}
	}

	if err := c.songs.Insert(ctx, song); err != nil {
		c.discard(ctx, stored)
		return domain.Song{}, fmt.Errorf("service: failed to register song: %w", err)
	}

	return song, nil
}

// UpdateSong merges metadata and freshly stored assets into an existing record.
func (c *Catalog) UpdateSong(ctx context.Context, id string, upd domain.SongUpdate, uploads []domain.Upload) error {
	if err := domain.ValidateUploads(uploads); err != nil {
		return err
	}
	if _, err := c.songs.FindByID(ctx, id); err != nil {
		return fmt.Errorf("service: failed to load song: %w", err)
	}

	stored, err := c.storeUploads(ctx, uploads)
	if err != nil {
		return err
	}
	for i := range stored {
		switch stored[i].Role {
		case domain.RoleSong:
			upd.SongAsset = &stored[i]
		case domain.RoleThumbnail:
			upd.ThumbnailAsset = &stored[i]
		}
	}

	if err := c.songs.Update(ctx, id, upd); err != nil {
		c.discard(ctx, stored)
		return fmt.Errorf("service: failed to update song: %w", err)
	}
	return nil
}

// storeUploads persists each file in turn. The first failure aborts the batch,
// removing anything stored so far.
func (c *Catalog) storeUploads(ctx context.Context, uploads []domain.Upload) ([]domain.AssetDescriptor, error) {
	descriptors := make([]domain.AssetDescriptor, 0, len(uploads))
	for _, u := range uploads {
		key := domain.NewStorageKey(u, time.Now())
		_, err := c.blobs.Store(ctx, key, u.MIMEType, bytes.NewReader(u.Data), int64(len(u.Data)))
		if err != nil {
			c.discard(ctx, descriptors)
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrAssetUpload, u.OriginalName, err)
		}
		descriptors = append(descriptors, u.Descriptor(key))
	}
	return descriptors, nil
}

// discard best-effort deletes blobs left over from a failed ingestion.
func (c *Catalog) discard(ctx context.Context, stored []domain.AssetDescriptor) {
	for _, d := range stored {
		if err := c.blobs.Delete(ctx, d.StorageKey); err != nil {
			c.logger.Warn("failed to clean up stored blob", "key", d.StorageKey, "err", err)
		}
	}
}
