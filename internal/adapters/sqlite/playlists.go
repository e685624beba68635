package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

// PlaylistRepo implements the playlist repository port.
type PlaylistRepo struct {
	db *sql.DB
}

func (r *PlaylistRepo) FindByOwner(ctx context.Context, ownerID string) ([]domain.Playlist, error) {
	return r.query(ctx,
		"SELECT id, name, color, visibility, owner_id FROM playlists WHERE owner_id = ? ORDER BY created_at ASC, rowid ASC", ownerID)
}

func (r *PlaylistRepo) FindPublic(ctx context.Context) ([]domain.Playlist, error) {
	return r.query(ctx,
		"SELECT id, name, color, visibility, owner_id FROM playlists WHERE visibility = 'public' ORDER BY created_at ASC, rowid ASC")
}

func (r *PlaylistRepo) query(ctx context.Context, query string, args ...any) ([]domain.Playlist, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	playlists := []domain.Playlist{}
	for rows.Next() {
		var p domain.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Visibility, &p.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate playlists: %w", err)
	}

	for i := range playlists {
		songs, err := r.songIDs(ctx, playlists[i].ID)
		if err != nil {
			return nil, err
		}
		playlists[i].Songs = songs
	}
	return playlists, nil
}

func (r *PlaylistRepo) songIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT song_id FROM playlist_songs WHERE playlist_id = ? ORDER BY added_at ASC, song_id ASC", playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist songs: %w", err)
	}
	defer rows.Close()

	songs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playlist song: %w", err)
		}
		songs = append(songs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate playlist songs: %w", err)
	}
	return songs, nil
}

func (r *PlaylistRepo) FindByID(ctx context.Context, id string) (domain.Playlist, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, name, color, visibility, owner_id FROM playlists WHERE id = ?", id)
	var p domain.Playlist
	if err := row.Scan(&p.ID, &p.Name, &p.Color, &p.Visibility, &p.OwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Playlist{}, domain.ErrNotFound
		}
		return domain.Playlist{}, fmt.Errorf("failed to load playlist: %w", err)
	}
	songs, err := r.songIDs(ctx, p.ID)
	if err != nil {
		return domain.Playlist{}, err
	}
	p.Songs = songs
	return p, nil
}

func (r *PlaylistRepo) Insert(ctx context.Context, p domain.Playlist) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	_, err = tx.ExecContext(ctx,
		"INSERT INTO playlists (id, name, color, visibility, owner_id) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Color, p.Visibility, p.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("failed to insert playlist: %w", err)
	}
	if err := insertLinks(ctx, tx, p.ID, p.Songs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

func (r *PlaylistRepo) Update(ctx context.Context, id string, upd domain.PlaylistUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var visibility any
	if upd.Visibility != nil {
		visibility = string(*upd.Visibility)
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE playlists SET
			name = COALESCE(?, name),
			color = COALESCE(?, color),
			visibility = COALESCE(?, visibility)
		WHERE id = ?`,
		nullable(upd.Name), nullable(upd.Color), visibility, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	// A non-nil Songs replaces the membership set wholesale.
	if upd.Songs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE playlist_id = ?", id); err != nil {
			return fmt.Errorf("failed to clear playlist songs: %w", err)
		}
		if err := insertLinks(ctx, tx, id, upd.Songs); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

func insertLinks(ctx context.Context, tx *sql.Tx, playlistID string, songIDs []string) error {
	if len(songIDs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, songID := range songIDs {
		if _, err := stmt.ExecContext(ctx, playlistID, songID); err != nil {
			return fmt.Errorf("failed to link song %s: %w", songID, err)
		}
	}
	return nil
}

func (r *PlaylistRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return requireRow(res)
}

// AddSong is a single atomic set-add on the link table. The composite primary
// key makes concurrent adds of the same pair converge on one row, so there is
// no read-modify-write to race.
func (r *PlaylistRepo) AddSong(ctx context.Context, playlistID, songID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id) VALUES (?, ?)", playlistID, songID)
	if err != nil {
		return fmt.Errorf("failed to add song to playlist: %w", err)
	}
	return nil
}
