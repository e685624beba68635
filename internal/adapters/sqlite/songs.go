package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

// SongRepo implements the song repository port and the weighted search index.
type SongRepo struct {
	db *sql.DB
}

const songColumns = `id, name, lyrics, artists, IFNULL(duration_sec, 0),
	song_original, song_encoding, song_mime, song_size, song_key,
	thumb_original, thumb_encoding, thumb_mime, thumb_size, thumb_key`

func scanSong(row interface{ Scan(...any) error }) (domain.Song, error) {
	var (
		s         domain.Song
		songMeta  [3]sql.NullString
		songSize  sql.NullInt64
		songKey   sql.NullString
		thumbMeta [3]sql.NullString
		thumbSize sql.NullInt64
		thumbKey  sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.Name, &s.Lyrics, &s.Artists, &s.DurationSec,
		&songMeta[0], &songMeta[1], &songMeta[2], &songSize, &songKey,
		&thumbMeta[0], &thumbMeta[1], &thumbMeta[2], &thumbSize, &thumbKey,
	)
	if err != nil {
		return domain.Song{}, err
	}
	if songKey.Valid {
		s.SongAsset = &domain.AssetDescriptor{
			Role:         domain.RoleSong,
			OriginalName: songMeta[0].String,
			Encoding:     songMeta[1].String,
			MIMEType:     songMeta[2].String,
			Size:         songSize.Int64,
			StorageKey:   songKey.String,
		}
	}
	if thumbKey.Valid {
		s.ThumbnailAsset = &domain.AssetDescriptor{
			Role:         domain.RoleThumbnail,
			OriginalName: thumbMeta[0].String,
			Encoding:     thumbMeta[1].String,
			MIMEType:     thumbMeta[2].String,
			Size:         thumbSize.Int64,
			StorageKey:   thumbKey.String,
		}
	}
	return s, nil
}

func (r *SongRepo) FindAll(ctx context.Context) ([]domain.Song, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+songColumns+" FROM songs ORDER BY created_at ASC, rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	defer rows.Close()

	songs := []domain.Song{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}
	return songs, nil
}

func (r *SongRepo) FindByID(ctx context.Context, id string) (domain.Song, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+songColumns+" FROM songs WHERE id = ?", id)
	s, err := scanSong(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Song{}, domain.ErrNotFound
		}
		return domain.Song{}, fmt.Errorf("failed to load song: %w", err)
	}
	return s, nil
}

func (r *SongRepo) FindByName(ctx context.Context, name string) (domain.Song, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+songColumns+" FROM songs WHERE name = ?", name)
	s, err := scanSong(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Song{}, domain.ErrNotFound
		}
		return domain.Song{}, fmt.Errorf("failed to load song: %w", err)
	}
	return s, nil
}

func assetFields(d *domain.AssetDescriptor) []any {
	if d == nil {
		return []any{nil, nil, nil, nil, nil}
	}
	return []any{d.OriginalName, d.Encoding, d.MIMEType, d.Size, d.StorageKey}
}

func (r *SongRepo) Insert(ctx context.Context, s domain.Song) error {
	args := []any{s.ID, s.Name, s.Lyrics, s.Artists}
	args = append(args, assetFields(s.SongAsset)...)
	args = append(args, assetFields(s.ThumbnailAsset)...)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO songs (
			id, name, lyrics, artists,
			song_original, song_encoding, song_mime, song_size, song_key,
			thumb_original, thumb_encoding, thumb_mime, thumb_size, thumb_key
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("failed to insert song: %w", err)
	}
	return nil
}

func (r *SongRepo) Update(ctx context.Context, id string, upd domain.SongUpdate) error {
	sets := []string{
		"name = COALESCE(?, name)",
		"lyrics = COALESCE(?, lyrics)",
		"artists = COALESCE(?, artists)",
	}
	args := []any{nullable(upd.Name), nullable(upd.Lyrics), nullable(upd.Artists)}

	if upd.SongAsset != nil {
		sets = append(sets, "song_original = ?, song_encoding = ?, song_mime = ?, song_size = ?, song_key = ?")
		args = append(args, assetFields(upd.SongAsset)...)
	}
	if upd.ThumbnailAsset != nil {
		sets = append(sets, "thumb_original = ?, thumb_encoding = ?, thumb_mime = ?, thumb_size = ?, thumb_key = ?")
		args = append(args, assetFields(upd.ThumbnailAsset)...)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, "UPDATE songs SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("failed to update song: %w", err)
	}
	return requireRow(res)
}

func (r *SongRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	return requireRow(res)
}

func (r *SongRepo) SetDuration(ctx context.Context, id string, seconds float64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE songs SET duration_sec = ? WHERE id = ?", seconds, id)
	if err != nil {
		return fmt.Errorf("failed to set song duration: %w", err)
	}
	return requireRow(res)
}

// Search queries the FTS5 index with bm25 weights 3.0 (name) and 1.0 (lyrics).
// bm25 scores are lower-is-better, so ascending order yields descending
// relevance.
func (r *SongRepo) Search(ctx context.Context, text string, limit int) ([]domain.Song, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.lyrics, s.artists, IFNULL(s.duration_sec, 0),
			s.song_original, s.song_encoding, s.song_mime, s.song_size, s.song_key,
			s.thumb_original, s.thumb_encoding, s.thumb_mime, s.thumb_size, s.thumb_key
		FROM songs_fts f
		JOIN songs s ON s.rowid = f.rowid
		WHERE songs_fts MATCH ?
		ORDER BY bm25(songs_fts, 3.0, 1.0) ASC
		LIMIT ?`,
		ftsQuery(text), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search songs: %w", err)
	}
	defer rows.Close()

	songs := []domain.Song{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search results: %w", err)
	}
	return songs, nil
}

// ftsQuery quotes each whitespace-separated term so user input cannot inject
// FTS5 query syntax.
func ftsQuery(text string) string {
	terms := strings.Fields(text)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}
