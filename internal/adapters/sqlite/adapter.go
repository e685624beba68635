// Package sqlite provides the SQLite-backed implementations of the song and
// playlist repository ports and the weighted search index.
//
// Full-text search uses FTS5; build with the sqlite_fts5 tag.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

// Adapter owns the database handle and hands out the per-entity repositories.
type Adapter struct {
	db        *sql.DB
	Songs     *SongRepo
	Playlists *PlaylistRepo
}

// NewAdapter opens the database, applies the connection-pool limits, enables
// foreign keys and runs the schema migration. Migration is idempotent,
// including the search index.
//
// The pool is capped at one connection unless configured higher: with the
// :memory: DSN every pooled connection is its own empty database, so the
// schema only exists on the connection that ran the migration.
func NewAdapter(storagePath string, maxOpenConns, maxIdleConns int) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if maxOpenConns < 1 {
		maxOpenConns = 1
	}
	if maxIdleConns < 1 {
		maxIdleConns = maxOpenConns
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	a := &Adapter{db: db, Songs: &SongRepo{db: db}, Playlists: &PlaylistRepo{db: db}}
	if err := a.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return a, nil
}

// Close ensures the DB connection is closed gracefully.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Migrate applies the schema. The unique indexes on songs.name and
// playlists(owner_id, name) are the authoritative uniqueness guards; the FTS
// triggers keep the search index in step with the songs table.
func (a *Adapter) Migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS songs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lyrics TEXT NOT NULL DEFAULT '',
		artists TEXT NOT NULL DEFAULT '',
		duration_sec REAL,
		song_original TEXT, song_encoding TEXT, song_mime TEXT, song_size INTEGER, song_key TEXT,
		thumb_original TEXT, thumb_encoding TEXT, thumb_mime TEXT, thumb_size INTEGER, thumb_key TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_songs_name ON songs(name);

	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		visibility TEXT NOT NULL CHECK (visibility IN ('public', 'private')),
		owner_id TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_playlists_owner_name ON playlists(owner_id, name);

	CREATE TABLE IF NOT EXISTS playlist_songs (
		playlist_id TEXT NOT NULL,
		song_id TEXT NOT NULL,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (playlist_id, song_id),
		FOREIGN KEY(playlist_id) REFERENCES playlists(id) ON DELETE CASCADE
	);

	CREATE VIRTUAL TABLE IF NOT EXISTS songs_fts USING fts5(
		name, lyrics, content='songs', content_rowid='rowid'
	);
	CREATE TRIGGER IF NOT EXISTS songs_fts_ai AFTER INSERT ON songs BEGIN
		INSERT INTO songs_fts(rowid, name, lyrics) VALUES (new.rowid, new.name, new.lyrics);
	END;
	CREATE TRIGGER IF NOT EXISTS songs_fts_ad AFTER DELETE ON songs BEGIN
		INSERT INTO songs_fts(songs_fts, rowid, name, lyrics) VALUES ('delete', old.rowid, old.name, old.lyrics);
	END;
	CREATE TRIGGER IF NOT EXISTS songs_fts_au AFTER UPDATE ON songs BEGIN
		INSERT INTO songs_fts(songs_fts, rowid, name, lyrics) VALUES ('delete', old.rowid, old.name, old.lyrics);
		INSERT INTO songs_fts(rowid, name, lyrics) VALUES (new.rowid, new.name, new.lyrics);
	END;
	`
	_, err := a.db.Exec(query)
	return err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
