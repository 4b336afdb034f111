package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"recbutton/internal/model"
)

// Verify at compile time that Store implements all interfaces.
var (
	_ ClipReader     = (*Store)(nil)
	_ ClipWriter     = (*Store)(nil)
	_ RetentionStore = (*Store)(nil)
)

// Store provides data access to the SQLite history table.
type Store struct {
	db *sql.DB
}

// New creates a new Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// currentSchemaVersion is bumped whenever the schema changes.
// Add a new migration function in the migrations slice below.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	// Ensure the schema_version table exists.
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		// Fresh database: initialize to version 0.
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	// migrations is an ordered list of migration functions.
	// Index 0 = migration from v0 to v1, etc.
	migrations := []func() error{
		s.migrateV1, // v0 → v1: initial schema
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", i, i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("update schema version to %d: %w", i+1, err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema (v0 → v1). The unique index on
// output backs the duplicate-filename invariant: concurrent check-then-insert
// races resolve to a constraint violation instead of a second live record.
func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		source       TEXT NOT NULL,
		output       TEXT NOT NULL,
		start_time   REAL NOT NULL,
		duration     REAL NOT NULL,
		timestamp    TEXT NOT NULL,
		show_name    TEXT NOT NULL,
		episode_name TEXT NOT NULL,
		renamed      INTEGER NOT NULL DEFAULT 0
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_history_output ON history(output);
	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

const clipColumns = `id, source, output, start_time, duration, timestamp, show_name, episode_name, renamed`

// Insert persists a new clip record and returns it with the assigned id.
// A clip whose output filename collides with a live record fails with
// model.ErrDuplicate; the caller must not assume the record exists on error.
func (s *Store) Insert(ctx context.Context, clip model.Clip) (model.Clip, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO history (source, output, start_time, duration, timestamp, show_name, episode_name, renamed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		clip.Source, clip.Output, clip.StartTime, clip.Duration,
		clip.Timestamp, clip.ShowName, clip.EpisodeName, clip.Renamed,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Clip{}, model.ErrDuplicate
		}
		return model.Clip{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Clip{}, err
	}
	clip.ID = id
	return clip, nil
}

// FindByFilename returns the clip with the exact output filename, or
// model.ErrNotFound.
func (s *Store) FindByFilename(ctx context.Context, name string) (*model.Clip, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+clipColumns+` FROM history WHERE output = ?`, name)
	clip, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return clip, err
}

// ListRecent returns (timestamp, filename) pairs for every clip, newest
// first. Ties on timestamp are broken most-recently-inserted first.
func (s *Store) ListRecent(ctx context.Context) ([]model.HistoryEntry, error) {
	return s.queryHistory(ctx,
		`SELECT timestamp, output FROM history ORDER BY timestamp DESC, id DESC`)
}

// Search returns (timestamp, filename) pairs for clips whose output
// filename, show name, or episode name contains the substring, newest
// first. The match is case-sensitive, which is why instr() is used
// instead of LIKE.
func (s *Store) Search(ctx context.Context, substring string) ([]model.HistoryEntry, error) {
	return s.queryHistory(ctx, `
		SELECT timestamp, output FROM history
		WHERE instr(output, ?) > 0 OR instr(show_name, ?) > 0 OR instr(episode_name, ?) > 0
		ORDER BY timestamp DESC, id DESC`,
		substring, substring, substring)
}

func (s *Store) queryHistory(ctx context.Context, query string, args ...any) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(&e.Timestamp, &e.Output); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Rename changes a clip's output filename and marks it renamed. The update
// is a single statement, so the target-exists check and the mutation cannot
// race: a colliding target fails with model.ErrDuplicate from the unique
// index, a missing source record fails with model.ErrNotFound.
func (s *Store) Rename(ctx context.Context, old, new string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE history SET output = ?, renamed = 1 WHERE output = ?`, new, old)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicate
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes the clip record with the given output filename. Deleting
// a filename with no record is a no-op.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE output = ?`, name)
	return err
}

// SelectOlderThan returns every clip whose creation timestamp is at or
// before the cutoff. Plain string comparison is correct because the
// timestamp format is fixed-width and zero-padded.
func (s *Store) SelectOlderThan(ctx context.Context, cutoff string) ([]model.Clip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+clipColumns+` FROM history WHERE timestamp <= ?`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []model.Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, *clip)
	}
	return clips, rows.Err()
}

// Exists reports whether a clip record with the given output filename exists.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM history WHERE output = ?)`, name).Scan(&exists)
	return exists, err
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type scanner interface {
	Scan(dest ...any) error
}

func scanClip(row scanner) (*model.Clip, error) {
	var clip model.Clip
	err := row.Scan(&clip.ID, &clip.Source, &clip.Output, &clip.StartTime,
		&clip.Duration, &clip.Timestamp, &clip.ShowName, &clip.EpisodeName, &clip.Renamed)
	if err != nil {
		return nil, err
	}
	return &clip, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
