// Package store handles SQLite persistence of fragments and their lines.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/lybrarian/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the fragment catalog.
type Store struct {
	db *sql.DB
}

// Counts summarizes catalog contents.
type Counts struct {
	Fragments  int
	Rhythmic   int
	Lines      int
	Unresolved int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fragments (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			rhythmic INTEGER NOT NULL,
			fragment_type TEXT,
			source TEXT NOT NULL,
			context_note TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS fragment_lines (
			fragment_id TEXT NOT NULL,
			line_number INTEGER NOT NULL,
			text TEXT NOT NULL,
			syllables INTEGER NOT NULL,
			stress_pattern TEXT,
			end_rhyme_sound TEXT,
			end_rhyme_us TEXT,
			end_rhyme_gb TEXT,
			PRIMARY KEY (fragment_id, line_number)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fragment_lines_end_rhyme_us ON fragment_lines(end_rhyme_us);`,
		`CREATE INDEX IF NOT EXISTS idx_fragment_lines_end_rhyme_gb ON fragment_lines(end_rhyme_gb);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// UpsertFragment inserts a fragment or overwrites the row with the same id.
func (s *Store) UpsertFragment(ctx context.Context, f model.Fragment) error {
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fragments (id, content, rhythmic, fragment_type, source, context_note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			rhythmic = excluded.rhythmic,
			fragment_type = excluded.fragment_type,
			source = excluded.source,
			context_note = excluded.context_note`,
		f.ID,
		f.Content,
		f.Rhythmic,
		nullIfEmpty(string(f.FragmentType)),
		f.Source,
		f.Context,
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fragment %s: %w", f.ID, err)
	}
	return nil
}

// ListFragments returns every fragment ordered by id.
func (s *Store) ListFragments(ctx context.Context) ([]model.Fragment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, rhythmic, fragment_type, source, context_note, created_at
		 FROM fragments
		 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Fragment
	for rows.Next() {
		var f model.Fragment
		var kind sql.NullString
		var created string
		if err := rows.Scan(&f.ID, &f.Content, &f.Rhythmic, &kind, &f.Source, &f.Context, &created); err != nil {
			return nil, err
		}
		f.FragmentType = model.FragmentType(kind.String)
		parsed, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, err
		}
		f.CreatedAt = parsed
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListLines returns the lines of a fragment in line order.
func (s *Store) ListLines(ctx context.Context, fragmentID string) ([]model.LineRow, error) {
	return s.queryLines(ctx,
		`SELECT fragment_id, line_number, text, syllables, stress_pattern, end_rhyme_us, end_rhyme_gb
		 FROM fragment_lines
		 WHERE fragment_id = ?
		 ORDER BY line_number`, fragmentID)
}

// ListUnresolvedLines returns lines where both rhyme keys are NULL.
func (s *Store) ListUnresolvedLines(ctx context.Context) ([]model.LineRow, error) {
	return s.queryLines(ctx,
		`SELECT fragment_id, line_number, text, syllables, stress_pattern, end_rhyme_us, end_rhyme_gb
		 FROM fragment_lines
		 WHERE end_rhyme_us IS NULL AND end_rhyme_gb IS NULL
		 ORDER BY fragment_id, line_number`)
}

func (s *Store) queryLines(ctx context.Context, query string, args ...any) ([]model.LineRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LineRow
	for rows.Next() {
		var row model.LineRow
		var stress, us, gb sql.NullString
		if err := rows.Scan(&row.FragmentID, &row.LineNumber, &row.Text, &row.Syllables, &stress, &us, &gb); err != nil {
			return nil, err
		}
		row.Stress = fromNull(stress)
		row.EndRhymeUS = fromNull(us)
		row.EndRhymeGB = fromNull(gb)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceLines overwrites the lines of a fragment in place by line number and
// removes rows beyond the new line count.
func (s *Store) ReplaceLines(ctx context.Context, fragmentID string, lines []model.LineRow) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if len(lines) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO fragment_lines (fragment_id, line_number, text, syllables, stress_pattern, end_rhyme_sound, end_rhyme_us, end_rhyme_gb)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(fragment_id, line_number) DO UPDATE SET
				text = excluded.text,
				syllables = excluded.syllables,
				stress_pattern = excluded.stress_pattern,
				end_rhyme_sound = excluded.end_rhyme_sound,
				end_rhyme_us = excluded.end_rhyme_us,
				end_rhyme_gb = excluded.end_rhyme_gb`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, line := range lines {
			if _, err := stmt.ExecContext(ctx,
				fragmentID,
				line.LineNumber,
				line.Text,
				line.Syllables,
				toNull(line.Stress),
				toNull(line.EndRhymeGB),
				toNull(line.EndRhymeUS),
				toNull(line.EndRhymeGB),
			); err != nil {
				return fmt.Errorf("failed to write line %d of %s: %w", line.LineNumber, fragmentID, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM fragment_lines WHERE fragment_id = ? AND line_number > ?`,
		fragmentID, len(lines)); err != nil {
		return err
	}
	return tx.Commit()
}

// PatchRhymes updates only the rhyme columns of one line. The legacy
// end_rhyme_sound column mirrors the British key.
func (s *Store) PatchRhymes(ctx context.Context, fragmentID string, lineNumber int, pair model.RhymeKeyPair) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE fragment_lines
		 SET end_rhyme_sound = ?, end_rhyme_us = ?, end_rhyme_gb = ?
		 WHERE fragment_id = ? AND line_number = ?`,
		toNull(pair.GB), toNull(pair.US), toNull(pair.GB), fragmentID, lineNumber)
	if err != nil {
		return fmt.Errorf("failed to patch rhymes of %s line %d: %w", fragmentID, lineNumber, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("line %d of %s not found", lineNumber, fragmentID)
	}
	return nil
}

// Counts returns catalog totals.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM fragments),
			(SELECT COUNT(*) FROM fragments WHERE rhythmic = 1),
			(SELECT COUNT(*) FROM fragment_lines),
			(SELECT COUNT(*) FROM fragment_lines WHERE end_rhyme_us IS NULL AND end_rhyme_gb IS NULL)`,
	).Scan(&c.Fragments, &c.Rhythmic, &c.Lines, &c.Unresolved)
	if err != nil {
		return Counts{}, err
	}
	return c, nil
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
