// Package store handles SQLite persistence of frequency corpora.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/keyscore/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a named corpus does not exist.
var ErrNotFound = errors.New("corpus not found")

// Store wraps SQLite access for corpus data.
type Store struct {
	db *sql.DB
}

// CorpusInfo summarizes a stored corpus.
type CorpusInfo struct {
	Name       string
	ImportedAt time.Time
	Source     string
	Unigrams   int
	Bigrams    int
	Trigrams   int
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
		`CREATE TABLE IF NOT EXISTS corpora (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS unigrams (
			corpus_id INTEGER NOT NULL,
			a INTEGER NOT NULL,
			freq REAL NOT NULL,
			PRIMARY KEY (corpus_id, a)
		);`,
		`CREATE TABLE IF NOT EXISTS bigrams (
			corpus_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			a INTEGER NOT NULL,
			b INTEGER NOT NULL,
			freq REAL NOT NULL,
			PRIMARY KEY (corpus_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS trigrams (
			corpus_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			a INTEGER NOT NULL,
			b INTEGER NOT NULL,
			c INTEGER NOT NULL,
			freq REAL NOT NULL,
			PRIMARY KEY (corpus_id, seq)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveCorpus stores a corpus under its name, replacing any corpus of the
// same name.
func (s *Store) SaveCorpus(ctx context.Context, c model.Corpus, source string, at time.Time) (err error) {
	if c.Name == "" {
		return fmt.Errorf("corpus name is empty")
	}
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

	if _, err = deleteCorpus(ctx, tx, c.Name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO corpora (name, source, imported_at) VALUES (?, ?, ?)`,
		c.Name, source, at.Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	uni := make([][]any, len(c.Unigrams))
	for i, u := range c.Unigrams {
		uni[i] = []any{id, u.Code, u.Freq}
	}
	if err = insertAll(ctx, tx, `INSERT OR REPLACE INTO unigrams (corpus_id, a, freq) VALUES (?, ?, ?)`, uni); err != nil {
		return err
	}
	bi := make([][]any, len(c.Bigrams))
	for i, b := range c.Bigrams {
		bi[i] = []any{id, i, b.A, b.B, b.Freq}
	}
	if err = insertAll(ctx, tx, `INSERT INTO bigrams (corpus_id, seq, a, b, freq) VALUES (?, ?, ?, ?, ?)`, bi); err != nil {
		return err
	}
	tri := make([][]any, len(c.Trigrams))
	for i, t := range c.Trigrams {
		tri[i] = []any{id, i, t.A, t.B, t.C, t.Freq}
	}
	if err = insertAll(ctx, tx, `INSERT INTO trigrams (corpus_id, seq, a, b, c, freq) VALUES (?, ?, ?, ?, ?, ?)`, tri); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// DeleteCorpus removes a corpus and its tables. A missing name is
// ErrNotFound.
func (s *Store) DeleteCorpus(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	found, err := deleteCorpus(ctx, tx, name)
	if err == nil && !found {
		err = fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			// Best-effort rollback.
			_ = rerr
		}
		return err
	}
	return tx.Commit()
}

// deleteCorpus reports whether a corpus of that name existed.
func deleteCorpus(ctx context.Context, tx *sql.Tx, name string) (bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM corpora WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, stmt := range []string{
		`DELETE FROM unigrams WHERE corpus_id = ?`,
		`DELETE FROM bigrams WHERE corpus_id = ?`,
		`DELETE FROM trigrams WHERE corpus_id = ?`,
		`DELETE FROM corpora WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return false, err
		}
	}
	return true, nil
}

func insertAll(ctx context.Context, tx *sql.Tx, query string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// LoadCorpus reads a stored corpus. Bigram and trigram tables keep their
// import order.
func (s *Store) LoadCorpus(ctx context.Context, name string) (model.Corpus, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM corpora WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Corpus{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return model.Corpus{}, err
	}

	c := model.Corpus{Name: name}
	err = s.queryRows(ctx, `SELECT a, freq FROM unigrams WHERE corpus_id = ? ORDER BY freq DESC, a ASC`, id, func(rows *sql.Rows) error {
		var u model.Unigram
		if err := rows.Scan(&u.Code, &u.Freq); err != nil {
			return err
		}
		c.Unigrams = append(c.Unigrams, u)
		return nil
	})
	if err != nil {
		return model.Corpus{}, err
	}
	err = s.queryRows(ctx, `SELECT a, b, freq FROM bigrams WHERE corpus_id = ? ORDER BY seq`, id, func(rows *sql.Rows) error {
		var b model.Bigram
		if err := rows.Scan(&b.A, &b.B, &b.Freq); err != nil {
			return err
		}
		c.Bigrams = append(c.Bigrams, b)
		return nil
	})
	if err != nil {
		return model.Corpus{}, err
	}
	err = s.queryRows(ctx, `SELECT a, b, c, freq FROM trigrams WHERE corpus_id = ? ORDER BY seq`, id, func(rows *sql.Rows) error {
		var t model.Trigram
		if err := rows.Scan(&t.A, &t.B, &t.C, &t.Freq); err != nil {
			return err
		}
		c.Trigrams = append(c.Trigrams, t)
		return nil
	})
	if err != nil {
		return model.Corpus{}, err
	}
	return c, nil
}

// ListCorpora returns all stored corpora ordered by name.
func (s *Store) ListCorpora(ctx context.Context) ([]CorpusInfo, error) {
	query := `SELECT c.name, c.source, c.imported_at,
		(SELECT COUNT(*) FROM unigrams u WHERE u.corpus_id = c.id),
		(SELECT COUNT(*) FROM bigrams b WHERE b.corpus_id = c.id),
		(SELECT COUNT(*) FROM trigrams t WHERE t.corpus_id = c.id)
	FROM corpora c
	ORDER BY c.name ASC`
	var result []CorpusInfo
	err := s.queryRows(ctx, query, nil, func(rows *sql.Rows) error {
		var info CorpusInfo
		var importedAt string
		if err := rows.Scan(&info.Name, &info.Source, &importedAt, &info.Unigrams, &info.Bigrams, &info.Trigrams); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, importedAt)
		if err != nil {
			return err
		}
		info.ImportedAt = parsed
		result = append(result, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) queryRows(ctx context.Context, query string, arg any, scan func(*sql.Rows) error) error {
	var args []any
	if arg != nil {
		args = append(args, arg)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
