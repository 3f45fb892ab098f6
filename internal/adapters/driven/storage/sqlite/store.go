package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

// DBFile is the database file name inside the data directory.
const DBFile = "snapshot.db"

// Store is a SQLite-backed snapshot store.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore opens (creating if needed) the snapshot database in dataDir.
// If dataDir is empty, defaults to ~/.sercha-voice/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-voice", "data")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath, now: time.Now}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save replaces the stored snapshot.
func (s *Store) Save(ctx context.Context, snapshot *domain.CorpusSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot is nil", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_chunks"); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot (id, embedding_model, source_fingerprint, vector_index, chunk_count, created_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			embedding_model = excluded.embedding_model,
			source_fingerprint = excluded.source_fingerprint,
			vector_index = excluded.vector_index,
			chunk_count = excluded.chunk_count,
			created_at = excluded.created_at`,
		snapshot.EmbeddingModel, snapshot.SourceFingerprint, snapshot.Index, len(snapshot.Chunks), s.now().UTC(),
	); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_chunks (position, id, source, chunk_index, content)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for pos, c := range snapshot.Chunks {
		if _, err := stmt.ExecContext(ctx, pos, c.ID, c.Source, c.Index, c.Text); err != nil {
			return fmt.Errorf("save chunk %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot or domain.ErrNotFound.
func (s *Store) Load(ctx context.Context) (*domain.CorpusSnapshot, error) {
	snapshot := &domain.CorpusSnapshot{}
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT embedding_model, source_fingerprint, vector_index, chunk_count FROM snapshot WHERE id = 1",
	).Scan(&snapshot.EmbeddingModel, &snapshot.SourceFingerprint, &snapshot.Index, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no saved snapshot", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, source, chunk_index, content FROM snapshot_chunks ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	defer rows.Close()

	snapshot.Chunks = make([]domain.Chunk, 0, count)
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.Source, &c.Index, &c.Text); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		snapshot.Chunks = append(snapshot.Chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}

	if len(snapshot.Chunks) != count {
		return nil, fmt.Errorf("%w: snapshot lists %d chunks but %d are stored",
			domain.ErrValidation, count, len(snapshot.Chunks))
	}
	return snapshot, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_snapshot.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}
