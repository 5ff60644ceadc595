package sqlitejournal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/osvaldoandrade/movectl/internal/domain"
	_ "modernc.org/sqlite"
)

// Store is the deployment journal: one row per submitted publish or upgrade.
type Store struct {
	db *sql.DB
}

type OpenOptions struct {
	Fast bool
}

func Open(path string) (*Store, error) {
	return OpenWithOptions(path, OpenOptions{})
}

func OpenWithOptions(path string, opts OpenOptions) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path required")
	}

	if shouldCreateDir(path) {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.applyPragmas(context.Background(), opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Record(ctx context.Context, entry domain.JournalEntry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return errors.New("journal entry id required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deployments (
			id, kind, package_path, network, package_id, upgrade_cap_id,
			tx_digest, tx_hash, source_commit, source_dirty, status, error, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		string(entry.Kind),
		entry.PackagePath,
		string(entry.Network),
		entry.PackageID,
		entry.UpgradeCapID,
		entry.TxDigest,
		entry.TxHash,
		entry.SourceCommit,
		boolToInt(entry.SourceDirty),
		string(entry.Status),
		entry.Error,
		entry.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// List returns matching entries, newest first.
func (s *Store) List(ctx context.Context, query domain.JournalQuery) ([]domain.JournalEntry, error) {
	var (
		clauses []string
		args    []any
	)
	if query.PackagePath != "" {
		clauses = append(clauses, "package_path = ?")
		args = append(args, query.PackagePath)
	}
	if query.Network != "" {
		clauses = append(clauses, "network = ?")
		args = append(args, string(query.Network))
	}

	stmt := `SELECT id, kind, package_path, network, package_id, upgrade_cap_id, tx_digest, tx_hash,
		source_commit, source_dirty, status, error, recorded_at FROM deployments`
	if len(clauses) > 0 {
		stmt += " WHERE " + strings.Join(clauses, " AND ")
	}
	stmt += " ORDER BY recorded_at DESC, id DESC"
	if query.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			entry      domain.JournalEntry
			kind       string
			network    string
			status     string
			dirty      int
			recordedAt string
		)
		if err := rows.Scan(
			&entry.ID, &kind, &entry.PackagePath, &network, &entry.PackageID, &entry.UpgradeCapID,
			&entry.TxDigest, &entry.TxHash, &entry.SourceCommit, &dirty, &status, &entry.Error, &recordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entry.Kind = domain.OperationKind(kind)
		entry.Network = domain.Network(network)
		entry.Status = domain.OperationStatus(status)
		entry.SourceDirty = dirty != 0
		parsed, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
		}
		entry.RecordedAt = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return entries, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS deployments (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			package_path TEXT NOT NULL,
			network TEXT NOT NULL,
			package_id TEXT NOT NULL DEFAULT '',
			upgrade_cap_id TEXT NOT NULL DEFAULT '',
			tx_digest TEXT NOT NULL DEFAULT '',
			tx_hash TEXT NOT NULL DEFAULT '',
			source_commit TEXT NOT NULL DEFAULT '',
			source_dirty INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			recorded_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create deployments table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS deployments_package_network
		ON deployments (package_path, network, recorded_at)
	`); err != nil {
		return fmt.Errorf("create deployments index: %w", err)
	}
	return nil
}

func (s *Store) applyPragmas(ctx context.Context, opts OpenOptions) error {
	if !opts.Fast {
		return nil
	}
	var mode string
	if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		return fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
		return fmt.Errorf("set synchronous: %w", err)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func shouldCreateDir(path string) bool {
	if path == ":memory:" {
		return false
	}
	if strings.HasPrefix(path, "file:") {
		return false
	}
	return true
}
