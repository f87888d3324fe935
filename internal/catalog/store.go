package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"fileset/internal/config"
	"fileset/internal/faults"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database named by the config.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(context.Background(), cfg.Paths.Database)
}

// OpenPath opens the catalog database at path, creating the schema on first use.
func OpenPath(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, faults.Wrap(faults.ErrIndex, "catalog", "open", "create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, faults.Wrap(faults.ErrIndex, "catalog", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "open", "", err)
	}
	return store, nil
}

// ErrNoCatalog reports a read-only open of a database that does not exist.
var ErrNoCatalog = errors.New("catalog database does not exist")

// OpenExisting opens the catalog at path for reading. Nothing is created:
// a missing file fails with ErrNoCatalog and a database without the current
// schema fails with ErrSchemaMismatch. Every connection runs with
// query_only set.
func OpenExisting(ctx context.Context, path string) (*Store, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "open", path, ErrNoCatalog)
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "open", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "open", path, fmt.Errorf("not a regular file"))
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=query_only(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "open", "open sqlite db", err)
	}

	store := &Store{db: db, path: path}
	if err := store.checkSchema(ctx); err != nil {
		_ = db.Close()
		return nil, faults.Wrap(faults.ErrIndex, "catalog", "open", path, err)
	}
	return store, nil
}

// Reset deletes the catalog database and its WAL side files. A missing
// database is not an error.
func Reset(path string) error {
	for _, candidate := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(candidate); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return faults.Wrap(faults.ErrIndex, "catalog", "reset", candidate, err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Writer receives parsed catalog content. Every method returns the generated
// row id. Implementations are only valid inside the Load callback.
type Writer interface {
	InsertCollection(ctx context.Context, c Collection) (int64, error)
	InsertSet(ctx context.Context, set Set) (int64, error)
	InsertFile(ctx context.Context, rec FileRecord) (int64, error)
	AssignSet(ctx context.Context, fileIDs []int64, setID int64) error
}

// Load runs fn inside one transaction. The transaction commits only when fn
// returns nil; any error rolls back every row fn wrote.
func (s *Store) Load(ctx context.Context, fn func(Writer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return faults.Wrap(faults.ErrIndex, "catalog", "load", "begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&txWriter{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return faults.Wrap(faults.ErrIndex, "catalog", "load", "commit", err)
	}
	return nil
}

type txWriter struct {
	tx *sql.Tx
}

func (w *txWriter) InsertCollection(ctx context.Context, c Collection) (int64, error) {
	res, err := w.tx.ExecContext(ctx,
		`INSERT INTO collections (name, root, description, version, comment, header)
         VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name,
		c.Root,
		nullableString(c.Description),
		nullableString(c.Version),
		nullableString(c.Comment),
		nullableString(c.Header),
	)
	if err != nil {
		return 0, faults.Wrap(faults.ErrIndex, "catalog", "insert collection", c.Name, err)
	}
	return lastInsertID(res, "insert collection")
}

func (w *txWriter) InsertSet(ctx context.Context, set Set) (int64, error) {
	res, err := w.tx.ExecContext(ctx,
		`INSERT INTO sets (collection_id, name, description) VALUES (?, ?, ?)`,
		set.CollectionID,
		set.Name,
		nullableString(set.Description),
	)
	if err != nil {
		return 0, faults.Wrap(faults.ErrIndex, "catalog", "insert set", set.Name, err)
	}
	return lastInsertID(res, "insert set")
}

func (w *txWriter) InsertFile(ctx context.Context, rec FileRecord) (int64, error) {
	res, err := w.tx.ExecContext(ctx,
		`INSERT INTO files (set_id, name, size, flags, crc, md5, sha1, comment, found)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(rec.SetID),
		rec.Name,
		rec.Size,
		nullableString(rec.Flags),
		int64(rec.CRC32),
		nullableString(rec.MD5),
		nullableString(rec.SHA1),
		nullableString(rec.Comment),
		boolToInt(rec.Found),
	)
	if err != nil {
		return 0, faults.Wrap(faults.ErrIndex, "catalog", "insert file", rec.Name, err)
	}
	return lastInsertID(res, "insert file")
}

func (w *txWriter) AssignSet(ctx context.Context, fileIDs []int64, setID int64) error {
	if len(fileIDs) == 0 {
		return nil
	}
	stmt, err := w.tx.PrepareContext(ctx, `UPDATE files SET set_id = ? WHERE id = ?`)
	if err != nil {
		return faults.Wrap(faults.ErrIndex, "catalog", "assign set", "prepare", err)
	}
	defer stmt.Close()
	for _, id := range fileIDs {
		if _, err := stmt.ExecContext(ctx, setID, id); err != nil {
			return faults.Wrap(faults.ErrIndex, "catalog", "assign set", fmt.Sprintf("file %d", id), err)
		}
	}
	return nil
}

func lastInsertID(res sql.Result, operation string) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, faults.Wrap(faults.ErrIndex, "catalog", operation, "last insert id", err)
	}
	return id, nil
}
