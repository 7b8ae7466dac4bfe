package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// SQLiteFileName is the database file inside the data directory.
const SQLiteFileName = "cmdline_history.db"

// SQLiteStore persists history in a SQLite database. When the database cannot
// be opened it degrades to a FileStore in the same directory.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	size     int
	mu       sync.Mutex
	fallback *FileStore
}

// NewSQLiteStore creates (or opens) dir/cmdline_history.db.
func NewSQLiteStore(dir string, size int) *SQLiteStore {
	path := filepath.Join(dir, SQLiteFileName)
	size = normalizeSize(size)
	_ = os.MkdirAll(dir, domain.DirectoryPermissions)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path, size: size, fallback: NewFileStore(dir, size)}
	}
	store := &SQLiteStore{db: db, path: path, size: size}
	if err := store.init(); err != nil {
		_ = db.Close()
		return &SQLiteStore{path: path, size: size, fallback: NewFileStore(dir, size)}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS cmdline_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		command TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);`)
	return err
}

// Degraded reports whether the store fell back to the jsonl file.
func (s *SQLiteStore) Degraded() bool {
	return s.fallback != nil
}

// Add implements ports.HistoryStore.
func (s *SQLiteStore) Add(command string) error {
	if s.fallback != nil {
		return s.fallback.Add(command)
	}
	if command == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cmdline_history WHERE command = ?`, command); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO cmdline_history (command, timestamp) VALUES (?, ?)`,
		command, time.Now().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM cmdline_history WHERE id NOT IN
		(SELECT id FROM cmdline_history ORDER BY id DESC LIMIT ?)`, s.size); err != nil {
		return err
	}
	return tx.Commit()
}

// Get implements ports.HistoryStore.
func (s *SQLiteStore) Get() ([]string, error) {
	if s.fallback != nil {
		return s.fallback.Get()
	}
	entries, err := s.Entries(s.size, "")
	if err != nil {
		return nil, err
	}
	cmds := make([]string, 0, len(entries))
	for _, entry := range entries {
		cmds = append(cmds, entry.Command)
	}
	return cmds, nil
}

// Entries returns history entries newest first (limit/search optional).
func (s *SQLiteStore) Entries(limit int, search string) ([]domain.HistoryEntry, error) {
	if s.fallback != nil {
		return s.fallback.Entries(limit, search)
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT command, timestamp FROM cmdline_history")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE command LIKE ?")
		args = append(args, "%"+search+"%")
	}
	builder.WriteString(" ORDER BY id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var ts string
		if err := rows.Scan(&entry.Command, &ts); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Timestamp = t
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	if s.fallback != nil {
		return s.fallback.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM cmdline_history")
	return err
}

// ExportJSON writes the history table to a jsonl file, oldest first.
func (s *SQLiteStore) ExportJSON(dest string) error {
	if s.fallback != nil {
		return s.fallback.ExportJSON(dest)
	}
	entries, err := s.Entries(0, "")
	if err != nil {
		return err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return writeJSONL(dest, entries)
}

// Path returns the sqlite database path, or the jsonl path when degraded.
func (s *SQLiteStore) Path() string {
	if s.fallback != nil {
		return s.fallback.Path()
	}
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
