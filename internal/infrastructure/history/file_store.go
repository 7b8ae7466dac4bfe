package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// FileName is the jsonl history file inside the data directory.
const FileName = "cmdline_history.jsonl"

// FileStore keeps history entries in a jsonl file, one entry per line,
// oldest first. Every Add rewrites the file.
type FileStore struct {
	path string
	size int
	mu   sync.Mutex
}

// NewFileStore creates a store backed by dir/cmdline_history.jsonl.
func NewFileStore(dir string, size int) *FileStore {
	return &FileStore{
		path: filepath.Join(dir, FileName),
		size: normalizeSize(size),
	}
}

// Add implements ports.HistoryStore.
func (f *FileStore) Add(command string) error {
	if command == "" {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	entries = push(entries, domain.HistoryEntry{Command: command, Timestamp: time.Now()}, f.size)
	return f.write(entries)
}

// Get implements ports.HistoryStore.
func (f *FileStore) Get() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return nil, err
	}
	return recall(entries, f.size), nil
}

// Entries returns stored entries newest first.
func (f *FileStore) Entries(limit int, search string) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return nil, err
	}
	return filter(entries, limit, search), nil
}

// Clear removes the history file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ExportJSON copies the history to dest as jsonl.
func (f *FileStore) ExportJSON(dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	return writeJSONL(dest, entries)
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Close is a no-op; the file is only open during Add and Get.
func (f *FileStore) Close() error {
	return nil
}

// load reads entries best-effort: malformed lines are skipped.
func (f *FileStore) load() ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []domain.HistoryEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal(line, &entry); err == nil && entry.Command != "" {
			entries = append(entries, entry)
		}
	}
	return entries, scanner.Err()
}

func (f *FileStore) write(entries []domain.HistoryEntry) error {
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := writeJSONL(tmp, entries); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func writeJSONL(dest string, entries []domain.HistoryEntry) error {
	var buf bytes.Buffer
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return os.WriteFile(dest, buf.Bytes(), domain.SecureFilePermissions)
}

var _ ports.HistoryRepository = (*FileStore)(nil)
