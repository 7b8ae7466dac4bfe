package history

import (
	"encoding/binary"
	"encoding/json"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// BoltFileName is the bbolt database file inside the data directory.
const BoltFileName = "cmdline_history.bolt"

const bucketCmdline = "cmdline"

// BoltStore keeps history in a bbolt bucket keyed by big-endian sequence
// numbers, so cursor order is insertion order.
type BoltStore struct {
	db   *bolt.DB
	path string
	size int
	mu   sync.Mutex
}

// NewBoltStore opens dir/cmdline_history.bolt.
func NewBoltStore(dir string, size int) (*BoltStore, error) {
	path := filepath.Join(dir, BoltFileName)
	db, err := bolt.Open(path, domain.SecureFilePermissions, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCmdline))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db, path: path, size: normalizeSize(size)}, nil
}

// Add implements ports.HistoryStore.
func (s *BoltStore) Add(command string) error {
	if command == "" {
		return nil
	}
	value, err := json.Marshal(domain.HistoryEntry{Command: command, Timestamp: time.Now()})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCmdline))

		var keys [][]byte
		var stale [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry domain.HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil || entry.Command == command {
				stale = append(stale, copyBytes(k))
				continue
			}
			keys = append(keys, copyBytes(k))
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(marshalSeq(seq), value); err != nil {
			return err
		}

		if over := len(keys) + 1 - s.size; over > 0 {
			stale = append(stale, keys[:over]...)
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get implements ports.HistoryStore.
func (s *BoltStore) Get() ([]string, error) {
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

// Entries returns entries newest first.
func (s *BoltStore) Entries(limit int, search string) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		all, err := readAll(tx)
		if err != nil {
			return err
		}
		entries = filter(all, limit, search)
		return nil
	})
	return entries, err
}

// Clear empties the bucket.
func (s *BoltStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketCmdline)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketCmdline))
		return err
	})
}

// ExportJSON writes all entries to dest as jsonl, oldest first.
func (s *BoltStore) ExportJSON(dest string) error {
	var entries []domain.HistoryEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		entries, err = readAll(tx)
		return err
	})
	if err != nil {
		return err
	}
	return writeJSONL(dest, entries)
}

// Path returns the database path.
func (s *BoltStore) Path() string {
	return s.path
}

// Close releases the database lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func readAll(tx *bolt.Tx) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	err := tx.Bucket([]byte(bucketCmdline)).ForEach(func(_, v []byte) error {
		var entry domain.HistoryEntry
		if err := json.Unmarshal(v, &entry); err == nil {
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func copyBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}

var _ ports.HistoryRepository = (*BoltStore)(nil)
