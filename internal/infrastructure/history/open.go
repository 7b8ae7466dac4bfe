package history

import (
	"fmt"
	"os"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/pkg/filesystem"
	"github.com/doeshing/exline/internal/ports"
)

// Open builds the store selected by settings.Backend under settings.Dir.
func Open(settings domain.HistorySettings) (ports.HistoryRepository, error) {
	dir := filesystem.ExpandPath(settings.Dir)
	if dir == "" {
		dir = filesystem.ExpandPath(domain.DefaultDataDirName)
	}
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	switch settings.Backend {
	case domain.HistoryBackendFile:
		return NewFileStore(dir, settings.Size), nil
	case domain.HistoryBackendBolt:
		store, err := NewBoltStore(dir, settings.Size)
		if err != nil {
			return nil, fmt.Errorf("open bolt history: %w", err)
		}
		return store, nil
	case domain.HistoryBackendSQLite, "":
		return NewSQLiteStore(dir, settings.Size), nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", settings.Backend)
	}
}
