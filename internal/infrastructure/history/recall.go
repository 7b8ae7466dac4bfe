package history

import (
	"strings"

	"github.com/doeshing/exline/internal/domain"
)

// Stored entries are kept oldest first; callers see them newest first.

// push appends entry, dropping earlier copies of the same command and the
// oldest entries beyond size.
func push(entries []domain.HistoryEntry, entry domain.HistoryEntry, size int) []domain.HistoryEntry {
	out := entries[:0:0]
	for _, e := range entries {
		if e.Command != entry.Command {
			out = append(out, e)
		}
	}
	out = append(out, entry)
	if len(out) > size {
		out = out[len(out)-size:]
	}
	return out
}

// recall returns the commands newest first, capped at size.
func recall(entries []domain.HistoryEntry, size int) []string {
	cmds := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0 && len(cmds) < size; i-- {
		cmds = append(cmds, entries[i].Command)
	}
	return cmds
}

// filter returns entries newest first that contain search, at most limit (0 = all).
func filter(entries []domain.HistoryEntry, limit int, search string) []domain.HistoryEntry {
	var out []domain.HistoryEntry
	for i := len(entries) - 1; i >= 0; i-- {
		if search != "" && !strings.Contains(entries[i].Command, search) {
			continue
		}
		out = append(out, entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func normalizeSize(size int) int {
	if size <= 0 {
		return domain.DefaultHistorySize
	}
	return size
}
