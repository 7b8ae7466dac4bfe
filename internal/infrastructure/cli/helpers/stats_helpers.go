package helpers

import (
	"sort"
	"strings"

	"github.com/doeshing/exline/internal/domain"
)

// CommandStatistic counts history entries per ex command name.
type CommandStatistic struct {
	Command string
	Count   int
}

// CalculateTopCommands groups entries by command name, most used first.
// If limit is 0 or negative, returns all commands
func CalculateTopCommands(entries []domain.HistoryEntry, limit int) []CommandStatistic {
	frequency := make(map[string]int)
	for _, entry := range entries {
		frequency[CommandName(entry.Command)]++
	}

	stats := make([]CommandStatistic, 0, len(frequency))
	for cmd, count := range frequency {
		stats = append(stats, CommandStatistic{Command: cmd, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Command < stats[j].Command
		}
		return stats[i].Count > stats[j].Count
	})

	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

// CommandName extracts the command word from an entry, skipping the marker
// and any range: "%s/a/b/g" is "s", "10" is "goto".
func CommandName(command string) string {
	s := strings.TrimLeft(command, " :")
	start := strings.IndexFunc(s, isNameRune)
	if start < 0 {
		if strings.TrimSpace(s) == "" {
			return ""
		}
		return "goto"
	}
	s = s[start:]
	end := strings.IndexFunc(s, func(r rune) bool { return !isNameRune(r) })
	if end < 0 {
		return s
	}
	return s[:end]
}

func isNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
