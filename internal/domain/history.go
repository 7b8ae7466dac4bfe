package domain

import "time"

// HistoryEntry is a command string retained for later recall.
type HistoryEntry struct {
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}
