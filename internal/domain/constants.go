package domain

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// FilePermissions is the default permission for buffers written by :w (rw-r--r--)
	FilePermissions = 0o644
	// SecureFilePermissions is the permission for history and config files (rw-------)
	SecureFilePermissions = 0o600
)

// Command-line constants
const (
	// CommandMarker is the leading character that signals command-line mode.
	CommandMarker = ':'
	// InputBoxPrompt is shown next to the command-line input.
	InputBoxPrompt = "Vim command line"
	// HistoryPlaceholder is shown above the history picker.
	HistoryPlaceholder = "Vim command history"
)

// History constants
const (
	// DefaultHistorySize is the number of commands remembered.
	DefaultHistorySize = 50
	// DefaultHistoryListLimit is the default number of entries printed by `history list`
	DefaultHistoryListLimit = 20
	// DefaultDataDirName is the data directory, relative to the user's home.
	DefaultDataDirName = "~/.exline"
)

// Fallback constants
const (
	// DefaultNeovimPath is looked up on PATH when no explicit binary is configured.
	DefaultNeovimPath = "nvim"
)
