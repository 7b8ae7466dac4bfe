// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The command-line controller in internal/application/cmdline depends only on
// these interfaces. Adapters in internal/infrastructure provide the concrete
// terminal surfaces, history backends, parser and fallback engine, so the
// controller can be driven by a terminal session or by test stubs alike.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Parser, HistoryStore)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/exline/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.exline/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Editor is the active editing target commands run against.
type Editor interface {
	FileName() string
	SetFileName(name string)
	Lines() []string
	SetLines(lines []string)
	// Cursor returns the zero-based line the cursor is on.
	Cursor() int
	SetCursor(line int)
	Modified() bool
	Save(path string) error
	// RequestClose asks the host to close the editor after the current dispatch.
	RequestClose()
	Closed() bool
}

// Window exposes the host's currently focused editor.
type Window interface {
	// ActiveEditor returns nil when no editor is focused.
	ActiveEditor() Editor
}

// Session is the editing session state a command runs in. The command line
// reads it but does not own it.
type Session struct {
	Mode           domain.Mode
	RecordingMacro bool
	Register       rune
	Editor         Editor
	Fallback       FallbackEngine
}

// Command is a parsed, executable ex command.
type Command interface {
	Name() string
	// NeovimCapable reports whether the fallback engine can run this command.
	NeovimCapable() bool
	Execute(ctx context.Context, editor Editor, session *Session) error
}

// Parser turns a raw command string into a Command. Failures should be
// *domain.VimError where a Vim error code applies.
type Parser interface {
	Parse(command string) (Command, error)
}

// FallbackEngine runs a raw command string end-to-end in an alternate interpreter.
type FallbackEngine interface {
	Run(ctx context.Context, session *Session, command string) error
}

// HistoryStore is the command-line recall list.
type HistoryStore interface {
	// Add records command. Empty input is accepted and ignored.
	Add(command string) error
	// Get returns the recall list, most recent first.
	Get() ([]string, error)
}

// HistoryRepository adds the maintenance operations the CLI needs.
type HistoryRepository interface {
	HistoryStore
	Entries(limit int, search string) ([]domain.HistoryEntry, error)
	Clear() error
	ExportJSON(dest string) error
	Path() string
	Close() error
}

// InputBoxOptions configures a single command-line prompt.
type InputBoxOptions struct {
	Prompt string
	Value  string
	// Cursor is the byte offset in Value where the cursor starts.
	Cursor int
}

// InputBox asks the user for a line of text. ok is false when the user
// cancelled.
type InputBox interface {
	ShowInputBox(ctx context.Context, opts InputBoxOptions) (value string, ok bool, err error)
}

// QuickPickOptions configures a selection list.
type QuickPickOptions struct {
	Placeholder string
}

// QuickPick lets the user choose one of items. ok is false when nothing was chosen.
type QuickPick interface {
	ShowQuickPick(ctx context.Context, items []string, opts QuickPickOptions) (choice string, ok bool, err error)
}

// StatusBar displays a message alongside the current mode.
type StatusBar interface {
	// SetText shows msg. A persistent message is not cleared automatically.
	SetText(msg string, mode domain.Mode, recording bool, persistent bool)
}

// MessageSurface shows generic error notifications.
type MessageSurface interface {
	ShowError(msg string)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
