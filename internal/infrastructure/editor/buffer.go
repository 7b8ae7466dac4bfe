package editor

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// Buffer is an in-memory, line-oriented text buffer. It always holds at
// least one (possibly empty) line.
type Buffer struct {
	mu       sync.Mutex
	name     string
	lines    []string
	cursor   int
	modified bool
	closed   bool
}

// NewBuffer creates an unnamed buffer holding lines.
func NewBuffer(lines []string) *Buffer {
	b := &Buffer{}
	b.setLines(lines)
	return b
}

// Load reads path into a buffer. A missing file yields an empty buffer that
// will create the file on the first write.
func Load(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b := NewBuffer(nil)
			b.name = path
			return b, nil
		}
		return nil, err
	}
	b := NewBuffer(splitLines(string(data)))
	b.name = path
	return b, nil
}

func (b *Buffer) FileName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.name
}

func (b *Buffer) SetFileName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

// Lines returns a copy of the buffer contents.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// SetLines replaces the contents and marks the buffer modified.
func (b *Buffer) SetLines(lines []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setLines(lines)
	b.modified = true
}

func (b *Buffer) setLines(lines []string) {
	if len(lines) == 0 {
		lines = []string{""}
	}
	b.lines = append([]string(nil), lines...)
	b.cursor = clamp(b.cursor, 0, len(b.lines)-1)
}

func (b *Buffer) Cursor() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursor
}

func (b *Buffer) SetCursor(line int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = clamp(line, 0, len(b.lines)-1)
}

func (b *Buffer) Modified() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.modified
}

// Save writes the buffer to path with a trailing newline. Saving to the
// buffer's own file clears the modified flag.
func (b *Buffer) Save(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	data := strings.Join(b.lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), domain.FilePermissions); err != nil {
		return err
	}
	if path == b.name {
		b.modified = false
	}
	return nil
}

func (b *Buffer) RequestClose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *Buffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ ports.Editor = (*Buffer)(nil)
