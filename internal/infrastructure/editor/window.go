package editor

import (
	"sync"

	"github.com/doeshing/exline/internal/ports"
)

// Window tracks the focused buffer.
type Window struct {
	mu     sync.Mutex
	active *Buffer
}

// NewWindow focuses buf (which may be nil).
func NewWindow(buf *Buffer) *Window {
	return &Window{active: buf}
}

// Focus replaces the focused buffer.
func (w *Window) Focus(buf *Buffer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = buf
}

// ActiveEditor implements ports.Window. Closed buffers are not active.
func (w *Window) ActiveEditor() ports.Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active == nil || w.active.Closed() {
		return nil
	}
	return w.active
}

var _ ports.Window = (*Window)(nil)
