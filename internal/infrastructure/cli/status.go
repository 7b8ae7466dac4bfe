package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

var (
	modeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // Cyan

	recordingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // Red

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")) // White

	errorLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// StatusBar renders a one-line status: mode, macro recording, message.
// Persistent messages stay until replaced; transient ones are dropped by
// ClearTransient.
type StatusBar struct {
	out io.Writer

	mu         sync.Mutex
	msg        string
	mode       domain.Mode
	recording  bool
	register   rune
	persistent bool
}

// NewStatusBar builds a status bar drawing to out.
func NewStatusBar(out io.Writer) *StatusBar {
	return &StatusBar{out: out}
}

// SetText implements ports.StatusBar and redraws the line.
func (s *StatusBar) SetText(msg string, mode domain.Mode, recording bool, persistent bool) {
	s.mu.Lock()
	s.msg = msg
	s.mode = mode
	s.recording = recording
	s.persistent = persistent
	line := s.render()
	s.mu.Unlock()

	fmt.Fprintln(s.out, line)
}

// SetRegister names the register shown while recording.
func (s *StatusBar) SetRegister(r rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.register = r
}

// ClearTransient drops the current message unless it is persistent.
func (s *StatusBar) ClearTransient() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.persistent {
		s.msg = ""
	}
}

// Text returns the current message.
func (s *StatusBar) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}

// Render returns the status line without drawing it.
func (s *StatusBar) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render()
}

func (s *StatusBar) render() string {
	var parts []string
	if s.mode != domain.ModeNormal {
		parts = append(parts, modeStyle.Render("-- "+s.mode.String()+" --"))
	}
	if s.recording {
		label := "recording"
		if s.register != 0 {
			label += " @" + string(s.register)
		}
		parts = append(parts, recordingStyle.Render(label))
	}
	if s.msg != "" {
		parts = append(parts, statusMessageStyle.Render(s.msg))
	}
	return strings.Join(parts, "  ")
}

// ErrorMessages shows unclassified failures.
type ErrorMessages struct {
	out io.Writer
}

// NewErrorMessages builds an error surface writing to out (usually stderr).
func NewErrorMessages(out io.Writer) *ErrorMessages {
	return &ErrorMessages{out: out}
}

// ShowError implements ports.MessageSurface.
func (e *ErrorMessages) ShowError(msg string) {
	fmt.Fprintf(e.out, "%s %s\n", errorLabelStyle.Render("Error:"), msg)
}

var (
	_ ports.StatusBar      = (*StatusBar)(nil)
	_ ports.MessageSurface = (*ErrorMessages)(nil)
)
