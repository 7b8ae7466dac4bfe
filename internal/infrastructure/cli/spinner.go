package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/doeshing/exline/internal/ports"
)

// Spinner displays an animated spinner while the fallback engine runs.
type Spinner struct {
	frames   []string
	interval time.Duration
	writer   io.Writer

	mu      sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewSpinner creates a new spinner
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 80 * time.Millisecond,
		writer:   w,
	}
}

// Start begins the animation next to label. It can be restarted after Stop.
func (s *Spinner) Start(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	s.wg.Add(1)
	go s.spin(s.stop, label)
}

func (s *Spinner) spin(stop <-chan struct{}, label string) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	idx := 0
	for {
		fmt.Fprintf(s.writer, "\r%s %s", s.frames[idx%len(s.frames)], label)
		idx++
		select {
		case <-stop:
			// Clear the spinner line
			fmt.Fprintf(s.writer, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

// Stop stops the spinner animation
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
}

// SpinningEngine shows a spinner for the duration of each fallback run.
type SpinningEngine struct {
	Engine  ports.FallbackEngine
	Spinner *Spinner
}

// Run implements ports.FallbackEngine.
func (e *SpinningEngine) Run(ctx context.Context, session *ports.Session, command string) error {
	e.Spinner.Start("nvim: " + command)
	defer e.Spinner.Stop()
	return e.Engine.Run(ctx, session, command)
}

var _ ports.FallbackEngine = (*SpinningEngine)(nil)
