// Package fallback runs ex commands the built-in parser cannot handle through
// a headless Neovim process.
package fallback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// NeovimEngine round-trips the active buffer through `nvim -es`.
type NeovimEngine struct {
	binary string
	logger ports.Logger
}

// NewNeovimEngine builds an engine; binary defaults to nvim on PATH.
func NewNeovimEngine(binary string, logger ports.Logger) *NeovimEngine {
	if binary == "" {
		binary = domain.DefaultNeovimPath
	}
	return &NeovimEngine{binary: binary, logger: logger}
}

// Binary returns the configured executable.
func (e *NeovimEngine) Binary() string {
	return e.binary
}

// Available reports whether the binary can be found.
func (e *NeovimEngine) Available() error {
	_, err := exec.LookPath(e.binary)
	return err
}

// Run implements ports.FallbackEngine.
func (e *NeovimEngine) Run(ctx context.Context, session *ports.Session, command string) error {
	if session == nil || session.Editor == nil {
		return errors.New("fallback: no active editor")
	}
	editor := session.Editor

	tmp, err := os.CreateTemp("", "exline-*.txt")
	if err != nil {
		return fmt.Errorf("fallback: create temp file: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	before := editor.Lines()
	_, err = tmp.WriteString(strings.Join(before, "\n") + "\n")
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("fallback: write temp file: %w", err)
	}

	// Jump to the cursor line first so ranges like "." resolve as in the editor.
	cursor := fmt.Sprintf("%d", editor.Cursor()+1)
	c := exec.CommandContext(ctx, e.binary,
		"--headless", "-n", "-i", "NONE", "-u", "NONE", "-es",
		"-c", cursor,
		"-c", command,
		"-c", "wq!",
		path,
	)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err = c.Run()
	if e.logger != nil {
		e.logger.Debug("fallback engine finished", map[string]interface{}{
			"binary":      e.binary,
			"command":     command,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg != "" {
			return fmt.Errorf("fallback: %s: %w: %s", e.binary, err, msg)
		}
		return fmt.Errorf("fallback: %s: %w", e.binary, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fallback: read result: %w", err)
	}
	after := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if !equalLines(before, after) {
		editor.SetLines(after)
	}
	return nil
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var _ ports.FallbackEngine = (*NeovimEngine)(nil)
