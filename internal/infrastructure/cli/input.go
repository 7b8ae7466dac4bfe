package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// LineReader reads one line of user input. It is shared by the input box and
// the picker so both consume the same terminal.
type LineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	// Closed reports whether input reached EOF.
	Closed() bool
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// LinerInput prompts on a terminal with line editing and arrow-key recall.
type LinerInput struct {
	state *liner.State

	mu     sync.Mutex
	closed bool
}

// NewLinerInput takes over the terminal until Close is called.
func NewLinerInput() *LinerInput {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &LinerInput{state: state}
}

// LoadHistory seeds arrow-key recall. items are most recent first.
func (l *LinerInput) LoadHistory(items []string) {
	for i := len(items) - 1; i >= 0; i-- {
		l.state.AppendHistory(items[i])
	}
}

// ShowInputBox implements ports.InputBox. The prompt label is not drawn;
// a ':' prompt stands in when the value carries no marker.
func (l *LinerInput) ShowInputBox(ctx context.Context, opts ports.InputBoxOptions) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	prompt := ""
	if !strings.HasPrefix(opts.Value, string(domain.CommandMarker)) {
		prompt = string(domain.CommandMarker)
	}
	cursor := opts.Cursor
	if cursor < 0 || cursor > len(opts.Value) {
		cursor = len(opts.Value)
	}

	value, err := l.state.PromptWithSuggestion(prompt, opts.Value, utf8.RuneCountInString(opts.Value[:cursor]))
	if ok, err := l.interpret(err); !ok {
		return "", false, err
	}
	if strings.TrimSpace(strings.TrimPrefix(value, string(domain.CommandMarker))) != "" {
		l.state.AppendHistory(value)
	}
	return value, true, nil
}

// ReadLine implements LineReader.
func (l *LinerInput) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := l.state.Prompt(prompt)
	if ok, err := l.interpret(err); !ok {
		if err == nil {
			err = io.EOF
		}
		return "", err
	}
	return line, nil
}

// interpret maps Ctrl-C and EOF to a cancelled prompt.
func (l *LinerInput) interpret(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, liner.ErrPromptAborted):
		return false, nil
	case errors.Is(err, io.EOF):
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		return false, nil
	default:
		return false, err
	}
}

// Closed implements LineReader.
func (l *LinerInput) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close restores the terminal.
func (l *LinerInput) Close() error {
	return l.state.Close()
}

// ScriptInput reads commands line by line from a non-interactive stream.
type ScriptInput struct {
	in  *bufio.Reader
	out io.Writer

	mu     sync.Mutex
	closed bool
}

// NewScriptInput constructs an input reading from in and echoing prompts to
// out. Nil arguments default to stdio.
func NewScriptInput(in io.Reader, out io.Writer) *ScriptInput {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = io.Discard
	}
	return &ScriptInput{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ShowInputBox implements ports.InputBox. The line read is the whole answer;
// the pre-filled value is ignored.
func (s *ScriptInput) ShowInputBox(ctx context.Context, _ ports.InputBoxOptions) (string, bool, error) {
	line, err := s.ReadLine(ctx, "")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		return "", false, err
	}
	return line, true, nil
}

// ReadLine implements LineReader.
func (s *ScriptInput) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if prompt != "" {
		fmt.Fprint(s.out, prompt)
	}
	line, err := s.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		if line == "" {
			return "", io.EOF
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Closed implements LineReader.
func (s *ScriptInput) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var (
	_ ports.InputBox = (*LinerInput)(nil)
	_ ports.InputBox = (*ScriptInput)(nil)
	_ LineReader     = (*LinerInput)(nil)
	_ LineReader     = (*ScriptInput)(nil)
)
