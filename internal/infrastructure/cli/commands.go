package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/exline/internal/app"
	"github.com/doeshing/exline/internal/application/cmdline"
	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/infrastructure/config"
	"github.com/doeshing/exline/internal/infrastructure/editor"
	"github.com/doeshing/exline/internal/ports"
)

const errCommandRequired = "at least one -c command is required"

// terminal bundles the surfaces of one invocation.
type terminal struct {
	input    ports.InputBox
	reader   LineReader
	picker   *Picker
	status   *StatusBar
	messages *ErrorMessages
	fallback ports.FallbackEngine
	close    func()
}

// openTerminal picks line editing on a tty and plain line reading otherwise.
func openTerminal(cmd *cobra.Command, container *app.Container, interactive bool) *terminal {
	out := cmd.OutOrStdout()
	t := &terminal{
		status:   NewStatusBar(out),
		messages: NewErrorMessages(cmd.ErrOrStderr()),
		fallback: container.Fallback,
		close:    func() {},
	}

	if interactive && IsTerminal(os.Stdin) && IsTerminal(os.Stdout) {
		line := NewLinerInput()
		if items, err := container.HistoryStore.Get(); err == nil {
			line.LoadHistory(items)
		}
		t.input, t.reader = line, line
		t.close = func() { line.Close() }
	} else {
		script := NewScriptInput(cmd.InOrStdin(), out)
		t.input, t.reader = script, script
	}
	t.picker = NewPicker(t.reader, out)

	if IsTerminal(os.Stderr) {
		t.fallback = &SpinningEngine{Engine: container.Fallback, Spinner: NewSpinner(os.Stderr)}
	}
	return t
}

func (t *terminal) controller(container *app.Container, window ports.Window, provider ports.ConfigProvider) *cmdline.Controller {
	return &cmdline.Controller{
		Window:         window,
		Input:          t.input,
		Picker:         t.picker,
		History:        container.HistoryStore,
		Parser:         container.Parser,
		ConfigProvider: provider,
		Status:         t.status,
		Messages:       t.messages,
		Logger:         container.Logger,
	}
}

// watchConfig serves live configuration for long-running sessions and falls
// back to one-shot loading when the file cannot be watched.
func watchConfig(ctx context.Context, container *app.Container) (ports.ConfigProvider, func()) {
	watcher, err := config.NewWatchingLoader(ctx, container.ConfigLoader, container.Logger)
	if err != nil {
		container.Logger.Warn("config watch unavailable", map[string]interface{}{"error": err.Error()})
		return container.ConfigProvider, func() {}
	}
	return watcher, func() { watcher.Close() }
}

func newEditCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <file>",
		Short: "Open a file and run ex commands interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, container, args[0], false)
		},
	}
}

func newPickCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "pick <file>",
		Short: "Choose a command from history, then continue editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, container, args[0], true)
		},
	}
}

func runInteractive(cmd *cobra.Command, container *app.Container, path string, pick bool) error {
	ctx := cmd.Context()
	buf, err := editor.Load(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	window := editor.NewWindow(buf)

	provider, stopWatching := watchConfig(ctx, container)
	defer stopWatching()

	term := openTerminal(cmd, container, true)
	defer term.close()

	state := &ports.Session{
		Mode:     domain.ModeNormal,
		Editor:   buf,
		Fallback: term.fallback,
	}
	ctrl := term.controller(container, window, provider)

	initial := ""
	if pick {
		if choice, ok := ctrl.ShowHistory(ctx, "", state); ok {
			initial = choice
		}
	}

	session := &Session{
		Controller: ctrl,
		State:      state,
		Input:      term.reader,
		Status:     term.status,
		Messages:   term.messages,
	}
	return session.Loop(ctx, initial)
}

func newRunCommand(container *app.Container) *cobra.Command {
	var (
		commands []string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run ex commands against a file without prompting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(commands) == 0 {
				return errors.New(errCommandRequired)
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return runBatch(ctx, cmd, container, args[0], commands)
		},
	}

	cmd.Flags().StringArrayVarP(&commands, "command", "c", nil, "Ex command to run (repeatable, runs in order)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort after this long (0 disables)")
	return cmd
}

func runBatch(ctx context.Context, cmd *cobra.Command, container *app.Container, path string, commands []string) error {
	buf, err := editor.Load(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	window := editor.NewWindow(buf)

	term := openTerminal(cmd, container, false)
	defer term.close()

	state := &ports.Session{
		Mode:     domain.ModeNormal,
		Editor:   buf,
		Fallback: term.fallback,
	}
	ctrl := term.controller(container, window, container.ConfigProvider)

	failed := 0
	for _, command := range commands {
		if err := ctx.Err(); err != nil {
			return err
		}
		if buf.Closed() {
			break
		}
		outcome, err := ctrl.Run(ctx, command, state)
		if err != nil {
			return err
		}
		if outcome == domain.OutcomeStatusReported || outcome == domain.OutcomeErrorReported {
			failed++
		}
	}

	printSummary(cmd.OutOrStdout(), buf)
	if failed > 0 {
		return fmt.Errorf("%d of %d commands failed", failed, len(commands))
	}
	return nil
}

func printSummary(out io.Writer, buf *editor.Buffer) {
	if !buf.Modified() {
		return
	}
	fmt.Fprintf(out, "%s has unsaved changes (add -c w to write)\n", buf.FileName())
}
