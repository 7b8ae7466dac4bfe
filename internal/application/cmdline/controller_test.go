package cmdline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/infrastructure/editor"
	"github.com/doeshing/exline/internal/pkg/logger"
	"github.com/doeshing/exline/internal/ports"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	ctrl     *Controller
	window   *editor.Window
	buf      *editor.Buffer
	input    *stubInput
	picker   *stubPicker
	history  *stubHistory
	parser   *stubParser
	config   *stubConfig
	status   *stubStatus
	messages *stubMessages
	fallback *stubFallback
	session  *ports.Session
}

func newHarness(cfg domain.Config) *harness {
	buf := editor.NewBuffer([]string{"hello"})
	h := &harness{
		window:   editor.NewWindow(buf),
		buf:      buf,
		input:    &stubInput{ok: true},
		picker:   &stubPicker{},
		history:  &stubHistory{},
		parser:   &stubParser{commands: map[string]*stubCommand{}},
		config:   &stubConfig{cfg: cfg},
		status:   &stubStatus{},
		messages: &stubMessages{},
		fallback: &stubFallback{},
	}
	h.session = &ports.Session{
		Mode:     domain.ModeNormal,
		Editor:   buf,
		Fallback: h.fallback,
	}
	h.ctrl = &Controller{
		Window:         h.window,
		Input:          h.input,
		Picker:         h.picker,
		History:        h.history,
		Parser:         h.parser,
		ConfigProvider: h.config,
		Status:         h.status,
		Messages:       h.messages,
		Logger:         logger.NewNop(),
	}
	return h
}

func config(initialColon, fallback bool) domain.Config {
	cfg := domain.DefaultConfig()
	cfg.CommandLine.InitialColon = initialColon
	cfg.Fallback.Enabled = fallback
	return cfg
}

func TestRunEmptyIsNoop(t *testing.T) {
	h := newHarness(config(true, true))

	outcome, err := h.ctrl.Run(context.Background(), "", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoop, outcome)
	assert.Empty(t, h.parser.calls)
	assert.Empty(t, h.fallback.calls)
	assert.Empty(t, h.status.texts)
	assert.Empty(t, h.messages.errors)
}

func TestRunPrimaryWrite(t *testing.T) {
	h := newHarness(config(true, false))
	write := h.parser.add("w", false, nil)

	outcome, err := h.ctrl.Run(context.Background(), "w", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePrimary, outcome)
	assert.Equal(t, 1, write.executed)
	assert.Same(t, h.buf, write.editor)
	assert.Empty(t, h.status.texts)
	assert.Empty(t, h.messages.errors)
	assert.Empty(t, h.fallback.calls)
}

func TestRunPrefersFallbackForCapableCommands(t *testing.T) {
	h := newHarness(config(true, true))
	sub := h.parser.add("s/a/b/", true, nil)

	outcome, err := h.ctrl.Run(context.Background(), "s/a/b/", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFallback, outcome)
	assert.Zero(t, sub.executed)
	assert.Equal(t, []string{"s/a/b/"}, h.fallback.calls)
}

func TestRunUsesPrimaryForCapableCommandsWhenFallbackDisabled(t *testing.T) {
	h := newHarness(config(true, false))
	sub := h.parser.add("s/a/b/", true, nil)

	outcome, err := h.ctrl.Run(context.Background(), "s/a/b/", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePrimary, outcome)
	assert.Equal(t, 1, sub.executed)
	assert.Empty(t, h.fallback.calls)
}

func TestRunRedirectsUnsupportedParseErrorOnce(t *testing.T) {
	h := newHarness(config(true, true))
	h.parser.errs = map[string]error{"unsupportedcmd": domain.NewVimError(domain.E492)}

	outcome, err := h.ctrl.Run(context.Background(), "unsupportedcmd", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRedirected, outcome)
	assert.Equal(t, []string{"unsupportedcmd"}, h.fallback.calls)
	assert.Empty(t, h.status.texts)
	assert.Empty(t, h.messages.errors)
}

func TestRunRedirectKeepsOriginalString(t *testing.T) {
	h := newHarness(config(true, true))
	raw := "  :sort u  "
	h.parser.errs = map[string]error{raw: fmt.Errorf("parse: %w", domain.NewVimError(domain.E492))}

	_, err := h.ctrl.Run(context.Background(), raw, h.session)
	require.NoError(t, err)
	assert.Equal(t, []string{raw}, h.fallback.calls)
}

func TestRunRedirectsUnsupportedExecuteError(t *testing.T) {
	h := newHarness(config(true, true))
	h.parser.add("norm x", false, domain.NewVimError(domain.E492))

	outcome, err := h.ctrl.Run(context.Background(), "norm x", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRedirected, outcome)
	assert.Equal(t, []string{"norm x"}, h.fallback.calls)
}

func TestRunUnsupportedWithoutFallbackShowsStatus(t *testing.T) {
	h := newHarness(config(true, false))
	h.session.Mode = domain.ModeVisual
	h.session.RecordingMacro = true
	h.parser.errs = map[string]error{"unsupportedcmd": domain.NewVimError(domain.E492)}

	outcome, err := h.ctrl.Run(context.Background(), "unsupportedcmd", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStatusReported, outcome)
	assert.Empty(t, h.fallback.calls)
	require.Len(t, h.status.texts, 1)
	assert.Equal(t, statusText{
		msg:        "E492: Not an editor command. unsupportedcmd",
		mode:       domain.ModeVisual,
		recording:  true,
		persistent: true,
	}, h.status.texts[0])
}

func TestRunClassifiedErrorShowsPersistentStatus(t *testing.T) {
	h := newHarness(config(true, true))
	h.parser.add("q", false, domain.NewVimError(domain.E37))

	outcome, err := h.ctrl.Run(context.Background(), "q", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStatusReported, outcome)
	assert.Empty(t, h.fallback.calls)
	require.Len(t, h.status.texts, 1)
	assert.Equal(t, "E37: No write since last change (add ! to override). q", h.status.texts[0].msg)
	assert.True(t, h.status.texts[0].persistent)
	assert.Empty(t, h.messages.errors)
}

func TestRunUnclassifiedErrorShowsMessage(t *testing.T) {
	h := newHarness(config(true, true))
	h.parser.errs = map[string]error{"boom": errors.New("parser crashed")}

	outcome, err := h.ctrl.Run(context.Background(), "boom", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeErrorReported, outcome)
	assert.Equal(t, []string{"parser crashed"}, h.messages.errors)
	assert.Empty(t, h.status.texts)
	assert.Empty(t, h.fallback.calls)
}

func TestRunRecoversFromPanickingCommand(t *testing.T) {
	h := newHarness(config(true, false))
	cmd := h.parser.add("crash", false, nil)
	cmd.panics = true

	outcome, err := h.ctrl.Run(context.Background(), "crash", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeErrorReported, outcome)
	require.Len(t, h.messages.errors, 1)
	assert.Contains(t, h.messages.errors[0], "panicked")
}

func TestRunRedirectFailureIsReturned(t *testing.T) {
	h := newHarness(config(true, true))
	h.parser.errs = map[string]error{"unsupportedcmd": domain.NewVimError(domain.E492)}
	h.fallback.err = errors.New("nvim not found")

	outcome, err := h.ctrl.Run(context.Background(), "unsupportedcmd", h.session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nvim not found")
	assert.Equal(t, domain.OutcomeRedirected, outcome)
	assert.Len(t, h.fallback.calls, 1)
	assert.Empty(t, h.status.texts)
	assert.Empty(t, h.messages.errors)
}

func TestRunFallbackPathUnsupportedIsNotRedirectedAgain(t *testing.T) {
	h := newHarness(config(true, true))
	h.parser.add("s/a/b/", true, nil)
	h.fallback.err = domain.NewVimError(domain.E492)

	outcome, err := h.ctrl.Run(context.Background(), "s/a/b/", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStatusReported, outcome)
	assert.Len(t, h.fallback.calls, 1)
	require.Len(t, h.status.texts, 1)
}

func TestRunFallbackPathUnclassifiedFailureShowsMessage(t *testing.T) {
	h := newHarness(config(true, true))
	h.parser.add("d", true, nil)
	h.fallback.err = errors.New("exit status 1")

	outcome, err := h.ctrl.Run(context.Background(), "d", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeErrorReported, outcome)
	assert.Equal(t, []string{"exit status 1"}, h.messages.errors)
}

func TestRunConfigFailureUsesDefaults(t *testing.T) {
	h := newHarness(domain.Config{})
	h.config.err = errors.New("unreadable")
	h.parser.errs = map[string]error{"unsupportedcmd": domain.NewVimError(domain.E492)}

	outcome, err := h.ctrl.Run(context.Background(), "unsupportedcmd", h.session)
	require.NoError(t, err)
	// Defaults keep the fallback engine off.
	assert.Equal(t, domain.OutcomeStatusReported, outcome)
	assert.Empty(t, h.fallback.calls)
}

func TestPromptAndRunStripsMarker(t *testing.T) {
	h := newHarness(config(true, false))
	h.input.value = ":w"
	write := h.parser.add("w", false, nil)

	outcome, err := h.ctrl.PromptAndRun(context.Background(), "", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePrimary, outcome)
	assert.Equal(t, []string{"w"}, h.history.added)
	assert.Equal(t, []string{"w"}, h.parser.calls)
	assert.Equal(t, 1, write.executed)
}

func TestPromptAndRunStripsOnlyOneMarker(t *testing.T) {
	h := newHarness(config(true, false))
	h.input.value = "::w"
	h.parser.add(":w", false, nil)

	_, err := h.ctrl.PromptAndRun(context.Background(), "", h.session)
	require.NoError(t, err)
	assert.Equal(t, []string{":w"}, h.history.added)
	assert.Equal(t, []string{":w"}, h.parser.calls)
}

func TestPromptAndRunKeepsMarkerWhenDisplayDisabled(t *testing.T) {
	h := newHarness(config(false, false))
	h.input.value = "w"
	h.parser.add("w", false, nil)

	_, err := h.ctrl.PromptAndRun(context.Background(), "", h.session)
	require.NoError(t, err)
	assert.Equal(t, []string{"w"}, h.history.added)
	assert.Equal(t, []string{"w"}, h.parser.calls)

	h.input.value = ":w"
	h.parser.add(":w", false, nil)
	_, err = h.ctrl.PromptAndRun(context.Background(), "", h.session)
	require.NoError(t, err)
	assert.Equal(t, []string{"w", ":w"}, h.history.added)
}

func TestPromptAndRunInputBoxOptions(t *testing.T) {
	tests := []struct {
		name         string
		initialColon bool
		initial      string
		want         ports.InputBoxOptions
	}{
		{
			name:         "with marker",
			initialColon: true,
			initial:      "'<,'>",
			want:         ports.InputBoxOptions{Prompt: "Vim command line", Value: ":'<,'>", Cursor: 6},
		},
		{
			name:         "without marker",
			initialColon: false,
			initial:      "'<,'>",
			want:         ports.InputBoxOptions{Prompt: "Vim command line", Value: "'<,'>", Cursor: 5},
		},
		{
			name:         "empty with marker",
			initialColon: true,
			want:         ports.InputBoxOptions{Prompt: "Vim command line", Value: ":", Cursor: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(config(tt.initialColon, false))
			h.input.ok = false

			_, err := h.ctrl.PromptAndRun(context.Background(), tt.initial, h.session)
			require.NoError(t, err)
			require.Len(t, h.input.opts, 1)
			assert.Equal(t, tt.want, h.input.opts[0])
		})
	}
}

// Cancelling the prompt still records an (empty) history entry.
func TestPromptAndRunCancelledRecordsEmptyEntry(t *testing.T) {
	h := newHarness(config(true, true))
	h.input.value = ":w"
	h.input.ok = false

	outcome, err := h.ctrl.PromptAndRun(context.Background(), "", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoop, outcome)
	assert.Equal(t, []string{""}, h.history.added)
	assert.Empty(t, h.parser.calls)
	assert.Empty(t, h.fallback.calls)
}

func TestPromptAndRunInputErrorTreatedAsCancel(t *testing.T) {
	h := newHarness(config(true, false))
	h.input.value = "w"
	h.input.err = errors.New("tty gone")

	outcome, err := h.ctrl.PromptAndRun(context.Background(), "", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoop, outcome)
	assert.Equal(t, []string{""}, h.history.added)
	assert.Empty(t, h.parser.calls)
}

func TestPromptAndRunRecordsFailingCommand(t *testing.T) {
	h := newHarness(config(true, false))
	h.input.value = ":unsupportedcmd"
	h.parser.errs = map[string]error{"unsupportedcmd": domain.NewVimError(domain.E492)}

	outcome, err := h.ctrl.PromptAndRun(context.Background(), "", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeStatusReported, outcome)
	assert.Equal(t, []string{"unsupportedcmd"}, h.history.added)
}

func TestPromptAndRunHistoryFailureDoesNotBlockRun(t *testing.T) {
	h := newHarness(config(true, false))
	h.input.value = "w"
	h.history.addErr = errors.New("disk full")
	write := h.parser.add("w", false, nil)

	outcome, err := h.ctrl.PromptAndRun(context.Background(), "", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePrimary, outcome)
	assert.Equal(t, 1, write.executed)
}

func TestPromptAndRunWithoutEditor(t *testing.T) {
	h := newHarness(config(true, true))
	h.window.Focus(nil)
	h.input.value = "w"

	outcome, err := h.ctrl.PromptAndRun(context.Background(), "", h.session)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoop, outcome)
	assert.Empty(t, h.input.opts)
	assert.Empty(t, h.history.added)
	assert.Empty(t, h.parser.calls)
}

func TestShowHistoryReturnsSelection(t *testing.T) {
	h := newHarness(config(true, false))
	h.history.items = []string{"s/a/b/", "w"}
	h.picker.choice = "w"
	h.picker.ok = true

	choice, ok := h.ctrl.ShowHistory(context.Background(), "q", h.session)
	assert.True(t, ok)
	assert.Equal(t, "w", choice)
	assert.Equal(t, []string{"q"}, h.history.added)
	assert.Equal(t, []string{"s/a/b/", "w"}, h.picker.items)
	assert.Equal(t, "Vim command history", h.picker.opts.Placeholder)
	assert.Empty(t, h.parser.calls, "ShowHistory must not execute")
	assert.Empty(t, h.fallback.calls)
}

func TestShowHistoryNothingChosen(t *testing.T) {
	h := newHarness(config(true, false))

	choice, ok := h.ctrl.ShowHistory(context.Background(), "", h.session)
	assert.False(t, ok)
	assert.Empty(t, choice)
	assert.Equal(t, []string{""}, h.history.added)
}

func TestShowHistoryPickerError(t *testing.T) {
	h := newHarness(config(true, false))
	h.picker.err = errors.New("closed")
	h.picker.choice = "w"
	h.picker.ok = true

	_, ok := h.ctrl.ShowHistory(context.Background(), "", h.session)
	assert.False(t, ok)
}

func TestShowHistoryWithoutEditor(t *testing.T) {
	h := newHarness(config(true, false))
	h.window.Focus(nil)

	choice, ok := h.ctrl.ShowHistory(context.Background(), "q", h.session)
	assert.False(t, ok)
	assert.Empty(t, choice)
	assert.Empty(t, h.history.added)
	assert.False(t, h.picker.shown)
}

func TestControllerMissingDependencies(t *testing.T) {
	ctrl := &Controller{}
	_, err := ctrl.PromptAndRun(context.Background(), "", nil)
	assert.Error(t, err)
	_, err = ctrl.Run(context.Background(), "w", nil)
	assert.Error(t, err)
	_, ok := ctrl.ShowHistory(context.Background(), "", nil)
	assert.False(t, ok)
}

// stubs

type stubInput struct {
	value string
	ok    bool
	err   error
	opts  []ports.InputBoxOptions
}

func (s *stubInput) ShowInputBox(_ context.Context, opts ports.InputBoxOptions) (string, bool, error) {
	s.opts = append(s.opts, opts)
	return s.value, s.ok, s.err
}

type stubPicker struct {
	choice string
	ok     bool
	err    error
	shown  bool
	items  []string
	opts   ports.QuickPickOptions
}

func (s *stubPicker) ShowQuickPick(_ context.Context, items []string, opts ports.QuickPickOptions) (string, bool, error) {
	s.shown = true
	s.items = items
	s.opts = opts
	return s.choice, s.ok, s.err
}

type stubHistory struct {
	added  []string
	items  []string
	addErr error
}

func (s *stubHistory) Add(command string) error {
	s.added = append(s.added, command)
	return s.addErr
}

func (s *stubHistory) Get() ([]string, error) {
	return s.items, nil
}

type stubCommand struct {
	name     string
	capable  bool
	err      error
	panics   bool
	executed int
	editor   ports.Editor
}

func (s *stubCommand) Name() string        { return s.name }
func (s *stubCommand) NeovimCapable() bool { return s.capable }

func (s *stubCommand) Execute(_ context.Context, editor ports.Editor, _ *ports.Session) error {
	if s.panics {
		panic("boom")
	}
	s.executed++
	s.editor = editor
	return s.err
}

type stubParser struct {
	commands map[string]*stubCommand
	errs     map[string]error
	calls    []string
}

func (s *stubParser) add(input string, capable bool, execErr error) *stubCommand {
	cmd := &stubCommand{name: input, capable: capable, err: execErr}
	s.commands[input] = cmd
	return cmd
}

func (s *stubParser) Parse(command string) (ports.Command, error) {
	s.calls = append(s.calls, command)
	if err, ok := s.errs[command]; ok {
		return nil, err
	}
	if cmd, ok := s.commands[command]; ok {
		return cmd, nil
	}
	return nil, domain.NewVimError(domain.E492)
}

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s *stubConfig) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type statusText struct {
	msg        string
	mode       domain.Mode
	recording  bool
	persistent bool
}

type stubStatus struct {
	texts []statusText
}

func (s *stubStatus) SetText(msg string, mode domain.Mode, recording bool, persistent bool) {
	s.texts = append(s.texts, statusText{msg: msg, mode: mode, recording: recording, persistent: persistent})
}

type stubMessages struct {
	errors []string
}

func (s *stubMessages) ShowError(msg string) {
	s.errors = append(s.errors, msg)
}

type stubFallback struct {
	calls []string
	err   error
}

func (s *stubFallback) Run(_ context.Context, _ *ports.Session, command string) error {
	s.calls = append(s.calls, command)
	return s.err
}
