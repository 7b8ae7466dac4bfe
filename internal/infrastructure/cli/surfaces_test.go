package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScriptInputReadsLines(t *testing.T) {
	input := NewScriptInput(strings.NewReader(":w\r\n\nq"), nil)
	ctx := context.Background()

	value, ok, err := input.ShowInputBox(ctx, ports.InputBoxOptions{Value: ":"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ":w", value)

	value, ok, err = input.ShowInputBox(ctx, ports.InputBoxOptions{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, value)
	assert.False(t, input.Closed())

	value, ok, err = input.ShowInputBox(ctx, ports.InputBoxOptions{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "q", value)
	assert.True(t, input.Closed())

	_, ok, err = input.ShowInputBox(ctx, ports.InputBoxOptions{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScriptInputHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewScriptInput(strings.NewReader("w\n"), nil).ShowInputBox(ctx, ports.InputBoxOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPicker(t *testing.T) {
	items := []string{"%s/foo/bar/g", "w", "wq"}
	tests := []struct {
		name   string
		answer string
		want   string
		ok     bool
	}{
		{name: "number", answer: "2\n", want: "w", ok: true},
		{name: "fuzzy", answer: "foo\n", want: "%s/foo/bar/g", ok: true},
		{name: "blank", answer: "\n", ok: false},
		{name: "out of range", answer: "9\n", ok: false},
		{name: "no match", answer: "zzz\n", ok: false},
		{name: "eof", answer: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			picker := NewPicker(NewScriptInput(strings.NewReader(tt.answer), &out), &out)

			got, ok, err := picker.ShowQuickPick(context.Background(), items, ports.QuickPickOptions{Placeholder: domain.HistoryPlaceholder})
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Vim command history:")
			assert.Contains(t, out.String(), "  3  wq")
		})
	}
}

func TestPickerEmpty(t *testing.T) {
	var out bytes.Buffer
	picker := NewPicker(NewScriptInput(strings.NewReader("1\n"), &out), &out)

	got, ok, err := picker.ShowQuickPick(context.Background(), nil, ports.QuickPickOptions{Placeholder: "history"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, "history: (empty)\n", out.String())
}

func TestStatusBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewStatusBar(&out)

	bar.SetText("E37: No write since last change (add ! to override). q", domain.ModeNormal, false, true)
	assert.NotContains(t, out.String(), "NORMAL")
	assert.Contains(t, out.String(), "E37: No write since last change")

	bar.ClearTransient()
	assert.Equal(t, "E37: No write since last change (add ! to override). q", bar.Text())

	out.Reset()
	bar.SetRegister('q')
	bar.SetText(`"a.txt" 3L`, domain.ModeVisual, true, false)
	line := out.String()
	assert.Contains(t, line, "-- VISUAL --")
	assert.Contains(t, line, "recording @q")
	assert.Contains(t, line, `"a.txt" 3L`)

	bar.ClearTransient()
	assert.Empty(t, bar.Text())
	assert.NotContains(t, bar.Render(), "a.txt")
	assert.Contains(t, bar.Render(), "-- VISUAL --")
}

func TestErrorMessages(t *testing.T) {
	var out bytes.Buffer
	NewErrorMessages(&out).ShowError("disk on fire")
	assert.Contains(t, out.String(), "Error:")
	assert.Contains(t, out.String(), "disk on fire")
}

type recordingEngine struct {
	calls []string
	err   error
}

func (r *recordingEngine) Run(_ context.Context, _ *ports.Session, command string) error {
	r.calls = append(r.calls, command)
	return r.err
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func TestSpinningEngine(t *testing.T) {
	var out lockedBuffer
	inner := &recordingEngine{err: errors.New("exit status 1")}
	engine := &SpinningEngine{Engine: inner, Spinner: NewSpinner(&out)}

	err := engine.Run(context.Background(), &ports.Session{}, "sort")
	assert.EqualError(t, err, "exit status 1")

	inner.err = nil
	require.NoError(t, engine.Run(context.Background(), &ports.Session{}, "sort u"))
	assert.Equal(t, []string{"sort", "sort u"}, inner.calls)

	out.mu.Lock()
	defer out.mu.Unlock()
	assert.Contains(t, out.buf.String(), "nvim: sort")
}
