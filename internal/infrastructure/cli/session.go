package cli

import (
	"context"
	"fmt"

	"github.com/doeshing/exline/internal/application/cmdline"
	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// Session drives the interactive command line against one buffer.
type Session struct {
	Controller *cmdline.Controller
	State      *ports.Session
	Input      LineReader
	Status     *StatusBar
	Messages   ports.MessageSurface
}

// Loop prompts and runs commands until the editor asks to close, input
// reaches EOF or ctx is done. initialText pre-fills the first prompt only.
func (s *Session) Loop(ctx context.Context, initialText string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.done() {
			return nil
		}

		s.Status.SetRegister(s.State.Register)
		outcome, err := s.Controller.PromptAndRun(ctx, initialText, s.State)
		initialText = ""
		if err != nil {
			s.Messages.ShowError(err.Error())
		} else {
			s.report(outcome)
		}
		s.Status.ClearTransient()
	}
}

func (s *Session) done() bool {
	if s.Input.Closed() {
		return true
	}
	return s.State.Editor == nil || s.State.Editor.Closed()
}

// report shows a transient buffer summary after a successful change.
func (s *Session) report(outcome domain.Outcome) {
	switch outcome {
	case domain.OutcomePrimary, domain.OutcomeFallback, domain.OutcomeRedirected:
	default:
		return
	}
	editor := s.State.Editor
	if editor == nil || editor.Closed() {
		return
	}
	name := editor.FileName()
	if name == "" {
		name = "[No Name]"
	}
	msg := fmt.Sprintf("%q %dL", name, len(editor.Lines()))
	if editor.Modified() {
		msg += " [+]"
	}
	s.Status.SetText(msg, s.State.Mode, s.State.RecordingMacro, false)
}
