// Package cmdline implements the command-line controller: it prompts for an
// ex command, records it in history, parses it and dispatches it to the
// built-in engine or the fallback engine, and reports failures without
// letting them escape to the caller.
package cmdline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// Controller orchestrates a single prompt/run cycle at a time.
type Controller struct {
	Window         ports.Window
	Input          ports.InputBox
	Picker         ports.QuickPick
	History        ports.HistoryStore
	Parser         ports.Parser
	ConfigProvider ports.ConfigProvider
	Status         ports.StatusBar
	Messages       ports.MessageSurface
	Logger         ports.Logger
}

func (c *Controller) validate() error {
	if c.Window == nil || c.Input == nil || c.Picker == nil || c.History == nil ||
		c.Parser == nil || c.ConfigProvider == nil || c.Status == nil ||
		c.Messages == nil || c.Logger == nil {
		return errors.New("cmdline.Controller dependencies not satisfied")
	}
	return nil
}

// PromptAndRun asks for a command pre-filled with initialText, records it in
// history and runs it. Without an active editor it does nothing.
//
// The answer is recorded even when the prompt is cancelled; the store drops
// empty entries. The only error returned is a failure of the fallback engine
// after a redirect, which Run leaves to the caller.
func (c *Controller) PromptAndRun(ctx context.Context, initialText string, session *ports.Session) (domain.Outcome, error) {
	if err := c.validate(); err != nil {
		return domain.OutcomeNoop, err
	}
	if c.Window.ActiveEditor() == nil {
		c.Logger.Debug("commandLine: no active document", nil)
		return domain.OutcomeNoop, nil
	}

	cfg := c.config(ctx)
	cmd, ok, err := c.Input.ShowInputBox(ctx, inputBoxOptions(initialText, cfg.CommandLine.InitialColon))
	if err != nil {
		c.Logger.Warn("commandLine: prompt failed", map[string]interface{}{"error": err.Error()})
	}
	if !ok || err != nil {
		cmd = ""
	}
	if cfg.CommandLine.InitialColon && strings.HasPrefix(cmd, string(domain.CommandMarker)) {
		cmd = cmd[1:]
	}

	if err := c.History.Add(cmd); err != nil {
		c.Logger.Warn("commandLine: failed to record history", map[string]interface{}{
			"command": cmd,
			"error":   err.Error(),
		})
	}

	return c.Run(ctx, cmd, session)
}

// Run parses and executes command. Parse and execution failures are
// reported on the status bar or as an error message and never returned.
// When the built-in engine rejects a command with E492 and the fallback
// engine is enabled, the raw command is redirected to it once; a failure of
// that redirect is returned.
//
// A command that already ran on the fallback engine is never sent there a
// second time: an E492 from that path is shown on the status bar like any
// other classified error instead of re-running Neovim.
func (c *Controller) Run(ctx context.Context, command string, session *ports.Session) (domain.Outcome, error) {
	if command == "" {
		return domain.OutcomeNoop, nil
	}
	if err := c.validate(); err != nil {
		return domain.OutcomeNoop, err
	}

	cfg := c.config(ctx)
	fields := map[string]interface{}{
		"dispatch_id": uuid.NewString(),
		"command":     command,
	}

	outcome, err := c.dispatch(ctx, command, session, cfg, fields)
	if err == nil {
		c.Logger.Debug("commandLine: dispatched", merge(fields, map[string]interface{}{
			"outcome": outcome.String(),
		}))
		return outcome, nil
	}

	c.Logger.Error(fmt.Sprintf("commandLine: error executing cmd=%s", command), err, merge(fields, map[string]interface{}{
		"phase": "error",
	}))

	vimErr, classified := domain.AsVimError(err)
	switch {
	case classified && vimErr.Kind() == domain.KindUnsupported && cfg.Fallback.Enabled && outcome != domain.OutcomeFallback:
		c.Logger.Info("commandLine: redirecting to fallback engine", fields)
		if ferr := c.runFallback(ctx, session, command); ferr != nil {
			return domain.OutcomeRedirected, fmt.Errorf("fallback engine: %w", ferr)
		}
		return domain.OutcomeRedirected, nil
	case classified:
		mode, recording := sessionState(session)
		c.Status.SetText(fmt.Sprintf("%s. %s", vimErr.Error(), command), mode, recording, true)
		return domain.OutcomeStatusReported, nil
	default:
		c.Messages.ShowError(err.Error())
		return domain.OutcomeErrorReported, nil
	}
}

// dispatch covers the parse and execute phases. On failure the returned
// outcome tells which engine was chosen, if any.
func (c *Controller) dispatch(ctx context.Context, command string, session *ports.Session, cfg domain.Config, fields map[string]interface{}) (outcome domain.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %q panicked: %v", command, r)
		}
	}()

	c.Logger.Debug("commandLine: parsing", merge(fields, map[string]interface{}{"phase": "parsing"}))
	cmd, err := c.Parser.Parse(command)
	if err != nil {
		return domain.OutcomeNoop, err
	}

	if cfg.Fallback.Enabled && cmd.NeovimCapable() {
		c.Logger.Debug("commandLine: executing", merge(fields, map[string]interface{}{
			"phase":  "fallback_executing",
			"parsed": cmd.Name(),
		}))
		return domain.OutcomeFallback, c.runFallback(ctx, session, command)
	}

	c.Logger.Debug("commandLine: executing", merge(fields, map[string]interface{}{
		"phase":  "primary_executing",
		"parsed": cmd.Name(),
	}))
	var editor ports.Editor
	if session != nil && session.Editor != nil {
		editor = session.Editor
	} else {
		editor = c.Window.ActiveEditor()
	}
	if editor == nil {
		return domain.OutcomePrimary, errors.New("no active editor")
	}
	return domain.OutcomePrimary, cmd.Execute(ctx, editor, session)
}

func (c *Controller) runFallback(ctx context.Context, session *ports.Session, command string) error {
	if session == nil || session.Fallback == nil {
		return errors.New("fallback engine not available")
	}
	return session.Fallback.Run(ctx, session, command)
}

// ShowHistory records initialText and lets the user pick an earlier command.
// It never runs the selection; ok is false when nothing was picked.
func (c *Controller) ShowHistory(ctx context.Context, initialText string, session *ports.Session) (string, bool) {
	if err := c.validate(); err != nil {
		return "", false
	}
	if c.Window.ActiveEditor() == nil {
		c.Logger.Debug("commandLine: no active document", nil)
		return "", false
	}

	if err := c.History.Add(initialText); err != nil {
		c.Logger.Warn("commandLine: failed to record history", map[string]interface{}{
			"command": initialText,
			"error":   err.Error(),
		})
	}

	items, err := c.History.Get()
	if err != nil {
		c.Logger.Warn("commandLine: failed to read history", map[string]interface{}{"error": err.Error()})
		items = nil
	}

	choice, ok, err := c.Picker.ShowQuickPick(ctx, items, ports.QuickPickOptions{
		Placeholder: domain.HistoryPlaceholder,
	})
	if err != nil {
		c.Logger.Warn("commandLine: history picker failed", map[string]interface{}{"error": err.Error()})
		return "", false
	}
	if !ok {
		return "", false
	}
	return choice, true
}

// config loads the configuration, falling back to defaults so a broken
// config file never blocks the command line.
func (c *Controller) config(ctx context.Context) domain.Config {
	cfg, err := c.ConfigProvider.Load(ctx)
	if err != nil {
		c.Logger.Warn("commandLine: config unavailable, using defaults", map[string]interface{}{"error": err.Error()})
		return domain.DefaultConfig()
	}
	return cfg
}

// inputBoxOptions places the cursor after the marker and initialText.
func inputBoxOptions(initialText string, initialColon bool) ports.InputBoxOptions {
	if initialColon {
		return ports.InputBoxOptions{
			Prompt: domain.InputBoxPrompt,
			Value:  string(domain.CommandMarker) + initialText,
			Cursor: len(initialText) + 1,
		}
	}
	return ports.InputBoxOptions{
		Prompt: domain.InputBoxPrompt,
		Value:  initialText,
		Cursor: len(initialText),
	}
}

func sessionState(session *ports.Session) (domain.Mode, bool) {
	if session == nil {
		return domain.ModeNormal, false
	}
	return session.Mode, session.RecordingMacro
}

func merge(base, extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
