package parser

import (
	"context"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// writeCommand is :w[rite][!] [file].
type writeCommand struct {
	bang bool
	file string
}

func buildWrite(_ lineRange, bang bool, arg string) (ports.Command, error) {
	return &writeCommand{bang: bang, file: arg}, nil
}

func (c *writeCommand) Name() string        { return "write" }
func (c *writeCommand) NeovimCapable() bool { return false }

func (c *writeCommand) Execute(_ context.Context, editor ports.Editor, _ *ports.Session) error {
	return write(editor, c.file)
}

func write(editor ports.Editor, file string) error {
	path := file
	if path == "" {
		path = editor.FileName()
	}
	if path == "" {
		return domain.NewVimError(domain.E32)
	}
	if editor.FileName() == "" {
		editor.SetFileName(path)
	}
	if err := editor.Save(path); err != nil {
		return domain.NewVimErrorf(domain.E212, "%s", path)
	}
	return nil
}

// quitCommand is :q[uit][!].
type quitCommand struct {
	bang bool
}

func buildQuit(_ lineRange, bang bool, arg string) (ports.Command, error) {
	if arg != "" {
		return nil, domain.NewVimErrorf(domain.E488, "%s", arg)
	}
	return &quitCommand{bang: bang}, nil
}

func (c *quitCommand) Name() string        { return "quit" }
func (c *quitCommand) NeovimCapable() bool { return false }

func (c *quitCommand) Execute(_ context.Context, editor ports.Editor, _ *ports.Session) error {
	if editor.Modified() && !c.bang {
		return domain.NewVimError(domain.E37)
	}
	editor.RequestClose()
	return nil
}

// writeQuitCommand is :wq[!] [file].
type writeQuitCommand struct {
	bang bool
	file string
}

func buildWriteQuit(_ lineRange, bang bool, arg string) (ports.Command, error) {
	return &writeQuitCommand{bang: bang, file: arg}, nil
}

func (c *writeQuitCommand) Name() string        { return "wq" }
func (c *writeQuitCommand) NeovimCapable() bool { return false }

func (c *writeQuitCommand) Execute(_ context.Context, editor ports.Editor, _ *ports.Session) error {
	if err := write(editor, c.file); err != nil {
		return err
	}
	editor.RequestClose()
	return nil
}

// xitCommand is :x[it]: like :wq but only writes when there are changes.
type xitCommand struct{}

func buildXit(_ lineRange, _ bool, arg string) (ports.Command, error) {
	if arg != "" {
		return nil, domain.NewVimErrorf(domain.E488, "%s", arg)
	}
	return xitCommand{}, nil
}

func (xitCommand) Name() string        { return "xit" }
func (xitCommand) NeovimCapable() bool { return false }

func (xitCommand) Execute(_ context.Context, editor ports.Editor, _ *ports.Session) error {
	if editor.Modified() {
		if err := write(editor, ""); err != nil {
			return err
		}
	}
	editor.RequestClose()
	return nil
}

// deleteCommand is :[range]d[elete].
type deleteCommand struct {
	rng lineRange
}

func buildDelete(rng lineRange, _ bool, arg string) (ports.Command, error) {
	if arg != "" {
		return nil, domain.NewVimErrorf(domain.E488, "%s", arg)
	}
	return &deleteCommand{rng: rng}, nil
}

func (c *deleteCommand) Name() string        { return "delete" }
func (c *deleteCommand) NeovimCapable() bool { return true }

func (c *deleteCommand) Execute(_ context.Context, editor ports.Editor, _ *ports.Session) error {
	start, end, err := c.rng.resolve(editor)
	if err != nil {
		return err
	}
	lines := editor.Lines()
	kept := append(lines[:start:start], lines[end+1:]...)
	editor.SetLines(kept)
	editor.SetCursor(start)
	return nil
}

// gotoCommand is a bare range such as ":12" or ":$".
type gotoCommand struct {
	rng lineRange
}

func (c *gotoCommand) Name() string        { return "goto" }
func (c *gotoCommand) NeovimCapable() bool { return true }

func (c *gotoCommand) Execute(_ context.Context, editor ports.Editor, _ *ports.Session) error {
	// Jumping past either end lands on the first or last line.
	line := c.rng.end.resolve(editor.Cursor(), len(editor.Lines()))
	editor.SetCursor(line)
	return nil
}

// nopCommand is what a blank command line parses to.
type nopCommand struct{}

func (nopCommand) Name() string        { return "" }
func (nopCommand) NeovimCapable() bool { return false }

func (nopCommand) Execute(context.Context, ports.Editor, *ports.Session) error {
	return nil
}
