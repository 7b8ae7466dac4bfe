package parser

import (
	"context"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// substituteCommand is :[range]s[ubstitute]/{pattern}/{string}/[flags].
type substituteCommand struct {
	rng         lineRange
	pattern     string
	replacement string
	global      bool
	ignoreCase  bool
}

func buildSubstitute(rng lineRange, _ bool, arg string) (ports.Command, error) {
	if arg == "" {
		return nil, domain.NewVimError(domain.E35)
	}
	delim := arg[0]
	if isLetter(delim) || isDigit(delim) || delim == '\\' || delim == '"' || delim == '|' || delim == ' ' {
		return nil, domain.NewVimError(domain.E492)
	}

	parts := splitUnescaped(arg[1:], delim)
	cmd := &substituteCommand{rng: rng}
	if len(parts) > 0 {
		cmd.pattern = parts[0]
	}
	if len(parts) > 1 {
		cmd.replacement = parts[1]
	}
	if len(parts) > 2 {
		for _, flag := range parts[2] {
			switch flag {
			case 'g':
				cmd.global = true
			case 'i':
				cmd.ignoreCase = true
			case 'I':
				cmd.ignoreCase = false
			default:
				return nil, domain.NewVimErrorf(domain.E488, "%s", parts[2])
			}
		}
	}
	if len(parts) > 3 {
		return nil, domain.NewVimErrorf(domain.E488, "%s", strings.Join(parts[3:], string(delim)))
	}
	if cmd.pattern == "" {
		return nil, domain.NewVimError(domain.E35)
	}
	return cmd, nil
}

func (c *substituteCommand) Name() string        { return "substitute" }
func (c *substituteCommand) NeovimCapable() bool { return true }

func (c *substituteCommand) Execute(_ context.Context, editor ports.Editor, _ *ports.Session) error {
	start, end, err := c.rng.resolve(editor)
	if err != nil {
		return err
	}

	opts := regexp2.RegexOptions(regexp2.None)
	if c.ignoreCase {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(translatePattern(c.pattern), opts)
	if err != nil {
		return domain.NewVimErrorf(domain.E486, "%s", c.pattern)
	}
	repl := translateReplacement(c.replacement)
	count := 1
	if c.global {
		count = -1
	}

	lines := editor.Lines()
	out := make([]string, 0, len(lines))
	out = append(out, lines[:start]...)
	last := -1
	for i := start; i <= end; i++ {
		matched, err := re.MatchString(lines[i])
		if err != nil {
			return err
		}
		if !matched {
			out = append(out, lines[i])
			continue
		}
		replaced, err := re.Replace(lines[i], repl, -1, count)
		if err != nil {
			return err
		}
		// A line break in the replacement splits the line.
		out = append(out, strings.Split(replaced, "\n")...)
		last = len(out) - 1
	}
	if last < 0 {
		return domain.NewVimErrorf(domain.E486, "%s", c.pattern)
	}
	out = append(out, lines[end+1:]...)
	editor.SetLines(out)
	editor.SetCursor(last)
	return nil
}

// splitUnescaped splits s on delim, turning "\<delim>" into a literal delim.
// Other escapes are kept for the pattern translator.
func splitUnescaped(s string, delim byte) []string {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == delim:
			cur.WriteByte(delim)
			i++
		case s[i] == '\\' && i+1 < len(s):
			cur.WriteByte(s[i])
			cur.WriteByte(s[i+1])
			i++
		case s[i] == delim:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	return append(parts, cur.String())
}

// translatePattern converts a Vim "magic" pattern to .NET regex syntax. In
// magic mode ( ) | + ? { } are literal unless escaped.
func translatePattern(p string) string {
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '\\' && i+1 < len(p) {
			next := p[i+1]
			i++
			switch next {
			case '(', ')', '|', '+', '?', '{', '}':
				b.WriteByte(next)
			case '<', '>':
				b.WriteString(`\b`)
			case '=':
				b.WriteByte('?')
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			continue
		}
		switch c {
		case '(', ')', '|', '+', '?', '{', '}':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// translateReplacement converts Vim's \1 and & to $1 and $0. \r becomes a
// newline, which Execute turns into a line break; \n is a NUL as in Vim.
func translateReplacement(r string) string {
	var b strings.Builder
	for i := 0; i < len(r); i++ {
		c := r[i]
		switch {
		case c == '\\' && i+1 < len(r):
			next := r[i+1]
			i++
			switch {
			case next >= '0' && next <= '9':
				b.WriteString("${" + string(next) + "}")
			case next == 't':
				b.WriteByte('\t')
			case next == 'r':
				b.WriteByte('\n')
			case next == 'n':
				b.WriteByte(0)
			case next == '$':
				b.WriteString("$$")
			default:
				b.WriteByte(next)
			}
		case c == '&':
			b.WriteString("$0")
		case c == '$':
			b.WriteString("$$")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
