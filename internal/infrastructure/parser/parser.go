// Package parser turns ex command strings into executable commands.
//
// Only a small command set is built in: write, quit, wq, xit, delete,
// substitute and line jumps. Anything else fails with E492 so the command
// line can hand the raw text to the fallback engine.
package parser

import (
	"strings"
	"unicode"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

// builder constructs a command from its parsed parts. arg is the text after
// the name and bang, with surrounding blanks removed.
type builder func(rng lineRange, bang bool, arg string) (ports.Command, error)

// definition is a built-in command. Any prefix of name at least min
// characters long selects it.
type definition struct {
	name  string
	min   int
	build builder
}

// Parser implements ports.Parser for the built-in command set.
type Parser struct {
	defs []definition
}

// New returns a parser with the built-in commands.
func New() *Parser {
	return &Parser{defs: []definition{
		{name: "write", min: 1, build: buildWrite},
		{name: "wq", min: 2, build: buildWriteQuit},
		{name: "quit", min: 1, build: buildQuit},
		{name: "xit", min: 1, build: buildXit},
		{name: "delete", min: 1, build: buildDelete},
		{name: "substitute", min: 1, build: buildSubstitute},
	}}
}

// Parse implements ports.Parser.
func (p *Parser) Parse(input string) (ports.Command, error) {
	s := strings.TrimLeftFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || r == domain.CommandMarker
	})

	rng, rest, err := parseRange(s)
	if err != nil {
		return nil, err
	}
	rest = strings.TrimLeft(rest, " \t")

	if rest == "" {
		if rng.set {
			return &gotoCommand{rng: rng}, nil
		}
		return nopCommand{}, nil
	}

	name, rest := splitName(rest)
	if name == "" {
		return nil, domain.NewVimError(domain.E492)
	}
	def, ok := p.lookup(name)
	if !ok {
		return nil, domain.NewVimError(domain.E492)
	}

	bang := false
	if strings.HasPrefix(rest, "!") {
		bang = true
		rest = rest[1:]
	}
	return def.build(rng, bang, strings.TrimSpace(rest))
}

func (p *Parser) lookup(name string) (definition, bool) {
	for _, def := range p.defs {
		if len(name) >= def.min && strings.HasPrefix(def.name, name) {
			return def, true
		}
	}
	return definition{}, false
}

// splitName splits off the leading run of letters. "s" directly followed by a
// pattern delimiter is the substitute command, so "s/a/b/" yields "s".
func splitName(s string) (string, string) {
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

var _ ports.Parser = (*Parser)(nil)
