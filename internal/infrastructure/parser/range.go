package parser

import (
	"strconv"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/ports"
)

type addressKind int

const (
	addrNumber addressKind = iota
	addrCurrent
	addrLast
)

// address is a single line specifier with an optional offset.
type address struct {
	kind   addressKind
	line   int // one-based, for addrNumber
	offset int
}

// lineRange is an optional "start,end" or "%" prefix.
type lineRange struct {
	set        bool
	start, end address
}

// parseRange consumes a range prefix from s.
func parseRange(s string) (lineRange, string, error) {
	if len(s) > 0 && s[0] == '%' {
		return lineRange{
			set:   true,
			start: address{kind: addrNumber, line: 1},
			end:   address{kind: addrLast},
		}, s[1:], nil
	}

	start, rest, ok, err := parseAddress(s)
	if err != nil || !ok {
		return lineRange{}, s, err
	}
	rng := lineRange{set: true, start: start, end: start}
	if len(rest) > 0 && rest[0] == ',' {
		end, after, ok, err := parseAddress(rest[1:])
		if err != nil {
			return lineRange{}, s, err
		}
		if !ok {
			return lineRange{}, s, domain.NewVimError(domain.E16)
		}
		rng.end = end
		rest = after
	}
	return rng, rest, nil
}

func parseAddress(s string) (address, string, bool, error) {
	var addr address
	i := 0
	switch {
	case i < len(s) && s[i] == '.':
		addr.kind = addrCurrent
		i++
	case i < len(s) && s[i] == '$':
		addr.kind = addrLast
		i++
	case i < len(s) && isDigit(s[i]):
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		n, err := strconv.Atoi(s[i:j])
		if err != nil {
			return address{}, s, false, domain.NewVimError(domain.E16)
		}
		addr = address{kind: addrNumber, line: n}
		i = j
	case i < len(s) && (s[i] == '+' || s[i] == '-'):
		addr.kind = addrCurrent
	default:
		return address{}, s, false, nil
	}

	for i < len(s) && (s[i] == '+' || s[i] == '-') {
		sign := 1
		if s[i] == '-' {
			sign = -1
		}
		i++
		j := i
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		n := 1
		if j > i {
			var err error
			if n, err = strconv.Atoi(s[i:j]); err != nil {
				return address{}, s, false, domain.NewVimError(domain.E16)
			}
		}
		addr.offset += sign * n
		i = j
	}
	return addr, s[i:], true, nil
}

// resolve returns zero-based inclusive line bounds. An unset range means the
// cursor line.
func (r lineRange) resolve(editor ports.Editor) (int, int, error) {
	total := len(editor.Lines())
	cursor := editor.Cursor()
	if !r.set {
		return cursor, cursor, nil
	}
	start := r.start.resolve(cursor, total)
	end := r.end.resolve(cursor, total)
	if start < 0 || end < 0 || start >= total || end >= total || start > end {
		return 0, 0, domain.NewVimError(domain.E16)
	}
	return start, end, nil
}

func (a address) resolve(cursor, total int) int {
	var line int
	switch a.kind {
	case addrCurrent:
		line = cursor
	case addrLast:
		line = total - 1
	default:
		// Line 0 is treated as line 1, as in Vim.
		line = a.line - 1
		if line < 0 {
			line = 0
		}
	}
	return line + a.offset
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
