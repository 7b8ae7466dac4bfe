package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/exline/internal/domain"
	"github.com/doeshing/exline/internal/infrastructure/editor"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		input  string
		want   []string
		cursor int
	}{
		{
			name:  "first occurrence on current line",
			lines: []string{"foo foo", "foo"},
			input: "s/foo/bar/",
			want:  []string{"bar foo", "foo"},
		},
		{
			name:  "global flag",
			lines: []string{"foo foo"},
			input: "s/foo/bar/g",
			want:  []string{"bar bar"},
		},
		{
			name:   "whole buffer",
			lines:  []string{"a1", "b", "a2"},
			input:  "%s/a/z/",
			want:   []string{"z1", "b", "z2"},
			cursor: 2,
		},
		{
			name:  "ignore case",
			lines: []string{"Foo"},
			input: "s/foo/x/i",
			want:  []string{"x"},
		},
		{
			name:  "vim groups and backreferences",
			lines: []string{"key=value"},
			input: `s/\(\w\+\)=\(\w\+\)/\2=\1/`,
			want:  []string{"value=key"},
		},
		{
			name:  "ampersand is the whole match",
			lines: []string{"cat"},
			input: "s/cat/[&]/",
			want:  []string{"[cat]"},
		},
		{
			name:  "literal parens and dollar",
			lines: []string{"f(x)"},
			input: "s/(x)/$1/",
			want:  []string{"f$1"},
		},
		{
			name:  "escaped delimiter",
			lines: []string{"a/b"},
			input: `s/\//-/`,
			want:  []string{"a-b"},
		},
		{
			name:   "carriage return splits the line",
			lines:  []string{"hello", "x"},
			input:  `s/l/\r/`,
			want:   []string{"he", "lo", "x"},
			cursor: 1,
		},
		{
			name:   "global split across a range",
			lines:  []string{"a,b", "keep", "c,d"},
			input:  `%s/,/\r/g`,
			want:   []string{"a", "b", "keep", "c", "d"},
			cursor: 4,
		},
		{
			name:  "empty replacement deletes",
			lines: []string{"abc"},
			input: "s/b",
			want:  []string{"ac"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := editor.NewBuffer(tt.lines)
			require.NoError(t, run(t, buf, tt.input))
			assert.Equal(t, tt.want, buf.Lines())
			assert.Equal(t, tt.cursor, buf.Cursor())
			assert.True(t, buf.Modified())
		})
	}
}

func TestSubstitutePatternNotFound(t *testing.T) {
	buf := editor.NewBuffer([]string{"abc"})
	err := run(t, buf, "s/zzz/y/")
	vimErr, ok := domain.AsVimError(err)
	require.True(t, ok)
	assert.Equal(t, domain.E486, vimErr.Code)
	assert.Equal(t, "E486: Pattern not found: zzz", vimErr.Error())
	assert.False(t, buf.Modified())
}

func TestTranslatePattern(t *testing.T) {
	assert.Equal(t, `(a|b)+`, translatePattern(`\(a\|b\)\+`))
	assert.Equal(t, `\(a\)`, translatePattern(`(a)`))
	assert.Equal(t, `\bword\b`, translatePattern(`\<word\>`))
	assert.Equal(t, `\d\.`, translatePattern(`\d\.`))
}
