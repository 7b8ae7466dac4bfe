package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/doeshing/exline/internal/ports"
)

const pickerPrompt = "> "

// Picker lists items with numbers and reads a choice. A number selects that
// item; any other text selects the best fuzzy match.
type Picker struct {
	reader LineReader
	out    io.Writer
}

// NewPicker builds a picker reading answers from reader and listing to out.
func NewPicker(reader LineReader, out io.Writer) *Picker {
	return &Picker{reader: reader, out: out}
}

// ShowQuickPick implements ports.QuickPick.
func (p *Picker) ShowQuickPick(ctx context.Context, items []string, opts ports.QuickPickOptions) (string, bool, error) {
	if len(items) == 0 {
		fmt.Fprintf(p.out, "%s: (empty)\n", opts.Placeholder)
		return "", false, nil
	}

	fmt.Fprintf(p.out, "%s:\n", opts.Placeholder)
	width := len(strconv.Itoa(len(items)))
	for i, item := range items {
		fmt.Fprintf(p.out, "  %*d  %s\n", width, i+1, item)
	}

	answer, err := p.reader.ReadLine(ctx, pickerPrompt)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		return "", false, err
	}
	choice, ok := selectItem(items, strings.TrimSpace(answer))
	return choice, ok, nil
}

func selectItem(items []string, answer string) (string, bool) {
	if answer == "" {
		return "", false
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(items) {
			return "", false
		}
		return items[n-1], true
	}
	matches := fuzzy.Find(answer, items)
	if len(matches) == 0 {
		return "", false
	}
	return items[matches[0].Index], true
}

var _ ports.QuickPick = (*Picker)(nil)
