package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/term"
)

const colGap = 2

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// visualLen is the printed width of s, ignoring ANSI colour codes.
func visualLen(s string) int {
	return len(ansiRE.ReplaceAllString(s, ""))
}

// Table buffers rows and writes them column-aligned on Flush. When the
// output is a terminal, the widest columns are truncated to fit it.
// Empty tables produce no output.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
	prefix  string
	width   int
}

// NewTable creates a table on stdout with the given column headers.
func NewTable(headers ...string) *Table {
	t := &Table{out: os.Stdout, headers: headers}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		t.width = w
	}
	return t
}

// WithWriter redirects output and disables terminal width capping.
func (t *Table) WithWriter(w io.Writer) *Table {
	t.out = w
	t.width = 0
	return t
}

// WithPrefix sets a string prepended to each line.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// Row adds a row.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush writes the headers, a dash divider and every row.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, r := range t.rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			if n := visualLen(r[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}
	if t.width > 0 {
		widths = capWidths(widths, t.headers, t.width, len(t.prefix))
	}

	divider := make([]string, len(t.headers))
	for i, h := range t.headers {
		divider[i] = strings.Repeat("-", len(h))
	}
	t.line(widths, t.headers)
	t.line(widths, divider)
	for _, r := range t.rows {
		t.line(widths, r)
	}
}

func (t *Table) line(widths []int, cells []string) {
	var b strings.Builder
	b.WriteString(t.prefix)
	for i, w := range widths {
		var c string
		if i < len(cells) {
			c = truncate(cells[i], w)
		}
		if i == len(widths)-1 {
			b.WriteString(c)
			break
		}
		b.WriteString(c)
		b.WriteString(strings.Repeat(" ", w+colGap-visualLen(c)))
	}
	fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
}

func truncate(s string, w int) string {
	if visualLen(s) <= w {
		return s
	}
	s = ansiRE.ReplaceAllString(s, "")
	if w <= 1 {
		return s[:w]
	}
	return s[:w-1] + "~"
}

// capWidths shrinks the widest column, one byte at a time, until the
// line fits in termWidth. No column shrinks below its header.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	out := append([]int(nil), widths...)
	total := func() int {
		n := prefix + colGap*(len(out)-1)
		for _, w := range out {
			n += w
		}
		return n
	}
	for total() > termWidth {
		widest := -1
		for i, w := range out {
			if w > len(headers[i]) && (widest < 0 || w > out[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		out[widest]--
	}
	return out
}
