package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	gutterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	caretStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Render formats err against the source it was produced from as a numbered
// snippet with a caret under the offending range. Errors that are not part of
// this package's taxonomy are returned as their plain Error text.
func Render(err error, name, source string) string {
	var span Span
	var header string

	var lexErr *LexError
	var parseErr *ParseError
	var runErr *RuntimeError
	switch {
	case errors.As(err, &lexErr):
		span = lexErr.Span
		header = lexErr.Error()
	case errors.As(err, &parseErr):
		span = parseErr.Span
		header = parseErr.Error()
	case errors.As(err, &runErr):
		span = runErr.Span
		header = runErr.Error()
	default:
		return err.Error()
	}

	line, col := locate(source, span.Start)
	var b strings.Builder
	if name != "" {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s:%d:%d: %s", name, line, col, header)))
	} else {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%d:%d: %s", line, col, header)))
	}
	b.WriteByte('\n')

	text, ok := lineAt(source, line)
	if !ok {
		return b.String()
	}
	gutter := fmt.Sprintf("%4d | ", line)
	b.WriteString(gutterStyle.Render(gutter))
	b.WriteString(text)
	b.WriteByte('\n')

	width := span.End - span.Start
	if width < 1 {
		width = 1
	}
	if width > len(text)-(col-1) {
		width = len(text) - (col - 1)
		if width < 1 {
			width = 1
		}
	}
	b.WriteString(gutterStyle.Render("     | "))
	b.WriteString(strings.Repeat(" ", col-1))
	b.WriteString(caretStyle.Render(strings.Repeat("^", width)))
	b.WriteByte('\n')
	return b.String()
}

// locate converts a byte offset to 1-based line and column numbers.
func locate(source string, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	line, col = 1, 1
	for _, ch := range source[:offset] {
		if ch == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func lineAt(source string, line int) (string, bool) {
	current := 1
	start := 0
	for i := 0; i <= len(source); i++ {
		if i == len(source) || source[i] == '\n' {
			if current == line {
				return source[start:i], true
			}
			current++
			start = i + 1
		}
	}
	return "", false
}
