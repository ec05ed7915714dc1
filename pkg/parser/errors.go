package parser

import (
	"fmt"
	"strings"
)

// ParseError and LexError mirror the teacher's pkg/parser/errors.go:
// both render the offending source line with a caret under the column,
// rather than a bare "line N, col M" message.

type ParseError struct {
	Message string
	Line    int
	Column  int
	Source  string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	if line, ok := sourceLine(e.Source, e.Line); ok {
		fmt.Fprintf(&b, "\n  %4d | %s\n       | %s^", e.Line, line, strings.Repeat(" ", max(e.Column-1, 0)))
	}
	return b.String()
}

type LexError struct {
	Message string
	Line    int
	Column  int
	Source  string
	Char    byte
}

func (e *LexError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lex error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	if line, ok := sourceLine(e.Source, e.Line); ok {
		fmt.Fprintf(&b, "\n  %4d | %s\n       | %s^", e.Line, line, strings.Repeat(" ", max(e.Column-1, 0)))
	}
	return b.String()
}

func sourceLine(source string, n int) (string, bool) {
	lines := strings.Split(source, "\n")
	if n <= 0 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
