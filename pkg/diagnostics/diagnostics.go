// Package diagnostics renders compile and lex errors with source context,
// and writes the optimizer-dump side effect (unoptimized/optimized LLVM IR)
// to a configurable directory.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/vrlcore/vrlcore/pkg/compstate"
)

// Diagnostic is the teacher's errors.CompileError, trimmed of the
// HTTP-route/SQL-query framing fields (Context, route suggestions) this
// domain has no use for, and carrying a compstate.CompileError instead of
// a bare message.
type Diagnostic struct {
	Message       string
	Line          int
	Column        int
	SourceSnippet string
	Suggestion    string
	FileName      string
}

// FromCompileError converts one of compstate's accumulated errors into a
// Diagnostic, attaching a source snippet when Line is known.
func FromCompileError(err *compstate.CompileError, source, fileName string) *Diagnostic {
	d := &Diagnostic{Message: err.Message, Line: err.Line, Column: err.Column, FileName: fileName}
	if err.Line > 0 {
		d.SourceSnippet = sourceLine(source, err.Line)
	}
	return d
}

func sourceLine(source string, n int) string {
	lines := strings.Split(source, "\n")
	if n <= 0 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// Format renders a Diagnostic the way the teacher's CompileError.FormatError
// does: a colored header, the offending source line, a caret under the
// column, then the message and an optional suggestion.
func (d *Diagnostic) Format(useColor bool) string {
	var b strings.Builder

	header := "compile error"
	if d.FileName != "" {
		header = fmt.Sprintf("%s in %s", header, d.FileName)
	}
	header = fmt.Sprintf("%s at line %d, column %d", header, d.Line, d.Column)
	if useColor {
		b.WriteString(color.New(color.FgRed, color.Bold).Sprint(header))
	} else {
		b.WriteString(header)
	}
	b.WriteString("\n")

	if d.SourceSnippet != "" {
		b.WriteString(fmt.Sprintf("  %4d | %s\n", d.Line, d.SourceSnippet))
		if d.Column > 0 {
			caret := strings.Repeat(" ", d.Column-1) + "^"
			if useColor {
				b.WriteString(fmt.Sprintf("       | %s\n", color.New(color.FgRed).Sprint(caret)))
			} else {
				b.WriteString(fmt.Sprintf("       | %s\n", caret))
			}
		}
	}

	b.WriteString(d.Message)
	b.WriteString("\n")
	if d.Suggestion != "" {
		label := "suggestion:"
		if useColor {
			label = color.New(color.FgYellow, color.Bold).Sprint(label)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, d.Suggestion))
	}
	return b.String()
}

// FormatAll renders every diagnostic from a compstate.State in order.
func FormatAll(errs []*compstate.CompileError, source, fileName string, useColor bool) string {
	var b strings.Builder
	for _, e := range errs {
		b.WriteString(FromCompileError(e, source, fileName).Format(useColor))
		b.WriteString("\n")
	}
	return b.String()
}
