// Package diagnostics implements the error/warning/info/note taxonomy the
// four compiler passes report into a PipelineContext, and the
// `filename:line: message` + source-excerpt rendering spec.md §6 requires.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/skye-lang/skyec/internal/token"
)

// Code identifies which row of the §7 taxonomy a DiagnosticError belongs to.
// Kept as a named string (not an int) so it prints directly in rendered
// output and survives round-tripping through an LSP-style JSON payload
// unchanged.
type Code string

const (
	CodeTypeMismatch       Code = "E-type-mismatch"
	CodeUndefinedSymbol    Code = "E-undefined-symbol"
	CodeIncompleteType     Code = "E-incomplete-type"
	CodeCannotInstantiate  Code = "E-cannot-instantiate"
	CodeTemplateInference  Code = "E-template-inference"
	CodeConstViolation     Code = "E-const-violation"
	CodeOverflow           Code = "E-overflow"
	CodeRecursion          Code = "E-recursion"
	CodeInvalidControlFlow Code = "E-invalid-control-flow"
	CodeImportUnresolved   Code = "E-import-unresolved"
	CodeMacroArity         Code = "E-macro-arity"
)

// Severity is the four-way distinction spec.md §6 renders diagnostics by.
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "note"
	}
}

// Group is a stable warning/info-group identifier, e.g. "+W-constness-loss"
// (spec.md §6). Empty for plain errors and notes.
type Group string

const (
	GroupConstnessLoss  Group = "+W-constness-loss"
	GroupMacroNamespace Group = "+Wmacro-namespace"
	GroupCopies         Group = "+I-copies"
	GroupDestructors    Group = "+I-destructors"
)

// DiagnosticError is one reported diagnostic: a Code-tagged message anchored
// to a Token, optionally carrying a chain of Notes (e.g. a macro-expansion
// site) and a File override when the anchoring token's own source disagrees
// with the file the error should be attributed to.
type DiagnosticError struct {
	Code     Code
	Severity Severity
	Group    Group
	Message  string
	Token    token.Token
	File     string
	Notes    []NoteEntry
}

// NoteEntry is a secondary span attached to a diagnostic, e.g. "expanded from
// macro invocation here" (spec.md §4.2).
type NoteEntry struct {
	Message string
	Token   token.Token
}

// NewError builds an Error-severity diagnostic. Most callers across the four
// passes use this; NewWarning/NewInfo cover the two non-fatal severities
// that carry a Group.
func NewError(code Code, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: Error, Token: tok, Message: message, File: tok.Source.Filename}
}

func NewWarning(group Group, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Severity: Warning, Group: group, Token: tok, Message: message, File: tok.Source.Filename}
}

func NewInfo(group Group, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Severity: Info, Group: group, Token: tok, Message: message, File: tok.Source.Filename}
}

// WithNote appends an expansion-site (or other secondary) note and returns
// the receiver, so call sites can chain it onto a freshly built error.
func (e *DiagnosticError) WithNote(message string, tok token.Token) *DiagnosticError {
	e.Notes = append(e.Notes, NoteEntry{Message: message, Token: tok})
	return e
}

// Error satisfies the error interface with the bare message, matching the
// teacher's own DiagnosticError.Error() usage (cmd/lsp/diagnostics.go calls
// err.Error() for the LSP message field, separately from err.Code).
func (e *DiagnosticError) Error() string {
	return e.Message
}

// Render produces the `filename:line: severity[code]: message` line (the
// `[code]` part only when the diagnostic carries a Code) followed by
// the offending source excerpt and a caret under the token, plus any notes,
// each rendered the same way (spec.md §6).
func (e *DiagnosticError) Render() string {
	var b strings.Builder
	e.renderOne(&b, e.Token, e.Severity, e.Code, e.Message)
	for _, n := range e.Notes {
		b.WriteByte('\n')
		e.renderOne(&b, n.Token, Note, "", n.Message)
	}
	return b.String()
}

func (e *DiagnosticError) renderOne(b *strings.Builder, tok token.Token, sev Severity, code Code, message string) {
	file := tok.Source.Filename
	if file == "" {
		file = e.File
	}
	if code != "" {
		fmt.Fprintf(b, "%s:%d: %s[%s]: %s\n", file, tok.Line, sev, code, message)
	} else {
		fmt.Fprintf(b, "%s:%d: %s: %s\n", file, tok.Line, sev, message)
	}
	line := sourceLine(tok.Source.Text, tok.Line)
	if line == "" {
		return
	}
	b.WriteString(line)
	b.WriteByte('\n')
	col := tok.Column
	if col < 1 {
		col = 1
	}
	b.WriteString(strings.Repeat(" ", col-1))
	width := tok.End - tok.Pos
	if width < 1 {
		width = 1
	}
	b.WriteString(strings.Repeat("^", width))
}

func sourceLine(text string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Bag collects diagnostics across a pass; a pass "fails" when it has
// accumulated at least one Error-severity entry (spec.md §7: "each pass
// returns success/failure — non-zero [error] count = failure").
type Bag struct {
	All []*DiagnosticError
}

func (b *Bag) Add(d *DiagnosticError) {
	b.All = append(b.All, d)
}

func (b *Bag) Errorf(code Code, tok token.Token, format string, args ...any) *DiagnosticError {
	d := NewError(code, tok, fmt.Sprintf(format, args...))
	b.Add(d)
	return d
}

func (b *Bag) Failed() bool {
	for _, d := range b.All {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (b *Bag) ErrorCount() int {
	n := 0
	for _, d := range b.All {
		if d.Severity == Error {
			n++
		}
	}
	return n
}
