// errors.go — error taxonomy and caret-snippet rendering.
//
// Every phase of the pipeline reports failures through one of the typed
// errors below. Each carries a 1-based source position and renders as a
// single diagnostic line:
//
//	<phase> error at <line>:<col>: <message>
//
// WrapErrorWithSource upgrades any of these to a multi-line snippet with a
// caret pointing at the offending column, e.g.
//
//	parse error at 3:12: expected ')', found '}'
//
//	   2 | let x = (1 + 2
//	   3 |            }
//	     |            ^
//	   4 | print(x)
//
// The first line of the snippet is always the plain diagnostic line, so
// callers that only need the one-liner can use err.Error() directly.
// Errors of other types pass through WrapErrorWithSource unchanged.
package weave

import (
	"fmt"
	"strings"
)

// LexError reports an unterminated string or unrecognized character.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ParseError reports an unexpected token or malformed declaration.
// Incomplete marks errors caused by hitting EOF mid-construct; the REPL uses
// it to prompt for continuation lines instead of failing.
type ParseError struct {
	Line       int
	Col        int
	Msg        string
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// NameError reports an unknown identifier, struct, type, redeclaration, or a
// dot-call with no matching function.
type NameError struct {
	Line int
	Col  int
	Msg  string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("name error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("arity error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// TypeError reports a value failing a declared primitive, struct, or union
// type at a call or construction site.
type TypeError struct {
	Line int
	Col  int
	Msg  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// RuntimeError reports execution failures outside the type system: an
// out-of-range positional argument, division by zero, invalid operands.
type RuntimeError struct {
	Line int
	Col  int
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// IsIncomplete reports whether err is a ParseError caused by running out of
// input mid-construct. The REPL probes with this to read continuation lines.
func IsIncomplete(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.Incomplete
}

// WrapErrorWithSource returns an error whose message is a caret-annotated
// snippet of src, when err is one of the weave error types. Other errors are
// returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	line, col := 0, 0
	switch e := err.(type) {
	case *LexError:
		line, col = e.Line, e.Col
	case *ParseError:
		line, col = e.Line, e.Col
	case *NameError:
		line, col = e.Line, e.Col
	case *ArityError:
		line, col = e.Line, e.Col
	case *TypeError:
		line, col = e.Line, e.Col
	case *RuntimeError:
		line, col = e.Line, e.Col
	default:
		return err
	}
	return fmt.Errorf("%s", prettyErrorString(src, err.Error(), line, col))
}

// prettyErrorString builds the snippet: header line, one line of context
// before and after when available, and a caret under the 1-based column.
// Out-of-range coordinates are clamped so rendering never fails.
func prettyErrorString(src, header string, line, col int) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s", line+1, lines[line])
	}
	return strings.TrimRight(b.String(), "\n")
}
