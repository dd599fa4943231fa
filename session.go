// session.go — incremental evaluation for the REPL.
package weave

import "io"

// Session evaluates inputs one at a time while keeping declarations and
// top-level bindings alive between them. Each input is parsed on its own;
// its declarations join the accumulated set and the registry is rebuilt, so
// later inputs may call functions from earlier ones. A failed input leaves
// the session untouched.
type Session struct {
	decls  []Stmt
	env    *Env
	argv   []string
	stdout io.Writer
}

// NewSession creates a session. argv feeds $0, $1, ...; print output goes
// to stdout.
func NewSession(argv []string, stdout io.Writer) *Session {
	return &Session{env: NewEnv(), argv: argv, stdout: stdout}
}

// Eval runs one input. It returns the value of the input's last expression
// statement (Unit when the input was only declarations or bindings).
func (s *Session) Eval(src string) (Value, error) {
	prog, err := Parse(src)
	if err != nil {
		return Unit, err
	}

	var newDecls []Stmt
	for _, st := range prog.Stmts {
		switch st.(type) {
		case *TypeAliasDecl, *StructDecl, *FnDecl:
			newDecls = append(newDecls, st)
		}
	}

	merged := &Program{Stmts: append(append([]Stmt{}, s.decls...), newDecls...)}
	reg, err := BuildRegistry(merged)
	if err != nil {
		return Unit, err
	}

	ip := &interp{reg: reg, argv: s.argv, stdout: s.stdout}
	last, err := ip.runTop(prog.Stmts, s.env)
	if err != nil {
		return Unit, err
	}
	s.decls = merged.Stmts
	return last, nil
}
