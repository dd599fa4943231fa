// interp.go — the tree-walking evaluator.
//
// Execution is two-phase: the whole file is parsed and the registry built
// before the first statement runs, so a lex or parse error can never leave
// partial output behind. The evaluator then walks top-level statements in
// program order against the immutable registry.
//
// Two distinct signalling mechanisms are used, on purpose:
//
//   - Errors (name/arity/type/runtime) abort the run. Internally they
//     travel as a panic carrying the typed error, recovered exactly once at
//     the Run boundary; callers only ever see the error value.
//   - `return` is not an error. Statement execution threads an explicit
//     ctrlContinue/ctrlReturn signal upward until the enclosing call
//     boundary, where the carried value becomes the call's result. At the
//     top level a return simply ends the program.
//
// Each function call owns a fresh Environment seeded with its parameter
// bindings. Function bodies see only their own environment and the registry
// — never the caller's locals — so no closure or aliasing semantics exist.
package weave

import (
	"fmt"
	"io"
)

// Env maps binding names to values for one call (or the top level). Weave
// has no closures, so environments carry no parent link; a function body
// resolves names against its own frame and the registry only.
type Env struct {
	table map[string]Value
}

// NewEnv creates an empty environment.
func NewEnv() *Env { return &Env{table: map[string]Value{}} }

// Define binds name to v, replacing any previous binding.
func (e *Env) Define(name string, v Value) { e.table[name] = v }

// Get retrieves a binding.
func (e *Env) Get(name string) (Value, bool) {
	v, ok := e.table[name]
	return v, ok
}

// ctrl is the statement-level control signal.
type ctrl int

const (
	ctrlContinue ctrl = iota
	ctrlReturn
)

// evalFail wraps a typed error for the internal panic channel.
type evalFail struct{ err error }

type interp struct {
	reg    *Registry
	argv   []string // argv[0] is the script path ($0); argv[1:] are $1..
	stdout io.Writer
}

// RunSource runs the whole pipeline on a source string: lex, parse, build
// the registry, execute. argv[0] should be the script path; the remaining
// entries populate $1, $2, ... Output from print goes to stdout.
func RunSource(src string, argv []string, stdout io.Writer) error {
	prog, err := Parse(src)
	if err != nil {
		return err
	}
	reg, err := BuildRegistry(prog)
	if err != nil {
		return err
	}
	return Run(prog, reg, argv, stdout)
}

// Run executes a parsed program against its registry. The registry must
// have been built from prog (declaration statements are skipped here).
func Run(prog *Program, reg *Registry, argv []string, stdout io.Writer) error {
	ip := &interp{reg: reg, argv: argv, stdout: stdout}
	_, err := ip.runTop(prog.Stmts, NewEnv())
	return err
}

// runTop executes top-level statements, skipping declarations. It returns
// the value of the last expression statement (used by the REPL) and
// recovers the internal error panic exactly once.
func (ip *interp) runTop(stmts []Stmt, env *Env) (last Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(evalFail)
			if !ok {
				panic(r)
			}
			err = f.err
		}
	}()
	last = Unit
	for _, st := range stmts {
		switch st.(type) {
		case *TypeAliasDecl, *StructDecl, *FnDecl:
			continue
		}
		if es, ok := st.(*ExprStmt); ok {
			last = ip.evalExpr(es.X, env)
			continue
		}
		c, _ := ip.execStmt(st, env)
		last = Unit
		if c == ctrlReturn {
			break // a top-level return ends the program
		}
	}
	return last, nil
}

func (ip *interp) fail(err error) {
	panic(evalFail{err: err})
}

func (ip *interp) failf(line, col int, kind string, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	switch kind {
	case "name":
		ip.fail(&NameError{Line: line, Col: col, Msg: msg})
	case "type":
		ip.fail(&TypeError{Line: line, Col: col, Msg: msg})
	default:
		ip.fail(&RuntimeError{Line: line, Col: col, Msg: msg})
	}
}

// ---- statements ----

func (ip *interp) execStmts(stmts []Stmt, env *Env) (ctrl, Value) {
	for _, st := range stmts {
		if c, v := ip.execStmt(st, env); c == ctrlReturn {
			return c, v
		}
	}
	return ctrlContinue, Unit
}

func (ip *interp) execStmt(st Stmt, env *Env) (ctrl, Value) {
	switch s := st.(type) {
	case *LetStmt:
		env.Define(s.Name, ip.evalExpr(s.Value, env))
	case *ExprStmt:
		ip.evalExpr(s.X, env)
	case *ReturnStmt:
		v := Unit
		if s.Value != nil {
			v = ip.evalExpr(s.Value, env)
		}
		return ctrlReturn, v
	case *IfStmt:
		if truthy(ip.evalExpr(s.Cond, env)) {
			return ip.execStmts(s.Then, env)
		}
		if s.Else != nil {
			return ip.execStmts(s.Else, env)
		}
	case *WhileStmt:
		for truthy(ip.evalExpr(s.Cond, env)) {
			if c, v := ip.execStmts(s.Body, env); c == ctrlReturn {
				return c, v
			}
		}
	case *BlockStmt:
		return ip.execStmts(s.Stmts, env)
	case *TypeAliasDecl, *StructDecl, *FnDecl:
		// Only reachable when nested in a body; the registry pass collects
		// top-level declarations exclusively.
		line, col := st.Pos()
		ip.failf(line, col, "runtime", "declarations are only allowed at the top level")
	}
	return ctrlContinue, Unit
}

// ---- expressions ----

func (ip *interp) evalExpr(e Expr, env *Env) Value {
	switch x := e.(type) {
	case *NumberLit:
		return Num(x.Value)
	case *StringLit:
		return Str(x.Value)
	case *BoolLit:
		return Bool(x.Value)
	case *NilLit:
		return Unit
	case *Ident:
		return ip.evalIdent(x, env)
	case *PosArg:
		return ip.evalPosArg(x)
	case *UnaryExpr:
		return ip.evalUnary(x, env)
	case *BinaryExpr:
		return ip.evalBinary(x, env)
	case *CallExpr:
		return ip.evalCall(x, env)
	case *DotExpr:
		return ip.evalDot(x, env)
	case *StructLit:
		return ip.evalStructLit(x, env)
	}
	line, col := e.Pos()
	ip.failf(line, col, "runtime", "unevaluable expression")
	return Unit
}

func (ip *interp) evalIdent(x *Ident, env *Env) Value {
	if v, ok := env.Get(x.Name); ok {
		return v
	}
	if fn := ip.reg.Func(x.Name); fn != nil {
		return FunVal(fn)
	}
	ip.failf(x.Line, x.Col, "name", "undefined variable '%s'", x.Name)
	return Unit
}

func (ip *interp) evalPosArg(x *PosArg) Value {
	if x.Index >= len(ip.argv) {
		supplied := len(ip.argv) - 1
		if supplied < 0 {
			supplied = 0
		}
		ip.failf(x.Line, x.Col, "runtime",
			"positional argument $%d out of range (%d supplied)", x.Index, supplied)
	}
	return Str(ip.argv[x.Index])
}

func (ip *interp) evalUnary(x *UnaryExpr, env *Env) Value {
	v := ip.evalExpr(x.X, env)
	switch x.Op {
	case "-":
		if v.Tag != VTNumber {
			ip.failf(x.Line, x.Col, "type", "unary '-' expects number, got %s", v.typeTag())
		}
		return Num(-v.Data.(float64))
	case "!":
		return Bool(!truthy(v))
	}
	ip.failf(x.Line, x.Col, "runtime", "unknown unary operator '%s'", x.Op)
	return Unit
}

func (ip *interp) evalBinary(x *BinaryExpr, env *Env) Value {
	l := ip.evalExpr(x.L, env)
	r := ip.evalExpr(x.R, env)
	switch x.Op {
	case "+":
		if l.Tag == VTNumber && r.Tag == VTNumber {
			return Num(l.Data.(float64) + r.Data.(float64))
		}
		// One string operand coerces the other to its display string.
		if l.Tag == VTString || r.Tag == VTString {
			return Str(FormatValue(l) + FormatValue(r))
		}
		ip.failf(x.Line, x.Col, "type", "invalid operands to '+': %s and %s", l.typeTag(), r.typeTag())
	case "-", "*", "/":
		a, b := ip.numericOperands(x, l, r)
		switch x.Op {
		case "-":
			return Num(a - b)
		case "*":
			return Num(a * b)
		default:
			if b == 0 {
				ip.failf(x.Line, x.Col, "runtime", "division by zero")
			}
			return Num(a / b)
		}
	case "<", "<=", ">", ">=":
		a, b := ip.numericOperands(x, l, r)
		switch x.Op {
		case "<":
			return Bool(a < b)
		case "<=":
			return Bool(a <= b)
		case ">":
			return Bool(a > b)
		default:
			return Bool(a >= b)
		}
	case "==":
		return Bool(deepEqual(l, r))
	case "!=":
		return Bool(!deepEqual(l, r))
	}
	ip.failf(x.Line, x.Col, "runtime", "unknown operator '%s'", x.Op)
	return Unit
}

func (ip *interp) numericOperands(x *BinaryExpr, l, r Value) (float64, float64) {
	if l.Tag != VTNumber || r.Tag != VTNumber {
		ip.failf(x.Line, x.Col, "type", "invalid operands to '%s': %s and %s", x.Op, l.typeTag(), r.typeTag())
	}
	return l.Data.(float64), r.Data.(float64)
}

func (ip *interp) evalCall(x *CallExpr, env *Env) Value {
	// print is built in; it never resolves through the registry.
	if id, ok := x.Callee.(*Ident); ok && id.Name == "print" {
		for _, a := range x.Args {
			fmt.Fprintln(ip.stdout, FormatValue(ip.evalExpr(a, env)))
		}
		return Unit
	}
	callee := ip.evalExpr(x.Callee, env)
	if callee.Tag != VTFun {
		ip.failf(x.Line, x.Col, "type", "value of type %s is not callable", callee.typeTag())
	}
	args := make([]Value, 0, len(x.Args))
	for _, a := range x.Args {
		args = append(args, ip.evalExpr(a, env))
	}
	return ip.callFunction(callee.Data.(*FnDecl), args, x.Line, x.Col)
}

func (ip *interp) evalDot(x *DotExpr, env *Env) Value {
	recv := ip.evalExpr(x.Recv, env)

	// Field access: a struct field named x.Name with no argument list.
	if recv.Tag == VTStruct && !x.HasCall {
		if v, ok := recv.Data.(*StructInstance).Get(x.Name); ok {
			return v
		}
	}

	// Method-call sugar: the function named x.Name whose first parameter
	// type the receiver satisfies, receiver prepended.
	fn, err := ip.reg.findMethod(x.Name, recv)
	if err != nil {
		ip.fail(err)
	}
	if fn == nil {
		ip.failf(x.Line, x.Col, "name", "no function '%s' accepts %s", x.Name, recv.typeTag())
	}
	args := make([]Value, 0, len(x.Args)+1)
	args = append(args, recv)
	for _, a := range x.Args {
		args = append(args, ip.evalExpr(a, env))
	}
	return ip.callFunction(fn, args, x.Line, x.Col)
}

func (ip *interp) evalStructLit(x *StructLit, env *Env) Value {
	def := ip.reg.Struct(x.TypeName)
	if def == nil {
		ip.failf(x.Line, x.Col, "name", "unknown struct '%s'", x.TypeName)
	}
	names := make([]string, len(x.Fields))
	vals := make([]Value, len(x.Fields))
	for i, f := range x.Fields {
		names[i] = f.Name
		vals[i] = ip.evalExpr(f.Value, env)
	}
	if err := ip.reg.checkStructFields(def, names, vals, x.Line, x.Col); err != nil {
		ip.fail(err)
	}
	inst := &StructInstance{TypeName: def.Name, Fields: map[string]Value{}}
	for i, name := range names {
		inst.Fields[name] = vals[i]
	}
	for _, f := range def.Fields {
		inst.Order = append(inst.Order, f.Name)
	}
	return StructVal(inst)
}

// callFunction type-checks args, runs fn's body in a fresh environment, and
// converts a Return signal into the call's result. The environment is
// released when the call returns; nothing can retain it.
func (ip *interp) callFunction(fn *FnDecl, args []Value, line, col int) Value {
	if err := ip.reg.checkCall(fn, args, line, col); err != nil {
		ip.fail(err)
	}
	env := NewEnv()
	for i, p := range fn.Params {
		env.Define(p.Name, args[i])
	}
	if c, v := ip.execStmts(fn.Body, env); c == ctrlReturn {
		return v
	}
	return Unit
}
