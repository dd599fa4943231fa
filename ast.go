// ast.go — typed AST produced by the parser.
//
// Every node carries the 1-based line/column of its first token so that the
// registry builder, type checker, and evaluator can report positions without
// re-scanning the source. A Program is the ordered list of top-level
// declarations and statements exactly as written; declaration collection into
// the Registry happens in a later pass (registry.go), which is what makes
// forward references work.
package weave

// TypeKind discriminates a TypeRef.
type TypeKind int

const (
	TypeNumber TypeKind = iota
	TypeString
	TypeBool
	TypeNamed // struct or union alias, resolved at check time
)

// TypeRef is a syntactic reference to a type: a primitive or a name that
// resolves at check time to a struct or a union alias.
type TypeRef struct {
	Kind TypeKind
	Name string // set for TypeNamed
	Line int
	Col  int
}

func (t TypeRef) String() string {
	switch t.Kind {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	default:
		return t.Name
	}
}

// Stmt is a statement or top-level declaration.
type Stmt interface {
	Pos() (line, col int)
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Pos() (line, col int)
	exprNode()
}

// Program is the parsed source file: top-level declarations and statements in
// textual order.
type Program struct {
	Stmts []Stmt
}

type pos struct {
	Line int
	Col  int
}

func (p pos) Pos() (int, int) { return p.Line, p.Col }

// ---- declarations ----

// TypeAliasDecl is `type Name = "a" | "b" | ...`.
type TypeAliasDecl struct {
	pos
	Name     string
	Variants []string // closed set, non-empty, in declaration order
}

// FieldDef is one `name: Type` entry of a struct declaration.
type FieldDef struct {
	Name string
	Type TypeRef
}

// StructDecl is `struct Name { field: Type, ... }`.
type StructDecl struct {
	pos
	Name   string
	Fields []FieldDef // declaration order, significant for display
}

// FieldIndex returns the index of the named field, or -1.
func (d *StructDecl) FieldIndex(name string) int {
	for i, f := range d.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// ParamDef is one `name: Type` parameter of a function declaration.
type ParamDef struct {
	Name string
	Type TypeRef
}

// FnDecl is `fn name(param: Type, ...) -> Type { ... }`. The first
// parameter's type is the dispatch key for method-call syntax. Return is nil
// when no `->` clause was written; it is recorded but never enforced against
// the returned value.
type FnDecl struct {
	pos
	Name   string
	Params []ParamDef
	Return *TypeRef
	Body   []Stmt
}

// ---- statements ----

// LetStmt is `let name = expr`.
type LetStmt struct {
	pos
	Name  string
	Value Expr
}

// ReturnStmt is `return expr?`. Value is nil for a bare return.
type ReturnStmt struct {
	pos
	Value Expr
}

// ExprStmt is a bare expression in statement position (covers print and
// calls).
type ExprStmt struct {
	pos
	X Expr
}

// IfStmt is `if cond { ... } else { ... }`. Else is nil when absent.
type IfStmt struct {
	pos
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// WhileStmt is `while cond { ... }`.
type WhileStmt struct {
	pos
	Cond Expr
	Body []Stmt
}

// BlockStmt is a freestanding `{ ... }`.
type BlockStmt struct {
	pos
	Stmts []Stmt
}

func (*TypeAliasDecl) stmtNode() {}
func (*StructDecl) stmtNode()    {}
func (*FnDecl) stmtNode()        {}
func (*LetStmt) stmtNode()       {}
func (*ReturnStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()      {}
func (*IfStmt) stmtNode()        {}
func (*WhileStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()     {}

// ---- expressions ----

// NumberLit is a numeric literal (float64 precision).
type NumberLit struct {
	pos
	Value float64
}

// StringLit is a decoded string literal.
type StringLit struct {
	pos
	Value string
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	pos
	Value bool
}

// NilLit is `nil`, evaluating to the Unit value.
type NilLit struct {
	pos
}

// Ident is a bare identifier.
type Ident struct {
	pos
	Name string
}

// BinaryExpr is `lhs op rhs`; Op is the source operator text ("+", "==", ...).
type BinaryExpr struct {
	pos
	Op string
	L  Expr
	R  Expr
}

// UnaryExpr is `-x` or `!x`.
type UnaryExpr struct {
	pos
	Op string
	X  Expr
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	pos
	Callee Expr
	Args   []Expr
}

// DotExpr is `recv.name` or `recv.name(args...)`. Whether it is a field
// access or a method call is decided at evaluation time, from the receiver's
// runtime type. HasCall records whether an argument list was written, since
// `recv.name` on a struct field and `recv.name()` dispatch differently.
type DotExpr struct {
	pos
	Recv    Expr
	Name    string
	Args    []Expr
	HasCall bool
}

// FieldInit is one `name: expr` entry of a struct literal.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLit is `Name { field: expr, ... }`.
type StructLit struct {
	pos
	TypeName string
	Fields   []FieldInit
}

// PosArg is `$N`, a one-based reference into the invocation argument vector.
// $0 is the script path.
type PosArg struct {
	pos
	Index int
}

func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*NilLit) exprNode()     {}
func (*Ident) exprNode()      {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}
func (*DotExpr) exprNode()    {}
func (*StructLit) exprNode()  {}
func (*PosArg) exprNode()     {}
