// parser.go — recursive-descent parser for Weave.
//
// The parser consumes the token stream from lexer.go and builds the typed
// AST from ast.go. Binary expressions use precedence climbing with the usual
// ladder (equality < comparison < additive < multiplicative < unary), and
// '.' binds tightest as a postfix. Grammar highlights:
//
//	type Name = "lit" ("|" "lit")*
//	struct Name { field: Type ("," field: Type)* }
//	fn name(param: Type ("," param: Type)*) ("->" Type)? { stmt* }
//	let name = expr
//	Name { field: expr ("," field: expr)* }         struct literal
//	expr(args)                                      call
//	expr.name / expr.name(args)                     dot node
//	return expr? / if / while / bare expression
//
// Two decisions are deliberately deferred to evaluation because they depend
// on runtime type information: whether `expr.name` is a field access or a
// method call, and which function a method call resolves to. The parser only
// records the shape (DotExpr with HasCall).
//
// A `Name {` sequence is a struct literal only when the lookahead shows
// `identifier :` (or an immediately closed `{}`); anything else leaves the
// brace for the surrounding statement, which keeps `if x { ... }` parseable
// without separators.
//
// Statements may be terminated with an optional ';', which is consumed and
// discarded wherever a statement ends.
package weave

import "fmt"

// Parse lexes and parses a complete source string.
func Parse(src string) (*Program, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses a token stream produced by Tokenize.
func ParseTokens(toks []Token) (*Program, error) {
	p := &parser{toks: toks}
	return p.program()
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) cur() Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	if len(p.toks) > 0 {
		return p.toks[len(p.toks)-1] // EOF
	}
	return Token{Type: EOF, Line: 1, Col: 1}
}

func (p *parser) peek(n int) Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.cur()
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) check(tt TokenType) bool { return p.cur().Type == tt }

func (p *parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// errAt builds a ParseError at the given token. Errors at EOF are flagged
// Incomplete so the REPL can request continuation lines.
func (p *parser) errAt(tok Token, format string, args ...interface{}) error {
	return &ParseError{
		Line:       tok.Line,
		Col:        tok.Col,
		Msg:        fmt.Sprintf(format, args...),
		Incomplete: tok.Type == EOF,
	}
}

func (p *parser) expect(tt TokenType, context string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.errAt(p.cur(), "expected %s %s, found %s", tokenName(tt), context, tokenName(p.cur().Type))
}

func at(tok Token) pos { return pos{Line: tok.Line, Col: tok.Col} }

func (p *parser) program() (*Program, error) {
	prog := &Program{}
	for !p.check(EOF) {
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, st)
	}
	return prog, nil
}

func (p *parser) statement() (Stmt, error) {
	var st Stmt
	var err error
	switch p.cur().Type {
	case LET:
		st, err = p.letStmt()
	case FN:
		st, err = p.fnDecl()
	case STRUCT:
		st, err = p.structDecl()
	case TYPE:
		st, err = p.typeAliasDecl()
	case RETURN:
		st, err = p.returnStmt()
	case IF:
		st, err = p.ifStmt()
	case WHILE:
		st, err = p.whileStmt()
	case LCURLY:
		st, err = p.blockStmt()
	default:
		st, err = p.exprStmt()
	}
	if err != nil {
		return nil, err
	}
	p.match(SEMI)
	return st, nil
}

func (p *parser) letStmt() (Stmt, error) {
	kw := p.advance() // 'let'
	name, err := p.expect(ID, "after 'let'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "in let statement"); err != nil {
		return nil, err
	}
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &LetStmt{pos: at(kw), Name: name.Literal.(string), Value: value}, nil
}

func (p *parser) returnStmt() (Stmt, error) {
	kw := p.advance() // 'return'
	st := &ReturnStmt{pos: at(kw)}
	// A bare return ends at ';', '}' or EOF.
	if p.check(SEMI) || p.check(RCURLY) || p.check(EOF) {
		return st, nil
	}
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	st.Value = value
	return st, nil
}

func (p *parser) exprStmt() (Stmt, error) {
	tok := p.cur()
	x, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{pos: at(tok), X: x}, nil
}

func (p *parser) ifStmt() (Stmt, error) {
	kw := p.advance() // 'if'
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	then, err := p.braceBlock("after if condition")
	if err != nil {
		return nil, err
	}
	st := &IfStmt{pos: at(kw), Cond: cond, Then: then}
	if p.match(ELSE) {
		if p.check(IF) {
			// `else if` chains nest as a single-statement else block.
			nested, err := p.ifStmt()
			if err != nil {
				return nil, err
			}
			st.Else = []Stmt{nested}
		} else {
			st.Else, err = p.braceBlock("after 'else'")
			if err != nil {
				return nil, err
			}
		}
	}
	return st, nil
}

func (p *parser) whileStmt() (Stmt, error) {
	kw := p.advance() // 'while'
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.braceBlock("after while condition")
	if err != nil {
		return nil, err
	}
	return &WhileStmt{pos: at(kw), Cond: cond, Body: body}, nil
}

func (p *parser) blockStmt() (Stmt, error) {
	open := p.cur()
	stmts, err := p.braceBlock("to open block")
	if err != nil {
		return nil, err
	}
	return &BlockStmt{pos: at(open), Stmts: stmts}, nil
}

// braceBlock parses `{ stmt* }` and returns the statements.
func (p *parser) braceBlock(context string) ([]Stmt, error) {
	if _, err := p.expect(LCURLY, context); err != nil {
		return nil, err
	}
	var stmts []Stmt
	for !p.check(RCURLY) {
		if p.check(EOF) {
			return nil, p.errAt(p.cur(), "expected '}' at end of block, found end of file")
		}
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	p.advance() // '}'
	return stmts, nil
}

// ---- declarations ----

func (p *parser) typeAliasDecl() (Stmt, error) {
	kw := p.advance() // 'type'
	name, err := p.expect(ID, "after 'type'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "in type alias"); err != nil {
		return nil, err
	}
	decl := &TypeAliasDecl{pos: at(kw), Name: name.Literal.(string)}
	for {
		lit, err := p.expect(STRING, "in type union")
		if err != nil {
			return nil, err
		}
		decl.Variants = append(decl.Variants, lit.Literal.(string))
		if !p.match(PIPE) {
			break
		}
	}
	return decl, nil
}

func (p *parser) structDecl() (Stmt, error) {
	kw := p.advance() // 'struct'
	name, err := p.expect(ID, "after 'struct'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LCURLY, "after struct name"); err != nil {
		return nil, err
	}
	decl := &StructDecl{pos: at(kw), Name: name.Literal.(string)}
	for !p.check(RCURLY) {
		if p.check(EOF) {
			return nil, p.errAt(p.cur(), "expected '}' at end of struct, found end of file")
		}
		field, err := p.expect(ID, "as struct field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON, "after field name"); err != nil {
			return nil, err
		}
		ftype, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, FieldDef{Name: field.Literal.(string), Type: ftype})
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.expect(RCURLY, "at end of struct"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) fnDecl() (Stmt, error) {
	kw := p.advance() // 'fn'
	name, err := p.expect(ID, "after 'fn'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN, "after function name"); err != nil {
		return nil, err
	}
	decl := &FnDecl{pos: at(kw), Name: name.Literal.(string)}
	for !p.check(RPAREN) {
		param, err := p.expect(ID, "as parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON, "after parameter name"); err != nil {
			return nil, err
		}
		ptype, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		decl.Params = append(decl.Params, ParamDef{Name: param.Literal.(string), Type: ptype})
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.expect(RPAREN, "after parameters"); err != nil {
		return nil, err
	}
	if p.match(ARROW) {
		ret, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		decl.Return = &ret
	}
	decl.Body, err = p.braceBlock("to open function body")
	if err != nil {
		return nil, err
	}
	return decl, nil
}

// typeRef parses a type annotation. The primitive names are ordinary
// identifiers, not keywords.
func (p *parser) typeRef() (TypeRef, error) {
	tok, err := p.expect(ID, "as type")
	if err != nil {
		return TypeRef{}, err
	}
	t := TypeRef{Line: tok.Line, Col: tok.Col}
	switch tok.Literal.(string) {
	case "number":
		t.Kind = TypeNumber
	case "string":
		t.Kind = TypeString
	case "bool":
		t.Kind = TypeBool
	default:
		t.Kind = TypeNamed
		t.Name = tok.Literal.(string)
	}
	return t, nil
}

// ---- expressions ----

func (p *parser) expression() (Expr, error) { return p.equality() }

func (p *parser) equality() (Expr, error) {
	x, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.check(EQ) || p.check(NEQ) {
		op := p.advance()
		r, err := p.comparison()
		if err != nil {
			return nil, err
		}
		x = &BinaryExpr{pos: at(op), Op: op.Lexeme, L: x, R: r}
	}
	return x, nil
}

func (p *parser) comparison() (Expr, error) {
	x, err := p.additive()
	if err != nil {
		return nil, err
	}
	for p.check(LESS) || p.check(LESS_EQ) || p.check(GREATER) || p.check(GREATER_EQ) {
		op := p.advance()
		r, err := p.additive()
		if err != nil {
			return nil, err
		}
		x = &BinaryExpr{pos: at(op), Op: op.Lexeme, L: x, R: r}
	}
	return x, nil
}

func (p *parser) additive() (Expr, error) {
	x, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(PLUS) || p.check(MINUS) {
		op := p.advance()
		r, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		x = &BinaryExpr{pos: at(op), Op: op.Lexeme, L: x, R: r}
	}
	return x, nil
}

func (p *parser) multiplicative() (Expr, error) {
	x, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.check(STAR) || p.check(SLASH) {
		op := p.advance()
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		x = &BinaryExpr{pos: at(op), Op: op.Lexeme, L: x, R: r}
	}
	return x, nil
}

func (p *parser) unary() (Expr, error) {
	if p.check(MINUS) || p.check(BANG) {
		op := p.advance()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{pos: at(op), Op: op.Lexeme, X: x}, nil
	}
	return p.postfix()
}

// postfix parses calls and dot accesses, which bind tightest.
func (p *parser) postfix() (Expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}

	// `Name { field: ... }` is a struct literal. The two-token lookahead
	// keeps `if x { ... }` unambiguous: a brace not followed by `ident :`
	// belongs to the enclosing statement.
	if id, ok := x.(*Ident); ok && p.check(LCURLY) {
		next, after := p.peek(1), p.peek(2)
		if (next.Type == ID && after.Type == COLON) || next.Type == RCURLY {
			return p.structLit(id)
		}
	}

	for {
		switch p.cur().Type {
		case LPAREN:
			open := p.advance()
			args, err := p.callArgs()
			if err != nil {
				return nil, err
			}
			x = &CallExpr{pos: at(open), Callee: x, Args: args}
		case DOT:
			dot := p.advance()
			name, err := p.expect(ID, "after '.'")
			if err != nil {
				return nil, err
			}
			d := &DotExpr{pos: at(dot), Recv: x, Name: name.Literal.(string)}
			if p.match(LPAREN) {
				d.HasCall = true
				d.Args, err = p.callArgs()
				if err != nil {
					return nil, err
				}
			}
			x = d
		default:
			return x, nil
		}
	}
}

// callArgs parses `expr ("," expr)* ")"` with the '(' already consumed.
func (p *parser) callArgs() ([]Expr, error) {
	var args []Expr
	if !p.check(RPAREN) {
		for {
			a, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN, "after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) structLit(id *Ident) (Expr, error) {
	p.advance() // '{'
	line, col := id.Pos()
	lit := &StructLit{pos: pos{Line: line, Col: col}, TypeName: id.Name}
	for !p.check(RCURLY) {
		if p.check(EOF) {
			return nil, p.errAt(p.cur(), "expected '}' at end of struct literal, found end of file")
		}
		field, err := p.expect(ID, "as field name in struct literal")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(COLON, "after field name in struct literal"); err != nil {
			return nil, err
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		lit.Fields = append(lit.Fields, FieldInit{Name: field.Literal.(string), Value: value})
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.expect(RCURLY, "at end of struct literal"); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *parser) primary() (Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return &NumberLit{pos: at(tok), Value: tok.Literal.(float64)}, nil
	case STRING:
		p.advance()
		return &StringLit{pos: at(tok), Value: tok.Literal.(string)}, nil
	case TRUE, FALSE:
		p.advance()
		return &BoolLit{pos: at(tok), Value: tok.Literal.(bool)}, nil
	case NIL:
		p.advance()
		return &NilLit{pos: at(tok)}, nil
	case POSARG:
		p.advance()
		return &PosArg{pos: at(tok), Index: tok.Literal.(int)}, nil
	case ID:
		p.advance()
		return &Ident{pos: at(tok), Name: tok.Literal.(string)}, nil
	case PRINT:
		// print is a keyword but behaves as a callable name.
		p.advance()
		return &Ident{pos: at(tok), Name: "print"}, nil
	case LPAREN:
		p.advance()
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "after expression"); err != nil {
			return nil, err
		}
		return x, nil
	default:
		return nil, p.errAt(tok, "expected expression, found %s", tokenName(tok.Type))
	}
}
