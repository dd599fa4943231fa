// lexer.go — byte scanner producing the Weave token stream.
package weave

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota

	// Punctuation
	LPAREN // "("
	RPAREN // ")"
	LCURLY // "{"
	RCURLY // "}"
	COMMA  // ","
	COLON  // ":"
	PIPE   // "|"
	SEMI   // ";"

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	ASSIGN // "="
	EQ     // "=="
	NEQ    // "!="
	BANG   // "!"
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ
	DOT   // "."
	ARROW // "->"

	// Literals & identifiers
	ID
	STRING
	NUMBER
	POSARG // "$N", Literal holds the int index

	// Keywords
	LET
	FN
	STRUCT
	TYPE
	RETURN
	PRINT
	IF
	ELSE
	WHILE
	FOR
	TRUE
	FALSE
	NIL
)

// Token is a lexical token with optional literal value.
// Line and Col are 1-based.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for literals
	Line    int
	Col     int
}

var keywords = map[string]TokenType{
	"let":    LET,
	"fn":     FN,
	"struct": STRUCT,
	"type":   TYPE,
	"return": RETURN,
	"print":  PRINT,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"true":   TRUE,
	"false":  FALSE,
	"nil":    NIL,
}

// tokenName renders a TokenType for diagnostics ("expected X, found Y").
func tokenName(tt TokenType) string {
	switch tt {
	case EOF:
		return "end of file"
	case LPAREN:
		return "'('"
	case RPAREN:
		return "')'"
	case LCURLY:
		return "'{'"
	case RCURLY:
		return "'}'"
	case COMMA:
		return "','"
	case COLON:
		return "':'"
	case PIPE:
		return "'|'"
	case SEMI:
		return "';'"
	case PLUS:
		return "'+'"
	case MINUS:
		return "'-'"
	case STAR:
		return "'*'"
	case SLASH:
		return "'/'"
	case ASSIGN:
		return "'='"
	case EQ:
		return "'=='"
	case NEQ:
		return "'!='"
	case BANG:
		return "'!'"
	case LESS:
		return "'<'"
	case LESS_EQ:
		return "'<='"
	case GREATER:
		return "'>'"
	case GREATER_EQ:
		return "'>='"
	case DOT:
		return "'.'"
	case ARROW:
		return "'->'"
	case ID:
		return "identifier"
	case STRING:
		return "string literal"
	case NUMBER:
		return "number literal"
	case POSARG:
		return "positional argument"
	default:
		for kw, t := range keywords {
			if t == tt {
				return "'" + kw + "'"
			}
		}
		return "token"
	}
}

// Lexer scans a Weave source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 1-based column of cur
	tokens []Token

	// position of the current token's first byte
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Tokenize scans the whole source in one call (EOF token included).
func Tokenize(src string) ([]Token, error) {
	return NewLexer(src).Scan()
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	tok := Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.tokStartLine, Col: l.tokStartCol, Msg: msg}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

// skipBlanks consumes whitespace and '#' line comments. Comments run to the
// end of line and never emit tokens, including when they trail code.
func (l *Lexer) skipBlanks() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '#':
			for {
				b, ok := l.peek()
				if !ok || b == '\n' {
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

// scanString parses a double-quoted string literal with escape handling.
// The opening quote is already consumed.
func (l *Lexer) scanString() (string, error) {
	var out []byte
	for {
		ch, ok := l.advance()
		if !ok || ch == '\n' {
			return "", l.err("unterminated string")
		}
		if ch == '"' {
			return string(out), nil
		}
		if ch != '\\' {
			out = append(out, ch)
			continue
		}
		esc, ok := l.advance()
		if !ok {
			return "", l.err("unterminated string")
		}
		switch esc {
		case '"':
			out = append(out, '"')
		case '\\':
			out = append(out, '\\')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		default:
			return "", l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
		}
	}
}

// scanNumber parses an integer or decimal literal starting at l.start.
func (l *Lexer) scanNumber() (float64, error) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	// A '.' continues the number only when followed by a digit; otherwise it
	// is a DOT token (e.g. `1.floor()`).
	if b, ok := l.peek(); ok && b == '.' {
		if l.cur+1 < len(l.src) && isDigit(l.src[l.cur+1]) {
			l.advance() // '.'
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
	v, convErr := strconv.ParseFloat(l.src[l.start:l.cur], 64)
	if convErr != nil {
		return 0, l.err("invalid number literal")
	}
	return v, nil
}

func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// scanPosArg parses the digit run after '$'. At least one digit is required.
func (l *Lexer) scanPosArg() (int, error) {
	digitStart := l.cur
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if l.cur == digitStart {
		return 0, l.err("expected digit after '$'")
	}
	n, convErr := strconv.Atoi(l.src[digitStart:l.cur])
	if convErr != nil {
		return 0, l.err("positional argument index out of range")
	}
	return n, nil
}

func (l *Lexer) scanToken() (Token, error) {
	l.skipBlanks()
	l.start = l.cur
	l.tokStartLine = l.line
	l.tokStartCol = l.col

	if l.isAtEnd() {
		return l.addToken(EOF, nil), nil
	}

	ch, _ := l.advance()

	switch ch {
	case '(':
		return l.addToken(LPAREN, nil), nil
	case ')':
		return l.addToken(RPAREN, nil), nil
	case '{':
		return l.addToken(LCURLY, nil), nil
	case '}':
		return l.addToken(RCURLY, nil), nil
	case ',':
		return l.addToken(COMMA, nil), nil
	case ':':
		return l.addToken(COLON, nil), nil
	case '|':
		return l.addToken(PIPE, nil), nil
	case ';':
		return l.addToken(SEMI, nil), nil
	case '+':
		return l.addToken(PLUS, nil), nil
	case '*':
		return l.addToken(STAR, nil), nil
	case '/':
		return l.addToken(SLASH, nil), nil
	case '.':
		return l.addToken(DOT, nil), nil
	case '-':
		if b, ok := l.peek(); ok && b == '>' {
			l.advance()
			return l.addToken(ARROW, nil), nil
		}
		return l.addToken(MINUS, nil), nil
	case '=':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(EQ, nil), nil
		}
		return l.addToken(ASSIGN, nil), nil
	case '!':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(NEQ, nil), nil
		}
		return l.addToken(BANG, nil), nil
	case '<':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(LESS_EQ, nil), nil
		}
		return l.addToken(LESS, nil), nil
	case '>':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(GREATER_EQ, nil), nil
		}
		return l.addToken(GREATER, nil), nil
	case '"':
		text, err := l.scanString()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(STRING, text), nil
	case '$':
		n, err := l.scanPosArg()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(POSARG, n), nil
	}

	if isDigit(ch) {
		v, err := l.scanNumber()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(NUMBER, v), nil
	}

	if isAlpha(ch) {
		lex := l.scanIdentifier()
		if tt, ok := keywords[lex]; ok {
			switch tt {
			case TRUE:
				return l.addToken(TRUE, true), nil
			case FALSE:
				return l.addToken(FALSE, false), nil
			default:
				return l.addToken(tt, lex), nil
			}
		}
		return l.addToken(ID, lex), nil
	}

	return Token{}, l.err(fmt.Sprintf("unexpected character: %q", ch))
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}
