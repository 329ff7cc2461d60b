package script

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type cursor struct {
	i    int
	line int
	col  int
	off  int
}

type Lexer struct {
	src  []rune
	path string
	c    cursor
}

func NewLexer(path string, src []rune) *Lexer {
	return &Lexer{src: src, path: path, c: cursor{line: 1, col: 1}}
}

// Tokens lexes src to completion; the trailing EOF token is included.
func Tokens(path, src string) []Tok {
	lx := NewLexer(path, []rune(src))
	var out []Tok
	for {
		t := lx.Next()
		out = append(out, t)
		if t.K == EOF {
			return out
		}
	}
}

func (l *Lexer) Next() Tok {
	l.skipSpace()
	if l.eof() {
		return Tok{K: EOF, P: l.pos()}
	}
	p := l.pos()

	if t, ok := l.number(p); ok {
		return t
	}
	if l.peek() == '\n' {
		l.read()
		return Tok{K: NEWLINE, P: p}
	}
	if t, ok := l.bracket(p); ok {
		return t
	}
	if t, ok := l.reserved(p); ok {
		return t
	}
	if t, ok := l.operator(p); ok {
		return t
	}
	if l.peek() == '"' {
		return l.str(p)
	}
	return l.ident(p)
}

func (l *Lexer) pos() Pos {
	return Pos{Path: l.path, Line: l.c.line, Col: l.c.col, Off: l.c.off}
}

func (l *Lexer) eof() bool {
	return l.c.i >= len(l.src)
}

func (l *Lexer) peek() rune {
	return l.at(0)
}

func (l *Lexer) at(n int) rune {
	if l.c.i+n >= len(l.src) {
		return 0
	}
	return l.src[l.c.i+n]
}

func (l *Lexer) read() rune {
	if l.eof() {
		return 0
	}
	r := l.src[l.c.i]
	l.c.i++
	l.c.off += utf8.RuneLen(r)
	if r == '\n' {
		l.c.line++
		l.c.col = 1
	} else {
		l.c.col++
	}
	return r
}

func (l *Lexer) skipSpace() {
	for !l.eof() && isSpace(l.peek()) {
		l.read()
	}
}

// number consumes the current character plus any run of digits and dots.
// A run that is not a float rewinds the cursor so later recognizers see it.
func (l *Lexer) number(p Pos) (Tok, bool) {
	mark := l.c
	var b strings.Builder
	b.WriteRune(l.read())
	for !l.eof() && isNumberPart(l.peek()) {
		b.WriteRune(l.read())
	}
	lit := b.String()
	n, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		l.c = mark
		return Tok{}, false
	}
	return Tok{K: NUMBER, Lit: lit, N: n, P: p}, true
}

func (l *Lexer) bracket(p Pos) (Tok, bool) {
	var k Kind
	switch l.peek() {
	case '(':
		k = LPAREN
	case ')':
		k = RPAREN
	case '{':
		k = LBRACE
	case '}':
		k = RBRACE
	default:
		return Tok{}, false
	}
	lit := string(l.read())
	return Tok{K: k, Lit: lit, P: p}, true
}

type keyword struct {
	word  string
	kw    Reserved
	space bool
}

// keywords is keyed by first letter; entries are tried in order.
var keywords = map[rune][]keyword{
	'p': {{"print", KwPrint, true}},
	'r': {{"return", KwReturn, true}},
	'i': {{"if", KwIf, true}},
	'e': {{"else", KwElse, false}},
	'f': {{"for", KwFor, true}, {"fn", KwFn, true}},
	't': {{"typeof", KwTypeof, true}},
}

func (l *Lexer) reserved(p Pos) (Tok, bool) {
	for _, k := range keywords[l.peek()] {
		want := k.word
		if k.space {
			want += " "
		}
		if !l.hasPrefix(want) {
			continue
		}
		l.advance(len([]rune(want)))
		return Tok{K: RESERVED, Lit: k.word, Kw: k.kw, P: p}, true
	}
	return Tok{}, false
}

// operators lists candidates longest first so "===" never splits into "==" "=".
var operators = map[rune][]string{
	'+': {"+=", "+"},
	'-': {"-=", "-"},
	'*': {"*=", "*"},
	'/': {"/=", "/"},
	'%': {"%=", "%"},
	'=': {"===", "==", "="},
	'>': {">=", ">"},
	'<': {"<=", "<"},
	'&': {"&&", "&"},
	'|': {"||", "|"},
	'!': {"!=", "!"},
}

func (l *Lexer) operator(p Pos) (Tok, bool) {
	for _, cand := range operators[l.peek()] {
		if !l.hasPrefix(cand) {
			continue
		}
		l.advance(len(cand))
		return Tok{K: OPERATOR, Lit: cand, Op: opByText[cand], P: p}, true
	}
	return Tok{}, false
}

func (l *Lexer) str(p Pos) Tok {
	l.read()
	var b strings.Builder
	for {
		if l.eof() {
			return Tok{K: ILLEGAL, Lit: "unterminated string", P: p}
		}
		r := l.read()
		if r == '"' {
			return Tok{K: STRING, Lit: b.String(), P: p}
		}
		b.WriteRune(r)
	}
}

func (l *Lexer) ident(p Pos) Tok {
	var b strings.Builder
	b.WriteRune(l.read())
	for !l.eof() && !unicode.IsSpace(l.peek()) {
		b.WriteRune(l.read())
	}
	return Tok{K: IDENT, Lit: b.String(), P: p}
}

func (l *Lexer) hasPrefix(s string) bool {
	i := 0
	for _, r := range s {
		if l.at(i) != r {
			return false
		}
		i++
	}
	return true
}

func (l *Lexer) advance(n int) {
	for ; n > 0; n-- {
		l.read()
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}

func isNumberPart(r rune) bool {
	return (r >= '0' && r <= '9') || r == '.'
}
