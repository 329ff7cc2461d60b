package script

import "fmt"

// DefaultMaxDepth bounds expression and block nesting in both the parser
// and the evaluator.
const DefaultMaxDepth = 512

type ParseOptions struct {
	// Recover keeps parsing after a broken statement. The returned program
	// holds the statements that parsed and the error is an ErrorList.
	Recover  bool
	MaxDepth int
}

type Parser struct {
	lx    *Lexer
	cur   Tok
	peek  Tok
	opts  ParseOptions
	depth int
	open  int
}

func NewParser(path string, src []rune, opts ParseOptions) *Parser {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	lx := NewLexer(path, src)
	p := &Parser{lx: lx, opts: opts}
	p.cur = lx.Next()
	p.peek = lx.Next()
	return p
}

// Parse parses a whole buffer and aborts on the first broken statement.
func Parse(path, src string) (*Program, error) {
	return ParseWith(path, src, ParseOptions{})
}

func ParseWith(path, src string, opts ParseOptions) (*Program, error) {
	return NewParser(path, []rune(src), opts).ParseProgram()
}

func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{Path: p.lx.path}
	var errs ErrorList
	for {
		p.skipNewlines()
		if p.cur.K == EOF {
			break
		}
		st, err := p.parseStmtSafe()
		if err != nil {
			if !p.opts.Recover {
				return nil, err
			}
			errs = append(errs, err)
			p.sync()
			continue
		}
		prog.Stmts = append(prog.Stmts, st)
		p.next()
	}
	if len(errs) > 0 {
		return prog, errs
	}
	return prog, nil
}

func (p *Parser) parseStmtSafe() (st Stmt, err *ParseError) {
	p.depth = 0
	p.open = 0
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			st, err = nil, pe
		}
	}()
	return p.parseStmt(), nil
}

// sync skips the rest of a broken statement: up to the next newline once
// every block opened by the statement has been closed.
func (p *Parser) sync() {
	open := p.open
	for p.cur.K != EOF {
		switch p.cur.K {
		case LBRACE:
			open++
		case RBRACE:
			if open > 0 {
				open--
			}
		case NEWLINE:
			if open == 0 {
				return
			}
		}
		p.next()
	}
}

func (p *Parser) parseStmt() Stmt {
	if p.cur.K == RESERVED {
		switch p.cur.Kw {
		case KwPrint:
			return p.parsePrint()
		case KwReturn:
			return p.parseReturn()
		case KwIf:
			return p.parseIf()
		case KwElse:
			p.fail(p.cur, "statement")
		default:
			p.unsupported(p.cur)
		}
	}
	pos := p.cur.P
	ex := p.parseExpr(Lowest)
	return &ExprStmt{P: pos, X: ex}
}

func (p *Parser) parsePrint() Stmt {
	pos := p.cur.P
	p.next()
	ex := p.parseExpr(Lowest)
	p.expectEnd(p.open > 0)
	return &PrintStmt{P: pos, X: ex}
}

func (p *Parser) parseReturn() Stmt {
	pos := p.cur.P
	p.next()
	ex := p.parseExpr(Lowest)
	p.expectEnd(false)
	return &ReturnStmt{P: pos, X: ex}
}

func (p *Parser) parseIf() Stmt {
	pos := p.cur.P
	p.next()
	switch p.cur.K {
	case LBRACE, NEWLINE, EOF:
		p.fail(p.cur, "condition")
	}
	cond := p.parseExpr(Lowest)
	p.expectPeek(LBRACE)
	then := p.parseBlock()

	var els *BlockStmt
	if p.peek.IsKw(KwElse) {
		p.next()
		p.expectPeek(LBRACE)
		els = p.parseBlock()
	}
	return &IfStmt{P: pos, Cond: cond, Then: then, Else: els}
}

// parseBlock expects cur on "{" and leaves cur on the matching "}".
func (p *Parser) parseBlock() *BlockStmt {
	pos := p.cur.P
	p.enter(pos)
	defer p.leave()
	p.open++
	p.next()

	var out []Stmt
	for {
		p.skipNewlines()
		if p.cur.K == RBRACE {
			break
		}
		if p.cur.K == EOF {
			p.fail(p.cur, `"}"`)
		}
		out = append(out, p.parseStmt())
		p.next()
	}
	p.open--
	return &BlockStmt{P: pos, Stmts: out}
}

func (p *Parser) parseExpr(prec Precedence) Expr {
	p.enter(p.cur.P)
	defer p.leave()

	left := p.parsePrefix()
	for prec < p.peekPrecedence() {
		p.next()
		if ex, ok := p.parsePostfix(left); ok {
			left = ex
			continue
		}
		left = p.parseInfix(left)
	}
	return left
}

func (p *Parser) parsePrefix() Expr {
	t := p.cur
	switch t.K {
	case IDENT:
		return &Ident{P: t.P, Name: t.Lit}
	case NUMBER:
		return &NumberLit{P: t.P, Value: t.N}
	case STRING:
		return &StringLit{P: t.P, Text: NewText(t.Lit)}
	case LPAREN:
		return p.parseGroup()
	case OPERATOR:
		if t.Op.IsPrefix() {
			p.next()
			right := p.parseExpr(PrecPrefix)
			return &PrefixExpr{P: t.P, Op: t.Op, Right: right}
		}
	case RESERVED:
		if t.Kw == KwFor || t.Kw == KwFn || t.Kw == KwTypeof {
			p.unsupported(t)
		}
	case ILLEGAL:
		panic(&ParseError{Pos: t.P, Msg: t.Lit})
	}
	p.fail(t, "expression")
	return nil
}

func (p *Parser) parseGroup() Expr {
	p.next()
	ex := p.parseExpr(Lowest)
	p.expectPeek(RPAREN)
	return ex
}

// parsePostfix is where postfix operators would attach; none exist yet.
func (p *Parser) parsePostfix(Expr) (Expr, bool) {
	return nil, false
}

func (p *Parser) parseInfix(left Expr) Expr {
	t := p.cur
	prec := t.Op.Precedence()
	if t.Op.IsAssign() {
		// right-associative: a = b = 1 is a = (b = 1)
		prec--
	}
	p.next()
	right := p.parseExpr(prec)
	return &InfixExpr{P: t.P, Left: left, Op: t.Op, Right: right}
}

func (p *Parser) peekPrecedence() Precedence {
	if p.peek.K != OPERATOR || !p.peek.Op.IsInfix() {
		return Lowest
	}
	return p.peek.Op.Precedence()
}

func (p *Parser) skipNewlines() {
	for p.cur.K == NEWLINE {
		p.next()
	}
}

func (p *Parser) next() {
	p.cur = p.peek
	if p.cur.K == EOF {
		p.peek = p.cur
		return
	}
	p.peek = p.lx.Next()
}

func (p *Parser) expectPeek(k Kind) {
	if p.peek.K != k {
		p.fail(p.peek, describe(Tok{K: k}))
	}
	p.next()
}

func (p *Parser) expectEnd(allowBrace bool) {
	switch p.peek.K {
	case NEWLINE, EOF:
		return
	case RBRACE:
		if allowBrace {
			return
		}
	}
	p.fail(p.peek, "newline")
}

func (p *Parser) enter(pos Pos) {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		panic(&ParseError{Pos: pos, Msg: fmt.Sprintf("nesting deeper than %d", p.opts.MaxDepth)})
	}
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) unsupported(t Tok) {
	panic(&ParseError{
		Pos:   t.P,
		Found: describe(t),
		Msg:   fmt.Sprintf("unsupported feature: %q", t.Kw.String()),
	})
}

func (p *Parser) fail(found Tok, expected string) {
	if found.K == ILLEGAL {
		panic(&ParseError{Pos: found.P, Expected: expected, Found: found.Lit, Msg: found.Lit})
	}
	panic(&ParseError{Pos: found.P, Expected: expected, Found: describe(found)})
}
