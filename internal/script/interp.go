package script

import (
	"context"
	"fmt"
	"io"
)

type Option func(*Interp)

// WithOutput sets where print writes. The default discards output.
func WithOutput(w io.Writer) Option {
	return func(in *Interp) {
		if w != nil {
			in.out = w
		}
	}
}

func WithLimits(lim Limits) Option {
	return func(in *Interp) {
		in.lim = lim
	}
}

// WithGlobals pre-seeds the environment.
func WithGlobals(vals map[string]Primitive) Option {
	return func(in *Interp) {
		for k, v := range vals {
			in.env.Def(k, v)
		}
	}
}

// Interp executes programs against one environment. State persists between
// calls, so a REPL can feed it one entry at a time. It is not safe for
// concurrent use.
type Interp struct {
	out io.Writer
	env *Env
	lim Limits
	c   *Ctx
}

func New(opts ...Option) *Interp {
	in := &Interp{out: io.Discard, env: NewEnv(nil), lim: DefaultLimits()}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func (in *Interp) Env() *Env { return in.env }

// Steps reports the nodes evaluated by the last call.
func (in *Interp) Steps() int {
	if in.c == nil {
		return 0
	}
	return in.c.Steps()
}

// Run executes prog. A return statement stops execution with *ExitError.
func (in *Interp) Run(ctx context.Context, prog *Program) error {
	if prog == nil {
		return nil
	}
	return in.Exec(ctx, prog.Stmts)
}

func (in *Interp) Exec(ctx context.Context, stmts []Stmt) error {
	in.c = NewCtx(ctx, in.lim)
	for _, st := range stmts {
		if err := in.exec(st); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interp) Eval(ctx context.Context, ex Expr) (Primitive, error) {
	in.c = NewCtx(ctx, in.lim)
	return in.eval(ex)
}

func (in *Interp) exec(st Stmt) error {
	if err := in.c.tick(st.Pos()); err != nil {
		return err
	}
	switch s := st.(type) {
	case *ExprStmt:
		_, err := in.eval(s.X)
		return err
	case *PrintStmt:
		v, err := in.eval(s.X)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(in.out, v.String())
		return err
	case *ReturnStmt:
		v, err := in.eval(s.X)
		if err != nil {
			return err
		}
		code, err := v.ExitCode()
		if err != nil {
			return atPos(err, s.P)
		}
		return &ExitError{Code: code, Value: v, Pos: s.P}
	case *BlockStmt:
		return in.execBlock(s)
	case *IfStmt:
		cond, err := in.eval(s.Cond)
		if err != nil {
			return err
		}
		if cond.K != VBoolean {
			return rtErr(TypeError, s.Cond.Pos(), "if condition must be boolean, got %s", cond.TypeName())
		}
		if cond.B {
			return in.execBlock(s.Then)
		}
		if s.Else != nil {
			return in.execBlock(s.Else)
		}
		return nil
	}
	return rtErr(UnsupportedFeature, st.Pos(), "statement %T", st)
}

// execBlock shares the enclosing environment; blocks do not open a scope.
func (in *Interp) execBlock(b *BlockStmt) error {
	if err := in.c.enter(b.P); err != nil {
		return err
	}
	defer in.c.leave()
	for _, st := range b.Stmts {
		if err := in.exec(st); err != nil {
			return err
		}
	}
	return nil
}

// eval counts nesting for prefix operators only, matching the parser: a
// long left-associative chain is flat however deep its tree is.
func (in *Interp) eval(ex Expr) (Primitive, error) {
	if err := in.c.tick(ex.Pos()); err != nil {
		return Primitive{}, err
	}
	switch e := ex.(type) {
	case *Ident:
		if v, ok := in.env.Get(e.Name); ok {
			return v, nil
		}
		return Num(0), nil
	case *NumberLit:
		return Num(e.Value), nil
	case *StringLit:
		return Str(e.Text), nil
	case *PrefixExpr:
		if err := in.c.enter(e.P); err != nil {
			return Primitive{}, err
		}
		x, err := in.eval(e.Right)
		in.c.leave()
		if err != nil {
			return Primitive{}, err
		}
		v, err := Unary(e.Op, x)
		if err != nil {
			return Primitive{}, atPos(err, e.P)
		}
		return v, nil
	case *InfixExpr:
		if e.Op.IsAssign() {
			return in.assign(e)
		}
		l, err := in.eval(e.Left)
		if err != nil {
			return Primitive{}, err
		}
		r, err := in.eval(e.Right)
		if err != nil {
			return Primitive{}, err
		}
		v, err := Binary(e.Op, l, r)
		if err != nil {
			return Primitive{}, atPos(err, e.P)
		}
		return v, nil
	case *PostfixExpr:
		return Primitive{}, rtErr(UnsupportedFeature, e.P, "postfix %s", e.Op)
	}
	return Primitive{}, rtErr(UnsupportedFeature, ex.Pos(), "expression %T", ex)
}

func (in *Interp) assign(e *InfixExpr) (Primitive, error) {
	id, ok := e.Left.(*Ident)
	if !ok {
		return Primitive{}, rtErr(InvalidAssignmentTarget, e.Left.Pos(), "cannot assign to %s", e.Left.String())
	}
	var cur Primitive
	if e.Op != OpAssign {
		v, err := in.eval(id)
		if err != nil {
			return Primitive{}, err
		}
		cur = v
	}
	r, err := in.eval(e.Right)
	if err != nil {
		return Primitive{}, err
	}
	v := r
	if e.Op != OpAssign {
		v, err = Binary(e.Op.Base(), cur, r)
		if err != nil {
			return Primitive{}, atPos(err, e.P)
		}
	}
	in.env.Set(id.Name, v)
	return v, nil
}
