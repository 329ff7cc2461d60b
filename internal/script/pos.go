package script

import (
	"errors"
	"fmt"
	"strings"
)

type Pos struct {
	Path string
	Line int
	Col  int
	Off  int
}

func (p Pos) String() string {
	if p.Path == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.Path, p.Line, p.Col)
}

// ParseError describes the first token the parser could not accept.
type ParseError struct {
	Pos      Pos
	Expected string
	Found    string
	Msg      string
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
	}
	if e.Pos.Line == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Pos.String(), msg)
}

// ErrorList collects statement errors in recovery mode.
type ErrorList []*ParseError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

func (l ErrorList) Unwrap() []error {
	out := make([]error, 0, len(l))
	for _, e := range l {
		out = append(out, e)
	}
	return out
}

type ErrKind int

const (
	TypeError ErrKind = iota + 1
	InvalidAssignmentTarget
	UnsupportedFeature
	LimitExceeded
	Canceled
)

func (k ErrKind) String() string {
	switch k {
	case TypeError:
		return "type error"
	case InvalidAssignmentTarget:
		return "invalid assignment target"
	case UnsupportedFeature:
		return "unsupported feature"
	case LimitExceeded:
		return "limit exceeded"
	case Canceled:
		return "canceled"
	default:
		return "runtime error"
	}
}

type RuntimeError struct {
	Kind ErrKind
	Pos  Pos
	Msg  string
}

func (e *RuntimeError) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Pos.Line == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Pos.String(), msg)
}

// ExitError is returned by Run when a return statement ends the program.
type ExitError struct {
	Code  int
	Value Primitive
	Pos   Pos
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// IsKind reports whether err carries a RuntimeError of kind k.
func IsKind(err error, k ErrKind) bool {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return false
	}
	return re.Kind == k
}

func rtErr(kind ErrKind, pos Pos, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func atPos(err error, pos Pos) error {
	var re *RuntimeError
	if errors.As(err, &re) && re.Pos.Line == 0 {
		re.Pos = pos
	}
	return err
}
