// Package engine ties the interpreter to the host services: history,
// tracing and output capture. One Engine serves one session.
package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/tinyscript/internal/errdef"
	"github.com/unkn0wn-root/tinyscript/internal/history"
	"github.com/unkn0wn-root/tinyscript/internal/script"
	"github.com/unkn0wn-root/tinyscript/internal/telemetry"
)

type Source struct {
	Path string
	Text string
	Mode string
}

type Result struct {
	Program    *script.Program
	Output     string
	Statements int
	Steps      int
	Exited     bool
	ExitCode   int
	Duration   time.Duration
}

type Options struct {
	Limits  script.Limits
	Recover bool
	Globals map[string]script.Primitive
	// Output receives print output as it is produced, in addition to
	// Result.Output.
	Output  io.Writer
	Tracer  telemetry.Instrumenter
	History history.Recorder
	// Warn is called with history failures; they never fail an Exec.
	Warn func(error)
	Now  func() time.Time
}

type Engine struct {
	opts    Options
	session string
	in      *script.Interp
	buf     bytes.Buffer
}

func New(opts Options) *Engine {
	if opts.Limits == (script.Limits{}) {
		opts.Limits = script.DefaultLimits()
	}
	if opts.Tracer == nil {
		opts.Tracer = telemetry.Noop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Engine{opts: opts, session: uuid.NewString()}
	e.Reset()
	return e
}

func (e *Engine) Session() string { return e.session }

func (e *Engine) Env() *script.Env { return e.in.Env() }

func (e *Engine) History() history.Recorder { return e.opts.History }

// Reset discards all globals and re-applies the presets.
func (e *Engine) Reset() {
	e.in = script.New(
		script.WithOutput(sink{e}),
		script.WithLimits(e.opts.Limits),
		script.WithGlobals(e.opts.Globals),
	)
}

type sink struct{ e *Engine }

func (s sink) Write(p []byte) (int, error) {
	s.e.buf.Write(p)
	if s.e.opts.Output != nil {
		return s.e.opts.Output.Write(p)
	}
	return len(p), nil
}

// Exec parses and runs src. A return statement is not an error: it sets
// Result.Exited and Result.ExitCode. Parse failures carry errdef.CodeParse
// and runtime failures errdef.CodeScript. In recovery mode every statement
// error is reported and nothing runs.
func (e *Engine) Exec(ctx context.Context, src Source) (Result, error) {
	mode := src.Mode
	if mode == "" {
		mode = history.ModeFile
	}
	started := e.opts.Now()
	e.buf.Reset()

	ctx, span := e.opts.Tracer.Start(ctx, telemetry.ExecStart{
		Path:    src.Path,
		Mode:    mode,
		Session: e.session,
		Bytes:   len(src.Text),
	})

	var res Result
	endParse := span.Phase(telemetry.PhaseParse)
	prog, perr := script.ParseWith(src.Path, src.Text, script.ParseOptions{
		Recover:  e.opts.Recover,
		MaxDepth: e.opts.Limits.MaxDepth,
	})
	endParse(perr)
	res.Program = prog
	if prog != nil {
		res.Statements = len(prog.Stmts)
	}

	var err error
	if perr != nil {
		err = errdef.Wrap(errdef.CodeParse, perr, "")
	} else {
		endRun := span.Phase(telemetry.PhaseRun)
		rerr := e.in.Run(ctx, prog)
		res.Steps = e.in.Steps()
		var exit *script.ExitError
		if errors.As(rerr, &exit) {
			res.Exited = true
			res.ExitCode = exit.Code
			rerr = nil
		}
		endRun(rerr)
		err = errdef.Wrap(errdef.CodeScript, rerr, "")
	}

	res.Output = e.buf.String()
	res.Duration = e.opts.Now().Sub(started)
	span.End(telemetry.ExecResult{
		Err:        err,
		Statements: res.Statements,
		Steps:      res.Steps,
		Exited:     res.Exited,
		ExitCode:   res.ExitCode,
	})
	e.record(src, mode, res, err)
	return res, err
}

func (e *Engine) record(src Source, mode string, res Result, err error) {
	if e.opts.History == nil {
		return
	}
	entry := history.Entry{
		Session:  e.session,
		Mode:     mode,
		FilePath: src.Path,
		Source:   src.Text,
		Output:   res.Output,
		Status:   history.StatusOK,
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		Steps:    res.Steps,
	}
	if mode == history.ModeREPL {
		entry.FilePath = ""
	}
	switch {
	case errdef.CodeOf(err) == errdef.CodeParse:
		entry.Status = history.StatusParseError
		entry.Error = errdef.Message(err)
	case err != nil:
		entry.Status = history.StatusRuntimeError
		entry.Error = errdef.Message(err)
	case res.Exited:
		entry.Status = history.StatusExit
	}
	if herr := e.opts.History.Append(entry); herr != nil && e.opts.Warn != nil {
		e.opts.Warn(errdef.Wrap(errdef.CodeHistory, herr, "record history"))
	}
}
