package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/unkn0wn-root/tinyscript/internal/engine"
	"github.com/unkn0wn-root/tinyscript/internal/history"
	"github.com/unkn0wn-root/tinyscript/internal/theme"
)

type Config struct {
	Engine             *engine.Engine
	Theme              theme.Theme
	Prompt             string
	ContinuationPrompt string
	// Copy replaces the system clipboard for :copy.
	Copy func(string) error
}

// Reply is what one input line produced. Lines are already styled.
type Reply struct {
	Echo     string
	Lines    []string
	Pending  bool
	Quit     bool
	ExitCode int
}

// Session is the line-oriented core shared by the terminal UI and the plain
// stdin loop. Entries are buffered while a "{" is unbalanced.
type Session struct {
	cfg     Config
	pending []string
	recall  []string
	last    string
}

func NewSession(cfg Config) *Session {
	if cfg.Prompt == "" {
		cfg.Prompt = "> "
	}
	if cfg.ContinuationPrompt == "" {
		cfg.ContinuationPrompt = ". "
	}
	if cfg.Copy == nil {
		cfg.Copy = clipboard.WriteAll
	}
	return &Session{cfg: cfg}
}

func (s *Session) Prompt() string {
	if len(s.pending) > 0 {
		return s.cfg.ContinuationPrompt
	}
	return s.cfg.Prompt
}

func (s *Session) Pending() bool { return len(s.pending) > 0 }

// Recall lists submitted lines, oldest first.
func (s *Session) Recall() []string { return s.recall }

// Cancel drops a partially typed entry.
func (s *Session) Cancel() {
	s.pending = nil
}

func (s *Session) Feed(ctx context.Context, line string) Reply {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) != "" {
		s.remember(line)
	}
	if len(s.pending) == 0 {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			return Reply{}
		case trimmed == "exit":
			return Reply{Echo: s.echo(line), Quit: true}
		case strings.HasPrefix(trimmed, ":"):
			rep := s.command(ctx, trimmed)
			rep.Echo = s.cfg.Theme.Prompt.Render(s.cfg.Prompt) + trimmed
			return rep
		}
	}

	echo := s.echo(line)
	s.pending = append(s.pending, line)
	src := strings.Join(s.pending, "\n")
	if depth(src) > 0 {
		return Reply{Echo: echo, Pending: true}
	}
	s.pending = nil
	rep := s.run(ctx, src)
	rep.Echo = echo
	return rep
}

func (s *Session) echo(line string) string {
	return s.cfg.Theme.Prompt.Render(s.Prompt()) + Highlight(s.cfg.Theme, line)
}

func (s *Session) remember(line string) {
	if n := len(s.recall); n > 0 && s.recall[n-1] == line {
		return
	}
	s.recall = append(s.recall, line)
}

func (s *Session) run(ctx context.Context, src string) Reply {
	th := s.cfg.Theme
	res, err := s.cfg.Engine.Exec(ctx, engine.Source{Text: src, Mode: history.ModeREPL})
	var rep Reply
	if res.Output != "" {
		s.last = res.Output
		for _, l := range strings.Split(strings.TrimSuffix(res.Output, "\n"), "\n") {
			rep.Lines = append(rep.Lines, th.Output.Render(l))
		}
	}
	if err != nil {
		for _, l := range strings.Split(err.Error(), "\n") {
			rep.Lines = append(rep.Lines, th.Error.Render(l))
		}
		return rep
	}
	if res.Exited {
		rep.Lines = append(rep.Lines, th.Exit.Render(fmt.Sprintf("exit status %d", res.ExitCode)))
		rep.Quit = true
		rep.ExitCode = res.ExitCode
	}
	return rep
}

func (s *Session) fail(err error) Reply {
	return Reply{Lines: []string{s.cfg.Theme.Error.Render(err.Error())}}
}
