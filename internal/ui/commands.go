package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/unkn0wn-root/tinyscript/internal/history"
	"github.com/unkn0wn-root/tinyscript/internal/script"
)

const defaultHistoryRows = 10

var errNoOutput = errors.New("nothing to copy yet")

var helpRows = [][2]string{
	{":help", "show this help"},
	{":env", "list global variables"},
	{":history [n]", "show the last n entries of this session"},
	{":copy", "copy the last output to the clipboard"},
	{":reset", "clear all globals and reload presets"},
	{":quit", "leave the REPL (also exit or Ctrl+D)"},
}

func (s *Session) command(ctx context.Context, line string) Reply {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case ":q", ":quit", ":exit":
		return Reply{Quit: true}
	case ":h", ":help":
		return Reply{Lines: s.table(helpRows)}
	case ":env":
		return Reply{Lines: s.envLines()}
	case ":history":
		return s.historyLines(arg)
	case ":copy":
		return s.copyLast()
	case ":reset":
		s.pending = nil
		s.cfg.Engine.Reset()
		return Reply{Lines: []string{s.cfg.Theme.Muted.Render("environment reset")}}
	}
	return s.fail(fmt.Errorf("unknown command %s (try :help)", name))
}

func (s *Session) envLines() []string {
	env := s.cfg.Engine.Env()
	names := env.Names()
	if len(names) == 0 {
		return []string{s.cfg.Theme.Muted.Render("no globals defined")}
	}
	rows := make([][3]string, 0, len(names))
	for _, name := range names {
		v, _ := env.Get(name)
		rows = append(rows, [3]string{name, v.TypeName(), displayValue(v)})
	}
	return s.envTable(rows)
}

func displayValue(v script.Primitive) string {
	if v.K == script.VString {
		return strconv.Quote(v.String())
	}
	return v.String()
}

func (s *Session) envTable(rows [][3]string) []string {
	th := s.cfg.Theme
	nameW, typeW := 0, 0
	for _, r := range rows {
		nameW = max(nameW, runewidth.StringWidth(r[0]))
		typeW = max(typeW, runewidth.StringWidth(r[1]))
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, th.TableKey.Render(pad(r[0], nameW))+"  "+
			th.TableType.Render(pad(r[1], typeW))+"  "+
			th.Output.Render(r[2]))
	}
	return out
}

func (s *Session) table(rows [][2]string) []string {
	th := s.cfg.Theme
	w := 0
	for _, r := range rows {
		w = max(w, runewidth.StringWidth(r[0]))
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, th.TableKey.Render(pad(r[0], w))+"  "+th.Muted.Render(r[1]))
	}
	return out
}

func pad(s string, w int) string {
	return runewidth.FillRight(s, w)
}

func (s *Session) historyLines(arg string) Reply {
	n := defaultHistoryRows
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v <= 0 {
			return s.fail(fmt.Errorf("invalid count %q", arg))
		}
		n = v
	}
	store := s.cfg.Engine.History()
	if store == nil {
		return Reply{Lines: []string{s.cfg.Theme.Muted.Render("history is disabled")}}
	}
	entries := store.BySession(s.cfg.Engine.Session())
	if len(entries) == 0 {
		return Reply{Lines: []string{s.cfg.Theme.Muted.Render("no history yet")}}
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	th := s.cfg.Theme
	out := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		status := th.Muted.Render(pad(e.Status, len(history.StatusRuntimeError)))
		if e.Error != "" {
			status = th.Error.Render(pad(e.Status, len(history.StatusRuntimeError)))
		}
		out = append(out, th.Muted.Render(e.ExecutedAt.Format("15:04:05"))+"  "+status+"  "+
			Highlight(th, firstLine(e.Source)))
	}
	return Reply{Lines: out}
}

func firstLine(src string) string {
	line, rest, _ := strings.Cut(strings.TrimSpace(src), "\n")
	if rest != "" {
		return line + " …"
	}
	return line
}

func (s *Session) copyLast() Reply {
	if s.last == "" {
		return s.fail(errNoOutput)
	}
	if err := s.cfg.Copy(s.last); err != nil {
		return s.fail(fmt.Errorf("clipboard unavailable: %w", err))
	}
	return Reply{Lines: []string{s.cfg.Theme.Muted.Render("copied last output")}}
}
