package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/unkn0wn-root/tinyscript/internal/engine"
	"github.com/unkn0wn-root/tinyscript/internal/history"
	"github.com/unkn0wn-root/tinyscript/internal/script"
	"github.com/unkn0wn-root/tinyscript/internal/theme"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 50)
	eng := engine.New(engine.Options{
		History: store,
		Globals: map[string]script.Primitive{"n": script.Num(100)},
	})
	return NewSession(Config{Engine: eng, Theme: theme.Plain()})
}

func feed(t *testing.T, s *Session, lines ...string) Reply {
	t.Helper()
	var rep Reply
	for _, l := range lines {
		rep = s.Feed(context.Background(), l)
	}
	return rep
}

func plainLines(rep Reply) string {
	out := make([]string, 0, len(rep.Lines))
	for _, l := range rep.Lines {
		out = append(out, ansi.Strip(l))
	}
	return strings.Join(out, "\n")
}

func TestFeedRunsAndKeepsState(t *testing.T) {
	s := newTestSession(t)
	feed(t, s, "a = 5")
	rep := feed(t, s, "print a + n")
	if got := plainLines(rep); got != "105" {
		t.Fatalf("expected 105, got %q", got)
	}
	if rep.Echo != "> print a + n" {
		t.Fatalf("unexpected echo %q", rep.Echo)
	}
}

func TestFeedBuffersUnbalancedBlocks(t *testing.T) {
	s := newTestSession(t)
	rep := feed(t, s, "if n > 1 {")
	if !rep.Pending || s.Prompt() != ". " {
		t.Fatalf("expected pending entry, got %+v prompt %q", rep, s.Prompt())
	}
	rep = feed(t, s, `  print "big"`)
	if !rep.Pending || !strings.HasPrefix(rep.Echo, ". ") {
		t.Fatalf("expected continuation, got %+v", rep)
	}
	rep = feed(t, s, "}")
	if rep.Pending {
		t.Fatalf("expected entry to complete")
	}
	if got := plainLines(rep); got != "big" {
		t.Fatalf("expected big, got %q", got)
	}
	if s.Prompt() != "> " {
		t.Fatalf("expected primary prompt, got %q", s.Prompt())
	}
}

func TestFeedReportsErrorsAndContinues(t *testing.T) {
	s := newTestSession(t)
	rep := feed(t, s, `print 1 + "a"`)
	if rep.Quit || !strings.Contains(plainLines(rep), "type error") {
		t.Fatalf("expected type error, got %+v", rep)
	}
	rep = feed(t, s, "print 2 3")
	if !strings.Contains(plainLines(rep), "expected newline") {
		t.Fatalf("expected parse error, got %q", plainLines(rep))
	}
	rep = feed(t, s, "print 7")
	if plainLines(rep) != "7" {
		t.Fatalf("expected session to continue, got %q", plainLines(rep))
	}
}

func TestFeedReturnQuits(t *testing.T) {
	s := newTestSession(t)
	rep := feed(t, s, "return 3")
	if !rep.Quit || rep.ExitCode != 3 {
		t.Fatalf("expected quit with 3, got %+v", rep)
	}
	if !feed(t, s, "exit").Quit {
		t.Fatalf("expected exit to quit")
	}
}

func TestCommands(t *testing.T) {
	s := newTestSession(t)
	feed(t, s, "abc = \"hi\"", "flag = 1 < 2")

	env := plainLines(feed(t, s, ":env"))
	want := strings.Join([]string{
		`abc   string   "hi"`,
		`flag  boolean  true`,
		`n     number   100`,
	}, "\n")
	if env != want {
		t.Fatalf("unexpected env table:\n%s\nwant:\n%s", env, want)
	}

	hist := plainLines(feed(t, s, ":history 1"))
	if !strings.Contains(hist, "flag = 1 < 2") || strings.Contains(hist, "abc") {
		t.Fatalf("unexpected history %q", hist)
	}

	feed(t, s, ":reset")
	env = plainLines(feed(t, s, ":env"))
	if env != "n  number  100" {
		t.Fatalf("expected presets only after reset, got %q", env)
	}

	if got := plainLines(feed(t, s, ":nope")); !strings.Contains(got, "unknown command") {
		t.Fatalf("expected unknown command, got %q", got)
	}
	if !feed(t, s, ":quit").Quit {
		t.Fatalf("expected :quit to quit")
	}
}

func TestCopyUsesLastOutput(t *testing.T) {
	var copied string
	s := newTestSession(t)
	s.cfg.Copy = func(v string) error {
		copied = v
		return nil
	}
	if got := plainLines(feed(t, s, ":copy")); !strings.Contains(got, "nothing to copy") {
		t.Fatalf("expected empty copy error, got %q", got)
	}
	feed(t, s, "print 1", "a = 2")
	feed(t, s, ":copy")
	if copied != "1\n" {
		t.Fatalf("expected last output, got %q", copied)
	}

	s.cfg.Copy = func(string) error { return errors.New("no display") }
	if got := plainLines(feed(t, s, ":copy")); !strings.Contains(got, "clipboard unavailable") {
		t.Fatalf("expected clipboard error, got %q", got)
	}
}

func TestRecallSkipsBlanksAndDuplicates(t *testing.T) {
	s := newTestSession(t)
	feed(t, s, "a = 1", "", "a = 1", "print a")
	got := s.Recall()
	if len(got) != 2 || got[0] != "a = 1" || got[1] != "print a" {
		t.Fatalf("unexpected recall %q", got)
	}
}
