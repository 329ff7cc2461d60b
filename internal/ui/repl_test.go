package ui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/unkn0wn-root/tinyscript/internal/engine"
	"github.com/unkn0wn-root/tinyscript/internal/history"
	"github.com/unkn0wn-root/tinyscript/internal/theme"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 50)
	eng := engine.New(engine.Options{History: store})
	return New(context.Background(), Config{Engine: eng, Theme: theme.Plain()})
}

func typeLine(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if !m.busy || cmd == nil {
		t.Fatalf("expected submit to start work")
	}
	msg := cmd()
	next, cmd = m.Update(msg)
	return next.(Model), cmd
}

func TestModelSubmitRunsEntry(t *testing.T) {
	m := newTestModel(t)
	m, cmd := typeLine(t, m, "print 6 * 7")
	if m.busy {
		t.Fatalf("expected reply to clear busy state")
	}
	if cmd == nil {
		t.Fatalf("expected print command for output")
	}
	if got := ansi.Strip(m.View()); got == "" {
		t.Fatalf("expected input view")
	}
}

func TestModelContinuationPrompt(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeLine(t, m, "if 1 < 2 {")
	if got := ansi.Strip(m.input.Prompt); got != ". " {
		t.Fatalf("expected continuation prompt, got %q", got)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)
	if m.sess.Pending() {
		t.Fatalf("expected ctrl+c to drop the pending entry")
	}
	if got := ansi.Strip(m.input.Prompt); got != "> " {
		t.Fatalf("expected primary prompt, got %q", got)
	}
}

func TestModelRecall(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeLine(t, m, "a = 1")
	m, _ = typeLine(t, m, "print a")
	m.input.SetValue("dra")

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}
	steps := []struct {
		key  tea.KeyMsg
		want string
	}{
		{up, "print a"},
		{up, "a = 1"},
		{up, "a = 1"},
		{down, "print a"},
		{down, "dra"},
	}
	for i, st := range steps {
		next, _ := m.Update(st.key)
		m = next.(Model)
		if got := m.input.Value(); got != st.want {
			t.Fatalf("step %d: expected %q, got %q", i, st.want, got)
		}
	}
}

func TestModelReturnQuitsWithCode(t *testing.T) {
	m := newTestModel(t)
	m, _ = typeLine(t, m, "return 5")
	if !m.quitting || m.ExitCode() != 5 {
		t.Fatalf("expected quit with 5, got quitting=%v code=%d", m.quitting, m.ExitCode())
	}
	if m.View() != "" {
		t.Fatalf("expected empty view after quit")
	}
}
