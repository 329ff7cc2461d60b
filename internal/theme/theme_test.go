package theme

import (
	"io"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewFallsBackToDefault(t *testing.T) {
	r := NewRenderer(io.Discard, true)
	if got := New("", r).Name; got != NameDefault {
		t.Fatalf("expected default theme, got %q", got)
	}
	if got := New("neon", r).Name; got != NameDefault {
		t.Fatalf("expected default theme for unknown name, got %q", got)
	}
	if got := New(" MONO ", r).Name; got != NameMono {
		t.Fatalf("expected mono theme, got %q", got)
	}
}

func TestPlainRendersWithoutEscapes(t *testing.T) {
	th := Plain()
	cases := map[string]string{
		"keyword": th.Keyword.Render("print"),
		"number":  th.Number.Render("42"),
		"error":   th.Error.Render("boom"),
	}
	want := map[string]string{"keyword": "print", "number": "42", "error": "boom"}
	for name, got := range cases {
		if got != want[name] {
			t.Fatalf("%s: expected %q, got %q", name, want[name], got)
		}
	}
}

func TestNoColorEnvDisablesColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	th := New(NameDefault, NewRenderer(io.Discard, true))
	if got := th.Number.Render("1"); got != "1" {
		t.Fatalf("expected uncolored output, got %q", got)
	}
}

func TestMonoPaletteHasNoColors(t *testing.T) {
	th := New(NameMono, NewRenderer(io.Discard, true))
	if _, ok := th.Number.GetForeground().(lipgloss.NoColor); !ok {
		t.Fatalf("expected no foreground on mono number, got %#v", th.Number.GetForeground())
	}
	if !th.Keyword.GetBold() {
		t.Fatalf("expected bold keywords in mono theme")
	}
}
