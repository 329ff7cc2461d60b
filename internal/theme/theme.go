package theme

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	NameDefault = "default"
	NameMono    = "mono"
)

// Palette holds the colors a theme is built from. Empty entries render
// without a foreground color.
type Palette struct {
	Accent   lipgloss.Color
	Number   lipgloss.Color
	String   lipgloss.Color
	Keyword  lipgloss.Color
	Operator lipgloss.Color
	Ident    lipgloss.Color
	Muted    lipgloss.Color
	Error    lipgloss.Color
	Success  lipgloss.Color
}

type Theme struct {
	Name         string
	Prompt       lipgloss.Style
	Continuation lipgloss.Style
	Number       lipgloss.Style
	String       lipgloss.Style
	Keyword      lipgloss.Style
	Operator     lipgloss.Style
	Ident        lipgloss.Style
	Punct        lipgloss.Style
	Illegal      lipgloss.Style
	Output       lipgloss.Style
	Error        lipgloss.Style
	Exit         lipgloss.Style
	Muted        lipgloss.Style
	Title        lipgloss.Style
	TableKey     lipgloss.Style
	TableType    lipgloss.Style
}

func DefaultPalette() Palette {
	return Palette{
		Accent:   lipgloss.Color("#7D56F4"),
		Number:   lipgloss.Color("#FF8B39"),
		String:   lipgloss.Color("#6EF17E"),
		Keyword:  lipgloss.Color("#FFD46A"),
		Operator: lipgloss.Color("#56A9DD"),
		Ident:    lipgloss.Color("#dcd7ff"),
		Muted:    lipgloss.Color("#6E6A86"),
		Error:    lipgloss.Color("#FF6E6E"),
		Success:  lipgloss.Color("#5FB3B3"),
	}
}

// NewRenderer returns a renderer for w. Color is disabled when color is
// false or the environment asks for it (NO_COLOR, CLICOLOR=0).
func NewRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if !color || termenv.EnvNoColor() {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// Plain renders every style as unstyled text.
func Plain() Theme {
	return New(NameMono, NewRenderer(io.Discard, false))
}

// New builds the named theme; unknown names fall back to the default.
func New(name string, r *lipgloss.Renderer) Theme {
	if r == nil {
		r = NewRenderer(os.Stdout, true)
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameMono:
		return mono(r)
	default:
		return fromPalette(NameDefault, r, DefaultPalette())
	}
}

func fromPalette(name string, r *lipgloss.Renderer, p Palette) Theme {
	fg := func(c lipgloss.Color) lipgloss.Style {
		st := r.NewStyle()
		if c != "" {
			st = st.Foreground(c)
		}
		return st
	}
	return Theme{
		Name:         name,
		Prompt:       fg(p.Accent).Bold(true),
		Continuation: fg(p.Muted),
		Number:       fg(p.Number),
		String:       fg(p.String),
		Keyword:      fg(p.Keyword).Bold(true),
		Operator:     fg(p.Operator),
		Ident:        fg(p.Ident),
		Punct:        fg(p.Muted),
		Illegal:      fg(p.Error).Underline(true),
		Output:       r.NewStyle(),
		Error:        fg(p.Error).Bold(true),
		Exit:         fg(p.Success),
		Muted:        fg(p.Muted),
		Title:        fg(p.Accent).Bold(true),
		TableKey:     fg(p.Ident).Bold(true),
		TableType:    fg(p.Muted).Italic(true),
	}
}

func mono(r *lipgloss.Renderer) Theme {
	th := fromPalette(NameMono, r, Palette{})
	th.Illegal = r.NewStyle().Reverse(true)
	th.Error = r.NewStyle().Bold(true)
	return th
}
