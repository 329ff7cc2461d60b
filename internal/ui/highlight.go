package ui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/tinyscript/internal/script"
	"github.com/unkn0wn-root/tinyscript/internal/theme"
)

// Highlight styles src token by token. Whitespace between tokens is kept
// unstyled so the echo lines up with what was typed.
func Highlight(th theme.Theme, src string) string {
	toks := script.Tokens("", src)
	var b strings.Builder
	b.Grow(len(src))
	prev := 0
	for i, t := range toks {
		if t.K == script.EOF {
			break
		}
		start := t.P.Off
		if start > prev {
			b.WriteString(src[prev:start])
		}
		end := len(src)
		if i+1 < len(toks) {
			end = toks[i+1].P.Off
		}
		text := src[start:end]
		body := strings.TrimRightFunc(text, unicode.IsSpace)
		if t.K == script.NEWLINE || body == "" {
			b.WriteString(text)
		} else {
			b.WriteString(styleFor(th, t).Render(body))
			b.WriteString(text[len(body):])
		}
		prev = end
	}
	if prev < len(src) {
		b.WriteString(src[prev:])
	}
	return b.String()
}

func styleFor(th theme.Theme, t script.Tok) lipgloss.Style {
	switch t.K {
	case script.NUMBER:
		return th.Number
	case script.STRING:
		return th.String
	case script.RESERVED:
		return th.Keyword
	case script.OPERATOR:
		return th.Operator
	case script.IDENT:
		return th.Ident
	case script.LPAREN, script.RPAREN, script.LBRACE, script.RBRACE:
		return th.Punct
	case script.ILLEGAL:
		return th.Illegal
	default:
		return th.Output
	}
}

// depth is the number of "{" still open in src.
func depth(src string) int {
	n := 0
	for _, t := range script.Tokens("", src) {
		switch t.K {
		case script.LBRACE:
			n++
		case script.RBRACE:
			n--
		}
	}
	return n
}
