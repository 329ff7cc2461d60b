package script

import "testing"

func lexKinds(src string) []Kind {
	var out []Kind
	for _, t := range Tokens("test", src) {
		out = append(out, t.K)
	}
	return out
}

func sameKinds(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLexerKinds(t *testing.T) {
	cases := []struct {
		src  string
		want []Kind
	}{
		{"print 1", []Kind{RESERVED, NUMBER, EOF}},
		{"x = 5\n", []Kind{IDENT, OPERATOR, NUMBER, NEWLINE, EOF}},
		{"(1 + 2)", []Kind{LPAREN, NUMBER, OPERATOR, NUMBER, RPAREN, EOF}},
		{"if a {\n}", []Kind{RESERVED, IDENT, LBRACE, NEWLINE, RBRACE, EOF}},
		{`"hi there"`, []Kind{STRING, EOF}},
		{"printer", []Kind{IDENT, EOF}},
		{"\t 1\r\n", []Kind{NUMBER, NEWLINE, EOF}},
	}
	for _, tc := range cases {
		got := lexKinds(tc.src)
		if !sameKinds(got, tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.src, tc.want, got)
		}
	}
}

func TestLexerOperatorsLongestMatch(t *testing.T) {
	cases := map[string]Operator{
		"===": OpIdentical,
		"==":  OpEq,
		"=":   OpAssign,
		"!=":  OpNe,
		"!":   OpNot,
		"&&":  OpAnd,
		"&":   OpBitAnd,
		"||":  OpOr,
		"|":   OpBitOr,
		">=":  OpGe,
		"<":   OpLt,
		"+=":  OpAddAssign,
		"%=":  OpModAssign,
	}
	for src, want := range cases {
		toks := Tokens("test", src)
		if len(toks) != 2 || toks[0].K != OPERATOR || toks[0].Op != want {
			t.Fatalf("%q: expected single %s, got %v", src, want, toks)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	cases := map[string]float64{
		"42":   42,
		"3.25": 3.25,
		"-2":   -2,
		".5":   0.5,
	}
	for src, want := range cases {
		toks := Tokens("test", src)
		if toks[0].K != NUMBER || toks[0].N != want {
			t.Fatalf("%q: expected number %v, got %v", src, want, toks[0])
		}
	}
}

func TestLexerFailedNumberRewinds(t *testing.T) {
	toks := Tokens("test", "1.2.3")
	if toks[0].K != IDENT || toks[0].Lit != "1.2.3" {
		t.Fatalf("expected identifier 1.2.3, got %v", toks[0])
	}
	toks = Tokens("test", "- 1")
	if toks[0].K != OPERATOR || toks[0].Op != OpSub {
		t.Fatalf("expected operator -, got %v", toks[0])
	}
	if toks[1].K != NUMBER || toks[1].N != 1 {
		t.Fatalf("expected number 1, got %v", toks[1])
	}
}

func TestLexerSignGluesToFollowingDigits(t *testing.T) {
	toks := Tokens("test", "a +5")
	if len(toks) != 3 || toks[0].K != IDENT || toks[1].K != NUMBER {
		t.Fatalf("expected identifier then number, got %v", toks)
	}
	if toks[1].Lit != "+5" || toks[1].N != 5 {
		t.Fatalf("expected signed literal +5, got %v", toks[1])
	}
	toks = Tokens("test", "1-1")
	if toks[0].N != 1 || toks[1].K != NUMBER || toks[1].N != -1 {
		t.Fatalf("expected 1 then -1, got %v", toks)
	}
}

func TestLexerKeywordNeedsSpace(t *testing.T) {
	toks := Tokens("test", "print x")
	if !toks[0].IsKw(KwPrint) {
		t.Fatalf("expected print keyword, got %v", toks[0])
	}
	toks = Tokens("test", "print")
	if toks[0].K != IDENT {
		t.Fatalf("expected bare print to be an identifier, got %v", toks[0])
	}
	toks = Tokens("test", "}else{")
	if toks[1].K != RESERVED || toks[1].Kw != KwElse || toks[2].K != LBRACE {
		t.Fatalf("expected else without space, got %v", toks)
	}
}

func TestLexerStringNoEscapes(t *testing.T) {
	toks := Tokens("test", `"a\n b"`)
	if toks[0].K != STRING || toks[0].Lit != `a\n b` {
		t.Fatalf("expected raw string content, got %v", toks[0])
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	toks := Tokens("test", `print "abc`)
	if toks[1].K != ILLEGAL {
		t.Fatalf("expected illegal token, got %v", toks[1])
	}
}

func TestLexerPositions(t *testing.T) {
	toks := Tokens("f.ts", "x = 1\n  print x")
	last := toks[len(toks)-2]
	if last.P.Line != 2 || last.P.Col != 9 {
		t.Fatalf("expected 2:9, got %s", last.P)
	}
	if got := toks[4].String(); got != `f.ts:2:3 RESERVED print` {
		t.Fatalf("unexpected token dump %q", got)
	}
}
