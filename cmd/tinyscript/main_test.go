package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"

	"github.com/unkn0wn-root/tinyscript/internal/history"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TINYSCRIPT_CONFIG_DIR", dir)
	t.Setenv("TINYSCRIPT_TRACE_OTEL_ENDPOINT", "")
	t.Setenv("NO_COLOR", "1")
	return dir
}

func writeScript(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunFileUsesReturnCode(t *testing.T) {
	dir := isolate(t)
	path := writeScript(t, "demo.ts", heredoc.Doc(`
		a = 1
		print a
		return a + 2
		print 99
	`))

	code, out, errOut := runCLI(t, "", path)
	if code != 3 {
		t.Fatalf("expected exit 3, got %d (stderr %q)", code, errOut)
	}
	if out != "1\n" {
		t.Fatalf("unexpected stdout %q", out)
	}

	store := history.NewStore(filepath.Join(dir, "history.json"), 10)
	if err := store.Load(); err != nil {
		t.Fatalf("load history: %v", err)
	}
	entries := store.Entries()
	if len(entries) != 1 || entries[0].Status != history.StatusExit || entries[0].ExitCode != 3 {
		t.Fatalf("unexpected history %+v", entries)
	}
}

func TestRunFileReportsErrors(t *testing.T) {
	isolate(t)
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"runtime", "print 1\nprint 1 + \"a\"\n", "type error"},
		{"parse", "print 1 2\n", "expected newline"},
		{"limit", "a = 1\na = a + 1\na = a + 1\n", "step limit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScript(t, tc.name+".ts", tc.src)
			code, _, errOut := runCLI(t, "", "-max-steps", "8", path)
			if code != 1 {
				t.Fatalf("expected exit 1, got %d", code)
			}
			if !strings.Contains(errOut, tc.want) {
				t.Fatalf("expected %q in stderr, got %q", tc.want, errOut)
			}
		})
	}
}

func TestExpectFlag(t *testing.T) {
	isolate(t)
	path := writeScript(t, "demo.ts", "print 1\nprint 2\n")
	good := writeScript(t, "good.out", "1\n2\n")
	bad := writeScript(t, "bad.out", "1\n3\n")

	code, out, _ := runCLI(t, "", "-expect", good, path)
	if code != 0 || out != "" {
		t.Fatalf("expected silent match, got %d %q", code, out)
	}

	code, out, _ = runCLI(t, "", "-expect", bad, path)
	if code != 1 {
		t.Fatalf("expected mismatch exit 1, got %d", code)
	}
	if !strings.Contains(out, "-3") || !strings.Contains(out, "+2") {
		t.Fatalf("expected unified diff, got %q", out)
	}
}

func TestDumpFlags(t *testing.T) {
	isolate(t)
	path := writeScript(t, "demo.ts", "print 1 + 2 * 3")

	code, out, _ := runCLI(t, "", "-ast", path)
	if code != 0 || out != "(print (+ 1 (* 2 3)))\n" {
		t.Fatalf("unexpected ast dump %d %q", code, out)
	}

	path = writeScript(t, "tok.ts", "print 1")
	code, out, _ = runCLI(t, "", "-tokens", path)
	want := "1:1 RESERVED print\n1:7 NUMBER 1\n1:8 EOF\n"
	if code != 0 || out != want {
		t.Fatalf("unexpected token dump %d %q", code, out)
	}
}

func TestPlainREPLWithPresets(t *testing.T) {
	isolate(t)
	preset := writeScript(t, "vars.env", "n=100\nname=\"bob\"\n")
	input := heredoc.Doc(`
		n += 1
		if n > 100 {
		  print name
		}
		print n
		print "x" + 1
		print 5
	`)

	code, out, _ := runCLI(t, input, "-preset", preset)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %q", out)
	}
	if lines[0] != "bob" || lines[1] != "101" || !strings.Contains(lines[2], "type error") || lines[3] != "5" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPlainREPLReturnAndUnterminatedBlock(t *testing.T) {
	isolate(t)
	if code, _, _ := runCLI(t, "print 1\nreturn 7\nprint 2\n"); code != 7 {
		t.Fatalf("expected exit 7, got %d", code)
	}
	if code, _, _ := runCLI(t, "if 1 < 2 {\nprint 1\n"); code != 1 {
		t.Fatalf("expected exit 1 for unterminated block, got %d", code)
	}
}

func TestVersionAndInitConfig(t *testing.T) {
	dir := isolate(t)
	code, out, _ := runCLI(t, "", "-version")
	if code != 0 || !strings.HasPrefix(out, "tinyscript dev") {
		t.Fatalf("unexpected version output %d %q", code, out)
	}

	code, out, _ = runCLI(t, "", "-init-config")
	want := filepath.Join(dir, "settings.toml")
	if code != 0 || strings.TrimSpace(out) != want {
		t.Fatalf("unexpected init output %d %q", code, out)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected settings file: %v", err)
	}
}
