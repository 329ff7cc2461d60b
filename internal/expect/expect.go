// Package expect compares script output against a golden file.
package expect

import (
	"os"
	"strings"

	udiff "github.com/aymanbagabas/go-udiff"

	"github.com/unkn0wn-root/tinyscript/internal/errdef"
)

type Result struct {
	Match bool
	Diff  string
}

// Compare normalises line endings and reports a unified diff from want to got.
func Compare(label, want, got string) Result {
	want = normalise(want)
	got = normalise(got)
	if want == got {
		return Result{Match: true}
	}
	return Result{Diff: udiff.Unified(label+" (expected)", label+" (actual)", want, got)}
}

// CompareFile reads the expected output from path.
func CompareFile(path, got string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, errdef.Wrap(errdef.CodeFilesystem, err, "read expected output %s", path)
	}
	return Compare(path, string(data), got), nil
}

func normalise(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
