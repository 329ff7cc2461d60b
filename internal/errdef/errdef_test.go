package errdef

import (
	"errors"
	"io/fs"
	"testing"
)

func TestWrapKeepsChain(t *testing.T) {
	err := Wrap(CodeFilesystem, fs.ErrNotExist, "read %s", "a.ts")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected chain to reach fs.ErrNotExist")
	}
	if CodeOf(err) != CodeFilesystem {
		t.Fatalf("expected filesystem code, got %s", CodeOf(err))
	}
	if err.Error() != "read a.ts: file does not exist" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if Message(err) != "file does not exist" {
		t.Fatalf("unexpected inner message %q", Message(err))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(CodeScript, nil, "x") != nil {
		t.Fatalf("expected nil")
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if CodeOf(errors.New("x")) != CodeUnknown {
		t.Fatalf("expected unknown code")
	}
	if Message(New(CodeConfig, "bad %d", 1)) != "bad 1" {
		t.Fatalf("unexpected message")
	}
}
