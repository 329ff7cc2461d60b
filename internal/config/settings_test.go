package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettingsReturnsDefaultHandleWhenMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TINYSCRIPT_CONFIG_DIR", dir)

	settings, handle, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings returned error: %v", err)
	}
	expectedPath := filepath.Join(dir, "settings.toml")
	if handle.Path != expectedPath {
		t.Fatalf("expected handle path %q, got %q", expectedPath, handle.Path)
	}
	if handle.Format != SettingsFormatTOML {
		t.Fatalf("expected format %q, got %q", SettingsFormatTOML, handle.Format)
	}
	if settings.Prompt != DefaultPrompt {
		t.Fatalf("expected default prompt, got %q", settings.Prompt)
	}
	if settings.Limits.MaxDepth != LimitMaxDepthDefault {
		t.Fatalf("expected default depth, got %d", settings.Limits.MaxDepth)
	}
	if !settings.History.Enabled || settings.History.Backend != HistoryBackendJSON {
		t.Fatalf("unexpected history defaults %+v", settings.History)
	}
	if settings.History.Path != filepath.Join(dir, "history.json") {
		t.Fatalf("unexpected history path %q", settings.History.Path)
	}
	if !settings.ColorEnabled() {
		t.Fatalf("expected color on by default")
	}
}

func TestSaveAndLoadSettingsTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TINYSCRIPT_CONFIG_DIR", dir)

	off := false
	want := Settings{
		Prompt: "ts> ",
		Theme:  "mono",
		Color:  &off,
		Limits: LimitSettings{MaxSteps: 1000, Timeout: "2s"},
	}
	if err := SaveSettings(want, SettingsHandle{}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, handle, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got.Prompt != want.Prompt || got.Theme != ThemeMono {
		t.Fatalf("unexpected settings %+v", got)
	}
	if got.ColorEnabled() {
		t.Fatalf("expected color disabled")
	}
	if got.Limits.MaxSteps != 1000 || got.Limits.TimeoutDuration() != 2*time.Second {
		t.Fatalf("unexpected limits %+v", got.Limits)
	}
	if handle.Format != SettingsFormatTOML {
		t.Fatalf("expected format %q after save, got %q", SettingsFormatTOML, handle.Format)
	}
}

func TestLoadSettingsYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TINYSCRIPT_CONFIG_DIR", dir)

	src := "prompt: \"$ \"\nhistory:\n  backend: sqlite\n  max_entries: 3\nrecover: true\n"
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write yaml settings: %v", err)
	}

	got, handle, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if handle.Format != SettingsFormatYAML {
		t.Fatalf("expected yaml format, got %q", handle.Format)
	}
	if got.Prompt != "$ " || !got.Recover {
		t.Fatalf("unexpected settings %+v", got)
	}
	if got.History.Backend != HistoryBackendSQLite ||
		got.History.MaxEntries != HistoryMaxEntriesMin {
		t.Fatalf("unexpected history %+v", got.History)
	}
	if got.History.Path != filepath.Join(dir, "history.db") {
		t.Fatalf("unexpected history path %q", got.History.Path)
	}
}

func TestLoadSettingsJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TINYSCRIPT_CONFIG_DIR", dir)

	payload := Settings{Theme: "mono", Presets: "vars.env"}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write json settings: %v", err)
	}

	got, handle, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got.Theme != ThemeMono || got.Presets != "vars.env" {
		t.Fatalf("unexpected settings %+v", got)
	}
	if handle.Format != SettingsFormatJSON {
		t.Fatalf("expected json format, got %q", handle.Format)
	}
	if handle.Path != path {
		t.Fatalf("expected handle path %q, got %q", path, handle.Path)
	}
}

func TestLoadSettingsParseErrorStops(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TINYSCRIPT_CONFIG_DIR", dir)

	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte("prompt = ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := LoadSettings(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	if err := os.WriteFile(path, []byte("theme: mono\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, handle, err := LoadSettingsFile(path)
	if err != nil {
		t.Fatalf("LoadSettingsFile: %v", err)
	}
	if handle.Format != SettingsFormatYAML || got.Theme != ThemeMono {
		t.Fatalf("unexpected result %+v %+v", handle, got)
	}
}
