package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	SettingsFormatTOML SettingsFormat = "toml"
	SettingsFormatYAML SettingsFormat = "yaml"
	SettingsFormatJSON SettingsFormat = "json"
)

const (
	DefaultPrompt             = "> "
	DefaultContinuationPrompt = ". "
	ThemeDefault              = "default"
	ThemeMono                 = "mono"
)

type Settings struct {
	Prompt             string          `json:"prompt"              toml:"prompt"              yaml:"prompt"`
	ContinuationPrompt string          `json:"continuation_prompt" toml:"continuation_prompt" yaml:"continuation_prompt"`
	Theme              string          `json:"theme"               toml:"theme"               yaml:"theme"`
	Color              *bool           `json:"color,omitempty"     toml:"color,omitempty"     yaml:"color,omitempty"`
	Limits             LimitSettings   `json:"limits"              toml:"limits"              yaml:"limits"`
	History            HistorySettings `json:"history"             toml:"history"             yaml:"history"`
	Presets            string          `json:"presets"             toml:"presets"             yaml:"presets"`
	Recover            bool            `json:"recover"             toml:"recover"             yaml:"recover"`
}

type SettingsFormat string
type SettingsHandle struct {
	Path   string
	Format SettingsFormat
}

// ColorEnabled defaults to true when the setting is absent.
func (s Settings) ColorEnabled() bool {
	return s.Color == nil || *s.Color
}

// Dir resolves $TINYSCRIPT_CONFIG_DIR, then $XDG_CONFIG_HOME/tinyscript,
// then ~/.config/tinyscript.
func Dir() string {
	if dir := strings.TrimSpace(os.Getenv("TINYSCRIPT_CONFIG_DIR")); dir != "" {
		return dir
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "tinyscript")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".tinyscript")
	}
	return filepath.Join(home, ".config", "tinyscript")
}

func DefaultSettings() Settings {
	return Normalise(Settings{History: HistorySettings{Enabled: true}})
}

// Normalise fills defaults and clamps out-of-range values.
func Normalise(in Settings) Settings {
	out := in
	if out.Prompt == "" {
		out.Prompt = DefaultPrompt
	}
	if out.ContinuationPrompt == "" {
		out.ContinuationPrompt = DefaultContinuationPrompt
	}
	switch strings.ToLower(strings.TrimSpace(out.Theme)) {
	case ThemeMono:
		out.Theme = ThemeMono
	default:
		out.Theme = ThemeDefault
	}
	out.Limits = NormaliseLimitSettings(in.Limits)
	out.History = NormaliseHistorySettings(in.History, Dir())
	out.Presets = strings.TrimSpace(in.Presets)
	return out
}

// LoadSettings tries TOML, then YAML, then JSON. A missing file skips to the
// next format; a parse error fails immediately. With none present the
// defaults are returned with a TOML handle.
func LoadSettings() (Settings, SettingsHandle, error) {
	dir := Dir()
	candidates := []SettingsHandle{
		{Path: filepath.Join(dir, "settings.toml"), Format: SettingsFormatTOML},
		{Path: filepath.Join(dir, "settings.yaml"), Format: SettingsFormatYAML},
		{Path: filepath.Join(dir, "settings.json"), Format: SettingsFormatJSON},
	}

	var accumulated error
	for _, candidate := range candidates {
		settings, err := loadFile(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		var perr *parseError
		if errors.As(err, &perr) {
			return Settings{}, SettingsHandle{}, err
		}
		if err != nil {
			accumulated = errors.Join(accumulated, err)
			continue
		}
		return settings, candidate, nil
	}

	if accumulated != nil {
		return Settings{}, SettingsHandle{}, accumulated
	}
	return DefaultSettings(), candidates[0], nil
}

// LoadSettingsFile reads an explicit settings file; the format follows the
// extension.
func LoadSettingsFile(path string) (Settings, SettingsHandle, error) {
	handle := SettingsHandle{Path: path, Format: formatFor(path)}
	settings, err := loadFile(handle)
	if err != nil {
		return Settings{}, SettingsHandle{}, err
	}
	return settings, handle, nil
}

type parseError struct {
	path string
	err  error
}

func (e *parseError) Error() string { return fmt.Sprintf("parse settings %q: %v", e.path, e.err) }
func (e *parseError) Unwrap() error { return e.err }

func loadFile(handle SettingsHandle) (Settings, error) {
	data, err := os.ReadFile(handle.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, err
		}
		return Settings{}, fmt.Errorf("read settings %q: %w", handle.Path, err)
	}
	settings, err := decodeSettings(data, handle.Format)
	if err != nil {
		return Settings{}, &parseError{path: handle.Path, err: err}
	}
	return Normalise(settings), nil
}

func formatFor(path string) SettingsFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SettingsFormatYAML
	case ".json":
		return SettingsFormatJSON
	default:
		return SettingsFormatTOML
	}
}

func decodeSettings(data []byte, format SettingsFormat) (Settings, error) {
	settings := Settings{History: HistorySettings{Enabled: true}}
	switch format {
	case SettingsFormatTOML:
		if err := toml.Unmarshal(data, &settings); err != nil {
			return Settings{}, err
		}
	case SettingsFormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&settings); err != nil && !errors.Is(err, io.EOF) {
			return Settings{}, err
		}
	case SettingsFormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&settings); err != nil {
			return Settings{}, err
		}
	default:
		return Settings{}, fmt.Errorf("unsupported settings format %q", format)
	}
	return settings, nil
}

func SaveSettings(settings Settings, handle SettingsHandle) error {
	settings = Normalise(settings)
	path := handle.Path
	format := handle.Format
	if path == "" {
		path = filepath.Join(Dir(), "settings.toml")
	}
	if format == "" {
		format = formatFor(path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure settings directory: %w", err)
	}

	var (
		data []byte
		err  error
	)

	switch format {
	case SettingsFormatTOML:
		data, err = toml.Marshal(settings)
	case SettingsFormatYAML:
		data, err = yaml.Marshal(settings)
	case SettingsFormatJSON:
		buffer := &bytes.Buffer{}
		encoder := json.NewEncoder(buffer)
		encoder.SetIndent("", "  ")
		if err = encoder.Encode(settings); err == nil {
			data = buffer.Bytes()
		}
	default:
		return fmt.Errorf("unsupported settings format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings %q: %w", path, err)
	}
	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tinyscript-settings-*.tmp")
	if err != nil {
		return err
	}

	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return errors.Join(err, tmp.Close())
	}
	if err := tmp.Chmod(perm); err != nil {
		return errors.Join(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
