package config

import (
	"path/filepath"
	"strings"
	"time"
)

type LimitSettings struct {
	MaxSteps int    `json:"max_steps" toml:"max_steps" yaml:"max_steps"`
	MaxDepth int    `json:"max_depth" toml:"max_depth" yaml:"max_depth"`
	Timeout  string `json:"timeout"   toml:"timeout"   yaml:"timeout"`
}

const (
	LimitMaxDepthDefault = 512
	LimitMaxDepthMin     = 16
	LimitMaxDepthMax     = 8192
)

func DefaultLimitSettings() LimitSettings {
	return LimitSettings{MaxDepth: LimitMaxDepthDefault}
}

func NormaliseLimitSettings(in LimitSettings) LimitSettings {
	out := DefaultLimitSettings()
	out.MaxDepth = clamp(in.MaxDepth, LimitMaxDepthMin, LimitMaxDepthMax, LimitMaxDepthDefault)
	if in.MaxSteps > 0 {
		out.MaxSteps = in.MaxSteps
	}
	if d, err := time.ParseDuration(strings.TrimSpace(in.Timeout)); err == nil && d > 0 {
		out.Timeout = d.String()
	}
	return out
}

// TimeoutDuration returns zero for an empty or invalid timeout.
func (l LimitSettings) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(l.Timeout))
	if err != nil || d < 0 {
		return 0
	}
	return d
}

type HistoryBackend string

const (
	HistoryBackendJSON   HistoryBackend = "json"
	HistoryBackendSQLite HistoryBackend = "sqlite"
)

type HistorySettings struct {
	Enabled    bool           `json:"enabled"     toml:"enabled"     yaml:"enabled"`
	Backend    HistoryBackend `json:"backend"     toml:"backend"     yaml:"backend"`
	Path       string         `json:"path"        toml:"path"        yaml:"path"`
	MaxEntries int            `json:"max_entries" toml:"max_entries" yaml:"max_entries"`
}

const (
	HistoryMaxEntriesDefault = 500
	HistoryMaxEntriesMin     = 10
	HistoryMaxEntriesMax     = 100000
)

func NormaliseHistorySettings(in HistorySettings, dir string) HistorySettings {
	out := in
	out.Backend = normaliseBackend(in.Backend)
	out.MaxEntries = clamp(
		in.MaxEntries,
		HistoryMaxEntriesMin,
		HistoryMaxEntriesMax,
		HistoryMaxEntriesDefault,
	)
	if strings.TrimSpace(out.Path) == "" {
		name := "history.json"
		if out.Backend == HistoryBackendSQLite {
			name = "history.db"
		}
		out.Path = filepath.Join(dir, name)
	}
	return out
}

func normaliseBackend(in HistoryBackend) HistoryBackend {
	switch strings.ToLower(strings.TrimSpace(string(in))) {
	case string(HistoryBackendSQLite):
		return HistoryBackendSQLite
	default:
		return HistoryBackendJSON
	}
}

func clamp[T ~int | ~float64](value, min, max, fallback T) T {
	if value == 0 {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
