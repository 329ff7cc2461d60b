package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/tinyscript/internal/errdef"
)

const (
	ModeFile = "file"
	ModeREPL = "repl"

	StatusOK           = "ok"
	StatusExit         = "exit"
	StatusParseError   = "parse error"
	StatusRuntimeError = "runtime error"
)

type Entry struct {
	ID         string        `json:"id"`
	Session    string        `json:"session"`
	ExecutedAt time.Time     `json:"executedAt"`
	Mode       string        `json:"mode"`
	FilePath   string        `json:"filePath,omitempty"`
	Source     string        `json:"source"`
	Output     string        `json:"output,omitempty"`
	Status     string        `json:"status"`
	ExitCode   int           `json:"exitCode"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	Steps      int           `json:"steps"`
}

// Recorder is implemented by the JSON file store and the SQLite store.
// Entries are returned newest first.
type Recorder interface {
	Load() error
	Append(entry Entry) error
	Entries() []Entry
	BySession(id string) []Entry
	ByFile(path string) []Entry
	Delete(id string) (bool, error)
	Close() error
}

// Open returns the store for backend ("json" or "sqlite").
func Open(backend, path string, maxEntries int) (Recorder, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "json":
		return NewStore(path, maxEntries), nil
	case "sqlite":
		store, err := OpenSQLite(path, maxEntries)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errdef.New(errdef.CodeHistory, "unknown history backend %q", backend)
	}
}

func prepare(entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ExecutedAt.IsZero() {
		entry.ExecutedAt = time.Now()
	}
	if entry.FilePath != "" {
		entry.FilePath = filepath.Clean(entry.FilePath)
	}
	return entry
}

type Store struct {
	path       string
	maxEntries int
	entries    []Entry
	mu         sync.RWMutex
	loaded     bool
}

func NewStore(path string, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	return &Store{path: path, maxEntries: maxEntries}
}

func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoadedLocked()
}

func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(); err != nil {
		return err
	}

	s.entries = append([]Entry{prepare(entry)}, s.entries...)
	s.sortEntriesLocked()
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[:s.maxEntries]
	}

	return s.persist()
}

func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copies := make([]Entry, len(s.entries))
	copy(copies, s.entries)
	return copies
}

func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(); err != nil {
		return false, err
	}

	idx := -1
	for i, entry := range s.entries {
		if entry.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	copy(s.entries[idx:], s.entries[idx+1:])
	s.entries = s.entries[:len(s.entries)-1]

	if err := s.persist(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) BySession(id string) []Entry {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return s.filter(func(e Entry) bool { return e.Session == id })
}

func (s *Store) ByFile(path string) []Entry {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	cleaned := filepath.Clean(trimmed)
	return s.filter(func(e Entry) bool {
		return e.FilePath != "" && filepath.Clean(e.FilePath) == cleaned
	})
}

func (s *Store) Close() error { return nil }

func (s *Store) filter(keep func(Entry) bool) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Entry
	for _, entry := range s.entries {
		if keep(entry) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return newerFirst(matched[i], matched[j])
	})
	return matched
}

func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create history dir")
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "encode history")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "write history tmp")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "replace history file")
	}
	return nil
}

func (s *Store) sortEntriesLocked() {
	if len(s.entries) < 2 {
		return
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return newerFirst(s.entries[i], s.entries[j])
	})
}

func (s *Store) ensureLoadedLocked() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.entries = []Entry{}
			s.loaded = true
			return nil
		}
		return errdef.Wrap(errdef.CodeHistory, err, "read history")
	}

	if len(data) == 0 {
		s.entries = []Entry{}
		s.loaded = true
		return nil
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "parse history")
	}

	s.sortEntriesLocked()
	s.loaded = true
	return nil
}

func newerFirst(a, b Entry) bool {
	ai := a.ExecutedAt
	bi := b.ExecutedAt
	switch {
	case ai.IsZero() && bi.IsZero():
		return a.ID > b.ID
	case ai.IsZero():
		return false
	case bi.IsZero():
		return true
	case ai.Equal(bi):
		return a.ID > b.ID
	default:
		return ai.After(bi)
	}
}
