// Package watcher polls script files and reports content changes.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type EventKind int

const (
	EventChanged EventKind = iota
	EventMissing
)

func (k EventKind) String() string {
	if k == EventMissing {
		return "missing"
	}
	return "changed"
}

type Fingerprint struct {
	Mod  time.Time
	Size int64
	Hash string
}

// Event reports a tracked file whose content hash changed or which
// disappeared. Data holds the new content for EventChanged.
type Event struct {
	Path string
	Kind EventKind
	Prev Fingerprint
	Curr Fingerprint
	Data []byte
}

type Options struct {
	Interval time.Duration
	Buffer   int
}

type entry struct {
	fp      Fingerprint
	missing bool
}

type Watcher struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	out      chan Event
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
	started  bool
	closed   bool
}

const (
	defaultInterval = 500 * time.Millisecond
	defaultBuffer   = 16
	hashPrefix      = "sha256:"
)

func New(opts Options) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	buf := opts.Buffer
	if buf <= 0 {
		buf = defaultBuffer
	}
	return &Watcher{
		entries:  make(map[string]*entry),
		out:      make(chan Event, buf),
		interval: interval,
	}
}

// Events is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.out
}

// Start polls until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started || w.closed {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.stop = make(chan struct{})
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				w.Scan()
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			}
		}
	}()
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.started {
		close(w.stop)
	}
	w.mu.Unlock()
	w.wg.Wait()
	close(w.out)
}

// Track records the current content of path as the baseline.
func (w *Watcher) Track(path string, data []byte) {
	clean, ok := cleanPath(path)
	if !ok {
		return
	}
	fp := fingerprint(statOrNil(clean), data)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.entries[clean] = &entry{fp: fp}
}

func (w *Watcher) Forget(path string) {
	clean, ok := cleanPath(path)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entries, clean)
}

// Scan checks every tracked file once. Events that do not fit in the buffer
// are dropped.
func (w *Watcher) Scan() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	for path, e := range w.entries {
		evt, ok := check(path, e)
		if !ok {
			continue
		}
		select {
		case w.out <- evt:
		default:
		}
	}
}

func check(path string, e *entry) (Event, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || e.missing {
			return Event{}, false
		}
		e.missing = true
		return Event{Path: path, Kind: EventMissing, Prev: e.fp}, true
	}
	if !e.missing && info.ModTime().Equal(e.fp.Mod) && info.Size() == e.fp.Size {
		return Event{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if e.missing {
			return Event{}, false
		}
		e.missing = true
		return Event{Path: path, Kind: EventMissing, Prev: e.fp}, true
	}

	next := fingerprint(info, data)
	prev := e.fp
	wasMissing := e.missing
	e.fp = next
	e.missing = false
	if !wasMissing && next.Hash == prev.Hash {
		return Event{}, false
	}
	return Event{Path: path, Kind: EventChanged, Prev: prev, Curr: next, Data: data}, true
}

func cleanPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	clean := filepath.Clean(path)
	if clean == "." {
		return "", false
	}
	return clean, true
}

func statOrNil(path string) fs.FileInfo {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return info
}

func fingerprint(info fs.FileInfo, data []byte) Fingerprint {
	fp := Fingerprint{Size: int64(len(data)), Hash: hashBytes(data)}
	if info != nil {
		fp.Mod = info.ModTime()
	}
	return fp
}

func hashBytes(data []byte) string {
	if len(data) == 0 {
		return hashPrefix + "0"
	}
	sum := sha256.Sum256(data)
	return hashPrefix + hex.EncodeToString(sum[:])
}
