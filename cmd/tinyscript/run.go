package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/unkn0wn-root/tinyscript/internal/engine"
	"github.com/unkn0wn-root/tinyscript/internal/expect"
	"github.com/unkn0wn-root/tinyscript/internal/history"
	"github.com/unkn0wn-root/tinyscript/internal/theme"
	"github.com/unkn0wn-root/tinyscript/internal/watcher"
)

type host struct {
	eng    *engine.Engine
	stdout io.Writer
	stderr io.Writer
	theme  theme.Theme
	expect string
}

// runFile returns the process status: the return value's code, 1 for any
// error or output mismatch, 0 otherwise.
func (h *host) runFile(ctx context.Context, path, src string) int {
	res, err := h.eng.Exec(ctx, engine.Source{Path: path, Text: src, Mode: history.ModeFile})
	if err != nil {
		fmt.Fprintln(h.stderr, h.theme.Error.Render(err.Error()))
		return 1
	}
	if h.expect != "" {
		cmp, err := expect.CompareFile(h.expect, res.Output)
		if err != nil {
			fmt.Fprintln(h.stderr, h.theme.Error.Render(err.Error()))
			return 1
		}
		if !cmp.Match {
			fmt.Fprint(h.stdout, cmp.Diff)
			return 1
		}
	}
	if res.Exited {
		return res.ExitCode
	}
	return 0
}

// watch runs the script, then re-runs it against fresh globals each time
// its content changes. It returns when ctx is done.
func (h *host) watch(ctx context.Context, path, src string) int {
	code := h.runFile(ctx, path, src)
	h.status(path, code)

	w := watcher.New(watcher.Options{})
	w.Track(path, []byte(src))
	w.Start(ctx)
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return code
		case evt, ok := <-w.Events():
			if !ok {
				return code
			}
			switch evt.Kind {
			case watcher.EventMissing:
				log.Printf("%s disappeared; waiting for it to come back", evt.Path)
			case watcher.EventChanged:
				h.eng.Reset()
				code = h.runFile(ctx, path, string(evt.Data))
				h.status(path, code)
			}
		}
	}
}

func (h *host) status(path string, code int) {
	msg := fmt.Sprintf("[%s exited with %d; watching for changes]", path, code)
	fmt.Fprintln(h.stderr, h.theme.Muted.Render(msg))
}
