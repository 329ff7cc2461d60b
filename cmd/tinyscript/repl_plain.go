package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/unkn0wn-root/tinyscript/internal/ui"
)

// plainREPL feeds stdin to the session line by line without prompts or
// echo, for pipes and redirected input.
func plainREPL(ctx context.Context, in io.Reader, out io.Writer, sess *ui.Session) int {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		rep := sess.Feed(ctx, sc.Text())
		for _, line := range rep.Lines {
			fmt.Fprintln(out, line)
		}
		if rep.Quit {
			return rep.ExitCode
		}
	}
	if err := sc.Err(); err != nil {
		log.Printf("read input: %v", err)
		return 1
	}
	if sess.Pending() {
		log.Printf("unexpected end of input inside a block")
		return 1
	}
	return 0
}
