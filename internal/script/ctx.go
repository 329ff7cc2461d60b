package script

import (
	"context"
	"time"
)

type Limits struct {
	MaxSteps int
	MaxDepth int
	Timeout  time.Duration
}

// DefaultLimits leaves steps and time unbounded and caps nesting.
func DefaultLimits() Limits {
	return Limits{MaxDepth: DefaultMaxDepth}
}

// Ctx is the bookkeeping for one Run: step counting, nesting depth,
// deadline and cancellation.
type Ctx struct {
	Ctx context.Context
	Lim Limits
	Now func() time.Time

	steps int
	depth int
	start time.Time
}

func NewCtx(ctx context.Context, lim Limits) *Ctx {
	if ctx == nil {
		ctx = context.Background()
	}
	if lim.MaxDepth <= 0 {
		lim.MaxDepth = DefaultMaxDepth
	}
	c := &Ctx{Ctx: ctx, Lim: lim, Now: time.Now}
	c.start = c.Now()
	return c
}

func (c *Ctx) Steps() int { return c.steps }

func (c *Ctx) tick(pos Pos) error {
	c.steps++
	if c.Lim.MaxSteps > 0 && c.steps > c.Lim.MaxSteps {
		return rtErr(LimitExceeded, pos, "step limit of %d exceeded", c.Lim.MaxSteps)
	}
	if c.Lim.Timeout > 0 && c.Now().Sub(c.start) > c.Lim.Timeout {
		return rtErr(LimitExceeded, pos, "timeout of %s exceeded", c.Lim.Timeout)
	}
	select {
	case <-c.Ctx.Done():
		return rtErr(Canceled, pos, "%v", c.Ctx.Err())
	default:
		return nil
	}
}

func (c *Ctx) enter(pos Pos) error {
	c.depth++
	if c.depth > c.Lim.MaxDepth {
		return rtErr(LimitExceeded, pos, "nesting deeper than %d", c.Lim.MaxDepth)
	}
	return nil
}

func (c *Ctx) leave() {
	c.depth--
}
