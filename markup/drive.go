package markup

import (
	"context"
	"fmt"
	"io"

	"github.com/tsawler/annotext/event"
)

// Drive runs src over r into a fresh Collector and returns the frozen
// result. A decoder error, a decoder panic or a cancelled context discards
// everything collected; no partial result is returned on those paths.
func Drive(ctx context.Context, src event.Source, r io.Reader, hint event.Hint, opts Options) (res *Result, err error) {
	c := New(opts)

	defer func() {
		if p := recover(); p != nil {
			res = nil
			err = c.Fail(fmt.Errorf("decoder panic: %v", p))
		}
	}()

	if err := src.Parse(ctx, r, hint, c); err != nil {
		return nil, c.Fail(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, c.Fail(err)
	}
	return c.EndOfDocument()
}

// Collect reduces a complete event slice, as Drive does for a Source. The
// slice need not end with a terminal event; EndOfDocument is implied.
func Collect(events []event.Event, opts Options) (*Result, error) {
	c := New(opts)
	for _, e := range events {
		res, err := c.Apply(e)
		if err != nil || res != nil {
			return res, err
		}
	}
	return c.EndOfDocument()
}
