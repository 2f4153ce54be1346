package markup

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/extracterr"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/model"
)

// ErrSpent is returned when a collector that already produced its result,
// or was failed, is asked to finish again.
var ErrSpent = errors.New("markup: collector already finished")

// Policy decides how a close tag naming a different element than the
// innermost open one is handled.
type Policy int

const (
	// Positional closes the innermost open element regardless of the name
	// in the close tag.
	Positional Policy = iota
	// Strict aborts the document with a StructuralError.
	Strict
)

// String returns the policy name used in configuration.
func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "positional"
}

// ParsePolicy converts "strict" or "positional" to a Policy. Anything else
// is Positional.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return Strict
	}
	return Positional
}

// Options configures a Collector.
type Options struct {
	Policy Policy
	// Format names the source format in error messages.
	Format string
	Logger *slog.Logger
}

type pending struct {
	name  string
	begin int
	attrs []model.Attr
}

// Collector reduces one document's event stream. It implements
// event.Handler. A Collector is single-use and not safe for concurrent use.
type Collector struct {
	opts Options
	log  *slog.Logger

	buf   strings.Builder
	stack []pending
	spans []model.Span
	meta  model.Metadata

	failed    error // strict-policy failure, reported at EndOfDocument
	spent     bool
	recovered int
}

// New returns an empty Collector.
func New(opts Options) *Collector {
	return &Collector{opts: opts, log: logging.Or(opts.Logger)}
}

// Len returns the current buffer length in bytes.
func (c *Collector) Len() int { return c.buf.Len() }

// Depth returns the number of pending spans.
func (c *Collector) Depth() int { return len(c.stack) }

// Recovered returns how many structural problems were repaired so far.
func (c *Collector) Recovered() int { return c.recovered }

func (c *Collector) live(kind event.Kind) bool {
	if c.spent {
		c.log.Debug("event after end of document ignored", "event", kind.String())
		return false
	}
	return c.failed == nil
}

// OpenTag pushes a pending span beginning at the current buffer length.
func (c *Collector) OpenTag(name string, attrs []model.Attr) {
	if !c.live(event.OpenTag) {
		return
	}
	var cp []model.Attr
	if len(attrs) > 0 {
		cp = make([]model.Attr, len(attrs))
		copy(cp, attrs)
	}
	c.stack = append(c.stack, pending{name: name, begin: c.buf.Len(), attrs: cp})
}

// Characters appends text verbatim.
func (c *Collector) Characters(text string) {
	if !c.live(event.Characters) {
		return
	}
	c.buf.WriteString(text)
}

// CloseTag finalizes the innermost pending span.
func (c *Collector) CloseTag(name string) {
	if !c.live(event.CloseTag) {
		return
	}
	offset := c.buf.Len()
	if len(c.stack) == 0 {
		c.recovered++
		c.log.Warn("ignoring unbalanced close tag",
			"element", name, "offset", offset, "format", c.opts.Format)
		return
	}

	top := c.stack[len(c.stack)-1]
	if name != "" && !strings.EqualFold(top.name, name) {
		if c.opts.Policy == Strict {
			c.failed = &extracterr.StructuralError{Want: top.name, Got: name, Offset: offset}
			return
		}
		c.recovered++
		c.log.Warn("close tag does not match open element, closing by position",
			"open", top.name, "close", name, "offset", offset, "format", c.opts.Format)
	}

	c.stack = c.stack[:len(c.stack)-1]
	c.spans = append(c.spans, model.Span{
		Name:  top.name,
		Begin: top.begin,
		End:   offset,
		Attrs: top.attrs,
	})
}

// Metadata records a key/value pair. Repeated keys are kept in order.
func (c *Collector) Metadata(key, value string) {
	if !c.live(event.Metadata) {
		return
	}
	c.meta.Add(key, value)
}

// EndOfDocument closes any spans still pending at the final buffer length
// and returns the frozen result. The collector is spent afterwards.
func (c *Collector) EndOfDocument() (*Result, error) {
	if c.spent {
		return nil, ErrSpent
	}
	if c.failed != nil {
		return nil, c.Fail(c.failed)
	}

	if n := len(c.stack); n > 0 {
		end := c.buf.Len()
		c.recovered += n
		c.log.Warn("closing elements left open at end of document",
			"count", n, "innermost", c.stack[n-1].name, "offset", end, "format", c.opts.Format)
		for i := n - 1; i >= 0; i-- {
			p := c.stack[i]
			c.spans = append(c.spans, model.Span{Name: p.name, Begin: p.begin, End: end, Attrs: p.attrs})
		}
		c.stack = nil
	}

	res := &Result{text: c.buf.String(), spans: c.spans, meta: c.meta}
	c.reset()
	return res, nil
}

// Fail discards everything buffered and returns the typed failure for
// cause. Context cancellation is returned unchanged; other causes become a
// ParseFailure, or an IOError when the cause was an I/O failure.
func (c *Collector) Fail(cause error) error {
	if cause == nil {
		cause = errors.New("unknown decoder failure")
	}
	c.reset()
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return cause
	}
	return extracterr.NewParseFailure(c.opts.Format, cause)
}

// Apply feeds a single event. Terminal events finish the collector and
// return its outcome; other events return nil, nil.
func (c *Collector) Apply(e event.Event) (*Result, error) {
	switch e.Kind {
	case event.EndOfDocument:
		return c.EndOfDocument()
	case event.Error:
		if c.spent {
			return nil, ErrSpent
		}
		return nil, c.Fail(e.Err)
	default:
		event.Dispatch(c, e)
		return nil, nil
	}
}

func (c *Collector) reset() {
	c.buf = strings.Builder{}
	c.stack = nil
	c.spans = nil
	c.meta = nil
	c.failed = nil
	c.spent = true
}
