// Package markup turns a markup event stream into a frozen
// (text, spans, metadata) result in a single forward pass.
//
// A [Collector] owns a growing text buffer and a stack of pending spans.
// OpenTag pushes a span starting at the current buffer length, CloseTag pops
// it and fixes its end, Characters append verbatim. Nothing is ever
// rewritten, so the buffer length only grows and every finalized span lies
// inside the final text.
//
// Malformed input is tolerated: a close tag with an empty stack is ignored,
// a close tag whose name differs from the innermost open element closes
// that element anyway (the [Positional] policy), and elements still open at
// the end of the document are closed at the final buffer length. Each
// recovery is logged.
//
//	c := markup.New(markup.Options{})
//	c.OpenTag("h3", nil)
//	c.Characters("Hello")
//	c.CloseTag("h3")
//	c.Characters(" world")
//	res, err := c.EndOfDocument()
//	// res.Text() == "Hello world", res.Spans() == [{h3 0 5}]
package markup
