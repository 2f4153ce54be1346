// Package model provides the document model that extracted content is
// committed into.
//
// # Documents and Views
//
// A [Document] holds one or more named [View] values. The default view,
// named [DefaultViewName], usually carries the raw bytes of the source file;
// extraction adds a second view holding the plain text:
//
//	doc := model.NewDocument()
//	doc.CurrentView().SetData(raw, "application/pdf")
//	text, _ := doc.CreateView("textView")
//
// A View's text and metadata are write-once. [View.Publish] installs text,
// metadata and the annotation index in a single step, so a failed commit
// never leaves a partially populated View behind.
//
// # Spans
//
// A [Span] is a half-open interval [Begin, End) over a View's text, tagged
// with the name of the markup element it came from. Offsets are byte
// offsets into the Go string returned by [View.Text]. Zero-length spans are
// legal and are kept.
//
// # Metadata
//
// [Metadata] is an ordered list of name/value pairs. Names may repeat;
// [Metadata.Lookup] returns the first match.
package model
