package route

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/tsawler/annotext/extracterr"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/model"
)

func TestResolve_Defaults(t *testing.T) {
	doc := model.NewDocumentFromBytes([]byte("<p>hi</p>"), "text/html")
	src, dst, err := Router{Logger: logging.Discard()}.Resolve(doc)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if src.Name() != model.DefaultViewName {
		t.Errorf("source = %q, want default view", src.Name())
	}
	if dst.Name() != DefaultTextView {
		t.Errorf("destination = %q, want %q", dst.Name(), DefaultTextView)
	}
	if v, ok := doc.View(DefaultTextView); !ok || v != dst {
		t.Error("destination view should be created on the document")
	}
}

func TestResolve_MissingSourceFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	doc := model.NewDocumentFromBytes([]byte("raw"), "text/plain")
	src, dst, err := Router{Source: "original", Logger: logger}.Resolve(doc)
	if err != nil {
		t.Fatalf("missing source must not fail: %v", err)
	}
	if src != doc.CurrentView() || string(src.Data()) != "raw" {
		t.Error("should fall back to the current view")
	}
	if dst == nil {
		t.Fatal("destination should be resolved")
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "original") {
		t.Errorf("expected a warning naming the missing view, got %q", buf.String())
	}
}

func TestResolve_NamedViews(t *testing.T) {
	doc := model.NewDocument()
	orig, _ := doc.CreateView("original")
	_ = orig.SetData([]byte("x"), "text/plain")

	src, dst, err := Router{Source: "original", Destination: "plain", Logger: logging.Discard()}.Resolve(doc)
	if err != nil {
		t.Fatal(err)
	}
	if src != orig || dst.Name() != "plain" {
		t.Errorf("resolved %q -> %q", src.Name(), dst.Name())
	}
}

func TestResolve_ExistingEmptyDestination(t *testing.T) {
	doc := model.NewDocument()
	existing, _ := doc.CreateView("textView")
	_, dst, err := Router{Logger: logging.Discard()}.Resolve(doc)
	if err != nil {
		t.Fatal(err)
	}
	if dst != existing {
		t.Error("an empty existing destination should be reused")
	}
}

func TestResolve_PopulatedDestination(t *testing.T) {
	doc := model.NewDocument()
	v, _ := doc.CreateView("textView")
	_ = v.SetText("already")

	_, _, err := Router{Logger: logging.Discard()}.Resolve(doc)
	var wov *extracterr.WriteOnceViolation
	if !errors.As(err, &wov) || wov.View != "textView" || wov.Field != "text" {
		t.Errorf("Resolve = %v, want write-once violation on textView", err)
	}

	doc2 := model.NewDocument()
	v2, _ := doc2.CreateView("textView")
	_ = v2.SetMetadata(model.Metadata{{Name: "a", Value: "b"}})
	_, _, err = Router{Logger: logging.Discard()}.Resolve(doc2)
	if !errors.As(err, &wov) || wov.Field != "metadata" {
		t.Errorf("Resolve = %v, want metadata write-once violation", err)
	}
}

func TestResolve_NilDocument(t *testing.T) {
	if _, _, err := (Router{}).Resolve(nil); err == nil {
		t.Error("Resolve(nil) should fail")
	}
}
