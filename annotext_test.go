package annotext

import (
	"strings"
	"testing"

	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/langdetect"
)

func TestOpen_Result(t *testing.T) {
	path := writeFile(t, t.TempDir(), "page.html", "<html><head><title>T</title></head><body><h3>Hello</h3> world</body></html>")

	res, err := Open(path).Language("fr").Logger(logging.Discard()).Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Language != "fr" {
		t.Errorf("Language = %q", res.Language)
	}
	if !strings.HasPrefix(res.URL, "file://") {
		t.Errorf("URL = %q", res.URL)
	}
	if got := res.Get("dc:title"); got != "T" {
		t.Errorf("dc:title = %q", got)
	}
	h3 := res.Select("h3")
	if len(h3) != 1 || res.Covered(h3[0]) != "Hello" {
		t.Errorf("h3 = %+v", h3)
	}
}

func TestOpen_Immutable(t *testing.T) {
	base := Open("x.txt")
	withLang := base.Language("de")
	if base.options.language != "" {
		t.Error("Language mutated the receiver")
	}
	if withLang.options.language != "de" {
		t.Errorf("language = %q", withLang.options.language)
	}
	strict := withLang.Strict()
	if withLang.options.strict || !strict.options.strict {
		t.Error("Strict mutated the receiver")
	}
	if strict.options.config().Mismatch != "strict" {
		t.Errorf("Mismatch = %q", strict.options.config().Mismatch)
	}
}

func TestOpen_Detector(t *testing.T) {
	path := writeFile(t, t.TempDir(), "notes.txt", strings.Repeat("words enough for detection ", 3))
	det := langdetect.Func(func(string) (string, error) { return "nl", nil })

	res, err := Open(path).Detector(det).Logger(logging.Discard()).Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Language != "nl" {
		t.Errorf("Language = %q, want nl", res.Language)
	}
}

func TestMust(t *testing.T) {
	if got := Must("ok", nil); got != "ok" {
		t.Errorf("Must = %q", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("Must did not panic")
		}
	}()
	Must(Open("/nonexistent/file.txt").Logger(logging.Discard()).Text())
}
