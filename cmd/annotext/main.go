// Command annotext extracts text, structural spans and metadata from
// documents and prints them as JSON lines.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"

	"github.com/tsawler/annotext"
	"github.com/tsawler/annotext/collection"
	"github.com/tsawler/annotext/config"
	"github.com/tsawler/annotext/event"
	"github.com/tsawler/annotext/internal/logging"
	"github.com/tsawler/annotext/model"
	"github.com/tsawler/annotext/parser"
	"github.com/tsawler/annotext/profile"
)

const version = "0.1.0"

// Globals are the flags shared by every command. Unset flags keep the
// values from the environment (ANNOTEXT_*, optionally via .env).
type Globals struct {
	LogLevel       string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat      string `name:"log-format" help:"Log format: text or json"`
	Profile        string `name:"profile" help:"Parser profile (YAML)" type:"path"`
	Language       string `name:"language" short:"l" help:"Language of every document; disables detection"`
	MIME           string `name:"mime" help:"Content type of every document"`
	DetectLanguage bool   `name:"detect-language" help:"Detect the document language"`
	Legacy         bool   `name:"legacy-detector" help:"Use the deprecated stop-word language detector"`
	Strict         bool   `name:"strict" help:"Fail on mismatched close tags instead of matching by position"`
	Digest         bool   `name:"digest" help:"Add a blake3 digest of each input to its metadata"`
}

// config merges the flags over the environment and validates the result.
func (g *Globals) config() (config.Config, error) {
	cfg := config.FromEnv()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.LogLevel, g.LogLevel)
	set(&cfg.LogFormat, g.LogFormat)
	set(&cfg.ProfilePath, g.Profile)
	set(&cfg.Language, g.Language)
	set(&cfg.MIME, g.MIME)
	if g.DetectLanguage {
		cfg.DetectLanguage = true
	}
	if g.Legacy {
		cfg.DetectLanguage, cfg.LegacyDetector = true, true
	}
	if g.Strict {
		cfg.Mismatch = "strict"
	}
	if g.Digest {
		cfg.Digest = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Extract ExtractCmd `cmd:"" help:"Extract every file of a directory"`
	File    FileCmd    `cmd:"" help:"Extract a single file"`
	Detect  DetectCmd  `cmd:"" help:"Report the detected format of a file"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// record is one output line.
type record struct {
	*annotext.Result
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// ExtractCmd processes a directory.
type ExtractCmd struct {
	Dir     string        `arg:"" help:"Input directory" type:"existingdir"`
	Workers int           `name:"workers" short:"w" help:"Documents processed in parallel (default from ANNOTEXT_WORKERS)"`
	Timeout time.Duration `name:"timeout" help:"Per-document time limit"`
}

func (c *ExtractCmd) Run(g *Globals, out io.Writer) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	cfg.InputDir = c.Dir
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if err := cfg.ValidateCollection(); err != nil {
		return err
	}
	setupLogging(cfg)

	p, err := annotext.New(cfg)
	if err != nil {
		return err
	}
	it, err := collection.Open(collection.Options{Dir: cfg.InputDir, Language: cfg.Language, MIME: cfg.MIME})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	enc := json.NewEncoder(out)
	failed := 0
	err = p.Batch(ctx, it, cfg.Workers, func(e *collection.Entry, doc *model.Document, err error) error {
		rec := record{Path: e.Path}
		if err != nil {
			failed++
			rec.Error = err.Error()
		} else {
			v, _ := p.TextView(doc)
			rec.Result = annotext.NewResult(v)
		}
		return enc.Encode(rec)
	})
	if err != nil {
		return err
	}
	logging.Logger().Info("extraction finished", "documents", it.Len(), "failed", failed)
	return nil
}

// FileCmd processes one file.
type FileCmd struct {
	Path   string `arg:"" help:"Input file" type:"existingfile"`
	Indent bool   `name:"indent" help:"Indent the JSON output"`
}

func (c *FileCmd) Run(g *Globals, out io.Writer) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	p, err := annotext.New(cfg)
	if err != nil {
		return err
	}
	doc, err := p.ProcessFile(context.Background(), c.Path, "", "")
	if err != nil {
		return err
	}
	v, _ := p.TextView(doc)

	enc := json.NewEncoder(out)
	if c.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(annotext.NewResult(v))
}

// DetectCmd reports the format of a file without extracting it.
type DetectCmd struct {
	Path string `arg:"" help:"Input file" type:"existingfile"`
}

func (c *DetectCmd) Run(g *Globals, out io.Writer) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return err
	}
	a := &parser.AutoDetect{Profile: profile.Load(cfg.ProfilePath, logging.Logger())}
	f := a.Detect(data, event.Hint{Name: c.Path, MIME: cfg.MIME})
	_, srcErr := a.Source(f)

	return json.NewEncoder(out).Encode(struct {
		Path      string `json:"path"`
		Format    string `json:"format"`
		MIME      string `json:"mime"`
		Supported bool   `json:"supported"`
	}{c.Path, f.String(), f.MIMEType(), srcErr == nil})
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	_, err := fmt.Fprintf(out, "annotext %s\n", version)
	return err
}

func setupLogging(cfg config.Config) {
	logging.Init(logging.ParseLevel(cfg.LogLevel), logging.ParseFormat(cfg.LogFormat))
}

// run parses args and executes the selected command, writing results to out.
func run(args []string, out io.Writer) error {
	var cli CLI
	k, err := kong.New(&cli,
		kong.Name("annotext"),
		kong.Description("Extract text, structure and metadata from documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Bind(&cli.Globals),
		kong.BindTo(out, (*io.Writer)(nil)),
	)
	if err != nil {
		return err
	}
	ctx, err := k.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run()
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "annotext:", err)
		os.Exit(1)
	}
}
