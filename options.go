package annotext

import (
	"github.com/tsawler/annotext/config"
	"github.com/tsawler/annotext/langdetect"
)

// extractOptions holds the configuration collected by an Extractor.
type extractOptions struct {
	language    string
	mime        string
	profilePath string
	detect      bool
	strict      bool
	digest      bool
	detector    langdetect.Detector
}

// defaultOptions returns the default extraction options.
func defaultOptions() extractOptions {
	d := config.Default()
	return extractOptions{
		detect: d.DetectLanguage,
	}
}

// config turns the options into pipeline settings.
func (o extractOptions) config() config.Config {
	c := config.Default()
	c.Language = o.language
	c.MIME = o.mime
	c.ProfilePath = o.profilePath
	c.DetectLanguage = o.detect
	c.Digest = o.digest
	if o.strict {
		c.Mismatch = "strict"
	}
	return c
}
