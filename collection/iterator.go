// Package collection enumerates the documents of an input directory.
//
// Iteration is lazy, finite and single-pass: the directory listing is taken
// when the iterator is opened, and each document's bytes are only opened
// when the caller asks for them. Subdirectories are not descended into.
package collection

import (
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/tsawler/annotext/extracterr"
)

// ErrExhausted is returned by Next once every entry has been yielded.
var ErrExhausted = errors.New("collection exhausted")

// Options configures an Iterator.
type Options struct {
	// Dir is the input directory. Required.
	Dir string
	// Language, when set, overrides language detection for every document.
	Language string
	// MIME, when set, is the content type assumed for every document.
	MIME string
}

// Iterator yields the regular files of a directory, one at a time.
type Iterator struct {
	opts  Options
	files []string
	next  int
}

// Open lists dir and returns an iterator over its files. A missing or
// non-directory path is a ConfigurationError.
func Open(opts Options) (*Iterator, error) {
	if opts.Dir == "" {
		return nil, &extracterr.ConfigurationError{Field: "InputDirectory", Reason: "is required"}
	}
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, &extracterr.ConfigurationError{Field: "InputDirectory", Value: opts.Dir, Reason: "invalid path", Err: err}
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, &extracterr.ConfigurationError{Field: "InputDirectory", Value: opts.Dir, Reason: "directory does not exist", Err: err}
	}
	if !fi.IsDir() {
		return nil, &extracterr.ConfigurationError{Field: "InputDirectory", Value: opts.Dir, Reason: "not a directory"}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &extracterr.ConfigurationError{Field: "InputDirectory", Value: opts.Dir, Reason: "cannot list directory", Err: err}
	}
	it := &Iterator{opts: opts}
	it.opts.Dir = dir
	for _, e := range entries {
		if isFile(dir, e) {
			it.files = append(it.files, filepath.Join(dir, e.Name()))
		}
	}
	return it, nil
}

// isFile reports whether e is a regular file, following symlinks.
func isFile(dir string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && fi.Mode().IsRegular()
}

// HasNext reports whether Next will yield another entry.
func (it *Iterator) HasNext() bool { return it.next < len(it.files) }

// Next returns the following entry, or ErrExhausted.
func (it *Iterator) Next() (*Entry, error) {
	if !it.HasNext() {
		return nil, ErrExhausted
	}
	path := it.files[it.next]
	it.next++
	return &Entry{
		Path:     path,
		Index:    it.next,
		Language: it.opts.Language,
		MIME:     it.opts.MIME,
	}, nil
}

// Progress returns how many entries have been yielded and the total.
func (it *Iterator) Progress() (current, total int) { return it.next, len(it.files) }

// Len returns the total number of entries.
func (it *Iterator) Len() int { return len(it.files) }

// Dir returns the absolute input directory.
func (it *Iterator) Dir() string { return it.opts.Dir }

// Entry is one document of the collection.
type Entry struct {
	Path     string // Absolute file path
	Index    int    // 1-based position in the collection
	Language string // Override, may be empty
	MIME     string // Assumed content type, may be empty
}

// Name returns the file name.
func (e *Entry) Name() string { return filepath.Base(e.Path) }

// URL returns the file:// URL of the entry.
func (e *Entry) URL() string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(e.Path)}
	return u.String()
}

// Open acquires the entry's byte stream. The caller must close it.
func (e *Entry) Open() (io.ReadCloser, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return nil, &extracterr.ResourceAcquisitionError{Resource: e.Path, Err: err}
	}
	return f, nil
}
