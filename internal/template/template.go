// Package template resolves named HTML email templates and fills in their
// placeholders.
//
// A template is a static resource with `{{key}}` placeholders. Resolution
// tries the on-disk template directory first and falls back to an embedded
// default registered under the same logical name, so a missing or broken
// file never aborts a dispatch. Substitution is plain string replacement:
// no logic, no escaping, no caching.
package template

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog"
)

//go:embed defaults/*.html
var defaultsFS embed.FS

// placeholderPattern matches {{key}} placeholders. Keys are limited to
// word characters and dashes; anything else is left alone.
var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_-]+)\}\}`)

// Resolver loads templates by name from a directory, with embedded
// defaults as fallback. It holds no mutable state and is safe for
// concurrent use.
type Resolver struct {
	dir    string
	logger *zerolog.Logger
}

// NewResolver creates a Resolver reading external templates from dir.
func NewResolver(dir string, logger *zerolog.Logger) *Resolver {
	return &Resolver{
		dir:    dir,
		logger: logger,
	}
}

// Resolve loads the template registered under name and substitutes vars
// into it.
//
// Any load failure (missing file, I/O error) falls back to the embedded
// default for that name; a name with no default yields a generic error
// fragment so the caller can still send something identifiable. Resolve
// never mutates vars and is idempotent for unchanged inputs.
func (r *Resolver) Resolve(name string, vars map[string]string) string {
	text, err := r.load(name)
	if err != nil {
		r.logger.Debug().
			Err(err).
			Str("template", name).
			Msg("external template unavailable, using built-in default")
		text = defaultTemplate(name)
	}

	return Substitute(text, vars)
}

// load reads the external template file. Base strips any path components
// from the logical name so lookups cannot escape the template directory.
func (r *Resolver) load(name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(r.dir, filepath.Base(name)))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// defaultTemplate returns the embedded default for a logical name, or a
// generic HTML error fragment naming the missing template.
func defaultTemplate(name string) string {
	b, err := defaultsFS.ReadFile("defaults/" + filepath.Base(name))
	if err != nil {
		return fmt.Sprintf("<html><body><h1>Email Template Error</h1><p>Template not found: %s</p></body></html>", name)
	}
	return string(b)
}

// Substitute replaces every {{key}} occurrence in text with vars[key].
//
// A placeholder whose key is absent from vars is replaced with the empty
// string rather than left in the output; keys in vars that never appear in
// the text are simply ignored.
func Substitute(text string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := match[2 : len(match)-2]
		return vars[key]
	})
}
