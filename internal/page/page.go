// Package page updates the static newsletter page in place.
package page

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/renameio/v2"
)

// ErrContainerNotFound is returned in strict mode when the page has no
// element to hold article fragments.
var ErrContainerNotFound = errors.New("newsletter container not found")

var legacyClass = regexp.MustCompile(`newsletter|articles|feed`)

// Updater prepends fragments into the container element of an HTML file.
type Updater struct {
	path   string
	strict bool
}

// NewUpdater creates an Updater for path. In strict mode a missing container
// is an error; otherwise it is silently skipped.
func NewUpdater(path string, strict bool) *Updater {
	return &Updater{path: path, strict: strict}
}

// Path returns the page location.
func (u *Updater) Path() string {
	return u.path
}

// Prepend inserts fragments as the first children of the container and
// rewrites the file atomically. It reports whether the file was written.
func (u *Updater) Prepend(fragments string) (bool, error) {
	raw, err := os.ReadFile(u.path)
	if err != nil {
		return false, fmt.Errorf("read page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return false, fmt.Errorf("parse page: %w", err)
	}

	container := FindContainer(doc)
	if container == nil {
		if u.strict {
			return false, fmt.Errorf("%s: %w", u.path, ErrContainerNotFound)
		}
		return false, nil
	}

	container.PrependHtml(fragments)

	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return false, fmt.Errorf("serialize page: %w", err)
	}

	perm := os.FileMode(0o644)
	if info, statErr := os.Stat(u.path); statErr == nil {
		perm = info.Mode().Perm()
	}
	if err := renameio.WriteFile(u.path, []byte(out), perm); err != nil {
		return false, fmt.Errorf("write page: %w", err)
	}
	return true, nil
}

// FindContainer locates the fragment container, trying the current markers
// first and then the legacy ones. It returns nil when none match.
func FindContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"#newsletter-articles", ".articles-grid"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}

	s := doc.Find("div[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return legacyClass.MatchString(class)
	}).First()
	if s.Length() > 0 {
		return s
	}
	return nil
}
