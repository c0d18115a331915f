// Package docs discovers the content pages of a documentation tree and their
// declared dependency sets.
package docs

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/lastupdated/internal/logfields"
	"git.home.luguber.info/inful/lastupdated/internal/markdown"
)

// Page is one discovered content file.
type Page struct {
	// Path is the repository-relative slash path of the page.
	Path string
	// Dependencies are the repository-relative paths the page references
	// (images, included files, local links).
	Dependencies []string
}

// Discovery walks a documentation directory inside a repository checkout.
type Discovery struct {
	repoDir    string
	docsDir    string
	extensions []string
}

// NewDiscovery creates a discovery for the docs directory (repository-relative,
// "." for the whole checkout). Extensions default to Markdown.
func NewDiscovery(repoDir, docsDir string, extensions []string) *Discovery {
	if docsDir == "" {
		docsDir = "."
	}
	if len(extensions) == 0 {
		extensions = []string{".md", ".markdown"}
	}
	return &Discovery{repoDir: repoDir, docsDir: docsDir, extensions: extensions}
}

// DiscoverPages finds all content pages under the docs directory and extracts
// each page's dependency set from its Markdown body.
func (d *Discovery) DiscoverPages() ([]Page, error) {
	root := filepath.Join(d.repoDir, d.docsDir)
	pages := make([]Page, 0)

	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			// Skip VCS internals and hidden directories.
			if name := entry.Name(); p != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.hasDocExtension(entry.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(d.repoDir, p)
		if relErr != nil {
			return relErr
		}
		relSlash := filepath.ToSlash(rel)

		body, readErr := os.ReadFile(p) // #nosec G304 - path comes from WalkDir under the configured root
		if readErr != nil {
			slog.Warn("Failed to read page, skipping", logfields.Path(relSlash), logfields.Error(readErr))
			return nil
		}
		pages = append(pages, Page{
			Path:         relSlash,
			Dependencies: markdown.LocalDependencies(body, relSlash),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	slog.Debug("Discovered pages", logfields.Count(len(pages)))
	return pages, nil
}

func (d *Discovery) hasDocExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range d.extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
