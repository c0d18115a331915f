package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"git.home.luguber.info/inful/lastupdated/internal/config"
	"git.home.luguber.info/inful/lastupdated/internal/render"
)

// Manifest is the JSON document a run emits for downstream consumers.
type Manifest struct {
	GeneratedAt time.Time      `json:"generated_at"`
	RunID       string         `json:"run_id"`
	Head        string         `json:"head,omitempty"`
	Pages       []ManifestPage `json:"pages"`
}

// ManifestPage is one page's resolved metadata.
type ManifestPage struct {
	Path string `json:"path"`
	// Timestamp is RFC 3339, absent for untracked or fully excluded pages.
	Timestamp *string `json:"timestamp,omitempty"`
	// LastUpdated is the localized display line, e.g. "May 4, 2024 by Alice".
	LastUpdated   string   `json:"last_updated,omitempty"`
	PrimaryAuthor string   `json:"primary_author,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	// WinningPath names the file whose commit supplied the timestamp, which
	// differs from Path when a dependency was more recent.
	WinningPath    string `json:"winning_path,omitempty"`
	ShowSourcelink bool   `json:"show_sourcelink"`
}

// BuildManifest converts a run result into its manifest form.
func BuildManifest(run *RunResult, out config.OutputConfig, resolver config.ResolverConfig) (*Manifest, error) {
	loc, err := render.Location(out.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", out.Timezone, err)
	}

	m := &Manifest{
		GeneratedAt: time.Now().UTC(),
		RunID:       run.RunID,
		Head:        run.Head,
		Pages:       make([]ManifestPage, 0, len(run.Pages)),
	}
	for _, res := range run.Pages {
		page := ManifestPage{
			Path:           res.Page.Path,
			Authors:        res.Meta.Authors,
			Warnings:       res.Meta.Warnings.Strings(),
			ShowSourcelink: res.ShowSourcelink,
		}
		if res.Meta.Timestamp != nil {
			ts := render.ModifiedTime(*res.Meta.Timestamp, loc)
			page.Timestamp = &ts
			if res.Meta.WinningPath != res.Page.Path {
				page.WinningPath = res.Meta.WinningPath
			}
			var primary string
			var all []string
			if resolver.ShowAuthor || resolver.ShowAllAuthors {
				primary = resolver.Aliases().Lookup(res.Meta.PrimaryAuthor)
				page.PrimaryAuthor = primary
			}
			if resolver.ShowAllAuthors {
				all = res.Meta.Authors
			}
			page.LastUpdated = render.LastUpdatedLine(
				*res.Meta.Timestamp, primary, all, out.Language, loc)
		}
		m.Pages = append(m.Pages, page)
	}
	return m, nil
}

// WriteManifest builds and writes the manifest to out.Manifest.
func WriteManifest(run *RunResult, out config.OutputConfig, resolver config.ResolverConfig) error {
	m, err := BuildManifest(run, out, resolver)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(out.Manifest, data, 0o644); err != nil { // #nosec G306 - manifest is a public artifact
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
