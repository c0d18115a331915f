package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/lastupdated/internal/config"
	"git.home.luguber.info/inful/lastupdated/internal/htmlmeta"
	"git.home.luguber.info/inful/lastupdated/internal/logfields"
	"git.home.luguber.info/inful/lastupdated/internal/render"
)

// InjectMetatags stamps article:modified_time meta tags into the rendered
// HTML pages under out.InjectDir. Pages without a timestamp, and pages whose
// rendered file does not exist, are skipped. Returns the number of files
// updated.
func InjectMetatags(run *RunResult, out config.OutputConfig, docsDir string) (int, error) {
	if out.InjectDir == "" || !out.Metatags {
		return 0, nil
	}
	loc, err := render.Location(out.Timezone)
	if err != nil {
		return 0, err
	}

	injected := 0
	for _, res := range run.Pages {
		if res.Meta.Timestamp == nil {
			continue
		}
		htmlPath := renderedPath(out.InjectDir, docsDir, res.Page.Path)
		if _, statErr := os.Stat(htmlPath); statErr != nil {
			slog.Debug("No rendered page for meta-tag injection", logfields.Path(htmlPath))
			continue
		}
		modified := render.ModifiedTime(*res.Meta.Timestamp, loc)
		if injErr := htmlmeta.InjectFile(htmlPath, modified); injErr != nil {
			return injected, injErr
		}
		injected++
	}
	slog.Info("Injected modified-time meta tags", logfields.Count(injected))
	return injected, nil
}

// renderedPath maps a source page to its rendered HTML file: the path relative
// to the docs dir, with the source extension replaced by .html.
func renderedPath(injectDir, docsDir, pagePath string) string {
	rel := pagePath
	if docsDir != "" && docsDir != "." {
		prefix := strings.TrimSuffix(filepath.ToSlash(docsDir), "/") + "/"
		rel = strings.TrimPrefix(rel, prefix)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	return filepath.Join(injectDir, filepath.FromSlash(rel))
}
