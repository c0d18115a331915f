package markdown

import (
	"path"
	"sort"
	"strings"
)

// LocalDependencies returns the repository-relative paths a page references
// through links and images: its dependency set for last-updated resolution.
// pageRel is the page's own repository-relative slash path; relative
// destinations are resolved against its directory. External URLs, anchors,
// and site-absolute destinations are dropped.
func LocalDependencies(body []byte, pageRel string) []string {
	baseDir := path.Dir(pageRel)
	seen := make(map[string]struct{})

	for _, link := range ExtractLinks(body) {
		dest := link.Destination
		if dest == "" || strings.HasPrefix(dest, "#") {
			continue
		}
		if link.Kind == LinkKindAuto || isExternal(dest) || strings.HasPrefix(dest, "/") {
			continue
		}
		// Strip fragment and query parts.
		if i := strings.IndexAny(dest, "#?"); i >= 0 {
			dest = dest[:i]
		}
		if dest == "" {
			continue
		}
		resolved := path.Clean(path.Join(baseDir, dest))
		if resolved == "." || resolved == pageRel {
			continue
		}
		seen[resolved] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for dep := range seen {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out
}

func isExternal(dest string) bool {
	return strings.Contains(dest, "://") ||
		strings.HasPrefix(dest, "mailto:") ||
		strings.HasPrefix(dest, "tel:")
}
