package history

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"git.home.luguber.info/inful/lastupdated/internal/git"
)

// maxRenameHops bounds the number of prior names followed per file, so a
// pathological rename chain cannot cause unbounded history queries.
const maxRenameHops = 16

var (
	coAuthorLine  = regexp.MustCompile(`(?mi)^Co-authored-by:[ \t]*(.+?)[ \t]*$`)
	trailingEmail = regexp.MustCompile(`\s*<[^>]*>\s*$`)
)

// AliasMap maps raw author identifiers to a preferred display name.
type AliasMap map[string]string

// Lookup resolves a raw name through the ordered fallback chain: exact
// whitespace-trimmed match, then a case-folded match, then the raw name
// unchanged.
func (m AliasMap) Lookup(raw string) string {
	base := strings.TrimSpace(raw)
	if m != nil {
		if mapped, ok := m[base]; ok {
			return mapped
		}
		if mapped, ok := m[cases.Fold().String(base)]; ok {
			return mapped
		}
	}
	return base
}

// Aggregator collects the union of contributing authors for a path across
// qualifying history, including commit-message co-author trailers.
type Aggregator struct {
	repo   *git.Repository
	walker *Walker
}

// NewAggregator creates an aggregator over one repository.
func NewAggregator(repo *git.Repository) *Aggregator {
	return &Aggregator{repo: repo, walker: NewWalker(repo)}
}

// Collect returns the deduplicated, alphabetically sorted author display
// names for path. With policy.FollowRenames it performs one additional
// traversal per prior name in the file's rename chain, bounded by
// maxRenameHops.
func (a *Aggregator) Collect(ctx context.Context, path string, policy Policy, excl *ExclusionSet, aliases AliasMap) ([]string, error) {
	seen := make(map[string]struct{})
	visitedNames := make(map[string]struct{})

	name := path
	for hop := 0; hop <= maxRenameHops && name != ""; hop++ {
		if _, ok := visitedNames[name]; ok {
			break
		}
		visitedNames[name] = struct{}{}

		seq, err := a.walker.QualifyingCommits(ctx, name, policy, excl)
		if err != nil {
			return nil, err
		}
		for {
			commit, err := seq.Next()
			if err != nil {
				return nil, err
			}
			if commit == nil {
				break
			}
			addAuthor(seen, aliases, commit.Author)
			for _, co := range coAuthors(commit.Message) {
				addAuthor(seen, aliases, co)
			}
		}

		if !policy.FollowRenames {
			break
		}
		oldest := seq.OldestTouching()
		if oldest == nil {
			break
		}
		prev, renamed, err := a.repo.RenamedFrom(ctx, oldest.Hash, name)
		if err != nil {
			return nil, err
		}
		if !renamed {
			break
		}
		name = prev
	}

	out := make([]string, 0, len(seen))
	for author := range seen {
		out = append(out, author)
	}
	sort.Strings(out)
	return out, nil
}

func addAuthor(seen map[string]struct{}, aliases AliasMap, raw string) {
	name := aliases.Lookup(raw)
	if name == "" {
		return
	}
	seen[name] = struct{}{}
}

// coAuthors extracts the name portions of Co-authored-by trailer lines,
// discarding the email part.
func coAuthors(message string) []string {
	matches := coAuthorLine.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(trailingEmail.ReplaceAllString(m[1], ""))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
