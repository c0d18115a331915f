package history

import (
	"fmt"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/lastupdated/internal/git"
)

// ExclusionSet disqualifies commits by hash and paths by glob pattern.
// Patterns apply identically to primary files and dependencies.
type ExclusionSet struct {
	commits  map[string]struct{}
	patterns []*regexp.Regexp
}

// NewExclusionSet compiles an exclusion set from commit hashes and glob
// patterns. Patterns match repository-relative slash paths: `*` and `?` stop
// at path separators, `**` crosses them.
func NewExclusionSet(commits []string, globs []string) (*ExclusionSet, error) {
	set := &ExclusionSet{commits: make(map[string]struct{}, len(commits))}
	for _, h := range commits {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		set.commits[h] = struct{}{}
	}
	for _, g := range globs {
		if strings.TrimSpace(g) == "" {
			continue
		}
		rx, err := regexp.Compile(globToRegex(g))
		if err != nil {
			return nil, fmt.Errorf("compile glob %s: %w", g, err)
		}
		set.patterns = append(set.patterns, rx)
	}
	return set, nil
}

// ExcludesCommit reports whether a commit hash is explicitly excluded.
func (s *ExclusionSet) ExcludesCommit(hash string) bool {
	if s == nil {
		return false
	}
	_, ok := s.commits[hash]
	return ok
}

// ExcludesPath reports whether a path matches any exclusion pattern.
func (s *ExclusionSet) ExcludesPath(path string) bool {
	if s == nil {
		return false
	}
	for _, rx := range s.patterns {
		if rx.MatchString(path) {
			return true
		}
	}
	return false
}

// Excludes reports whether the commit is disqualified for the given path,
// either by its hash or by a pattern matching the path.
func (s *ExclusionSet) Excludes(commit *git.Commit, path string) bool {
	return s.ExcludesCommit(commit.Hash) || s.ExcludesPath(path)
}

// globToRegex converts a shell-style glob to an anchored regex string.
// `**` matches across path separators, `*` and `?` within one segment.
func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '.', '+', '(', ')', '|', '^', '$', '{', '}', '[', ']', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteString("$")
	return b.String()
}
