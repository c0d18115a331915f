package history

import (
	"sort"
	"time"
)

// Policy configures history traversal for one resolution.
type Policy struct {
	// FirstParentOnly follows only the mainline parent of merge commits,
	// ignoring merged-in branch history.
	FirstParentOnly bool
	// ShowMergeCommits lets merge commits count as change candidates with
	// their own timestamp. Combined with FirstParentOnly, a merge on the
	// mainline represents "when merged" rather than "when authored".
	ShowMergeCommits bool
	// FollowRenames unions author history across a file's prior names.
	// Only consulted by author aggregation.
	FollowRenames bool
}

// WarningKind classifies a recoverable, per-file resolution condition.
type WarningKind string

const (
	// WarningShallowTruncated: history ended at a shallow-clone boundary
	// before a qualifying commit was found.
	WarningShallowTruncated WarningKind = "shallow-truncated"
	// WarningDependencyNotFound: a declared dependency path does not exist
	// on disk and was skipped.
	WarningDependencyNotFound WarningKind = "dependency-not-found"
)

// WarningSet is a set of warning kinds.
type WarningSet map[WarningKind]struct{}

// Add inserts a warning kind, allocating the set if needed.
func (s *WarningSet) Add(kind WarningKind) {
	if *s == nil {
		*s = make(WarningSet)
	}
	(*s)[kind] = struct{}{}
}

// Has reports whether the set contains a kind.
func (s WarningSet) Has(kind WarningKind) bool {
	_, ok := s[kind]
	return ok
}

// Union merges another set into this one.
func (s *WarningSet) Union(other WarningSet) {
	for kind := range other {
		s.Add(kind)
	}
}

// Strings returns the contained kinds sorted, for logging and manifests.
func (s WarningSet) Strings() []string {
	out := make([]string, 0, len(s))
	for kind := range s {
		out = append(out, string(kind))
	}
	sort.Strings(out)
	return out
}

// FileMetadata is the resolution result for a single path. Timestamp is nil
// exactly when no qualifying, non-excluded commit exists for the path.
type FileMetadata struct {
	Timestamp     *time.Time
	PrimaryAuthor string
	Authors       []string
	Warnings      WarningSet
}

// CombinedMetadata is the maximum across a primary file and its dependencies,
// plus the union of warnings encountered. WinningPath names the path whose
// commit supplied the timestamp and author data.
type CombinedMetadata struct {
	Timestamp     *time.Time
	PrimaryAuthor string
	Authors       []string
	Warnings      WarningSet
	WinningPath   string
}
