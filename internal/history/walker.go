package history

import (
	"context"

	"git.home.luguber.info/inful/lastupdated/internal/git"
)

// Walker produces the ordered sequence of qualifying commits for a path:
// commits that touched the path, pass the exclusion filter, and satisfy the
// configured merge-visibility policy.
type Walker struct {
	repo *git.Repository
}

// NewWalker creates a walker over one repository.
func NewWalker(repo *git.Repository) *Walker {
	return &Walker{repo: repo}
}

// QualifyingCommits returns a restartable, finite sequence of qualifying
// commits for path, most recent first. A path excluded by pattern yields an
// empty sequence without traversing history.
func (w *Walker) QualifyingCommits(ctx context.Context, path string, policy Policy, excl *ExclusionSet) (*CommitSeq, error) {
	if excl.ExcludesPath(path) {
		return &CommitSeq{done: true}, nil
	}
	cursor, err := w.repo.LogEntries(ctx, path, policy.FirstParentOnly)
	if err != nil {
		return nil, err
	}
	return &CommitSeq{
		cursor: cursor,
		path:   path,
		policy: policy,
		excl:   excl,
	}, nil
}

// CommitSeq is a lazy sequence of qualifying commits. Next returns (nil, nil)
// once the sequence is exhausted.
type CommitSeq struct {
	cursor *git.LogCursor
	path   string
	policy Policy
	excl   *ExclusionSet
	oldest *git.Commit
	done   bool
}

// Next returns the next qualifying commit.
func (s *CommitSeq) Next() (*git.Commit, error) {
	if s.done {
		return nil, nil
	}
	for {
		commit, err := s.cursor.Next()
		if err != nil {
			return nil, err
		}
		if commit == nil {
			s.done = true
			return nil, nil
		}
		// Track the oldest path-touching commit regardless of filtering;
		// rename following needs the introduction point even when that
		// commit is excluded or merge-hidden.
		s.oldest = commit

		if commit.IsMerge() && !s.policy.ShowMergeCommits {
			continue
		}
		if s.excl.Excludes(commit, s.path) {
			continue
		}
		return commit, nil
	}
}

// SawBoundary reports whether the underlying traversal hit a shallow-clone
// boundary. Only meaningful after the sequence is exhausted.
func (s *CommitSeq) SawBoundary() bool {
	if s.cursor == nil {
		return false
	}
	return s.cursor.SawBoundary()
}

// OldestTouching returns the oldest commit seen to touch the path, before
// exclusion and merge filtering. Nil if the path has no touching commits.
func (s *CommitSeq) OldestTouching() *git.Commit { return s.oldest }
