package history

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/lastupdated/internal/git"
	"git.home.luguber.info/inful/lastupdated/internal/logfields"
)

// Resolver picks the single last-changed commit for one path and classifies
// empty outcomes: untracked (expected, no warning), fully excluded (no
// warning), or truncated at a shallow boundary (warning).
type Resolver struct {
	repo   *git.Repository
	walker *Walker
}

// NewResolver creates a resolver over one repository.
func NewResolver(repo *git.Repository) *Resolver {
	return &Resolver{repo: repo, walker: NewWalker(repo)}
}

// Resolve returns the timestamp and author of the most recent qualifying
// commit for path. Authors is left empty; aggregation is a separate,
// explicitly requested pass. Resolution is deterministic for a fixed
// (path, policy, exclusions, repository state).
func (r *Resolver) Resolve(ctx context.Context, path string, policy Policy, excl *ExclusionSet) (FileMetadata, error) {
	var md FileMetadata

	seq, err := r.walker.QualifyingCommits(ctx, path, policy, excl)
	if err != nil {
		return md, err
	}
	commit, err := seq.Next()
	if err != nil {
		return md, err
	}
	if commit != nil {
		ts := commit.When
		md.Timestamp = &ts
		md.PrimaryAuthor = commit.Author
		return md, nil
	}

	tracked, err := r.repo.BlobExists(path)
	if err != nil {
		return md, err
	}
	if !tracked {
		// Expected "no source" case: untracked files resolve to no
		// timestamp without a warning.
		return md, nil
	}

	shallow, err := r.repo.IsShallow()
	if err != nil {
		return md, err
	}
	if shallow && seq.SawBoundary() {
		md.Warnings.Add(WarningShallowTruncated)
		slog.Debug("History truncated at shallow boundary", logfields.Path(path))
	}
	// Otherwise the user excluded every qualifying commit; intentional,
	// no warning.
	return md, nil
}
