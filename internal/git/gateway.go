package git

import (
	"context"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Commit is an immutable snapshot of a single commit as seen by the resolver.
// Its identity is the hash; the timestamp is the author timestamp including
// the originating UTC offset.
type Commit struct {
	Hash    string
	Author  string
	Email   string
	When    time.Time
	Parents []string
	Message string
}

// IsMerge reports whether the commit has more than one parent.
func (c *Commit) IsMerge() bool { return len(c.Parents) > 1 }

// Repository is a read-only handle to one checkout. It is safe for
// concurrent use; no method mutates repository state.
type Repository struct {
	repo *git.Repository
	dir  string
}

// Open opens an existing Git checkout. A directory that is not a recognizable
// repository yields a fatal classified error (RepositoryUnavailable).
func Open(dir string) (*Repository, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, ClassifyOpenError(err, dir)
	}
	return &Repository{repo: repo, dir: dir}, nil
}

// Dir returns the checkout directory this repository was opened from.
func (r *Repository) Dir() string { return r.dir }

// Head returns the hash of the current HEAD commit, or "" for a repository
// with no commits yet.
func (r *Repository) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if err == plumbing.ErrReferenceNotFound {
			return "", nil
		}
		return "", GitError("read HEAD").WithCause(err).Build()
	}
	return ref.Hash().String(), nil
}

// IsShallow reports whether the checkout is a shallow clone.
func (r *Repository) IsShallow() (bool, error) {
	hashes, err := r.repo.Storer.Shallow()
	if err != nil {
		return false, GitError("read shallow list").WithCause(err).Build()
	}
	return len(hashes) > 0, nil
}

// IsBoundaryCommit reports whether the given commit sits on the shallow
// boundary, i.e. the local clone cannot see its parents.
func (r *Repository) IsBoundaryCommit(hash string) (bool, error) {
	hashes, err := r.repo.Storer.Shallow()
	if err != nil {
		return false, GitError("read shallow list").WithCause(err).Build()
	}
	h := plumbing.NewHash(hash)
	for _, s := range hashes {
		if s == h {
			return true, nil
		}
	}
	return false, nil
}

// BlobExists reports whether path is tracked in the current HEAD tree.
func (r *Repository) BlobExists(path string) (bool, error) {
	head, err := r.headCommit()
	if err != nil {
		return false, err
	}
	if head == nil {
		return false, nil
	}
	tree, err := head.Tree()
	if err != nil {
		return false, GitError("read HEAD tree").WithCause(err).Build()
	}
	if _, err := tree.FindEntry(path); err != nil {
		return false, nil
	}
	return true, nil
}

// LogEntries returns a cursor over the commits reachable from HEAD that touch
// path, most recent author date first. With firstParentOnly only the mainline
// parent of merge commits is followed. The cursor is restartable: call
// LogEntries again for a fresh traversal.
func (r *Repository) LogEntries(ctx context.Context, path string, firstParentOnly bool) (*LogCursor, error) {
	head, err := r.headCommit()
	if err != nil {
		return nil, err
	}
	shallow, err := r.shallowSet()
	if err != nil {
		return nil, err
	}
	return newLogCursor(ctx, path, firstParentOnly, head, shallow), nil
}

// RenamedFrom checks whether path was introduced in the given commit by a
// rename, and if so returns the prior name. Used by author aggregation to
// union history across a file's previous names.
func (r *Repository) RenamedFrom(ctx context.Context, hash, path string) (string, bool, error) {
	commit, err := r.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return "", false, GitError("read commit").WithCause(err).WithContext("commit", hash).Build()
	}
	if commit.NumParents() == 0 {
		return "", false, nil
	}
	parent, err := commit.Parent(0)
	if err != nil {
		// Shallow boundary: the parent is not in the local clone.
		return "", false, nil
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return "", false, GitError("read parent tree").WithCause(err).Build()
	}
	if _, err := parentTree.FindEntry(path); err == nil {
		// Path already existed under this name; not a rename point.
		return "", false, nil
	}
	tree, err := commit.Tree()
	if err != nil {
		return "", false, GitError("read commit tree").WithCause(err).Build()
	}
	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, &object.DiffTreeOptions{DetectRenames: true})
	if err != nil {
		return "", false, GitError("diff trees").WithCause(err).Build()
	}
	for _, change := range changes {
		if change.To.Name == path && change.From.Name != "" && change.From.Name != path {
			return change.From.Name, true, nil
		}
	}
	return "", false, nil
}

func (r *Repository) headCommit() (*object.Commit, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if err == plumbing.ErrReferenceNotFound {
			return nil, nil
		}
		return nil, GitError("read HEAD").WithCause(err).Build()
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, GitError("read HEAD commit").WithCause(err).Build()
	}
	return commit, nil
}

func (r *Repository) shallowSet() (map[plumbing.Hash]struct{}, error) {
	hashes, err := r.repo.Storer.Shallow()
	if err != nil {
		return nil, GitError("read shallow list").WithCause(err).Build()
	}
	set := make(map[plumbing.Hash]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return set, nil
}

func toCommit(c *object.Commit) *Commit {
	parents := make([]string, 0, c.NumParents())
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return &Commit{
		Hash:    c.Hash.String(),
		Author:  c.Author.Name,
		Email:   c.Author.Email,
		When:    c.Author.When,
		Parents: parents,
		Message: c.Message,
	}
}
