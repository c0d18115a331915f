// Package gittest builds throwaway Git repositories for tests, with
// deterministic commit timestamps and helpers for merges, renames, and
// truncated shallow clones.
package gittest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo wraps a temporary repository with a worktree and a monotonically
// increasing commit clock.
type Repo struct {
	T        *testing.T
	Dir      string
	Repo     *gogit.Repository
	Worktree *gogit.Worktree

	clock time.Time
}

// Init creates an empty repository under t.TempDir().
func Init(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("Failed to init repo: %v", err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	return &Repo{
		T:        t,
		Dir:      dir,
		Repo:     repo,
		Worktree: w,
		clock:    time.Date(2022, 1, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600)),
	}
}

// WriteFile writes content to a repository-relative path, creating parents.
func (r *Repo) WriteFile(rel, content string) {
	r.T.Helper()
	full := filepath.Join(r.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		r.T.Fatalf("Failed to create dir for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		r.T.Fatalf("Failed to write %s: %v", rel, err)
	}
}

// Add stages a repository-relative path (also stages deletions).
func (r *Repo) Add(rel string) {
	r.T.Helper()
	if _, err := r.Worktree.Add(rel); err != nil {
		r.T.Fatalf("Failed to add %s: %v", rel, err)
	}
}

// Remove deletes a file from disk and stages the deletion.
func (r *Repo) Remove(rel string) {
	r.T.Helper()
	if err := os.Remove(filepath.Join(r.Dir, rel)); err != nil {
		r.T.Fatalf("Failed to remove %s: %v", rel, err)
	}
	r.Add(rel)
}

// Commit commits the staged changes with the next clock tick as author time.
func (r *Repo) Commit(msg, author string) plumbing.Hash {
	r.clock = r.clock.Add(time.Hour)
	return r.CommitAt(msg, author, r.clock)
}

// CommitAt commits the staged changes with an explicit author time.
func (r *Repo) CommitAt(msg, author string, when time.Time) plumbing.Hash {
	r.T.Helper()
	hash, err := r.Worktree.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  author,
			Email: emailFor(author),
			When:  when,
		},
	})
	if err != nil {
		r.T.Fatalf("Failed to commit %q: %v", msg, err)
	}
	return hash
}

// CommitMerge commits the staged changes as a merge with explicit parents.
func (r *Repo) CommitMerge(msg, author string, parents ...plumbing.Hash) plumbing.Hash {
	r.T.Helper()
	r.clock = r.clock.Add(time.Hour)
	hash, err := r.Worktree.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  author,
			Email: emailFor(author),
			When:  r.clock,
		},
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	if err != nil {
		r.T.Fatalf("Failed to create merge commit %q: %v", msg, err)
	}
	return hash
}

// Checkout switches branches, optionally creating the branch at HEAD.
func (r *Repo) Checkout(branch string, create bool) {
	r.T.Helper()
	err := r.Worktree.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	})
	if err != nil {
		r.T.Fatalf("Failed to checkout %s: %v", branch, err)
	}
}

// MakeShallow truncates history the way a depth-limited clone would: the
// given commits become the shallow boundary and every commit object beyond
// them is removed from storage, so the boundary's parents are unfetchable.
func (r *Repo) MakeShallow(boundaries ...plumbing.Hash) {
	r.T.Helper()
	beyond := make(map[plumbing.Hash]struct{})
	for _, boundary := range boundaries {
		commit, err := r.Repo.CommitObject(boundary)
		if err != nil {
			r.T.Fatalf("Failed to read boundary commit %s: %v", boundary, err)
		}
		for _, parent := range commit.ParentHashes {
			r.collectAncestors(parent, beyond)
		}
	}
	if err := r.Repo.Storer.SetShallow(boundaries); err != nil {
		r.T.Fatalf("Failed to set shallow list: %v", err)
	}
	for hash := range beyond {
		name := hash.String()
		path := filepath.Join(r.Dir, ".git", "objects", name[:2], name[2:])
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.T.Fatalf("Failed to remove object %s: %v", name, err)
		}
	}
}

func (r *Repo) collectAncestors(hash plumbing.Hash, seen map[plumbing.Hash]struct{}) {
	if _, ok := seen[hash]; ok {
		return
	}
	seen[hash] = struct{}{}
	commit, err := r.Repo.CommitObject(hash)
	if err != nil {
		return
	}
	for _, parent := range commit.ParentHashes {
		r.collectAncestors(parent, seen)
	}
}

func emailFor(author string) string {
	local := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(author), " ", "."))
	if local == "" {
		local = "nobody"
	}
	return local + "@example.com"
}
