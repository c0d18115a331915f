package git

import (
	"container/heap"
	"context"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// LogCursor walks the commit graph from HEAD in author-date order and emits
// the commits that changed one path. It is an explicit cursor: Next returns
// (nil, nil) once history is exhausted, and SawBoundary reports whether the
// walk ran into a shallow-clone boundary on the way.
//
// Ordering is deterministic: among the reachable frontier the commit with the
// newest author timestamp is emitted first, ties broken by hash. Parents only
// enter the frontier after their child was visited, so the order is also
// topological.
type LogCursor struct {
	ctx         context.Context
	path        string
	firstParent bool
	shallow     map[plumbing.Hash]struct{}
	frontier    commitHeap
	visited     map[plumbing.Hash]struct{}
	sawBoundary bool
	done        bool
}

func newLogCursor(ctx context.Context, path string, firstParent bool, head *object.Commit, shallow map[plumbing.Hash]struct{}) *LogCursor {
	c := &LogCursor{
		ctx:         ctx,
		path:        path,
		firstParent: firstParent,
		shallow:     shallow,
		visited:     make(map[plumbing.Hash]struct{}),
	}
	if head == nil {
		c.done = true
		return c
	}
	heap.Init(&c.frontier)
	c.push(head)
	return c
}

// Next returns the next commit touching the cursor's path, or (nil, nil) when
// history is exhausted.
func (c *LogCursor) Next() (*Commit, error) {
	if c.done {
		return nil, nil
	}
	for c.frontier.Len() > 0 {
		if err := c.ctx.Err(); err != nil {
			return nil, err
		}
		commit := heap.Pop(&c.frontier).(*object.Commit)

		if _, boundary := c.shallow[commit.Hash]; boundary {
			// The clone ends here: the commit's parents were never fetched,
			// so its diff against earlier history is unknowable. A boundary
			// commit is recorded but never reported as the last change.
			c.sawBoundary = true
			continue
		}
		c.pushParents(commit)

		touches, err := c.touchesPath(commit)
		if err != nil {
			return nil, err
		}
		if touches {
			return toCommit(commit), nil
		}
	}
	c.done = true
	return nil, nil
}

// SawBoundary reports whether the traversal reached a shallow-clone boundary.
func (c *LogCursor) SawBoundary() bool { return c.sawBoundary }

func (c *LogCursor) push(commit *object.Commit) {
	if _, seen := c.visited[commit.Hash]; seen {
		return
	}
	c.visited[commit.Hash] = struct{}{}
	heap.Push(&c.frontier, commit)
}

func (c *LogCursor) pushParents(commit *object.Commit) {
	n := commit.NumParents()
	if c.firstParent && n > 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		parent, err := commit.Parent(i)
		if err != nil {
			// Parent object missing from the local clone: truncated history.
			c.sawBoundary = true
			continue
		}
		c.push(parent)
	}
}

// touchesPath decides whether a commit changed the path. A root commit
// touches the path if the path exists in its tree. A regular commit touches
// it if the blob differs from its parent. A merge commit touches it if the
// blob differs from the compared parent set: only the first parent under
// first-parent traversal ("when merged into mainline"), otherwise any parent.
//
// A commit whose comparison parents are missing from object storage is not
// treated like a root: with no baseline to diff against it never qualifies,
// and the cursor records the boundary instead.
func (c *LogCursor) touchesPath(commit *object.Commit) (bool, error) {
	cur, curOK, err := c.pathEntry(commit)
	if err != nil {
		return false, err
	}
	if commit.NumParents() == 0 {
		return curOK, nil
	}

	n := commit.NumParents()
	if c.firstParent && n > 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		parent, perr := commit.Parent(i)
		if perr != nil {
			c.sawBoundary = true
			continue
		}
		prev, prevOK, perr := c.pathEntry(parent)
		if perr != nil {
			return false, perr
		}
		if curOK != prevOK || (curOK && cur != prev) {
			return true, nil
		}
	}
	return false, nil
}

func (c *LogCursor) pathEntry(commit *object.Commit) (plumbing.Hash, bool, error) {
	tree, err := commit.Tree()
	if err != nil {
		return plumbing.ZeroHash, false, GitError("read commit tree").WithCause(err).WithContext("commit", commit.Hash.String()).Build()
	}
	entry, err := tree.FindEntry(c.path)
	if err != nil {
		return plumbing.ZeroHash, false, nil
	}
	return entry.Hash, true, nil
}

// commitHeap orders commits newest author date first, ties broken by hash so
// replays of the same traversal are byte-identical.
type commitHeap []*object.Commit

func (h commitHeap) Len() int { return len(h) }

func (h commitHeap) Less(i, j int) bool {
	ti, tj := h[i].Author.When, h[j].Author.When
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return h[i].Hash.String() < h[j].Hash.String()
}

func (h commitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *commitHeap) Push(x any) { *h = append(*h, x.(*object.Commit)) }

func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
