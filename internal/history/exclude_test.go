package history

import (
	"testing"

	"git.home.luguber.info/inful/lastupdated/internal/git"
)

func TestGlobPatterns(t *testing.T) {
	cases := []struct {
		glob  string
		path  string
		match bool
	}{
		{"docs/*.md", "docs/index.md", true},
		{"docs/*.md", "docs/sub/index.md", false},
		{"docs/**", "docs/sub/index.md", true},
		{"**/generated/*", "a/b/generated/file.md", true},
		{"**/generated/*", "generated.md", false},
		{"doc?.md", "doc1.md", true},
		{"doc?.md", "doc/a.md", false},
		{"*.md", "index.md", true},
		{"*.md", "index.txt", false},
		{"release+notes.md", "release+notes.md", true},
	}
	for _, tc := range cases {
		set, err := NewExclusionSet(nil, []string{tc.glob})
		if err != nil {
			t.Fatalf("Compile %q failed: %v", tc.glob, err)
		}
		if got := set.ExcludesPath(tc.path); got != tc.match {
			t.Errorf("Glob %q on %q: got %v, want %v", tc.glob, tc.path, got, tc.match)
		}
	}
}

func TestNilExclusionSetExcludesNothing(t *testing.T) {
	var set *ExclusionSet
	if set.ExcludesPath("docs/index.md") {
		t.Error("Nil set must not exclude paths")
	}
	if set.ExcludesCommit("abc") {
		t.Error("Nil set must not exclude commits")
	}
}

func TestExcludesCommitByHash(t *testing.T) {
	set, err := NewExclusionSet([]string{"abc123", "  def456  ", ""}, nil)
	if err != nil {
		t.Fatalf("NewExclusionSet failed: %v", err)
	}
	if !set.ExcludesCommit("abc123") {
		t.Error("abc123 should be excluded")
	}
	if !set.ExcludesCommit("def456") {
		t.Error("Hashes should be trimmed before matching")
	}
	if set.ExcludesCommit("other") {
		t.Error("other should not be excluded")
	}
	if !set.Excludes(&git.Commit{Hash: "abc123"}, "docs/index.md") {
		t.Error("Excludes should honor the hash set")
	}
}
