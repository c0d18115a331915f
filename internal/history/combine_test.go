package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lastupdated/internal/gittest"
)

func TestCombineNewerDependencyWins(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("page.md", "text")
	fixture.Add("page.md")
	fixture.Commit("add page", "Alice Smith")
	fixture.WriteFile("img.png", "pixels v1")
	fixture.Add("img.png")
	fixture.Commit("add image", "Bob")
	fixture.WriteFile("img.png", "pixels v2")
	fixture.Add("img.png")
	fixture.Commit("update image", "Carol")

	combiner := NewCombiner(openRepo(t, fixture))
	md, err := combiner.Combine(context.Background(), CombineRequest{
		Primary:      "page.md",
		Dependencies: []string{"img.png"},
	})
	require.NoError(t, err)
	require.NotNil(t, md.Timestamp)
	assert.Equal(t, "Carol", md.PrimaryAuthor)
	assert.Equal(t, "img.png", md.WinningPath)
	assert.Empty(t, md.Warnings)
}

func TestCombinePrimaryNewerKeepsPrimary(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("img.png", "pixels")
	fixture.Add("img.png")
	fixture.Commit("add image", "Bob")
	fixture.WriteFile("page.md", "text")
	fixture.Add("page.md")
	fixture.Commit("add page", "Alice Smith")

	combiner := NewCombiner(openRepo(t, fixture))
	md, err := combiner.Combine(context.Background(), CombineRequest{
		Primary:      "page.md",
		Dependencies: []string{"img.png"},
	})
	require.NoError(t, err)
	require.NotNil(t, md.Timestamp)
	assert.Equal(t, "Alice Smith", md.PrimaryAuthor)
	assert.Equal(t, "page.md", md.WinningPath)
}

func TestCombineMonotonicity(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("page.md", "text")
	fixture.Add("page.md")
	fixture.Commit("add page", "Alice Smith")
	fixture.WriteFile("img.png", "pixels")
	fixture.Add("img.png")
	fixture.Commit("add image", "Bob")

	combiner := NewCombiner(openRepo(t, fixture))
	without, err := combiner.Combine(context.Background(), CombineRequest{Primary: "page.md"})
	require.NoError(t, err)
	with, err := combiner.Combine(context.Background(), CombineRequest{
		Primary:      "page.md",
		Dependencies: []string{"img.png"},
	})
	require.NoError(t, err)

	require.NotNil(t, without.Timestamp)
	require.NotNil(t, with.Timestamp)
	assert.False(t, with.Timestamp.Before(*without.Timestamp),
		"adding dependencies can only move the result forward")
}

func TestCombineMissingDependencyWarns(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("page.md", "text")
	fixture.Add("page.md")
	fixture.Commit("add page", "Alice Smith")

	combiner := NewCombiner(openRepo(t, fixture))
	md, err := combiner.Combine(context.Background(), CombineRequest{
		Primary:      "page.md",
		Dependencies: []string{"missing.png"},
	})
	require.NoError(t, err)
	require.NotNil(t, md.Timestamp)
	assert.True(t, md.Warnings.Has(WarningDependencyNotFound))
	assert.Equal(t, "page.md", md.WinningPath, "missing dependency must not change the result")
}

func TestCombineUntrackedPrimary(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("img.png", "pixels")
	fixture.Add("img.png")
	fixture.Commit("add image", "Bob")
	fixture.WriteFile("draft.md", "unpublished")

	combiner := NewCombiner(openRepo(t, fixture))

	// With dependency checking enabled, a tracked dependency supplies the
	// timestamp even though the page itself has no history.
	md, err := combiner.Combine(context.Background(), CombineRequest{
		Primary:                    "draft.md",
		Dependencies:               []string{"img.png"},
		CheckUntrackedDependencies: true,
	})
	require.NoError(t, err)
	require.NotNil(t, md.Timestamp)
	assert.Equal(t, "img.png", md.WinningPath)

	// Disabled: untracked primary short-circuits dependency resolution.
	md, err = combiner.Combine(context.Background(), CombineRequest{
		Primary:                    "draft.md",
		Dependencies:               []string{"img.png"},
		CheckUntrackedDependencies: false,
	})
	require.NoError(t, err)
	assert.Nil(t, md.Timestamp)
}

func TestCombinePatternExcludedDependencyDropped(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("page.md", "text")
	fixture.Add("page.md")
	fixture.Commit("add page", "Alice Smith")
	fixture.WriteFile("generated/api.md", "generated")
	fixture.Add("generated/api.md")
	fixture.Commit("regen", "Bot")

	excl, err := NewExclusionSet(nil, []string{"generated/*"})
	require.NoError(t, err)

	combiner := NewCombiner(openRepo(t, fixture))
	md, err := combiner.Combine(context.Background(), CombineRequest{
		Primary:      "page.md",
		Dependencies: []string{"generated/api.md"},
		Exclusions:   excl,
	})
	require.NoError(t, err)
	require.NotNil(t, md.Timestamp)
	assert.Equal(t, "page.md", md.WinningPath)
	assert.Empty(t, md.Warnings,
		"a pattern-excluded dependency that exists on disk is dropped silently")
}

func TestCombineDependencyOutsideRepoIgnored(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("page.md", "text")
	fixture.Add("page.md")
	fixture.Commit("add page", "Alice Smith")

	outside := filepath.Join(t.TempDir(), "external.css")
	require.NoError(t, os.WriteFile(outside, []byte("body {}"), 0o600))

	combiner := NewCombiner(openRepo(t, fixture))
	md, err := combiner.Combine(context.Background(), CombineRequest{
		Primary:      "page.md",
		Dependencies: []string{outside},
	})
	require.NoError(t, err)
	require.NotNil(t, md.Timestamp)
	assert.Empty(t, md.Warnings, "existing out-of-repo dependencies resolve to nothing, silently")
}

func TestCombineCollectsAuthorsFromWinningPath(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("page.md", "text")
	fixture.Add("page.md")
	fixture.Commit("add page", "Alice Smith")
	fixture.WriteFile("img.png", "pixels v1")
	fixture.Add("img.png")
	fixture.Commit("add image", "Bob")
	fixture.WriteFile("img.png", "pixels v2")
	fixture.Add("img.png")
	fixture.Commit("update image", "Carol")

	combiner := NewCombiner(openRepo(t, fixture))
	md, err := combiner.Combine(context.Background(), CombineRequest{
		Primary:      "page.md",
		Dependencies: []string{"img.png"},
		WantAuthors:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "img.png", md.WinningPath)
	assert.Equal(t, []string{"Bob", "Carol"}, md.Authors,
		"authors come from the winning path, not the union of all paths")
}
