package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lastupdated/internal/gittest"
)

func TestAliasLookupFallbackChain(t *testing.T) {
	aliases := AliasMap{
		"alice":     "Alice Smith",
		"Bob Jones": "Bob",
	}
	assert.Equal(t, "Bob", aliases.Lookup("Bob Jones"), "exact match wins")
	assert.Equal(t, "Alice Smith", aliases.Lookup("ALICE"), "case-folded fallback")
	assert.Equal(t, "Alice Smith", aliases.Lookup("  alice  "), "names are trimmed first")
	assert.Equal(t, "Carol", aliases.Lookup("Carol"), "unmapped names pass through")
	assert.Equal(t, "Dave", AliasMap(nil).Lookup("Dave"))
}

func TestCoAuthorTrailers(t *testing.T) {
	msg := "Edit the page\n\nSome body text.\n\n" +
		"Co-authored-by: Bob <bob@example.com>\n" +
		"co-authored-by: Carol Jones <carol@example.com>\n" +
		"Co-authored-by:   Dave   \n"
	names := coAuthors(msg)
	assert.Equal(t, []string{"Bob", "Carol Jones", "Dave"}, names)

	assert.Nil(t, coAuthors("Plain message without trailers"))
}

func TestCollectDeduplicatesAndSorts(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("doc.md", "one")
	fixture.Add("doc.md")
	fixture.Commit("add", "bob")
	fixture.WriteFile("doc.md", "two")
	fixture.Add("doc.md")
	fixture.Commit("edit", "Alice Smith")
	fixture.WriteFile("doc.md", "three")
	fixture.Add("doc.md")
	fixture.Commit("edit again", "Bob")

	aliases := AliasMap{"bob": "Bob"}
	agg := NewAggregator(openRepo(t, fixture))
	authors, err := agg.Collect(context.Background(), "doc.md", Policy{}, nil, aliases)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Smith", "Bob"}, authors,
		"aliases merge duplicates and output is sorted")
}

func TestCollectIncludesCoAuthors(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("doc.md", "one")
	fixture.Add("doc.md")
	fixture.Commit("pair session\n\nCo-authored-by: Carol <carol@example.com>", "Alice Smith")

	agg := NewAggregator(openRepo(t, fixture))
	authors, err := agg.Collect(context.Background(), "doc.md", Policy{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Smith", "Carol"}, authors)
}

func TestCollectAliasCapitalizationAndTrailer(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("doc.md", "one")
	fixture.Add("doc.md")
	fixture.Commit("add", "alice")
	fixture.WriteFile("doc.md", "two")
	fixture.Add("doc.md")
	fixture.Commit("edit", "Alice")
	fixture.WriteFile("doc.md", "three")
	fixture.Add("doc.md")
	fixture.Commit("pair edit\n\nCo-authored-by: Bob <bob@example.com>", "alice")

	aliases := AliasMap{"alice": "Alice Smith"}
	agg := NewAggregator(openRepo(t, fixture))
	authors, err := agg.Collect(context.Background(), "doc.md", Policy{}, nil, aliases)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Smith", "Bob"}, authors,
		"capitalization variants collapse through the case-folded alias stage")
}

func TestCollectExcludedCommitsDropAuthors(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("doc.md", "one")
	fixture.Add("doc.md")
	fixture.Commit("add", "Alice Smith")
	fixture.WriteFile("doc.md", "two")
	fixture.Add("doc.md")
	botCommit := fixture.Commit("bulk reformat", "Bot")

	excl, err := NewExclusionSet([]string{botCommit.String()}, nil)
	require.NoError(t, err)

	agg := NewAggregator(openRepo(t, fixture))
	authors, err := agg.Collect(context.Background(), "doc.md", Policy{}, excl, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Smith"}, authors)
}

func TestCollectFollowsRenames(t *testing.T) {
	fixture := gittest.Init(t)
	fixture.WriteFile("old.md", "stable content for rename detection\n")
	fixture.Add("old.md")
	fixture.Commit("add old", "Alice Smith")

	fixture.WriteFile("new.md", "stable content for rename detection\n")
	fixture.Add("new.md")
	fixture.Remove("old.md")
	fixture.Commit("rename old to new", "Bob")

	agg := NewAggregator(openRepo(t, fixture))

	// Without rename following only the post-rename history contributes.
	authors, err := agg.Collect(context.Background(), "new.md", Policy{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, authors)

	authors, err = agg.Collect(context.Background(), "new.md", Policy{FollowRenames: true}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Smith", "Bob"}, authors)
}
