package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/lastupdated/internal/history"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleMetadata() *history.CombinedMetadata {
	ts := time.Date(2024, 5, 4, 10, 30, 0, 0, time.UTC)
	md := &history.CombinedMetadata{
		Timestamp:     &ts,
		PrimaryAuthor: "Alice Smith",
		Authors:       []string{"Alice Smith", "Bob"},
		WinningPath:   "docs/img/logo.png",
	}
	md.Warnings.Add(history.WarningDependencyNotFound)
	return md
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	md := sampleMetadata()
	require.NoError(t, store.Put(ctx, "docs/index.md", "head1", "fp1", md))

	got, err := store.Get(ctx, "docs/index.md", "head1", "fp1")
	require.NoError(t, err)
	assert.Equal(t, md.Timestamp.Unix(), got.Timestamp.Unix())
	assert.Equal(t, "Alice Smith", got.PrimaryAuthor)
	assert.Equal(t, []string{"Alice Smith", "Bob"}, got.Authors)
	assert.Equal(t, "docs/img/logo.png", got.WinningPath)
	assert.True(t, got.Warnings.Has(history.WarningDependencyNotFound))
}

func TestGetMiss(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "docs/index.md", "head1", "fp1")
	assert.True(t, errors.Is(err, ErrMiss))

	// Any key component change is a miss.
	require.NoError(t, store.Put(ctx, "docs/index.md", "head1", "fp1", sampleMetadata()))
	_, err = store.Get(ctx, "docs/index.md", "head2", "fp1")
	assert.True(t, errors.Is(err, ErrMiss))
	_, err = store.Get(ctx, "docs/index.md", "head1", "fp2")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestPutReplaces(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "docs/index.md", "head1", "fp1", sampleMetadata()))

	updated := sampleMetadata()
	updated.PrimaryAuthor = "Carol"
	require.NoError(t, store.Put(ctx, "docs/index.md", "head1", "fp1", updated))

	got, err := store.Get(ctx, "docs/index.md", "head1", "fp1")
	require.NoError(t, err)
	assert.Equal(t, "Carol", got.PrimaryAuthor)
}

func TestNilTimestampRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "docs/untracked.md", "head1", "fp1", &history.CombinedMetadata{}))
	got, err := store.Get(ctx, "docs/untracked.md", "head1", "fp1")
	require.NoError(t, err)
	assert.Nil(t, got.Timestamp)
	assert.Empty(t, got.Warnings)
}

func TestPrune(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.md", "old-head", "fp1", sampleMetadata()))
	require.NoError(t, store.Put(ctx, "b.md", "new-head", "fp1", sampleMetadata()))

	require.NoError(t, store.Prune(ctx, "new-head"))

	_, err := store.Get(ctx, "a.md", "old-head", "fp1")
	assert.True(t, errors.Is(err, ErrMiss))
	_, err = store.Get(ctx, "b.md", "new-head", "fp1")
	assert.NoError(t, err)
}

func TestFingerprintStable(t *testing.T) {
	type opts struct {
		FirstParent bool
		Patterns    []string
	}
	a := Fingerprint(opts{FirstParent: true, Patterns: []string{"x"}})
	b := Fingerprint(opts{FirstParent: true, Patterns: []string{"x"}})
	c := Fingerprint(opts{FirstParent: false, Patterns: []string{"x"}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
