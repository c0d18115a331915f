package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarningSet(t *testing.T) {
	var s WarningSet
	assert.False(t, s.Has(WarningShallowTruncated))
	assert.Empty(t, s.Strings())

	s.Add(WarningDependencyNotFound)
	s.Add(WarningShallowTruncated)
	s.Add(WarningShallowTruncated)
	assert.True(t, s.Has(WarningShallowTruncated))
	assert.Equal(t, []string{"dependency-not-found", "shallow-truncated"}, s.Strings())

	var other WarningSet
	other.Union(s)
	assert.Equal(t, s.Strings(), other.Strings())
}
