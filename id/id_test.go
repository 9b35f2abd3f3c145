package id

import (
	"sort"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorProducesSortedUniqueULIDs(t *testing.T) {
	t.Parallel()

	g := NewGenerator()
	ids := make([]string, 500)
	for i := range ids {
		ids[i] = g.New()
	}

	// Valid ULIDs, unique, and lexicographically increasing even within the
	// same millisecond.
	seen := make(map[string]struct{}, len(ids))
	for _, s := range ids {
		_, err := ulid.ParseStrict(s)
		require.NoError(t, err)
		_, dup := seen[s]
		require.False(t, dup, "duplicate id %s", s)
		seen[s] = struct{}{}
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestIndependentGeneratorsDoNotCollide(t *testing.T) {
	t.Parallel()

	a, b := NewGenerator(), NewGenerator()
	assert.NotEqual(t, a.New(), b.New())
}
