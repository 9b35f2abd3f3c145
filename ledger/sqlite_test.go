package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteAppendAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.db")
	store, err := NewSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(sampleRecord("01ARZ3NDEKTSV4RRFFQ69G5FAA")))
	require.NoError(t, store.Append(sampleRecord("01ARZ3NDEKTSV4RRFFQ69G5FAB")))

	records, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	// ULID keys sort in append order.
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAA", records[0].ID)
	assert.Equal(t, sampleRecord("01ARZ3NDEKTSV4RRFFQ69G5FAB"), records[1])
}

func TestSQLiteRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.db")
	store, err := NewSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Append(sampleRecord("T1")))
	assert.Error(t, store.Append(sampleRecord("T1")))
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.db")
	store, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(sampleRecord("T1")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.LoadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
