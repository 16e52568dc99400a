package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	s, err := NewStore(path)
	require.NoError(t, err)
	return s
}

func TestAppendAndReload(t *testing.T) {
	s := tempStore(t)

	err := s.Append(&TransferRecord{
		SourceChain: "base",
		Amount:      "500",
		Recipient:   "UQAbc",
		RouteName:   "via Li.Fi (across)",
		TxHash:      "0xbridge",
		Status:      "success",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count())

	reloaded, err := NewStore(s.FilePath())
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Count())

	rec := reloaded.List(0)[0]
	assert.Equal(t, "base", rec.SourceChain)
	assert.Equal(t, "0xbridge", rec.TxHash)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestListNewestFirstWithLimit(t *testing.T) {
	s := tempStore(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(&TransferRecord{
			ID:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Status:    "success",
		}))
	}

	all := s.List(0)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	limited := s.List(2)
	require.Len(t, limited, 2)
	assert.Equal(t, "c", limited[0].ID)
}

func TestUpdateStatus(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Append(&TransferRecord{ID: "t1", Status: "pending"}))

	require.NoError(t, s.UpdateStatus("t1", "success", "0xdone", ""))
	rec, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, "success", rec.Status)
	assert.Equal(t, "0xdone", rec.TxHash)

	assert.Error(t, s.UpdateStatus("missing", "error", "", "boom"))
}

func TestMissingFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")
	s, err := NewStore(path)
	require.NoError(t, err)
	assert.Zero(t, s.Count())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "store must not create the file until first save")
}

func TestCorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewStore(path)
	assert.Error(t, err)
}
