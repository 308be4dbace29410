package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session_memory.json"))
	rec, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, rec)
}

func TestUpdateMergesLastWriterWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem", "session_memory.json")
	s := NewStore(path)

	_, err := s.Update(Record{KeyIndustry: "Finance", "note": "keep me"})
	require.NoError(t, err)
	merged, err := s.Update(Record{KeyIndustry: "Healthcare", KeyConstraints: []string{"Budget limit"}})
	require.NoError(t, err)

	assert.Equal(t, "Healthcare", merged[KeyIndustry])
	assert.Equal(t, "keep me", merged["note"])

	got, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "Healthcare", got[KeyIndustry])
	assert.Equal(t, []any{"Budget limit"}, got[KeyConstraints])
}

func TestCorruptFileLoadsEmptyAndIsOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session_memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	s := NewStore(path)

	rec, err := s.Load()
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Empty(t, rec)

	merged, err := s.Update(Record{KeyConfidenceMode: "Balanced"})
	require.NoError(t, err)
	assert.Equal(t, Record{KeyConfidenceMode: "Balanced"}, merged)

	require.NoError(t, os.WriteFile(path, []byte(`["not","object"]`), 0o644))
	_, err = s.Load()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestClear(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "m.json"))
	require.NoError(t, s.Clear())
	_, err := s.Update(Record{KeyIndustry: "IT Ops"})
	require.NoError(t, err)
	require.NoError(t, s.Clear())
	rec, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, rec)
}

func TestConcurrentUpdatesKeepEveryKey(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "m.json"))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Update(Record{fmt.Sprintf("k%d", i): i})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	rec, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, rec, 20)
}
