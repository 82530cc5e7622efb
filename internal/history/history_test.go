package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(n int) *int           { return &n }
func floatp(f float64) *float64 { return &f }

func TestSaveGetRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	id, err := s.Save("/home/me/app/main.go", "Looks solid.\n\nOverall Score: 9/10", "security", nil, floatp(0.0421))
	require.NoError(t, err)
	require.Equal(t, 1, id)

	rec, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "/home/me/app/main.go", rec.Filepath)
	assert.Equal(t, "main.go", rec.Filename)
	assert.Equal(t, "Looks solid.\n\nOverall Score: 9/10", rec.Review)
	assert.Equal(t, "security", rec.Focus)
	require.NotNil(t, rec.Score)
	assert.Equal(t, 9, *rec.Score, "score should be auto-extracted")
	require.NotNil(t, rec.Cost)
	assert.InDelta(t, 0.0421, *rec.Cost, 1e-9)
	assert.NotEmpty(t, rec.Date)
}

func TestSaveExplicitScoreWins(t *testing.T) {
	s := NewStore(t.TempDir())
	id, err := s.Save("a.go", "Overall Score: 2/10", "general", intp(5), nil)
	require.NoError(t, err)

	rec, _ := s.Get(id)
	require.NotNil(t, rec.Score)
	assert.Equal(t, 5, *rec.Score)
}

func TestSaveNoScorePatternLeavesScoreUnset(t *testing.T) {
	s := NewStore(t.TempDir())
	id, err := s.Save("a.go", "no numeric verdict here", "general", nil, nil)
	require.NoError(t, err)

	rec, _ := s.Get(id)
	assert.Nil(t, rec.Score)
}

func TestGetAbsent(t *testing.T) {
	s := NewStore(t.TempDir())
	_, ok := s.Get(42)
	assert.False(t, ok)
}

func TestRecentNewestFirst(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, name := range []string{"a.go", "b.go", "c.go"} {
		_, err := s.Save(name, "review of "+name, "general", nil, nil)
		require.NoError(t, err)
	}

	recent := s.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "c.go", recent[0].Filename)
	assert.Equal(t, "b.go", recent[1].Filename)
}

func TestCapDropsOldest(t *testing.T) {
	s := NewStore(t.TempDir())
	for i := 0; i < maxRecords; i++ {
		_, err := s.Save(fmt.Sprintf("file%d.go", i), "r", "general", nil, nil)
		require.NoError(t, err)
	}
	require.Len(t, s.All(), maxRecords)

	_, err := s.Save("overflow.go", "r", "general", nil, nil)
	require.NoError(t, err)

	all := s.All()
	require.Len(t, all, maxRecords)
	assert.Equal(t, "overflow.go", all[0].Filename)
	// The very first record is gone.
	_, ok := s.Get(1)
	assert.False(t, ok)
}

func TestByFileMatchesNameOrFullPath(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Save("/proj/a/util.go", "first", "general", nil, nil)
	require.NoError(t, err)
	_, err = s.Save("/proj/b/util.go", "second", "general", nil, nil)
	require.NoError(t, err)
	_, err = s.Save("/proj/a/other.go", "third", "general", nil, nil)
	require.NoError(t, err)

	byName := s.ByFile("util.go")
	require.Len(t, byName, 2)
	assert.Equal(t, "second", byName[0].Review, "newest first")

	byPath := s.ByFile("/proj/a/util.go")
	require.Len(t, byPath, 2, "basename of the path also matches the other util.go")
}

func TestSearchCaseInsensitiveAcrossFields(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Save("db.go", "Potential SQL injection in query builder", "security", nil, nil)
	require.NoError(t, err)
	_, err = s.Save("ui.go", "fine", "style", nil, nil)
	require.NoError(t, err)

	assert.Len(t, s.Search("sql"), 1, "matches review text case-insensitively")
	assert.Len(t, s.Search("DB.GO"), 1, "matches filename")
	assert.Len(t, s.Search("style"), 1, "matches focus")
	assert.Empty(t, s.Search("rust"))
}

func TestStats(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, name := range []string{"a.go", "b.go", "c.go"} {
		_, err := s.Save(name, "Overall Score: 8/10", "security", nil, floatp(0.10))
		require.NoError(t, err)
	}
	// One extra review of an already-seen file with no score or cost.
	_, err := s.Save("a.go", "no verdict", "bugs", nil, nil)
	require.NoError(t, err)

	stats := s.GetStats()
	assert.Equal(t, 4, stats.TotalReviews)
	assert.InDelta(t, 8.0, stats.AvgScore, 1e-9)
	assert.InDelta(t, 0.30, stats.TotalCost, 1e-9)
	assert.Equal(t, 3, stats.FilesReviewed)
	assert.Equal(t, map[string]int{"security": 3, "bugs": 1}, stats.FocusBreakdown)
}

func TestDeleteThenSaveDoesNotReuseID(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, name := range []string{"a.go", "b.go", "c.go"} {
		_, err := s.Save(name, "r", "general", nil, nil)
		require.NoError(t, err)
	}

	ok, err := s.Delete(2)
	require.NoError(t, err)
	require.True(t, ok)

	id, err := s.Save("d.go", "r", "general", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, id, "next ID continues past the highest retained ID")

	ok, err = s.Delete(99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	s := NewStore(t.TempDir())
	for i := 0; i < 3; i++ {
		_, err := s.Save("a.go", "r", "general", nil, nil)
		require.NoError(t, err)
	}

	n, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Empty(t, s.All())
}

func TestCorruptJournalTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, historyFile), []byte("[oops"), 0o600))

	s := NewStore(dir)
	assert.Empty(t, s.All())

	id, err := s.Save("a.go", "r", "general", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestJournalFileShape(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.Save("a.go", "r", "general", nil, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, historyFile))
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw), "journal must be an ordered JSON array")
	require.Len(t, raw, 1)
	assert.Contains(t, raw[0], "id")
	assert.Contains(t, raw[0], "filename")
}
