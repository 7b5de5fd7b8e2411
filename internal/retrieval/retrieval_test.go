package retrieval

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termai/internal/chromemdb"
	"termai/internal/models"
)

type memStore struct {
	passages  []models.Passage
	countErr  error
	searchErr error
	gotK      int
	resets    int
}

func (m *memStore) AddPassages(_ context.Context, p []models.Passage) error {
	m.passages = append(m.passages, p...)
	return nil
}

func (m *memStore) Search(_ context.Context, query string, k int) ([]string, error) {
	m.gotK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var out []string
	for _, p := range m.passages[:k] {
		out = append(out, p.Content)
	}
	return out, nil
}

func (m *memStore) Count(context.Context) (int, error) {
	return len(m.passages), m.countErr
}

func (m *memStore) Reset(context.Context) error {
	m.passages = nil
	m.resets++
	return nil
}

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestRetrieverEmptyStoreReturnsNothing(t *testing.T) {
	store := &memStore{}
	got, err := NewRetriever(store).Search(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, store.gotK)
}

func TestRetrieverWithoutStoreIsUnavailable(t *testing.T) {
	_, err := NewRetriever(nil).Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRetrieverClampsK(t *testing.T) {
	store := &memStore{passages: []models.Passage{{Content: "one"}, {Content: "two"}}}
	got, err := NewRetriever(store).Search(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)
	assert.Equal(t, 2, store.gotK)
}

func TestRetrieverErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewRetriever(&memStore{countErr: boom}).Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, boom)

	store := &memStore{passages: []models.Passage{{Content: "x"}}, searchErr: boom}
	_, err = NewRetriever(store).Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, boom)

	_, err = NewRetriever(store).Search(context.Background(), "q", 0)
	assert.Error(t, err)
}

func TestIndexerLoadDir(t *testing.T) {
	long := strings.Repeat("alpha beta gamma delta. ", 40)
	dir := writeCorpus(t, map[string]string{
		"a.txt":     "Go is a programming language.",
		"b.md":      "# Heading\n\nMarkdown *body*.",
		"c.go":      "package main",
		"d.txt":     long,
		"empty.txt": "   \n",
	})

	ix := NewIndexer(&memStore{}, 200, 20)
	passages, err := ix.LoadDir(context.Background(), dir)
	require.NoError(t, err)

	bySource := map[string][]models.Passage{}
	for _, p := range passages {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, strings.TrimSpace(p.Content))
		bySource[p.SourceFilename] = append(bySource[p.SourceFilename], p)
	}

	assert.NotContains(t, bySource, "c.go")
	assert.NotContains(t, bySource, "empty.txt")
	require.Len(t, bySource["a.txt"], 1)
	assert.Equal(t, "Go is a programming language.", bySource["a.txt"][0].Content)
	require.Len(t, bySource["b.md"], 1)
	assert.Equal(t, "Heading\nMarkdown body.", bySource["b.md"][0].Content)

	chunks := bySource["d.txt"]
	require.Greater(t, len(chunks), 1)
	for i, p := range chunks {
		assert.Equal(t, i+1, p.ChunkID)
		assert.LessOrEqual(t, len(p.Content), 200)
	}
}

func TestIndexerMissingDir(t *testing.T) {
	store := &memStore{}
	n, err := NewIndexer(store, 100, 10).IndexDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.passages)
}

func TestIndexerEnsureIndexedOnlyOnce(t *testing.T) {
	dir := writeCorpus(t, map[string]string{"a.txt": "first document"})
	store := &memStore{}
	ix := NewIndexer(store, 100, 10)

	require.NoError(t, ix.EnsureIndexed(context.Background(), dir))
	require.NoError(t, ix.EnsureIndexed(context.Background(), dir))
	assert.Len(t, store.passages, 1)

	n, err := ix.Rebuild(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, store.passages, 1)
	assert.Equal(t, 1, store.resets)
}

func bagOfLetters(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 27)
	vec[26] = 0.01
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

func TestRetrieverOverChromem(t *testing.T) {
	ctx := context.Background()
	store, err := chromemdb.NewVectorDBManager("", "docs", "", bagOfLetters)
	require.NoError(t, err)

	dir := writeCorpus(t, map[string]string{
		"x.txt": "xxxx xxxx xxxx",
		"y.txt": "yyyy yyyy",
	})
	n, err := NewIndexer(store, 500, 0).IndexDir(ctx, dir)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := NewRetriever(store).Search(ctx, "yyy", 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "yyyy yyyy", got[0])
}
