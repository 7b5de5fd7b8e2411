package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termai/internal/config"
	"termai/internal/models"
)

type axisEmbedder struct{}

// Each text is embedded on the axis of its first letter.
func (axisEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 3)
	if text != "" {
		vec[int(text[0])%3] = 1
	}
	return vec, nil
}

func (e axisEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = e.EmbedQuery(ctx, text)
	}
	return out, nil
}

// Requires a Postgres server with the pgvector extension.
func TestStorePgvector(t *testing.T) {
	dsn := os.Getenv(config.EnvDatabaseDSN)
	if dsn == "" {
		t.Skipf("%s not set", config.EnvDatabaseDSN)
	}
	ctx := context.Background()

	store := NewStore(NewDB(ConnectDB(&config.DatabaseConfig{DSN: dsn}), false), axisEmbedder{}, 3)
	defer store.Close()
	require.NoError(t, store.Reset(ctx))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, store.AddPassages(ctx, []models.Passage{
		{ID: "a", Content: "a passage", SourceFilename: "a.txt", ChunkID: 1},
		{ID: "b", Content: "b passage", SourceFilename: "b.txt", ChunkID: 1},
	}))

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.Search(ctx, "b?", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b passage"}, got)
}

func TestStoreRejectsWrongDimensions(t *testing.T) {
	store := NewStore(nil, axisEmbedder{}, 768)
	_, err := store.Search(context.Background(), "q", 1)
	assert.Error(t, err)
}
