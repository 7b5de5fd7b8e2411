package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"termai/internal/config"
	"termai/internal/models"
)

type Document struct {
	bun.BaseModel  `bun:"table:documents,alias:d"`
	ID             string `bun:"id,pk"`
	Content        string `bun:"content,notnull"`
	SourceFilename string `bun:"source_filename"`
	ChunkID        int    `bun:"chunk_id"`
	Embedding      Vector `bun:"embedding,notnull,type:vector"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func ConnectDB(dbConfig *config.DatabaseConfig) *sql.DB {
	opts := []pgdriver.Option{pgdriver.WithDSN(dbConfig.DSN)}
	if dbConfig.Password != "" {
		opts = append(opts, pgdriver.WithPassword(dbConfig.Password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...))
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx)
	return err
}

// Store keeps corpus passages in Postgres and ranks them by L2 distance
// with pgvector.
type Store struct {
	db         *bun.DB
	embedder   embeddings.Embedder
	vectorSize int
}

func NewStore(db *bun.DB, embedder embeddings.Embedder, vectorSize int) *Store {
	return &Store{db: db, embedder: embedder, vectorSize: vectorSize}
}

func (s *Store) AddPassages(ctx context.Context, passages []models.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed passages: %w", err)
	}
	if len(vectors) != len(passages) {
		return fmt.Errorf("embedder returned %d vectors for %d passages", len(vectors), len(passages))
	}

	docs := make([]Document, len(passages))
	for i, p := range passages {
		if err := s.checkSize(vectors[i]); err != nil {
			return err
		}
		docs[i] = Document{
			ID:             p.ID,
			Content:        p.Content,
			SourceFilename: p.SourceFilename,
			ChunkID:        p.ChunkID,
			Embedding:      vectors[i],
		}
	}
	_, err = s.db.NewInsert().Model(&docs).Exec(ctx)
	return err
}

func (s *Store) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if err := s.checkSize(vec); err != nil {
		return nil, err
	}

	var docs []Document
	err = s.db.NewSelect().
		Model(&docs).
		Column("id", "content").
		OrderExpr("embedding <-> ?", Vector(vec)).
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Content
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*Document)(nil)).Count(ctx)
}

func (s *Store) Reset(ctx context.Context) error {
	if err := DropDocuments(ctx, s.db); err != nil {
		return err
	}
	return InitDB(ctx, s.db)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) checkSize(vec []float32) error {
	if s.vectorSize > 0 && len(vec) != s.vectorSize {
		return fmt.Errorf("embedding has %d dimensions, database expects %d", len(vec), s.vectorSize)
	}
	return nil
}
