package chromemdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"termai/internal/models"
)

// VectorDBManager stores corpus passages in a chromem-go collection.
type VectorDBManager struct {
	db             *chromem.DB
	collection     *chromem.Collection
	collectionName string
	embed          chromem.EmbeddingFunc
	dbPath         string
	compress       bool
	encryptionKey  string
}

const (
	compress = false
)

// NewVectorDBManager opens the database at dbPath, or an in-memory one when
// dbPath is empty, and gets or creates the named collection.
func NewVectorDBManager(dbPath, collectionName, encryptionKey string, embed chromem.EmbeddingFunc) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if dbPath == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	m := &VectorDBManager{
		db:             db,
		collectionName: collectionName,
		embed:          embed,
		dbPath:         dbPath,
		compress:       compress,
		encryptionKey:  encryptionKey,
	}
	if _, err := m.GetOrCreateCollection(); err != nil {
		return nil, err
	}
	return m, nil
}

// GetOrCreateCollection attaches the manager to its collection.
func (m *VectorDBManager) GetOrCreateCollection() (*chromem.Collection, error) {
	c, err := m.db.GetOrCreateCollection(m.collectionName, nil, m.embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.collection = c
	return c, nil
}

// AddPassages embeds and stores passages.
func (m *VectorDBManager) AddPassages(ctx context.Context, passages []models.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(passages))
	for i, p := range passages {
		docs[i] = chromem.Document{
			ID:       p.ID,
			Content:  p.Content,
			Metadata: p.Metadata(),
		}
	}
	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Search returns the contents of the k passages most similar to query,
// best match first.
func (m *VectorDBManager) Search(ctx context.Context, query string, k int) ([]string, error) {
	n := min(k, m.collection.Count())
	if n <= 0 {
		return nil, nil
	}
	results, err := m.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Content
	}
	return out, nil
}

func (m *VectorDBManager) Count(context.Context) (int, error) {
	return m.collection.Count(), nil
}

// Reset drops every stored passage.
func (m *VectorDBManager) Reset(context.Context) error {
	if err := m.db.DeleteCollection(m.collectionName); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	_, err := m.GetOrCreateCollection()
	return err
}

// Export writes the collection to filePath, encrypted when an encryption
// key is configured.
func (m *VectorDBManager) Export(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("export path is required")
	}
	log.Debug().
		Str("collection", m.collectionName).
		Str("file", filePath).
		Bool("encrypted", m.encryptionKey != "").
		Msg("Exporting collection")

	if err := m.db.ExportToFile(filePath, m.compress, m.encryptionKey, m.collectionName); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// Import loads the collection from a file written by Export.
func (m *VectorDBManager) Import(filePath string) error {
	if err := m.db.ImportFromFile(filePath, m.encryptionKey, m.collectionName); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	_, err := m.GetOrCreateCollection()
	return err
}
