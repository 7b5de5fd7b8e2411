package main

import (
	"context"

	"termai/internal/chromemdb"
	"termai/internal/config"
	"termai/internal/db"
	"termai/internal/embedding"
	"termai/internal/retrieval"
)

// openStore builds the configured vector store. The returned func releases
// its resources.
func openStore(ctx context.Context, cfg *config.Config) (retrieval.Store, func(), error) {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, nil, err
	}

	switch cfg.RAG.Backend {
	case config.BackendPgvector:
		bunDB := db.NewDB(db.ConnectDB(&cfg.Database), cfg.Database.Debug)
		if err := db.InitDB(ctx, bunDB); err != nil {
			bunDB.Close()
			return nil, nil, err
		}
		store := db.NewStore(bunDB, embedder, cfg.Database.VectorSize)
		return store, func() { store.Close() }, nil
	default:
		store, err := chromemdb.NewVectorDBManager(cfg.RAG.DBPath, cfg.RAG.Collection, cfg.RAG.EncryptionKey, embedding.ChromemFunc(embedder))
		if err != nil {
			return nil, nil, err
		}
		if cfg.RAG.ImportFile != "" {
			if err := store.Import(cfg.RAG.ImportFile); err != nil {
				return nil, nil, err
			}
		}
		return store, func() {}, nil
	}
}

// openSearcher opens the store and indexes the corpus directory when the
// store is still empty.
func openSearcher(ctx context.Context, cfg *config.Config) (retrieval.Searcher, func(), error) {
	store, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	ix := retrieval.NewIndexer(store, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err := ix.EnsureIndexed(ctx, cfg.RAG.DataDir); err != nil {
		closeFn()
		return nil, nil, err
	}
	return retrieval.NewRetriever(store), closeFn, nil
}
