// Copyright 2025 The Engram Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package engram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/engramdb/engram/ai"
	"github.com/engramdb/engram/ai/openai"
	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/ingestion"
	"github.com/engramdb/engram/reindex"
	"github.com/engramdb/engram/search"
	"github.com/engramdb/engram/storage"
	"github.com/engramdb/engram/storage/badger"
)

// Database bundles the storage backend, vector index, AI provider and
// search engine behind one handle.
type Database struct {
	backend  *badger.Backend
	thoughts storage.ThoughtStore
	vectors  storage.VectorIndex
	provider ai.Provider
	engine   *search.Engine
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig overrides the AI service configuration used to build
// the default OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built AI provider, bypassing the
// default OpenAI-compatible one. The database takes ownership and
// closes it on Close.
func WithAIProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the badger backend without on-disk persistence.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	thoughts, err := badger.NewThoughtStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	vectors := badger.NewVectorIndex(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			thoughts.Close()
			backend.Close()
			return nil, err
		}
	}

	engine, err := search.NewEngine(thoughts, vectors, provider.Embedder())
	if err != nil {
		provider.Close()
		thoughts.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		thoughts: thoughts,
		vectors:  vectors,
		provider: provider,
		engine:   engine,
		logger:   slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.vectors.Close(); err != nil {
		db.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := db.thoughts.Close(); err != nil {
		db.logger.Error("error closing thought store", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) ThoughtStore() storage.ThoughtStore {
	return db.thoughts
}

func (db *Database) VectorIndex() storage.VectorIndex {
	return db.vectors
}

func (db *Database) Engine() *search.Engine {
	return db.engine
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.thoughts, db.engine, db.provider, opts...)
}

func (db *Database) NewReindexer(config *reindex.Config, progress io.Writer) *Reindexer {
	return &Reindexer{inner: reindex.NewReindexer(db.thoughts, db.engine, db.provider.Embedder(), config, progress)}
}

// Reindexer re-embeds and re-indexes a user's thoughts. It wraps the
// reindex package with the database's own components.
type Reindexer struct {
	inner *reindex.Reindexer
}

func (r *Reindexer) Run(ctx context.Context, userID string) error {
	return r.inner.Run(ctx, userID)
}

// Search parses the raw query string (including type:, after:, before:
// and relative date syntax) and runs the hybrid search pipeline.
func (db *Database) Search(ctx context.Context, raw, userID string, pagination search.Pagination) (*search.Response, error) {
	start := time.Now()
	query := search.ParseQuery(raw, userID, pagination)
	resp, err := db.engine.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	resp.SearchTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}

// Suggest returns autocomplete suggestions for a prefix.
func (db *Database) Suggest(ctx context.Context, prefix, userID string, limit int) ([]string, error) {
	return db.engine.Suggest(ctx, prefix, userID, limit)
}

// DeleteThought removes a thought from storage and drops its content
// and entity vectors from the index.
func (db *Database) DeleteThought(ctx context.Context, id core.ID) error {
	thought, err := db.thoughts.GetThought(ctx, id)
	if err != nil {
		return err
	}

	// Entity vectors first; the thought record carries their entry ids.
	for _, entry := range thought.Entries {
		if err := db.vectors.Delete(ctx, search.EntityVectorID(entry.Id)); err != nil {
			return fmt.Errorf("deleting entity vector %d: %w", entry.Id, err)
		}
	}
	if err := db.engine.RemoveFromIndex(ctx, id); err != nil {
		return err
	}
	return db.thoughts.DeleteThoughts(ctx, id)
}
