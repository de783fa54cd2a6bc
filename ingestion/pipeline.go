package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/engramdb/engram/ai"
	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/search"
	"github.com/engramdb/engram/storage"
	"github.com/panjf2000/ants/v2"
)

// Pipeline orchestrates the ingestion and processing of thoughts.
// Thoughts are stored synchronously; entity enrichment and search
// indexing run asynchronously on worker pools.
type Pipeline struct {
	thoughts   storage.ThoughtStore
	enrichPool *ants.Pool
	indexPool  *ants.Pool
	enrichProc processor
	indexProc  processor
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.enrichPool != nil {
			p.enrichPool.Release()
		}
		if p.indexPool != nil {
			p.indexPool.Release()
		}

		enrichPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		indexPool, err := ants.NewPool(size)
		if err != nil {
			enrichPool.Release()
			return err
		}

		p.enrichPool = enrichPool
		p.indexPool = indexPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	thoughts storage.ThoughtStore,
	engine *search.Engine,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if thoughts == nil {
		return nil, ErrThoughtStoreRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	logger := slog.Default()

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	enrichPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	indexPool, err := ants.NewPool(poolSize)
	if err != nil {
		enrichPool.Release()
		return nil, err
	}

	p := &Pipeline{
		thoughts:   thoughts,
		enrichPool: enrichPool,
		indexPool:  indexPool,
		logger:     logger,
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create processors after options are applied (so they get final config)
	enrichProc, err := newEnrichProcessor(thoughts, provider.Embedder(), provider.EntityExtractor(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	indexProc, err := newIndexProcessor(thoughts, engine, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.enrichProc = enrichProc
	p.indexProc = indexProc

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	Metadata  map[string]string // Optional metadata to attach to thoughts
	Timestamp time.Time         // Optional timestamp (uses current time if zero)
}

// Ingest stores the contents as thoughts for the user and processes
// them asynchronously: entity enrichment first, then search indexing
// once enrichment has run, so entity vectors are available to index.
// Errors during async processing are logged but do not fail the
// ingestion. Returns the stored thoughts with IDs populated.
func (p *Pipeline) Ingest(ctx context.Context, userID string, contents []string, opts *IngestOptions) ([]*core.Thought, error) {
	if opts == nil {
		opts = &IngestOptions{}
	}

	thoughts := make([]*core.Thought, len(contents))
	for i, content := range contents {
		timestamp := opts.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now().UTC()
		}

		thoughts[i] = &core.Thought{
			UserId:    userID,
			Content:   content,
			Timestamp: timestamp,
			Metadata:  opts.Metadata,
		}
	}

	for _, thought := range thoughts {
		if err := core.ValidateThought(thought); err != nil {
			return nil, err
		}
	}

	added, err := p.thoughts.AddThoughts(ctx, thoughts...)
	if err != nil {
		return nil, err
	}

	if len(added) == 0 {
		return added, nil
	}

	ids := make([]core.ID, len(added))
	for i, thought := range added {
		ids[i] = thought.Id
	}

	// Enrichment chains into indexing so the index job sees the
	// entity vectors enrichment produced.
	p.enrichPool.Submit(func() {
		if err := p.enrichProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error enriching thoughts", "err", err)
		}
		p.indexPool.Submit(func() {
			if err := p.indexProc.process(context.Background(), ids...); err != nil {
				p.logger.Error("error indexing thoughts", "err", err)
			}
		})
	})

	return added, nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.enrichPool != nil {
		p.enrichPool.Release()
	}
	if p.indexPool != nil {
		p.indexPool.Release()
	}
}
