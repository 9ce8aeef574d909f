// Copyright 2025 Poiesic Systems
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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/yojana/ai"
	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/index"
	"github.com/poiesic/yojana/reembed"
	"github.com/poiesic/yojana/storage"
)

// writeChunk bounds the schemes written per storage transaction.
const writeChunk = 256

// Rebuilder publishes a new index snapshot.
type Rebuilder interface {
	RebuildIndex(ctx context.Context, schemes []*core.Scheme, embeddings []*core.Embedding) error
}

// Pipeline orchestrates syncing schemes and refreshing their embeddings.
type Pipeline struct {
	repo      storage.SchemeRepository
	provider  ai.Provider
	rebuilder Rebuilder
	config    *reembed.Config
	progress  io.Writer
	prune     bool
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of embedding batches processed concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.config.Workers = size
		return nil
	}
}

// WithBatchSize sets the number of schemes per embedding call.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		p.config.BatchSize = size
		p.config.ReportInterval = size
		return nil
	}
}

// WithRetry sets the attempts per embedding batch and the base backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			return reembed.ErrInvalidMaxAttempts
		}
		p.config.MaxRetries = maxAttempts
		p.config.RetryDelay = baseDelay
		return nil
	}
}

// WithForce re-embeds every scheme on refresh. Use it after switching
// embedding models with different dimensions.
func WithForce(force bool) Option {
	return func(p *Pipeline) error {
		p.config.Force = force
		return nil
	}
}

// WithPrune deletes local schemes the source no longer lists.
func WithPrune(prune bool) Option {
	return func(p *Pipeline) error {
		p.prune = prune
		return nil
	}
}

// WithProgress writes embedding progress to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
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
func NewPipeline(repo storage.SchemeRepository, provider ai.Provider, rebuilder Rebuilder, opts ...Option) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrSchemeRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if rebuilder == nil {
		return nil, ErrRebuilderRequired
	}

	p := &Pipeline{
		repo:      repo,
		provider:  provider,
		rebuilder: rebuilder,
		config:    reembed.DefaultConfig(),
		progress:  io.Discard,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// Report summarizes a sync or refresh.
type Report struct {
	Loaded    int // rows read from the source
	Stored    int // schemes written
	Skipped   int // rows rejected by validation or duplicated
	Pruned    int // local schemes deleted
	Embedding *reembed.Report
}

// Sync copies schemes from source into the repository, then refreshes
// embeddings and republishes the index.
func (p *Pipeline) Sync(ctx context.Context, source storage.SchemeStore) (*Report, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	schemes, embeddings, err := source.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load schemes from source: %w", err)
	}
	report := &Report{Loaded: len(schemes)}

	accepted := p.prepare(schemes, report)
	for start := 0; start < len(accepted); start += writeChunk {
		chunk := accepted[start:min(start+writeChunk, len(accepted))]
		if _, err := p.repo.PutSchemes(ctx, chunk...); err != nil {
			return nil, fmt.Errorf("failed to store schemes: %w", err)
		}
		report.Stored += len(chunk)
	}

	if err := p.storeSourceEmbeddings(ctx, accepted, embeddings); err != nil {
		return nil, err
	}

	if p.prune {
		pruned, err := p.pruneMissing(ctx, accepted)
		if err != nil {
			return nil, err
		}
		report.Pruned = pruned
	}

	p.logger.Info("schemes synced",
		"loaded", report.Loaded,
		"stored", report.Stored,
		"skipped", report.Skipped,
		"pruned", report.Pruned)

	refreshed, err := p.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	report.Embedding = refreshed.Embedding
	return report, nil
}

// Refresh embeds stale schemes and republishes the index.
func (p *Pipeline) Refresh(ctx context.Context) (*Report, error) {
	r, err := reembed.NewReembedder(p.repo, p.provider.Embedder(), p.provider.Model(), p.config, p.progress, p.logger)
	if err != nil {
		return nil, err
	}
	embedding, err := r.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh embeddings: %w", err)
	}
	if err := p.Publish(ctx); err != nil {
		return nil, err
	}
	return &Report{Embedding: embedding}, nil
}

// Publish rebuilds the index from the repository's current contents.
func (p *Pipeline) Publish(ctx context.Context) error {
	schemes, embeddings, err := p.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schemes: %w", err)
	}
	if err := p.rebuilder.RebuildIndex(ctx, schemes, embeddings); err != nil {
		if errors.Is(err, index.ErrDimensionMismatch) {
			p.logger.Error("stored embeddings disagree on dimension, refresh with force to re-embed", "err", err)
		}
		return fmt.Errorf("failed to rebuild index: %w", err)
	}
	return nil
}

// prepare normalizes and validates source rows. Invalid rows are skipped
// and a later row with the same slug replaces an earlier one.
func (p *Pipeline) prepare(schemes []*core.Scheme, report *Report) []*core.Scheme {
	accepted := make([]*core.Scheme, 0, len(schemes))
	bySlug := make(map[string]int, len(schemes))
	for _, in := range schemes {
		if in == nil {
			report.Skipped++
			continue
		}
		scheme := in.Clone()
		core.NormalizeScheme(scheme)
		if err := core.ValidateScheme(scheme); err != nil {
			p.logger.Warn("skipping invalid scheme", "slug", scheme.Slug, "err", err)
			report.Skipped++
			continue
		}
		if i, ok := bySlug[scheme.Slug]; ok {
			p.logger.Warn("duplicate slug in source, keeping the later row", "slug", scheme.Slug)
			accepted[i] = scheme
			report.Skipped++
			continue
		}
		bySlug[scheme.Slug] = len(accepted)
		accepted = append(accepted, scheme)
	}
	return accepted
}

// storeSourceEmbeddings keeps vectors the source supplied for accepted
// schemes. Stale or foreign ones are replaced on refresh.
func (p *Pipeline) storeSourceEmbeddings(ctx context.Context, accepted []*core.Scheme, embeddings []*core.Embedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	known := make(map[core.ID]bool, len(accepted))
	for _, s := range accepted {
		known[s.Id] = true
	}
	keep := make([]*core.Embedding, 0, len(embeddings))
	for _, e := range embeddings {
		if e != nil && known[e.SchemeId] && len(e.Vector) > 0 {
			keep = append(keep, e)
		}
	}
	if len(keep) == 0 {
		return nil
	}
	if err := p.repo.PutEmbeddings(ctx, keep...); err != nil {
		return fmt.Errorf("failed to store source embeddings: %w", err)
	}
	return nil
}

func (p *Pipeline) pruneMissing(ctx context.Context, accepted []*core.Scheme) (int, error) {
	keep := make(map[core.ID]bool, len(accepted))
	for _, s := range accepted {
		keep[s.Id] = true
	}
	existing, err := p.repo.ListSchemes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list schemes: %w", err)
	}
	var stale []core.ID
	for _, s := range existing {
		if !keep[s.Id] {
			stale = append(stale, s.Id)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := p.repo.DeleteSchemes(ctx, stale...); err != nil {
		return 0, fmt.Errorf("failed to prune schemes: %w", err)
	}
	return len(stale), nil
}
