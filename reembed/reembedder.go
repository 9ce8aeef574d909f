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


package reembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/yojana/ai"
	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/storage"
)

const (
	// DefaultBatchSize is the default number of schemes per embedding call.
	DefaultBatchSize = 32
)

// Config holds configuration for a reembedding run.
type Config struct {
	// BatchSize is the number of schemes embedded per call
	BatchSize int

	// Workers is the number of batches embedded concurrently
	Workers int

	// ReportInterval is how often to report progress (number of schemes)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Force re-embeds every scheme, stale or not
	Force bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		BatchSize:      DefaultBatchSize,
		Workers:        workers,
		ReportInterval: DefaultBatchSize,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Report summarizes a run.
type Report struct {
	Total    int // schemes in the repository
	Stale    int // schemes that needed a vector
	Embedded int
	Failed   int
	Reasons  map[StaleReason]int
	Elapsed  time.Duration
}

// Reembedder refreshes stale scheme embeddings.
type Reembedder struct {
	repo      storage.SchemeRepository
	embedder  ai.Embedder
	model     string
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	logger    *slog.Logger
}

// NewReembedder creates a new reembedder. Vectors are tagged with model so
// a later model change marks them stale.
// progress: where to write progress output (typically os.Stderr, may be nil)
func NewReembedder(repo storage.SchemeRepository, embedder ai.Embedder, model string, config *Config, progress io.Writer, logger *slog.Logger) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reembedder{
		repo:      repo,
		embedder:  embedder,
		model:     model,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, model, config.MaxRetries, config.RetryDelay),
		logger:    logger.With("component", "reembed"),
	}, nil
}

// Run embeds every stale scheme. Failed batches are counted in the report
// rather than failing the run; only storage errors and cancellation are
// returned.
func (r *Reembedder) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{Reasons: make(map[StaleReason]int)}

	stale, total, err := r.selectStale(ctx, report.Reasons)
	if err != nil {
		return nil, err
	}
	report.Total = total
	report.Stale = len(stale)

	if len(stale) == 0 {
		fmt.Fprintf(r.progress, "All %d scheme embeddings are current\n", total)
		report.Elapsed = time.Since(start)
		return report, nil
	}

	fmt.Fprintf(r.progress, "Embedding %d of %d schemes (batch size: %d, workers: %d)\n",
		len(stale), total, r.config.BatchSize, r.config.Workers)

	workers := r.config.Workers
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	tracker := NewProgressTracker(r.progress, len(stale), r.config.ReportInterval)
	tracker.Start()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		embedded int
		failed   int
	)
	for _, batch := range batches(stale, r.config.BatchSize) {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			err := r.processor.Process(ctx, batch)

			mu.Lock()
			if err != nil {
				failed += len(batch)
			} else {
				embedded += len(batch)
			}
			mu.Unlock()
			tracker.Increment(len(batch))

			if err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("error embedding batch", "schemes", len(batch), "first", batch[0].Slug, "err", err)
			}
		})
		if submitErr != nil {
			wg.Done()
			return nil, submitErr
		}
	}
	wg.Wait()
	tracker.Finish()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.Embedded = embedded
	report.Failed = failed
	report.Elapsed = tracker.Elapsed()

	fmt.Fprintf(r.progress, "Embedding complete. %d embedded, %d failed in %v\n",
		embedded, failed, report.Elapsed.Round(time.Millisecond))
	r.logger.Info("embeddings refreshed", "total", total, "stale", len(stale), "embedded", embedded, "failed", failed)
	return report, nil
}

func (r *Reembedder) selectStale(ctx context.Context, reasons map[StaleReason]int) ([]*core.Scheme, int, error) {
	schemes, err := r.repo.ListSchemes(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list schemes: %w", err)
	}

	var stale []*core.Scheme
	for _, scheme := range schemes {
		current, err := r.repo.GetEmbedding(ctx, scheme.Id)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, 0, fmt.Errorf("failed to read embedding for %q: %w", scheme.Slug, err)
		}
		if reason, ok := Staleness(scheme, current, r.model, r.config.Force); ok {
			reasons[reason]++
			stale = append(stale, scheme)
		}
	}
	return stale, len(schemes), nil
}
