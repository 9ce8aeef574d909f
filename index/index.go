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


package index

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/poiesic/yojana/core"
)

// Index publishes snapshots. Reads are lock-free; rebuilds are serialized.
type Index struct {
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex // held for the duration of a rebuild
	logger  *slog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger used to report rebuilds.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) {
		i.logger = logger
	}
}

// New creates an index holding an empty version 0 snapshot.
func New(opts ...Option) *Index {
	idx := &Index{}
	for _, opt := range opts {
		opt(idx)
	}
	if idx.logger == nil {
		idx.logger = slog.Default()
	}
	idx.logger = idx.logger.With("component", "index")
	idx.current.Store(Empty(0))
	return idx
}

// Current returns the active snapshot. Callers should capture it once and
// use the same snapshot for the whole request.
func (i *Index) Current() *Snapshot {
	return i.current.Load()
}

// Rebuild builds a new snapshot from schemes and embeddings and publishes
// it. On error the active snapshot is left unchanged.
func (i *Index) Rebuild(ctx context.Context, schemes []*core.Scheme, embeddings []*core.Embedding) (*Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next, err := NewSnapshot(i.current.Load().Version()+1, schemes, embeddings)
	if err != nil {
		i.logger.Error("rebuild rejected", "err", err)
		return nil, err
	}

	// Cancellation after the build discards the work rather than publishing it
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i.current.Store(next)

	i.logger.Info("published snapshot",
		"version", next.Version(),
		"schemes", next.Len(),
		"embedded", next.EmbeddedCount(),
		"dimension", next.Dimension())
	return next, nil
}
