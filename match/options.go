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


package match

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/eligibility"
	"github.com/poiesic/yojana/index"
	"github.com/poiesic/yojana/ranking"
	"github.com/poiesic/yojana/storage"
)

const (
	// DefaultCandidatePool is how many nearest neighbours the vector
	// search surfaces per query.
	DefaultCandidatePool = 20

	// DefaultRecorderPoolSize bounds concurrent match recordings.
	DefaultRecorderPoolSize = 4
)

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithRecorder persists every non-empty result list for requests that
// carry a user ID. Recording is best-effort.
func WithRecorder(recorder storage.MatchRecorder) Option {
	return func(e *Engine) error {
		e.recorder = recorder
		return nil
	}
}

// WithWeights overrides ranking.DefaultWeights.
func WithWeights(w ranking.Weights) Option {
	return func(e *Engine) error {
		if err := w.Validate(); err != nil {
			return err
		}
		e.weights = w
		return nil
	}
}

// WithSoftWeights overrides eligibility.DefaultSoftWeights.
func WithSoftWeights(w eligibility.SoftWeights) Option {
	return func(e *Engine) error {
		if err := w.Validate(); err != nil {
			return err
		}
		e.softWeights = w
		return nil
	}
}

// WithCandidatePool sets how many vector neighbours are surfaced per query.
// Default is DefaultCandidatePool.
func WithCandidatePool(k int) Option {
	return func(e *Engine) error {
		if k < 1 {
			return fmt.Errorf("candidate pool must be positive, got %d", k)
		}
		e.candidatePool = k
		return nil
	}
}

// WithRecorderPoolSize sets the number of workers persisting matches.
// Default is DefaultRecorderPoolSize.
func WithRecorderPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		e.recorderPoolSize = size
		return nil
	}
}

// WithClock replaces time.Now for deadline checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now == nil {
			now = time.Now
		}
		e.now = now
		return nil
	}
}

// WithIndex shares an existing index with the engine.
// By default the engine creates its own, starting empty.
func WithIndex(idx *index.Index) Option {
	return func(e *Engine) error {
		e.index = idx
		return nil
	}
}

// Options tune a single search.
type Options struct {
	// Limit caps the number of results. Zero selects ranking.DefaultLimit.
	Limit int

	// MinScore drops results scoring below it, before Limit applies.
	MinScore float64

	// Deadline bounds the search. Zero means no deadline beyond the
	// context's own.
	Deadline time.Time

	// UserID identifies the caller for match recording. Empty skips
	// recording.
	UserID string

	// Category restricts the search to schemes in one category.
	Category string
}

// Validate checks the options for values a caller could not have meant.
func (o Options) Validate() error {
	if o.Limit < 0 {
		return fmt.Errorf("%w: %w: limit %d is negative", core.ErrValidation, ErrInvalidOptions, o.Limit)
	}
	if math.IsNaN(o.MinScore) || o.MinScore < 0 || o.MinScore > 1 {
		return fmt.Errorf("%w: %w: min score %v outside [0,1]", core.ErrValidation, ErrInvalidOptions, o.MinScore)
	}
	return nil
}
