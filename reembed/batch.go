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
	"fmt"
	"time"

	"github.com/poiesic/yojana/ai"
	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/storage"
)

// BatchProcessor embeds one batch of schemes and stores the vectors.
type BatchProcessor struct {
	repo           storage.SchemeRepository
	embedder       ai.Embedder
	model          string
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a processor that tags vectors with model.
func NewBatchProcessor(repo storage.SchemeRepository, embedder ai.Embedder, model string, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		model:          model,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the canonical text of every scheme in the batch.
// Either every vector in the batch is stored or none is.
func (bp *BatchProcessor) Process(ctx context.Context, schemes []*core.Scheme) error {
	if len(schemes) == 0 {
		return nil
	}

	texts := make([]string, len(schemes))
	for i, scheme := range schemes {
		texts[i] = scheme.CanonicalText()
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}
	if len(vectors) != len(schemes) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(schemes), len(vectors))
	}

	embeddings := make([]*core.Embedding, len(schemes))
	for i, scheme := range schemes {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("empty vector for scheme %q", scheme.Slug)
		}
		embeddings[i] = &core.Embedding{
			SchemeId: scheme.Id,
			Vector:   vectors[i],
			TextHash: scheme.TextHash(),
			Model:    bp.model,
		}
	}

	if err := bp.repo.PutEmbeddings(ctx, embeddings...); err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}
	return nil
}
