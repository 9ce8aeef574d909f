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


package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"sync/atomic"

	"github.com/poiesic/yojana/ai"
)

// DefaultDimension is the vector length produced when none is configured.
const DefaultDimension = 384

// MockEmbedder is a test double for ai.Embedder.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension is the length of generated vectors.
	Dimension int

	mu        sync.RWMutex
	vectors   map[string][]float32
	callCount atomic.Int64
}

var _ ai.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a MockEmbedder producing DefaultDimension vectors.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{Dimension: DefaultDimension, vectors: make(map[string][]float32)}
}

// WithVector pins the vector returned for text.
func (m *MockEmbedder) WithVector(text string, vector []float32) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vectors == nil {
		m.vectors = make(map[string][]float32)
	}
	m.vectors[text] = append([]float32(nil), vector...)
	return m
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount.Add(1)

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.vectorFor(text), nil
}

func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount.Add(1)

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = m.vectorFor(text)
	}
	return embeddings, nil
}

// CallCount returns how many EmbedText and EmbedTexts calls were made.
func (m *MockEmbedder) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears call counts, pinned vectors and injected functions.
func (m *MockEmbedder) Reset() {
	m.callCount.Store(0)
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
	m.mu.Lock()
	m.vectors = make(map[string][]float32)
	m.mu.Unlock()
}

func (m *MockEmbedder) vectorFor(text string) []float32 {
	m.mu.RLock()
	pinned, ok := m.vectors[text]
	m.mu.RUnlock()
	if ok {
		return append([]float32(nil), pinned...)
	}
	dim := m.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}
	return GenerateDeterministicVector(text, dim)
}

// GenerateDeterministicVector returns a unit vector seeded by a hash of text.
func GenerateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := range vector {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000)/1000.0 - 0.5
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector
}
