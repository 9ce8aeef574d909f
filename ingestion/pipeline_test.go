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
	"sync"
	"testing"
	"time"

	"github.com/poiesic/yojana/ai/mock"
	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/index"
	"github.com/poiesic/yojana/storage"
	"github.com/poiesic/yojana/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticSource implements storage.SchemeStore for testing
type staticSource struct {
	schemes    []*core.Scheme
	embeddings []*core.Embedding
	err        error
}

func (s *staticSource) LoadAll(_ context.Context) ([]*core.Scheme, []*core.Embedding, error) {
	return s.schemes, s.embeddings, s.err
}

// indexRebuilder publishes into a real index
type indexRebuilder struct {
	mu    sync.Mutex
	idx   *index.Index
	calls int
}

func (r *indexRebuilder) RebuildIndex(ctx context.Context, schemes []*core.Scheme, embeddings []*core.Embedding) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	_, err := r.idx.Rebuild(ctx, schemes, embeddings)
	return err
}

func setup(t *testing.T) (storage.SchemeRepository, *indexRebuilder) {
	t.Helper()
	schemeRepo, matchRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		matchRepo.Close()
		schemeRepo.Close()
		backend.Close()
	})
	return schemeRepo, &indexRebuilder{idx: index.New()}
}

func sourceSchemes() []*core.Scheme {
	return []*core.Scheme{
		{Slug: "pm-kisan", Name: "PM-KISAN", Category: "Agriculture", State: "All India"},
		{Slug: "pmay", Name: "PMAY", Category: "Housing"},
		{Slug: "", Name: "No slug"},
		{Slug: "bad-age", Name: "Bad Age", MinAge: core.Int(60), MaxAge: core.Int(18)},
		{Slug: "pmay", Name: "PMAY Urban", Category: "Housing"},
		nil,
	}
}

func newTestPipeline(t *testing.T, repo storage.SchemeRepository, rebuilder Rebuilder, opts ...Option) *Pipeline {
	t.Helper()
	provider := mock.NewMockProvider()
	provider.GetMockEmbedder().Dimension = 8
	opts = append([]Option{WithRetry(1, time.Millisecond), WithBatchSize(2)}, opts...)
	p, err := NewPipeline(repo, provider, rebuilder, opts...)
	require.NoError(t, err)
	return p
}

func TestNewPipeline(t *testing.T) {
	repo, rebuilder := setup(t)
	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(repo, provider, rebuilder, WithPoolSize(0), WithLogger(nil))
		require.NoError(t, err)
		assert.Equal(t, 1, p.config.Workers)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewPipeline(nil, provider, rebuilder)
		assert.Equal(t, ErrSchemeRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(repo, nil, rebuilder)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("nil rebuilder", func(t *testing.T) {
		_, err := NewPipeline(repo, provider, nil)
		assert.Equal(t, ErrRebuilderRequired, err)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		_, err := NewPipeline(repo, provider, rebuilder, WithBatchSize(0))
		assert.Error(t, err)
	})

	t.Run("invalid retry", func(t *testing.T) {
		_, err := NewPipeline(repo, provider, rebuilder, WithRetry(0, time.Second))
		assert.Error(t, err)
	})
}

func TestPipeline_Sync(t *testing.T) {
	ctx := context.Background()
	repo, rebuilder := setup(t)
	p := newTestPipeline(t, repo, rebuilder)

	report, err := p.Sync(ctx, &staticSource{schemes: sourceSchemes()})
	require.NoError(t, err)
	assert.Equal(t, 6, report.Loaded)
	assert.Equal(t, 2, report.Stored)
	assert.Equal(t, 4, report.Skipped, "nil, empty slug, bad age, duplicate slug")
	require.NotNil(t, report.Embedding)
	assert.Equal(t, 2, report.Embedding.Embedded)

	stored, err := repo.GetSchemeBySlug(ctx, "pmay")
	require.NoError(t, err)
	assert.Equal(t, "PMAY Urban", stored.Name, "later duplicate wins")

	kisan, err := repo.GetSchemeBySlug(ctx, "pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, "", kisan.State, "national spelling normalized")
	assert.Equal(t, core.IDFromContent("pm-kisan"), kisan.Id)

	snap := rebuilder.idx.Current()
	assert.Equal(t, uint64(1), snap.Version())
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, 2, snap.EmbeddedCount())
	assert.Equal(t, 8, snap.Dimension())
}

func TestPipeline_SyncIsIncremental(t *testing.T) {
	ctx := context.Background()
	repo, rebuilder := setup(t)
	p := newTestPipeline(t, repo, rebuilder)
	source := &staticSource{schemes: sourceSchemes()}

	_, err := p.Sync(ctx, source)
	require.NoError(t, err)

	report, err := p.Sync(ctx, source)
	require.NoError(t, err)
	assert.Zero(t, report.Embedding.Stale, "unchanged text keeps its vectors")
	assert.Equal(t, uint64(2), rebuilder.idx.Current().Version())
}

func TestPipeline_SyncPrune(t *testing.T) {
	ctx := context.Background()
	repo, rebuilder := setup(t)
	p := newTestPipeline(t, repo, rebuilder, WithPrune(true))

	_, err := p.Sync(ctx, &staticSource{schemes: sourceSchemes()})
	require.NoError(t, err)

	report, err := p.Sync(ctx, &staticSource{schemes: []*core.Scheme{{Slug: "pmay", Name: "PMAY"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pruned)

	_, err = repo.GetSchemeBySlug(ctx, "pm-kisan")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 1, rebuilder.idx.Current().Len())
}

func TestPipeline_SyncKeepsSourceEmbeddings(t *testing.T) {
	ctx := context.Background()
	repo, rebuilder := setup(t)
	p := newTestPipeline(t, repo, rebuilder)

	scheme := &core.Scheme{Slug: "pmay", Name: "PMAY"}
	normalized := scheme.Clone()
	core.NormalizeScheme(normalized)
	vec := mock.GenerateDeterministicVector("precomputed", 8)

	report, err := p.Sync(ctx, &staticSource{
		schemes: []*core.Scheme{scheme},
		embeddings: []*core.Embedding{
			{SchemeId: normalized.Id, Vector: vec, TextHash: normalized.TextHash(), Model: "mock"},
			{SchemeId: 42, Vector: vec},
		},
	})
	require.NoError(t, err)
	assert.Zero(t, report.Embedding.Stale)

	stored, err := repo.GetEmbedding(ctx, normalized.Id)
	require.NoError(t, err)
	assert.Equal(t, vec, stored.Vector)
}

func TestPipeline_EmbedderFailureStillPublishes(t *testing.T) {
	ctx := context.Background()
	repo, rebuilder := setup(t)

	provider := mock.NewMockProvider()
	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding host down")
	}
	p, err := NewPipeline(repo, provider, rebuilder, WithRetry(1, time.Millisecond))
	require.NoError(t, err)

	report, err := p.Sync(ctx, &staticSource{schemes: sourceSchemes()})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Embedding.Failed)

	snap := rebuilder.idx.Current()
	assert.Equal(t, 2, snap.Len())
	assert.Zero(t, snap.EmbeddedCount())
}

func TestPipeline_SourceError(t *testing.T) {
	repo, rebuilder := setup(t)
	p := newTestPipeline(t, repo, rebuilder)

	_, err := p.Sync(context.Background(), &staticSource{err: errors.New("connection refused")})
	assert.Error(t, err)
	assert.Zero(t, rebuilder.calls)

	_, err = p.Sync(context.Background(), nil)
	assert.Equal(t, ErrSourceRequired, err)
}

func TestPipeline_PublishDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	repo, rebuilder := setup(t)
	p := newTestPipeline(t, repo, rebuilder)

	_, err := p.Sync(ctx, &staticSource{schemes: sourceSchemes()})
	require.NoError(t, err)

	kisan, err := repo.GetSchemeBySlug(ctx, "pm-kisan")
	require.NoError(t, err)
	require.NoError(t, repo.PutEmbeddings(ctx, &core.Embedding{SchemeId: kisan.Id, Vector: []float32{1, 2, 3}}))

	err = p.Publish(ctx)
	assert.ErrorIs(t, err, index.ErrDimensionMismatch)
	assert.Equal(t, uint64(1), rebuilder.idx.Current().Version(), "previous snapshot stays active")

	// A forced refresh re-embeds everything at one dimension
	forced := newTestPipeline(t, repo, rebuilder, WithForce(true))
	_, err = forced.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, rebuilder.idx.Current().Dimension())
}
