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


package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coreID(v uint64) core.ID { return core.ID(v) }

func newTestSchemeRepo(t *testing.T) *SchemeRepository {
	t.Helper()
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	repo, err := NewSchemeRepository(backend)
	require.NoError(t, err)
	return repo
}

func sampleScheme(slug, name string) *core.Scheme {
	return &core.Scheme{
		Slug:        slug,
		Name:        name,
		Category:    "Agriculture",
		Description: "Income support for farmers",
		MinAge:      core.Int(18),
	}
}

func TestNewSchemeRepository_NilBackend(t *testing.T) {
	_, err := NewSchemeRepository(nil)
	assert.ErrorIs(t, err, ErrBackendRequired)
}

func TestPutSchemes_AssignsIDAndTimestamps(t *testing.T) {
	repo := newTestSchemeRepo(t)
	ctx := context.Background()

	stored, err := repo.PutSchemes(ctx, sampleScheme("pm-kisan", "PM-KISAN"))
	require.NoError(t, err)
	require.Len(t, stored, 1)

	assert.Equal(t, core.IDFromContent("pm-kisan"), stored[0].Id)
	assert.False(t, stored[0].InsertedAt.IsZero())
	assert.Equal(t, stored[0].InsertedAt, stored[0].UpdatedAt)

	got, err := repo.GetScheme(ctx, stored[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "PM-KISAN", got.Name)
	require.NotNil(t, got.MinAge)
	assert.Equal(t, 18, *got.MinAge)
}

func TestPutSchemes_UpdateKeepsInsertedAt(t *testing.T) {
	repo := newTestSchemeRepo(t)
	ctx := context.Background()

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	repo.now = func() time.Time { return first }

	_, err := repo.PutSchemes(ctx, sampleScheme("pm-kisan", "PM-KISAN"))
	require.NoError(t, err)

	repo.now = func() time.Time { return second }
	updated := sampleScheme("pm-kisan", "PM-KISAN Samman Nidhi")
	_, err = repo.PutSchemes(ctx, updated)
	require.NoError(t, err)

	got, err := repo.GetSchemeBySlug(ctx, "pm-kisan")
	require.NoError(t, err)
	assert.Equal(t, "PM-KISAN Samman Nidhi", got.Name)
	assert.Equal(t, first, got.InsertedAt)
	assert.Equal(t, second, got.UpdatedAt)
}

func TestPutSchemes_SlugConflict(t *testing.T) {
	repo := newTestSchemeRepo(t)
	ctx := context.Background()

	_, err := repo.PutSchemes(ctx, sampleScheme("pmay", "PMAY"))
	require.NoError(t, err)

	other := sampleScheme("pmay", "Impostor")
	other.Id = core.ID(7)
	_, err = repo.PutSchemes(ctx, other)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPutSchemes_SlugRename(t *testing.T) {
	repo := newTestSchemeRepo(t)
	ctx := context.Background()

	scheme := sampleScheme("old-slug", "Scheme")
	scheme.Id = core.ID(42)
	_, err := repo.PutSchemes(ctx, scheme)
	require.NoError(t, err)

	renamed := sampleScheme("new-slug", "Scheme")
	renamed.Id = core.ID(42)
	_, err = repo.PutSchemes(ctx, renamed)
	require.NoError(t, err)

	_, err = repo.GetSchemeBySlug(ctx, "old-slug")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := repo.GetSchemeBySlug(ctx, "new-slug")
	require.NoError(t, err)
	assert.Equal(t, core.ID(42), got.Id)
}

func TestPutSchemes_RejectsInvalid(t *testing.T) {
	repo := newTestSchemeRepo(t)

	_, err := repo.PutSchemes(context.Background(), &core.Scheme{Name: "no slug"})
	assert.ErrorIs(t, err, core.ErrValidation)

	all, err := repo.ListSchemes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetScheme_NotFound(t *testing.T) {
	repo := newTestSchemeRepo(t)

	_, err := repo.GetScheme(context.Background(), core.ID(99))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.GetSchemeBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListSchemes_OrderedByID(t *testing.T) {
	repo := newTestSchemeRepo(t)
	ctx := context.Background()

	for i, slug := range []string{"c", "a", "b"} {
		s := sampleScheme(slug, slug)
		s.Id = core.ID(30 - i*10)
		_, err := repo.PutSchemes(ctx, s)
		require.NoError(t, err)
	}

	all, err := repo.ListSchemes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []core.ID{10, 20, 30}, []core.ID{all[0].Id, all[1].Id, all[2].Id})
}

func TestEmbeddings(t *testing.T) {
	repo := newTestSchemeRepo(t)
	ctx := context.Background()

	stored, err := repo.PutSchemes(ctx, sampleScheme("pm-kisan", "PM-KISAN"))
	require.NoError(t, err)
	id := stored[0].Id

	_, err = repo.GetEmbedding(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	embedding := &core.Embedding{SchemeId: id, Vector: []float32{0.6, 0.8}, TextHash: stored[0].TextHash(), Model: "m"}
	require.NoError(t, repo.PutEmbeddings(ctx, embedding))

	got, err := repo.GetEmbedding(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, embedding, got)

	err = repo.PutEmbeddings(ctx, &core.Embedding{SchemeId: core.ID(12345), Vector: []float32{1}})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLoadAll(t *testing.T) {
	repo := newTestSchemeRepo(t)
	ctx := context.Background()

	stored, err := repo.PutSchemes(ctx, sampleScheme("a", "A"), sampleScheme("b", "B"))
	require.NoError(t, err)
	require.NoError(t, repo.PutEmbeddings(ctx, &core.Embedding{SchemeId: stored[0].Id, Vector: []float32{1, 0}}))

	schemes, embeddings, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, schemes, 2)
	require.Len(t, embeddings, 1)
	assert.Equal(t, stored[0].Id, embeddings[0].SchemeId)
}

func TestDeleteSchemes(t *testing.T) {
	repo := newTestSchemeRepo(t)
	ctx := context.Background()

	stored, err := repo.PutSchemes(ctx, sampleScheme("pmay", "PMAY"))
	require.NoError(t, err)
	id := stored[0].Id
	require.NoError(t, repo.PutEmbeddings(ctx, &core.Embedding{SchemeId: id, Vector: []float32{1}}))

	require.NoError(t, repo.DeleteSchemes(ctx, id))

	_, err = repo.GetScheme(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repo.GetSchemeBySlug(ctx, "pmay")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repo.GetEmbedding(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteSchemes(ctx, id), storage.ErrNotFound)
}
