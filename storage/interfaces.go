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


package storage

import (
	"context"

	"github.com/poiesic/yojana/core"
)

// SchemeStore is any source of schemes and their embeddings.
// Embeddings may be nil or cover only some schemes.
type SchemeStore interface {
	LoadAll(ctx context.Context) ([]*core.Scheme, []*core.Embedding, error)
}

// MatchRecorder persists the results of a match for analytics.
// Recording is best-effort; callers must not fail a search because of it.
type MatchRecorder interface {
	Persist(ctx context.Context, userID string, results []core.MatchResult) error
}

// SchemeRepository provides operations for managing schemes and their vectors.
// Implementations must be thread-safe and support concurrent access.
type SchemeRepository interface {
	SchemeStore

	// PutSchemes inserts or replaces schemes keyed by ID.
	// Schemes with ID=0 get an ID derived from their slug.
	// Sets InsertedAt on first insert and UpdatedAt on every write.
	PutSchemes(ctx context.Context, schemes ...*core.Scheme) ([]*core.Scheme, error)

	// GetScheme retrieves a scheme by ID.
	// Returns ErrNotFound if the scheme doesn't exist.
	GetScheme(ctx context.Context, id core.ID) (*core.Scheme, error)

	// GetSchemeBySlug retrieves a scheme by its slug.
	// Returns ErrNotFound if no scheme has the slug.
	GetSchemeBySlug(ctx context.Context, slug string) (*core.Scheme, error)

	// ListSchemes returns every stored scheme ordered by ID.
	ListSchemes(ctx context.Context) ([]*core.Scheme, error)

	// DeleteSchemes removes schemes and their embeddings.
	// Returns ErrNotFound if any scheme doesn't exist.
	DeleteSchemes(ctx context.Context, ids ...core.ID) error

	// PutEmbeddings stores vectors for existing schemes.
	// Returns ErrNotFound if a referenced scheme doesn't exist.
	PutEmbeddings(ctx context.Context, embeddings ...*core.Embedding) error

	// GetEmbedding retrieves the embedding for a scheme.
	// Returns ErrNotFound if the scheme has no embedding.
	GetEmbedding(ctx context.Context, schemeID core.ID) (*core.Embedding, error)

	// Close releases repository resources.
	Close() error
}

// MatchRepository stores and queries match history.
type MatchRepository interface {
	MatchRecorder

	// GetMatches returns up to limit records for a user, most recent first.
	// A limit of zero or less returns every record.
	GetMatches(ctx context.Context, userID string, limit int) ([]*core.MatchRecord, error)

	// Close releases repository resources.
	Close() error
}
