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
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/storage"
)

// ErrBackendRequired is returned when a repository is built without a backend.
var ErrBackendRequired = errors.New("backend is required")

// SchemeRepository implements storage.SchemeRepository for BadgerDB.
type SchemeRepository struct {
	backend *Backend
	now     func() time.Time
}

var _ storage.SchemeRepository = (*SchemeRepository)(nil)

// NewSchemeRepository creates a new SchemeRepository.
func NewSchemeRepository(backend *Backend) (*SchemeRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &SchemeRepository{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *SchemeRepository) Close() error {
	return nil
}

// PutSchemes inserts or replaces schemes keyed by ID.
func (r *SchemeRepository) PutSchemes(ctx context.Context, schemes ...*core.Scheme) ([]*core.Scheme, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := r.now()
		for _, scheme := range schemes {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := core.ValidateScheme(scheme); err != nil {
				return err
			}
			if scheme.Id == 0 {
				scheme.Id = core.IDFromContent(scheme.Slug)
			}

			// The slug index must not point at a different scheme
			owner, found, err := readSlug(tx, scheme.Slug)
			if err != nil {
				return err
			}
			if found && owner != scheme.Id {
				return fmt.Errorf("%w: slug %q belongs to scheme %d", storage.ErrDuplicateKey, scheme.Slug, owner)
			}

			old, err := readScheme(tx, makeSchemeKey(scheme.Id))
			if err != nil {
				return err
			}
			if old != nil {
				scheme.InsertedAt = old.InsertedAt
				if old.Slug != scheme.Slug {
					if err := tx.Delete(makeSlugKey(old.Slug)); err != nil {
						return err
					}
				}
			} else if scheme.InsertedAt.IsZero() {
				scheme.InsertedAt = now
			}
			scheme.UpdatedAt = now

			if err := tx.Set(makeSchemeKey(scheme.Id), storage.MarshalScheme(scheme)); err != nil {
				return err
			}
			if err := tx.Set(makeSlugKey(scheme.Slug), storage.MarshalID(scheme.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return schemes, nil
}

// GetScheme retrieves a single scheme by ID.
func (r *SchemeRepository) GetScheme(ctx context.Context, id core.ID) (*core.Scheme, error) {
	var result *core.Scheme
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readScheme(tx, makeSchemeKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetSchemeBySlug retrieves a scheme through the slug index.
func (r *SchemeRepository) GetSchemeBySlug(ctx context.Context, slug string) (*core.Scheme, error) {
	var result *core.Scheme
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, found, err := readSlug(tx, slug)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrNotFound
		}
		result, err = readScheme(tx, makeSchemeKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListSchemes returns every stored scheme ordered by ID.
func (r *SchemeRepository) ListSchemes(ctx context.Context) ([]*core.Scheme, error) {
	var results []*core.Scheme
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = listSchemes(ctx, tx)
		return err
	}, false)
	return results, err
}

// DeleteSchemes removes schemes, their slug index entries and embeddings.
func (r *SchemeRepository) DeleteSchemes(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSchemeKey(id)
			scheme, err := readScheme(tx, key)
			if err != nil {
				return err
			}
			if scheme == nil {
				return storage.ErrNotFound
			}
			if err := tx.Delete(makeSlugKey(scheme.Slug)); err != nil {
				return err
			}
			if err := tx.Delete(makeEmbeddingKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// PutEmbeddings stores vectors for existing schemes.
func (r *SchemeRepository) PutEmbeddings(ctx context.Context, embeddings ...*core.Embedding) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, embedding := range embeddings {
			if _, err := tx.Get(makeSchemeKey(embedding.SchemeId)); err != nil {
				if err == badger.ErrKeyNotFound {
					return fmt.Errorf("%w: scheme %d", storage.ErrNotFound, embedding.SchemeId)
				}
				return err
			}
			if err := tx.Set(makeEmbeddingKey(embedding.SchemeId), storage.MarshalEmbedding(embedding)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEmbedding retrieves the embedding for a scheme.
func (r *SchemeRepository) GetEmbedding(ctx context.Context, schemeID core.ID) (*core.Embedding, error) {
	var result *core.Embedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		found, err := getValue(tx, makeEmbeddingKey(schemeID), func(val []byte) error {
			var err error
			result, err = storage.UnmarshalEmbedding(val)
			return err
		})
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// LoadAll reads every scheme and embedding from a single read transaction,
// so the pair is always mutually consistent.
func (r *SchemeRepository) LoadAll(ctx context.Context) ([]*core.Scheme, []*core.Embedding, error) {
	var schemes []*core.Scheme
	var embeddings []*core.Embedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		schemes, err = listSchemes(ctx, tx)
		if err != nil {
			return err
		}
		return scanPrefix(tx, []byte(embeddingPrefix), func(_, val []byte) error {
			embedding, err := storage.UnmarshalEmbedding(val)
			if err != nil {
				return err
			}
			embeddings = append(embeddings, embedding)
			return nil
		})
	}, false)
	if err != nil {
		return nil, nil, err
	}
	return schemes, embeddings, nil
}

// Helper methods

func listSchemes(ctx context.Context, tx *badger.Txn) ([]*core.Scheme, error) {
	var results []*core.Scheme
	err := scanPrefix(tx, []byte(schemeRecordPrefix), func(_, val []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		scheme, err := storage.UnmarshalScheme(val)
		if err != nil {
			return err
		}
		results = append(results, scheme)
		return nil
	})
	return results, err
}

// readScheme reads a scheme from the transaction. Missing keys yield nil, nil.
func readScheme(tx *badger.Txn, key []byte) (*core.Scheme, error) {
	var scheme *core.Scheme
	_, err := getValue(tx, key, func(val []byte) error {
		var err error
		scheme, err = storage.UnmarshalScheme(val)
		return err
	})
	return scheme, err
}

func readSlug(tx *badger.Txn, slug string) (core.ID, bool, error) {
	var id core.ID
	found, err := getValue(tx, makeSlugKey(slug), func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	})
	return id, found, err
}
