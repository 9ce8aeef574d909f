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
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/storage"
)

// MatchRepository implements storage.MatchRepository for BadgerDB.
type MatchRepository struct {
	backend *Backend
	now     func() time.Time
}

var _ storage.MatchRepository = (*MatchRepository)(nil)

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(backend *Backend) (*MatchRepository, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &MatchRepository{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *MatchRepository) Close() error {
	return nil
}

// Persist stores one record per result, all stamped with the same time.
func (r *MatchRepository) Persist(ctx context.Context, userID string, results []core.MatchResult) error {
	if userID == "" {
		return storage.ErrUserIDRequired
	}
	if len(results) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		recordedAt := r.now()
		for _, result := range results {
			record := &core.MatchRecord{
				UserId:     userID,
				SchemeId:   result.SchemeId,
				Slug:       result.Slug,
				Rank:       result.Rank,
				Score:      result.Score,
				MatchedBy:  result.MatchedBy,
				RecordedAt: recordedAt,
			}
			key := makeMatchKey(userID, recordedAt, result.Rank, result.SchemeId)
			if err := tx.Set(key, storage.MarshalMatchRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetMatches returns a user's match history, most recent first and by rank
// within one search.
func (r *MatchRepository) GetMatches(ctx context.Context, userID string, limit int) ([]*core.MatchRecord, error) {
	if userID == "" {
		return nil, storage.ErrUserIDRequired
	}
	var results []*core.MatchRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanPrefix(tx, makeUserMatchPrefix(userID), func(_, val []byte) error {
			record, err := storage.UnmarshalMatchRecord(val)
			if err != nil {
				return err
			}
			// Hashed prefixes can collide in theory
			if record.UserId == userID {
				results = append(results, record)
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b *core.MatchRecord) int {
		if c := b.RecordedAt.Compare(a.RecordedAt); c != 0 {
			return c
		}
		return a.Rank - b.Rank
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
