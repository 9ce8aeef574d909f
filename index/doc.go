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


// Package index holds schemes and their embeddings in immutable, versioned
// snapshots and answers cosine nearest-neighbour queries against them.
//
// A Snapshot is built once by NewSnapshot and never modified afterwards.
// It owns deep copies of its schemes, unit-length copies of its vectors, and
// precomputed keyword tokens and state/category buckets.
//
// Index publishes snapshots through an atomic pointer. Readers call Current
// once per request and keep using that snapshot even if a rebuild publishes
// a newer one meanwhile; the old snapshot stays valid for as long as anyone
// holds it. Rebuilds are serialized so there is a single writer.
//
//	idx := index.New()
//	if _, err := idx.Rebuild(ctx, schemes, embeddings); err != nil {
//	    return err
//	}
//	snap := idx.Current()
//	candidates, err := snap.Search(queryVector, 20)
package index
