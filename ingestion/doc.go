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


// Package ingestion moves schemes from an external source into local
// storage and republishes the matching index.
//
// A sync runs in three steps:
//   - load schemes from a storage.SchemeStore, normalizing them and
//     skipping rows that fail validation
//   - upsert them into the local repository, optionally pruning schemes
//     the source no longer lists
//   - refresh stale embeddings on a worker pool and rebuild the index
//     from the repository
//
// Embedding failures never fail a sync. Affected schemes are published
// without a vector and picked up again by the next refresh.
package ingestion
