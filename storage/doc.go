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


// Package storage provides the storage abstraction layer for yojana.
//
// The matching engine never talks to a database directly. It depends on two
// narrow interfaces:
//
//   - SchemeStore: loads every scheme with its embedding (read side)
//   - MatchRecorder: persists match results for analytics (write side)
//
// SchemeRepository and MatchRepository extend them with the operations the
// ingestion pipeline and the CLI need. The badger subpackage implements both
// on an embedded key-value store; the postgres subpackage implements a
// read-only SchemeStore over the scraper's scheme table.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	schemes := badger.NewSchemeRepository(backend)
//
// Tests use in-memory storage:
//
//	schemes, matches, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
