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


// Package postgres reads schemes from the scraper's Postgres table.
//
// The scraper writes one row per scheme with list-valued state, category and
// tag columns and a free-form age JSONB document. SchemeSource maps each row to
// a core.Scheme and implements storage.SchemeStore so the ingestion pipeline
// can sync it into the local store. It never writes and never returns
// embeddings.
package postgres
