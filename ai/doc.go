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


// Package ai provides abstractions for the AI services used by yojana.
//
// The matching engine only needs text embeddings, so the package centres on
// the Embedder interface. Provider bundles an Embedder with the identifier
// of its model; every stored vector records that identifier so the
// ingestion pipeline can tell when vectors were produced by a different
// model and must be recomputed.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles
//
// Public constructors in ai/openai return interface types. Test utility
// constructors in ai/mock return concrete types so tests can inject
// behavior and inspect call counts:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("service unavailable")
//	}
//
// # Thread Safety
//
// All implementations are safe for concurrent use.
package ai
