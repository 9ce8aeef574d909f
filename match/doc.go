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


// Package match finds the welfare schemes a person is most likely eligible
// for and interested in.
//
// An Engine combines three signals for every scheme in the active index
// snapshot:
//   - semantic similarity between the query and the scheme's embedding
//   - keyword overlap between the query and the scheme's text
//   - the eligibility filter's soft score for the user's profile
//
// Schemes that fail a hard eligibility constraint never appear in results.
// When the embedder or the vector index cannot be used the engine falls
// back to keyword and rule matching and marks the response degraded. A
// deadline bounds the scoring loop; on expiry the best results computed so
// far are returned.
//
// Each search captures the active snapshot once, so a concurrent rebuild
// never changes the data a request sees halfway through.
package match
