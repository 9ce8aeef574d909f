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


// Package ranking fuses similarity, keyword and eligibility signals into a
// single score and orders schemes deterministically.
//
// The final score is a weighted sum of the three signals:
//
//	score = wv*similarity + wk*keyword + we*eligibility
//
// When a scheme has no similarity signal the keyword and eligibility
// weights are rescaled so they sum to one. Similarity is clamped into
// [0, 1] first, so the final score always stays within [0, 1].
//
// Ordering is by score, then by whether the scheme has a non-zero
// similarity contribution, then by slug and finally by ID. Identical input
// always produces identical output.
package ranking
