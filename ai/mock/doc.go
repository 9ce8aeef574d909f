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


// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder returns deterministic unit vectors derived from a hash of the
// input text, so equal texts always embed identically and tests run without
// an embedding service. Tests can pin exact vectors for given texts or
// replace the behavior entirely:
//
//	embedder := mock.NewMockEmbedder().WithVector("farmer support", []float32{1, 0, 0})
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("unavailable")
//	}
//
// Call counts are tracked atomically so the mocks can be shared between
// goroutines.
package mock
