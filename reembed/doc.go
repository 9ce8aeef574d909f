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


// Package reembed keeps scheme embeddings in step with scheme text.
//
// A scheme's embedding is stale when it is missing, was computed from text
// that has since changed, or was produced by a different model. The
// Reembedder finds stale schemes, embeds them in batches on a worker pool
// with retry and backoff, and stores the new vectors.
//
// Batches that still fail after every retry are reported and skipped. The
// affected schemes stay without a vector and are matched on keywords and
// eligibility until the next run.
package reembed
