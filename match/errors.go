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


package match

import "errors"

var (
	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidOptions is returned for malformed per-call search options.
	// It is always wrapped together with core.ErrValidation.
	ErrInvalidOptions = errors.New("invalid search options")

	// ErrUnknownTopic is returned by SearchByTopic for a topic with no
	// keyword expansion.
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrSchemeNotFound is returned when a lookup matches no scheme.
	ErrSchemeNotFound = errors.New("scheme not found")
)
