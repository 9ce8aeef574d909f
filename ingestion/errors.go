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


package ingestion

import "errors"

var (
	// ErrSchemeRepositoryRequired is returned when a scheme repository is not provided.
	ErrSchemeRepositoryRequired = errors.New("scheme repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrRebuilderRequired is returned when no index rebuilder is provided.
	ErrRebuilderRequired = errors.New("index rebuilder required")

	// ErrSourceRequired is returned by Sync when the source is nil.
	ErrSourceRequired = errors.New("scheme source required")
)
