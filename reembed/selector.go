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


package reembed

import (
	"github.com/poiesic/yojana/core"
)

// StaleReason explains why a scheme needs a new embedding.
type StaleReason string

const (
	StaleMissing StaleReason = "missing"
	StaleText    StaleReason = "text_changed"
	StaleModel   StaleReason = "model_changed"
	StaleForced  StaleReason = "forced"
)

// Staleness reports whether scheme needs a new embedding given its current
// one, which may be nil. An embedding without a model name is accepted for
// any model.
func Staleness(scheme *core.Scheme, current *core.Embedding, model string, force bool) (StaleReason, bool) {
	switch {
	case force:
		return StaleForced, true
	case current == nil || len(current.Vector) == 0:
		return StaleMissing, true
	case current.TextHash != scheme.TextHash():
		return StaleText, true
	case current.Model != "" && model != "" && current.Model != model:
		return StaleModel, true
	default:
		return "", false
	}
}

// batches splits schemes into consecutive slices of at most size.
func batches(schemes []*core.Scheme, size int) [][]*core.Scheme {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][]*core.Scheme, 0, (len(schemes)+size-1)/size)
	for i := 0; i < len(schemes); i += size {
		out = append(out, schemes[i:min(i+size, len(schemes))])
	}
	return out
}
