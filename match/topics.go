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

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/yojana/core"
)

// topicQueries expands broad topics into keyword queries.
var topicQueries = map[string]string{
	"farmer":     "farmer agriculture kisan crop irrigation",
	"health":     "health medical hospital insurance treatment",
	"education":  "education scholarship student school college",
	"employment": "employment job work skill training wage",
	"housing":    "housing house home shelter awas",
	"women":      "women girl female mahila beti",
	"business":   "business entrepreneur loan startup mudra",
}

// Topics returns the topics SearchByTopic understands, sorted.
func Topics() []string {
	out := make([]string, 0, len(topicQueries))
	for t := range topicQueries {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// SearchByTopic searches with the keyword expansion of a broad topic such
// as "farmer" or "housing".
func (e *Engine) SearchByTopic(ctx context.Context, topic string, profile *core.UserProfile, opts Options) (*Response, error) {
	query, ok := topicQueries[strings.ToLower(strings.TrimSpace(topic))]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", core.ErrValidation, ErrUnknownTopic, topic)
	}
	return e.SearchSchemes(ctx, query, profile, opts)
}
