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


package keyword

import "github.com/poiesic/yojana/core"

// SchemeTokens returns the token set the scorer matches a scheme against.
func SchemeTokens(scheme *core.Scheme) TokenSet {
	if scheme == nil {
		return TokenSet{}
	}
	return NewTokenSet(scheme.Name, scheme.Category, scheme.Description)
}

// Score returns the keyword overlap in [0,1] between query and scheme.
// An empty query or a scheme with no text scores 0.
func Score(query string, scheme *core.Scheme) float64 {
	return Jaccard(NewTokenSet(query), SchemeTokens(scheme))
}

// ScoreTokens is Score for callers that tokenize once and score many schemes.
func ScoreTokens(query, scheme TokenSet) float64 {
	return Jaccard(query, scheme)
}
