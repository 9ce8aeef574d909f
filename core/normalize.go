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


package core

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// nationalStates are the spellings the scraped data uses for "no state restriction".
var nationalStates = map[string]bool{
	"":               true,
	"all":            true,
	"all states":     true,
	"all india":      true,
	"india":          true,
	"national":       true,
	"central":        true,
	"pan india":      true,
	"all states/uts": true,
}

// Fold returns s trimmed and case-folded for caseless comparison.
func Fold(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// FoldEqual reports whether a and b are equal ignoring case and surrounding space.
func FoldEqual(a, b string) bool {
	return Fold(a) == Fold(b)
}

// NormalizeState maps the national spellings to "" and trims everything else.
func NormalizeState(state string) string {
	trimmed := strings.TrimSpace(state)
	if nationalStates[Fold(trimmed)] {
		return ""
	}
	return trimmed
}

// NormalizeScheme canonicalizes a scheme in place before it is stored:
// it trims text fields, maps national state spellings to "", removes
// duplicate castes and tags, and derives the ID from the slug when unset.
func NormalizeScheme(s *Scheme) {
	if s == nil {
		return
	}
	s.Slug = strings.TrimSpace(s.Slug)
	s.Name = strings.TrimSpace(s.Name)
	s.Category = strings.TrimSpace(s.Category)
	s.State = NormalizeState(s.State)
	s.Castes = dedupeFolded(s.Castes)
	s.Tags = dedupeFolded(s.Tags)
	if s.Id == 0 && s.Slug != "" {
		s.Id = IDFromContent(s.Slug)
	}
}

func dedupeFolded(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		key := Fold(v)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
