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

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// TokenSet is a set of normalized tokens.
type TokenSet map[string]struct{}

var folder = cases.Fold()

// Tokenize splits text into normalized tokens in order of appearance.
// Duplicates are kept.
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	normalized := folder.String(norm.NFKC.String(text))
	return strings.FieldsFunc(normalized, isSeparator)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
}

// NewTokenSet tokenizes every text into one set.
func NewTokenSet(texts ...string) TokenSet {
	set := make(TokenSet)
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			set[tok] = struct{}{}
		}
	}
	return set
}

// Contains reports whether tok, already normalized, is in the set.
func (s TokenSet) Contains(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when either set is empty.
func Jaccard(a, b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	intersection := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
