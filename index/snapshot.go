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


package index

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/eligibility"
	"github.com/poiesic/yojana/keyword"
)

// Entry is one scheme inside a snapshot. Entries are shared by every reader
// of the snapshot and must be treated as read-only.
type Entry struct {
	Scheme  *core.Scheme
	Vector  []float32 // unit length; nil when the scheme has no embedding
	Tokens  keyword.TokenSet
	Targets eligibility.Flags
}

// HasVector reports whether the scheme has an embedding.
func (e *Entry) HasVector() bool {
	return e.Vector != nil
}

// Candidate is a nearest-neighbour hit.
type Candidate struct {
	SchemeId   core.ID
	Similarity float64
}

// Snapshot is an immutable, versioned set of schemes and embeddings.
type Snapshot struct {
	version    uint64
	dim        int
	embedded   int
	entries    []Entry // sorted by scheme ID
	byID       map[core.ID]int
	bySlug     map[string]int
	byState    map[string][]int // folded state; "" holds national schemes
	byCategory map[string][]int // folded category part
}

// Empty returns a snapshot with no schemes.
func Empty(version uint64) *Snapshot {
	return &Snapshot{
		version:    version,
		byID:       map[core.ID]int{},
		bySlug:     map[string]int{},
		byState:    map[string][]int{},
		byCategory: map[string][]int{},
	}
}

// NewSnapshot validates and copies schemes and embeddings into a snapshot.
// Schemes must have unique IDs and slugs. Each embedding must reference a
// scheme, no scheme may have two embeddings, and all vectors must share one
// dimension. Schemes without an embedding are allowed.
func NewSnapshot(version uint64, schemes []*core.Scheme, embeddings []*core.Embedding) (*Snapshot, error) {
	s := Empty(version)
	s.entries = make([]Entry, 0, len(schemes))

	slugs := make(map[string]core.ID, len(schemes))
	ids := make(map[core.ID]bool, len(schemes))
	for _, in := range schemes {
		if in == nil {
			return nil, fmt.Errorf("%w: nil scheme", ErrInvalidSnapshot)
		}
		scheme := in.Clone()
		core.NormalizeScheme(scheme)
		if err := core.ValidateScheme(scheme); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		if ids[scheme.Id] {
			return nil, fmt.Errorf("%w: duplicate scheme id %d", ErrInvalidSnapshot, scheme.Id)
		}
		if other, ok := slugs[scheme.Slug]; ok {
			return nil, fmt.Errorf("%w: slug %q used by schemes %d and %d", ErrInvalidSnapshot, scheme.Slug, other, scheme.Id)
		}
		ids[scheme.Id] = true
		slugs[scheme.Slug] = scheme.Id
		s.entries = append(s.entries, Entry{
			Scheme:  scheme,
			Tokens:  keyword.SchemeTokens(scheme),
			Targets: eligibility.TargetedFlags(scheme),
		})
	}

	slices.SortFunc(s.entries, func(a, b Entry) int {
		return cmp.Compare(a.Scheme.Id, b.Scheme.Id)
	})
	for i := range s.entries {
		s.byID[s.entries[i].Scheme.Id] = i
		s.bySlug[s.entries[i].Scheme.Slug] = i
	}

	for _, emb := range embeddings {
		if emb == nil {
			return nil, fmt.Errorf("%w: nil embedding", ErrInvalidSnapshot)
		}
		i, ok := s.byID[emb.SchemeId]
		if !ok {
			return nil, fmt.Errorf("%w: embedding for unknown scheme %d", ErrInvalidSnapshot, emb.SchemeId)
		}
		if s.entries[i].Vector != nil {
			return nil, fmt.Errorf("%w: second embedding for scheme %d", ErrInvalidSnapshot, emb.SchemeId)
		}
		if len(emb.Vector) == 0 {
			return nil, fmt.Errorf("%w: empty vector for scheme %d", ErrDimensionMismatch, emb.SchemeId)
		}
		if s.dim == 0 {
			s.dim = len(emb.Vector)
		} else if len(emb.Vector) != s.dim {
			return nil, fmt.Errorf("%w: scheme %d has %d dimensions, expected %d",
				ErrDimensionMismatch, emb.SchemeId, len(emb.Vector), s.dim)
		}
		if !finite(emb.Vector) {
			return nil, fmt.Errorf("%w: scheme %d", ErrInvalidVector, emb.SchemeId)
		}
		s.entries[i].Vector = NormalizeL2(emb.Vector)
		s.embedded++
	}

	for i := range s.entries {
		scheme := s.entries[i].Scheme
		state := core.Fold(scheme.State)
		s.byState[state] = append(s.byState[state], i)
		for _, part := range splitCategory(scheme.Category) {
			s.byCategory[part] = appendUnique(s.byCategory[part], i)
		}
	}

	return s, nil
}

// Version identifies the snapshot. Versions increase with every rebuild.
func (s *Snapshot) Version() uint64 { return s.version }

// Dimension is the vector length shared by every embedding, or 0 when the
// snapshot holds no embeddings.
func (s *Snapshot) Dimension() int { return s.dim }

// Len returns the number of schemes.
func (s *Snapshot) Len() int { return len(s.entries) }

// EmbeddedCount returns the number of schemes with an embedding.
func (s *Snapshot) EmbeddedCount() int { return s.embedded }

// Entries returns every entry ordered by scheme ID. The slice is shared.
func (s *Snapshot) Entries() []Entry { return s.entries }

// Entry returns the entry for a scheme ID.
func (s *Snapshot) Entry(id core.ID) (*Entry, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.entries[i], true
}

// EntryBySlug returns the entry for a slug.
func (s *Snapshot) EntryBySlug(slug string) (*Entry, bool) {
	i, ok := s.bySlug[slug]
	if !ok {
		return nil, false
	}
	return &s.entries[i], true
}

// Search returns up to k schemes ordered by cosine similarity to vec,
// highest first, with ties broken by ascending scheme ID. Schemes without
// an embedding are never returned. A snapshot without embeddings returns an
// empty list for any query.
func (s *Snapshot) Search(vec []float32, k int) ([]Candidate, error) {
	if s.embedded == 0 || k <= 0 {
		return []Candidate{}, nil
	}
	if len(vec) != s.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(vec), s.dim)
	}
	if !finite(vec) {
		return nil, ErrInvalidVector
	}

	query := NormalizeL2(vec)
	hits := make([]Candidate, 0, s.embedded)
	for i := range s.entries {
		e := &s.entries[i]
		if e.Vector == nil {
			continue
		}
		hits = append(hits, Candidate{SchemeId: e.Scheme.Id, Similarity: dot(query, e.Vector)})
	}

	slices.SortFunc(hits, func(a, b Candidate) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.SchemeId, b.SchemeId)
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Select returns the entries a profile in state could be eligible for,
// restricted to category when it is set. An empty or national state selects
// every state. Entries are returned in scheme ID order.
//
// Select is a pre-filter only: it never drops a scheme the eligibility
// filter would admit.
func (s *Snapshot) Select(state, category string) []*Entry {
	var indices []int
	state = core.NormalizeState(state)
	if state == "" {
		indices = make([]int, len(s.entries))
		for i := range indices {
			indices[i] = i
		}
	} else {
		indices = append(indices, s.byState[""]...)
		indices = append(indices, s.byState[core.Fold(state)]...)
		slices.Sort(indices)
	}

	if category = core.Fold(category); category != "" {
		allowed := make(map[int]bool, len(s.byCategory[category]))
		for _, i := range s.byCategory[category] {
			allowed[i] = true
		}
		indices = slices.DeleteFunc(indices, func(i int) bool { return !allowed[i] })
	}

	out := make([]*Entry, len(indices))
	for n, i := range indices {
		out[n] = &s.entries[i]
	}
	return out
}

// Categories returns the folded category names present in the snapshot, sorted.
func (s *Snapshot) Categories() []string {
	out := make([]string, 0, len(s.byCategory))
	for c := range s.byCategory {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

func splitCategory(category string) []string {
	var parts []string
	for _, part := range strings.Split(category, ",") {
		if p := core.Fold(part); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func appendUnique(list []int, i int) []int {
	if n := len(list); n > 0 && list[n-1] == i {
		return list
	}
	return append(list, i)
}
