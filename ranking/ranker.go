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


package ranking

import (
	"cmp"
	"math"
	"slices"

	"github.com/poiesic/yojana/core"
)

const (
	// DefaultLimit is the number of results returned when no limit is given.
	DefaultLimit = 3

	// hybridRatio is how close the runner-up term must come to the top term
	// for a match to count as hybrid.
	hybridRatio = 0.9

	// scoreQuantum is the resolution at which scores are compared. Scores
	// that differ only by floating-point noise fall in the same bucket.
	scoreQuantum = 1e-9
)

// Candidate carries the signals gathered for one scheme.
type Candidate struct {
	SchemeId core.ID
	Slug     string
	Name     string

	Similarity    float64
	HasSimilarity bool // false when no vector signal exists for the scheme
	Keyword       float64

	Admitted    bool
	Eligibility float64 // soft score; ignored unless Admitted
}

// Options bound the ranked output.
type Options struct {
	Limit    int     // <= 0 selects DefaultLimit
	MinScore float64 // entries below are dropped before truncation
}

// Ranker fuses candidate signals. It is immutable and safe for concurrent use.
type Ranker struct {
	weights Weights
}

// NewRanker creates a ranker with the given weights.
func NewRanker(w Weights) (*Ranker, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Ranker{weights: w.Normalize()}, nil
}

// Weights returns the normalized weights in use.
func (r *Ranker) Weights() Weights {
	return r.weights
}

// Score fuses the signals of a single candidate. Admission is not checked,
// so explain output can show what a rejected scheme would have scored.
func (r *Ranker) Score(c Candidate) core.MatchResult {
	sim := clamp01(c.Similarity)
	kw := clamp01(c.Keyword)
	elig := clamp01(c.Eligibility)

	w := r.weights
	if !c.HasSimilarity {
		w = w.withoutVector()
		sim = 0
	}
	cv := w.Vector * sim
	ck := w.Keyword * kw
	ce := w.Eligibility * elig

	return core.MatchResult{
		SchemeId:  c.SchemeId,
		Slug:      c.Slug,
		Name:      c.Name,
		Score:     clamp01(cv + ck + ce),
		MatchedBy: matchedBy(sim, kw, cv, ck, ce),
		Rank:      -1,
		Components: core.ComponentScores{
			Similarity:    sim,
			HasSimilarity: c.HasSimilarity,
			Keyword:       kw,
			Eligibility:   elig,
		},
	}
}

func matchedBy(sim, kw, cv, ck, ce float64) core.MatchedBy {
	if sim <= 0 {
		if kw == 0 {
			return core.MatchedByRule
		}
		if ck >= ce {
			return core.MatchedByKeyword
		}
		return core.MatchedByRule
	}
	runnerUp := math.Max(ck, ce)
	if cv > runnerUp && runnerUp < hybridRatio*cv {
		return core.MatchedByVector
	}
	return core.MatchedByHybrid
}

// Merge collapses candidates sharing a scheme ID into one entry. The merged
// entry keeps the strongest similarity and keyword signals. It is admitted
// only if every contributing entry was.
func Merge(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	seen := make(map[core.ID]int, len(candidates))
	for _, c := range candidates {
		i, ok := seen[c.SchemeId]
		if !ok {
			seen[c.SchemeId] = len(out)
			out = append(out, c)
			continue
		}
		m := &out[i]
		if c.HasSimilarity && (!m.HasSimilarity || c.Similarity > m.Similarity) {
			m.Similarity = c.Similarity
			m.HasSimilarity = true
		}
		m.Keyword = math.Max(m.Keyword, c.Keyword)
		m.Eligibility = math.Max(m.Eligibility, c.Eligibility)
		m.Admitted = m.Admitted && c.Admitted
		if m.Slug == "" {
			m.Slug = c.Slug
		}
		if m.Name == "" {
			m.Name = c.Name
		}
	}
	return out
}

// Order drops rejected candidates, merges duplicates, scores what remains
// and returns the full ordered list with ranks assigned.
func (r *Ranker) Order(candidates []Candidate) []core.MatchResult {
	merged := Merge(candidates)
	results := make([]core.MatchResult, 0, len(merged))
	for _, c := range merged {
		if !c.Admitted {
			continue
		}
		results = append(results, r.Score(c))
	}
	slices.SortFunc(results, compareResults)
	for i := range results {
		results[i].Rank = i
	}
	return results
}

// Rank orders candidates and applies MinScore and Limit.
func (r *Ranker) Rank(candidates []Candidate, opts Options) []core.MatchResult {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	ordered := r.Order(candidates)
	out := make([]core.MatchResult, 0, min(limit, len(ordered)))
	for _, res := range ordered {
		if res.Score < opts.MinScore {
			continue
		}
		res.Rank = len(out)
		out = append(out, res)
		if len(out) == limit {
			break
		}
	}
	return out
}

func compareResults(a, b core.MatchResult) int {
	if c := cmp.Compare(scoreBucket(b.Score), scoreBucket(a.Score)); c != 0 {
		return c
	}
	av, bv := a.Components.Similarity > 0, b.Components.Similarity > 0
	if av != bv {
		if av {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Slug, b.Slug); c != 0 {
		return c
	}
	return cmp.Compare(a.SchemeId, b.SchemeId)
}

func scoreBucket(score float64) float64 {
	return math.Round(score / scoreQuantum)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
