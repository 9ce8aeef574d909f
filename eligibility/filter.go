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


package eligibility

import (
	"fmt"
	"strings"

	"github.com/poiesic/yojana/core"
)

// NeutralScore is the soft score when no component applies.
const NeutralScore = 0.5

// SoftWeights weight the soft score components.
type SoftWeights struct {
	Constraints float64 `yaml:"constraints"`
	Caste       float64 `yaml:"caste"`
	Flags       float64 `yaml:"flags"`
}

// DefaultSoftWeights favours constraint confirmation and caste targeting
// over flag targeting.
func DefaultSoftWeights() SoftWeights {
	return SoftWeights{Constraints: 0.4, Caste: 0.4, Flags: 0.2}
}

// Validate checks that weights are non-negative and not all zero.
func (w SoftWeights) Validate() error {
	if w.Constraints < 0 || w.Caste < 0 || w.Flags < 0 {
		return fmt.Errorf("%w: negative weight in %+v", ErrInvalidWeights, w)
	}
	if w.Constraints+w.Caste+w.Flags == 0 {
		return fmt.Errorf("%w: weights sum to zero", ErrInvalidWeights)
	}
	return nil
}

// Decision is the outcome of evaluating one scheme for one profile.
type Decision struct {
	Admitted  bool
	Reasons   []string // why the scheme was rejected; empty when admitted
	SoftScore float64  // in [0,1]; 0 when rejected
}

// Filter evaluates schemes against profiles. It is immutable and safe
// for concurrent use.
type Filter struct {
	weights SoftWeights
}

// Option configures a Filter.
type Option func(*Filter) error

// WithSoftWeights overrides DefaultSoftWeights.
func WithSoftWeights(w SoftWeights) Option {
	return func(f *Filter) error {
		if err := w.Validate(); err != nil {
			return err
		}
		f.weights = w
		return nil
	}
}

// NewFilter creates a Filter.
func NewFilter(opts ...Option) (*Filter, error) {
	f := &Filter{weights: DefaultSoftWeights()}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Weights returns the soft weights in use.
func (f *Filter) Weights() SoftWeights {
	return f.weights
}

// Evaluate decides whether profile may apply for scheme.
// A nil profile behaves like an empty one.
func (f *Filter) Evaluate(scheme *core.Scheme, profile *core.UserProfile) Decision {
	return f.EvaluateTargeted(scheme, TargetedFlags(scheme), profile)
}

// EvaluateTargeted is Evaluate with the scheme's TargetedFlags precomputed.
func (f *Filter) EvaluateTargeted(scheme *core.Scheme, targets Flags, profile *core.UserProfile) Decision {
	if profile == nil {
		profile = &core.UserProfile{}
	}

	reasons := hardReasons(scheme, profile)
	if len(reasons) > 0 {
		return Decision{Admitted: false, Reasons: reasons}
	}
	return Decision{Admitted: true, SoftScore: f.softScore(scheme, targets, profile)}
}

func hardReasons(s *core.Scheme, p *core.UserProfile) []string {
	var reasons []string

	if p.Age != nil {
		age := *p.Age
		if s.MinAge != nil && age < *s.MinAge {
			reasons = append(reasons, fmt.Sprintf("age %d is below the minimum of %d", age, *s.MinAge))
		}
		if s.MaxAge != nil && age > *s.MaxAge {
			reasons = append(reasons, fmt.Sprintf("age %d is above the maximum of %d", age, *s.MaxAge))
		}
	}

	if s.Gender != core.GenderAny && p.Gender != core.GenderAny && s.Gender != p.Gender {
		reasons = append(reasons, fmt.Sprintf("scheme is for %s applicants only", s.Gender))
	}

	schemeState := core.NormalizeState(s.State)
	profileState := core.NormalizeState(p.State)
	if schemeState != "" && profileState != "" && !core.FoldEqual(schemeState, profileState) {
		reasons = append(reasons, fmt.Sprintf("scheme is limited to %s", schemeState))
	}

	if s.IncomeLimit != nil && p.Income != nil && *p.Income > *s.IncomeLimit {
		reasons = append(reasons, fmt.Sprintf("income %d exceeds the limit of %d", *p.Income, *s.IncomeLimit))
	}

	set, known := ProfileFlags(p)
	required := RequiredFlags(s)
	for _, fn := range flagNames {
		if required.Has(fn.flag) && known.Has(fn.flag) && !set.Has(fn.flag) {
			reasons = append(reasons, "scheme requires "+fn.name+" status")
		}
	}

	return reasons
}

func (f *Filter) softScore(s *core.Scheme, targets Flags, p *core.UserProfile) float64 {
	var weighted, total float64
	add := func(weight, value float64) {
		if weight <= 0 {
			return
		}
		weighted += weight * value
		total += weight
	}

	if value, ok := constraintConfirmation(s, p); ok {
		add(f.weights.Constraints, value)
	}
	if value, ok := casteOverlap(s, p); ok {
		add(f.weights.Caste, value)
	}
	if value, ok := flagTargeting(s, targets, p); ok {
		add(f.weights.Flags, value)
	}

	if total == 0 {
		return NeutralScore
	}
	return clamp01(weighted / total)
}

// constraintConfirmation scores each constraint the scheme sets as 1 when the
// profile confirms it and 0.5 when the attribute is unknown.
func constraintConfirmation(s *core.Scheme, p *core.UserProfile) (float64, bool) {
	var count int
	var score float64
	check := func(constrained, known bool) {
		if !constrained {
			return
		}
		count++
		if known {
			score++
		} else {
			score += 0.5
		}
	}

	_, knownFlags := ProfileFlags(p)
	required := RequiredFlags(s)

	check(s.MinAge != nil || s.MaxAge != nil, p.Age != nil)
	check(s.Gender != core.GenderAny, p.Gender != core.GenderAny)
	check(core.NormalizeState(s.State) != "", core.NormalizeState(p.State) != "")
	check(s.IncomeLimit != nil, p.Income != nil)
	for _, fn := range flagNames {
		check(required.Has(fn.flag), knownFlags.Has(fn.flag))
	}

	if count == 0 {
		return 0, false
	}
	return score / float64(count), true
}

// casteOverlap is the share of the profile's castes the scheme lists. It
// applies only when both sides list castes.
func casteOverlap(s *core.Scheme, p *core.UserProfile) (float64, bool) {
	if len(s.Castes) == 0 || len(p.Castes) == 0 {
		return 0, false
	}
	listed := make(map[string]bool, len(s.Castes))
	for _, c := range s.Castes {
		listed[core.Fold(c)] = true
	}
	var matched, total int
	seen := make(map[string]bool, len(p.Castes))
	for _, c := range p.Castes {
		key := core.Fold(c)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		total++
		if listed[key] {
			matched++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(matched) / float64(total), true
}

// flagTargeting is the share of the profile's true, non-required flags that
// the scheme targets. Required flags are already covered by constraints.
func flagTargeting(s *core.Scheme, targets Flags, p *core.UserProfile) (float64, bool) {
	set, _ := ProfileFlags(p)
	candidates := set &^ RequiredFlags(s)
	if candidates == 0 {
		return 0, false
	}
	return float64((candidates & targets).Count()) / float64(candidates.Count()), true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// String renders a decision for logs and explain output.
func (d Decision) String() string {
	if d.Admitted {
		return fmt.Sprintf("admitted (soft %.3f)", d.SoftScore)
	}
	return "rejected: " + strings.Join(d.Reasons, "; ")
}
