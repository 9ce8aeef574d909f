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
	"fmt"
	"math"
)

// Weights control how much each signal contributes to the final score.
// They need not sum to one; the ranker normalizes them.
type Weights struct {
	Vector      float64 `yaml:"vector"`
	Keyword     float64 `yaml:"keyword"`
	Eligibility float64 `yaml:"eligibility"`
}

// DefaultWeights returns the default fusion weights.
func DefaultWeights() Weights {
	return Weights{Vector: 0.5, Keyword: 0.2, Eligibility: 0.3}
}

// Validate checks that the weights can be normalized. Keyword and
// eligibility may not both be zero because they carry the score when
// similarity is absent.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Vector, w.Keyword, w.Eligibility} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %+v", ErrInvalidWeights, w)
		}
	}
	if w.Keyword+w.Eligibility == 0 {
		return fmt.Errorf("%w: keyword and eligibility weights are both zero", ErrInvalidWeights)
	}
	return nil
}

// Normalize scales the weights to sum to one.
func (w Weights) Normalize() Weights {
	sum := w.Vector + w.Keyword + w.Eligibility
	if sum == 0 {
		return w
	}
	return Weights{Vector: w.Vector / sum, Keyword: w.Keyword / sum, Eligibility: w.Eligibility / sum}
}

// withoutVector drops the vector weight and rescales the rest.
func (w Weights) withoutVector() Weights {
	sum := w.Keyword + w.Eligibility
	return Weights{Keyword: w.Keyword / sum, Eligibility: w.Eligibility / sum}
}
