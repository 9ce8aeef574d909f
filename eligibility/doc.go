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


// Package eligibility decides whether a user may apply for a scheme and how
// well the scheme fits them.
//
// Evaluate applies hard constraints first. Any failing constraint rejects the
// scheme with a human-readable reason. Profile attributes that are not set
// never fail a constraint.
//
// Admitted schemes get a soft score in [0,1] from three components, each
// used only when it applies:
//
//   - constraints: how many of the scheme's constraints the profile actually
//     confirms. An unknown attribute counts half.
//   - caste: the share of the profile's castes that the scheme lists, when
//     both sides list castes.
//   - flags: the share of the profile's true flags (minority, differently
//     abled, BPL, student) that the scheme targets without requiring.
//
// The components are combined as a weighted average over the applicable ones.
// When none applies the score is the neutral 0.5.
package eligibility
