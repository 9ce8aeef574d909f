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


// Package keyword scores lexical overlap between a query and a scheme.
//
// Text is normalized with Unicode NFKC, case-folded, and split on anything
// that is not a letter, digit or combining mark. Keeping combining marks
// inside tokens matters for Indic scripts, where vowel signs are marks and
// splitting on them would shred every word.
//
// The score is the Jaccard coefficient of the query's token set and the
// token set of the scheme's name, category and description.
package keyword
