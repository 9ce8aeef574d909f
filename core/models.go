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
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Scheme IDs are derived from the slug so they survive rebuilds.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Gender is the gender a scheme targets or a user reports.
// GenderAny on a scheme means the scheme is open to everyone; on a
// profile it means the user did not say.
type Gender int

const (
	GenderAny Gender = iota
	GenderMale
	GenderFemale
)

// String returns the lowercase name of the gender.
func (g Gender) String() string {
	switch g {
	case GenderAny:
		return "any"
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

// ParseGender parses a gender name. Empty, "any" and "all" map to GenderAny.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return GenderAny, nil
	case "male", "m", "man":
		return GenderMale, nil
	case "female", "f", "woman", "women":
		return GenderFemale, nil
	default:
		return GenderAny, ErrInvalidGender
	}
}

// MatchedBy names the dominant signal behind a match.
type MatchedBy int

const (
	MatchedByRule MatchedBy = iota
	MatchedByKeyword
	MatchedByVector
	MatchedByHybrid
)

func (m MatchedBy) String() string {
	switch m {
	case MatchedByRule:
		return "rule"
	case MatchedByKeyword:
		return "keyword"
	case MatchedByVector:
		return "vector"
	case MatchedByHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Scheme is a government welfare scheme with its eligibility metadata.
// Schemes are immutable once published in an index snapshot.
type Scheme struct {
	Id          ID
	Slug        string // stable external key
	Name        string
	State       string // empty means national
	Category    string
	Description string

	Castes []string

	RequiresMinority         bool
	RequiresDifferentlyAbled bool
	RequiresBPL              bool
	RequiresStudent          bool

	MinAge      *int // nil means unbounded
	MaxAge      *int
	Gender      Gender
	IncomeLimit *int64 // nil means unbounded

	// Descriptive fields carried through from the scraped source.
	Benefits    string
	Eligibility string
	Process     string
	Documents   string
	URL         string
	Tags        []string

	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Clone returns a deep copy of the scheme.
func (s *Scheme) Clone() *Scheme {
	if s == nil {
		return nil
	}
	c := *s
	c.Castes = cloneStrings(s.Castes)
	c.Tags = cloneStrings(s.Tags)
	if s.MinAge != nil {
		c.MinAge = Int(*s.MinAge)
	}
	if s.MaxAge != nil {
		c.MaxAge = Int(*s.MaxAge)
	}
	if s.IncomeLimit != nil {
		c.IncomeLimit = Int64(*s.IncomeLimit)
	}
	return &c
}

// CanonicalText returns the text used to embed a scheme.
func (s *Scheme) CanonicalText() string {
	parts := []string{
		"name: " + strings.TrimSpace(s.Name),
		"category: " + strings.TrimSpace(s.Category),
		"description: " + strings.TrimSpace(s.Description),
	}
	if strings.TrimSpace(s.Benefits) != "" {
		parts = append(parts, "benefits: "+strings.TrimSpace(s.Benefits))
	}
	if len(s.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(s.Tags, ", "))
	}
	return strings.Join(parts, "\n")
}

// TextHash identifies the canonical text a vector was computed from.
func (s *Scheme) TextHash() ID {
	return IDFromContent(s.CanonicalText())
}

// Embedding is the vector for one scheme.
type Embedding struct {
	SchemeId ID
	Vector   []float32
	TextHash ID     // Scheme.TextHash() at embedding time
	Model    string // embedding model identifier
}

// UserProfile describes the person looking for schemes.
// Every field is optional; nil or zero means "not provided".
type UserProfile struct {
	Age    *int
	Gender Gender
	State  string
	Castes []string
	Income *int64

	IsMinority         *bool
	IsDifferentlyAbled *bool
	IsBPL              *bool
	IsStudent          *bool
}

// IsEmpty reports whether no attribute of the profile is set.
func (p *UserProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Age == nil && p.Gender == GenderAny && strings.TrimSpace(p.State) == "" &&
		len(p.Castes) == 0 && p.Income == nil && p.IsMinority == nil &&
		p.IsDifferentlyAbled == nil && p.IsBPL == nil && p.IsStudent == nil
}

// ComponentScores are the individual signals behind a final score.
type ComponentScores struct {
	Similarity    float64
	HasSimilarity bool // false when no vector signal existed for the scheme
	Keyword       float64
	Eligibility   float64
}

// MatchResult is one ranked scheme returned to a caller.
type MatchResult struct {
	SchemeId   ID
	Slug       string
	Name       string
	Score      float64 // in [0,1]
	MatchedBy  MatchedBy
	Rank       int // 0-based
	Components ComponentScores
}

// MatchRecord is a persisted match, kept for analytics.
type MatchRecord struct {
	UserId     string
	SchemeId   ID
	Slug       string
	Rank       int
	Score      float64
	MatchedBy  MatchedBy
	RecordedAt time.Time
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
