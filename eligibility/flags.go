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
	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/keyword"
)

// Flags is a set of categorical flags.
type Flags uint8

const (
	FlagMinority Flags = 1 << iota
	FlagDifferentlyAbled
	FlagBPL
	FlagStudent
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagMinority, "minority"},
	{FlagDifferentlyAbled, "differently abled"},
	{FlagBPL, "BPL"},
	{FlagStudent, "student"},
}

// Has reports whether every flag in f2 is set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Count returns the number of flags set.
func (f Flags) Count() int {
	n := 0
	for ; f != 0; f &= f - 1 {
		n++
	}
	return n
}

// targetTokens are words in a scheme's name, category or tags that mark it
// as aimed at a group.
var targetTokens = map[string]Flags{
	"minority":    FlagMinority,
	"minorities":  FlagMinority,
	"disabled":    FlagDifferentlyAbled,
	"disability":  FlagDifferentlyAbled,
	"divyang":     FlagDifferentlyAbled,
	"divyangjan":  FlagDifferentlyAbled,
	"pwd":         FlagDifferentlyAbled,
	"handicapped": FlagDifferentlyAbled,
	"bpl":         FlagBPL,
	"poverty":     FlagBPL,
	"poor":        FlagBPL,
	"student":     FlagStudent,
	"students":    FlagStudent,
	"scholarship": FlagStudent,
}

// RequiredFlags returns the flags a scheme requires.
func RequiredFlags(s *core.Scheme) Flags {
	var f Flags
	if s.RequiresMinority {
		f |= FlagMinority
	}
	if s.RequiresDifferentlyAbled {
		f |= FlagDifferentlyAbled
	}
	if s.RequiresBPL {
		f |= FlagBPL
	}
	if s.RequiresStudent {
		f |= FlagStudent
	}
	return f
}

// TargetedFlags returns the groups a scheme is aimed at, whether or not it
// requires membership. Required flags are always included.
func TargetedFlags(s *core.Scheme) Flags {
	f := RequiredFlags(s)
	tokens := keyword.NewTokenSet(append([]string{s.Name, s.Category}, s.Tags...)...)
	for tok, flag := range targetTokens {
		if tokens.Contains(tok) {
			f |= flag
		}
	}
	return f
}

// ProfileFlags splits a profile's flags into those known true and those
// known at all.
func ProfileFlags(p *core.UserProfile) (set, known Flags) {
	pairs := []struct {
		v    *bool
		flag Flags
	}{
		{p.IsMinority, FlagMinority},
		{p.IsDifferentlyAbled, FlagDifferentlyAbled},
		{p.IsBPL, FlagBPL},
		{p.IsStudent, FlagStudent},
	}
	for _, pair := range pairs {
		if pair.v == nil {
			continue
		}
		known |= pair.flag
		if *pair.v {
			set |= pair.flag
		}
	}
	return set, known
}
