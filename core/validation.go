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
	"fmt"
	"unicode/utf8"
)

const (
	// MaxAge is the largest age accepted on a profile or scheme bound.
	MaxAge = 150

	// MaxQueryLength is the longest query accepted, in bytes.
	MaxQueryLength = 2048
)

// ValidateScheme validates a Scheme according to domain rules.
// Validation rules:
//   - Slug and Name must not be empty
//   - Age bounds must lie in [0, MaxAge] and MinAge <= MaxAge when both set
//   - IncomeLimit must not be negative
//   - Gender must be a known value
//
// NOT validated:
//   - State and Category (free text, normalized separately)
//   - ID (derived from the slug when zero)
func ValidateScheme(scheme *Scheme) error {
	if scheme == nil {
		return fmt.Errorf("%w: %w: scheme is nil", ErrValidation, ErrInvalidScheme)
	}
	if scheme.Slug == "" {
		return fmt.Errorf("%w: %w: %w", ErrValidation, ErrInvalidScheme, ErrEmptySlug)
	}
	if scheme.Name == "" {
		return fmt.Errorf("%w: %w: %w", ErrValidation, ErrInvalidScheme, ErrEmptyName)
	}
	if err := validateAge(scheme.MinAge); err != nil {
		return fmt.Errorf("%w: %w: min_age: %w", ErrValidation, ErrInvalidScheme, err)
	}
	if err := validateAge(scheme.MaxAge); err != nil {
		return fmt.Errorf("%w: %w: max_age: %w", ErrValidation, ErrInvalidScheme, err)
	}
	if scheme.MinAge != nil && scheme.MaxAge != nil && *scheme.MinAge > *scheme.MaxAge {
		return fmt.Errorf("%w: %w: %w: min %d above max %d",
			ErrValidation, ErrInvalidScheme, ErrInvalidAge, *scheme.MinAge, *scheme.MaxAge)
	}
	if scheme.IncomeLimit != nil && *scheme.IncomeLimit < 0 {
		return fmt.Errorf("%w: %w: %w: limit %d", ErrValidation, ErrInvalidScheme, ErrInvalidIncome, *scheme.IncomeLimit)
	}
	if err := ValidateGender(scheme.Gender); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrValidation, ErrInvalidScheme, err)
	}
	return nil
}

// ValidateProfile validates a UserProfile. A nil profile is valid and
// behaves like an empty one.
func ValidateProfile(profile *UserProfile) error {
	if profile == nil {
		return nil
	}
	if err := validateAge(profile.Age); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrValidation, ErrInvalidProfile, err)
	}
	if profile.Income != nil && *profile.Income < 0 {
		return fmt.Errorf("%w: %w: %w: income %d", ErrValidation, ErrInvalidProfile, ErrInvalidIncome, *profile.Income)
	}
	if err := ValidateGender(profile.Gender); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrValidation, ErrInvalidProfile, err)
	}
	return nil
}

// ValidateQuery checks that a query is valid UTF-8 and not oversized.
// Empty queries are allowed and match on eligibility alone.
func ValidateQuery(query string) error {
	if !utf8.ValidString(query) {
		return fmt.Errorf("%w: %w: not valid UTF-8", ErrValidation, ErrInvalidQuery)
	}
	if len(query) > MaxQueryLength {
		return fmt.Errorf("%w: %w: length %d exceeds %d", ErrValidation, ErrInvalidQuery, len(query), MaxQueryLength)
	}
	return nil
}

// ValidateGender validates that a Gender has a known value.
func ValidateGender(g Gender) error {
	if g != GenderAny && g != GenderMale && g != GenderFemale {
		return fmt.Errorf("%w: value %d", ErrInvalidGender, g)
	}
	return nil
}

func validateAge(age *int) error {
	if age == nil {
		return nil
	}
	if *age < 0 || *age > MaxAge {
		return fmt.Errorf("%w: %d", ErrInvalidAge, *age)
	}
	return nil
}
