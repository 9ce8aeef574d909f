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

import "errors"

// ErrValidation is the root of every input validation failure.
// Callers can test for it with errors.Is regardless of the specific cause.
var ErrValidation = errors.New("validation failed")

// Domain validation errors
var (
	// ErrInvalidScheme indicates a Scheme failed validation.
	ErrInvalidScheme = errors.New("invalid scheme")

	// ErrInvalidProfile indicates a UserProfile failed validation.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrInvalidQuery indicates a malformed query string.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidGender indicates an unknown gender value.
	ErrInvalidGender = errors.New("invalid gender")

	// ErrInvalidAge indicates an age outside the plausible range.
	ErrInvalidAge = errors.New("invalid age")

	// ErrInvalidIncome indicates a negative income or income limit.
	ErrInvalidIncome = errors.New("invalid income")

	// ErrEmptySlug indicates the scheme Slug field is empty.
	ErrEmptySlug = errors.New("slug cannot be empty")

	// ErrEmptyName indicates the scheme Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")
)
