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

import "errors"

var (
	// ErrDimensionMismatch indicates vectors of different lengths, or a
	// query vector whose length differs from the snapshot's dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidVector indicates a vector containing NaN or infinite values.
	ErrInvalidVector = errors.New("invalid vector")

	// ErrInvalidSnapshot indicates input that cannot form a consistent snapshot.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInconsistentSnapshot indicates a snapshot that contradicts itself.
	// It signals a programming error and is never expected in practice.
	ErrInconsistentSnapshot = errors.New("inconsistent snapshot")
)
