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


package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	errBoom := errors.New("embedding service unavailable")

	tests := []struct {
		name         string
		failures     int // attempts that fail before success
		maxAttempts  int
		wantErr      error
		wantAttempts int
	}{
		{"first try", 0, 3, nil, 1},
		{"eventual success", 2, 5, nil, 3},
		{"all attempts fail", 10, 3, errBoom, 3},
		{"zero attempts", 0, 0, ErrInvalidMaxAttempts, 0},
		{"negative attempts", 0, -1, ErrInvalidMaxAttempts, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := RetryWithBackoff(context.Background(), func() error {
				attempts++
				if attempts <= tt.failures {
					return errBoom
				}
				return nil
			}, tt.maxAttempts, time.Millisecond)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantAttempts, attempts)
		})
	}
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}, 10, 5*time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoff_ContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := RetryWithBackoff(ctx, func() error {
		return errors.New("error")
	}, 100, 20*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryWithBackoff_DelayGrows(t *testing.T) {
	var stamps []time.Time
	err := RetryWithBackoff(context.Background(), func() error {
		stamps = append(stamps, time.Now())
		if len(stamps) < 4 {
			return errors.New("error")
		}
		return nil
	}, 5, 5*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, stamps, 4)

	first := stamps[1].Sub(stamps[0])
	third := stamps[3].Sub(stamps[2])
	assert.GreaterOrEqual(t, first, 5*time.Millisecond)
	assert.GreaterOrEqual(t, third, 20*time.Millisecond)
}
