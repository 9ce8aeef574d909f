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
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 25)
	tracker.Start()

	tracker.Increment(10)
	assert.Empty(t, buf.String(), "below the interval")

	tracker.Increment(15)
	assert.Contains(t, buf.String(), "25/100 schemes (25.0%)")

	tracker.Increment(100)
	assert.Equal(t, 100, tracker.Current(), "capped at total")
	assert.Contains(t, buf.String(), "100/100")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 100)
	tracker.Start()
	tracker.Increment(10)
	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "10/10 schemes (100.0%)")
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Contains(t, out, "schemes/s")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 10)
	tracker.Start()
	tracker.Finish()
	assert.Contains(t, buf.String(), "0/0")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Increment(50)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_Concurrent(t *testing.T) {
	tracker := NewProgressTracker(nil, 1000, 100)
	tracker.Start()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.Increment(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, tracker.Current())
}
