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


package mock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	a, err := m.EmbedText(ctx, "farmer income support")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "farmer income support")
	require.NoError(t, err)
	c, err := m.EmbedText(ctx, "housing for the poor")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, DefaultDimension)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestMockEmbedder_PinnedAndInjected(t *testing.T) {
	m := NewMockEmbedder().WithVector("q", []float32{1, 0})
	ctx := context.Background()

	v, err := m.EmbedText(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, v)

	batch, err := m.EmbedTexts(ctx, []string{"q", "other"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, batch[0])

	boom := errors.New("boom")
	m.EmbedTextFunc = func(context.Context, string) ([]float32, error) { return nil, boom }
	_, err = m.EmbedText(ctx, "q")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, m.CallCount())

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	v, err = m.EmbedText(ctx, "q")
	require.NoError(t, err)
	assert.Len(t, v, DefaultDimension)
}

func TestMockEmbedder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockEmbedder().EmbedText(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockEmbedder_Concurrent(t *testing.T) {
	m := NewMockEmbedder()
	m.Dimension = 8

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.EmbedText(context.Background(), "x")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider().WithModel("test-model")
	assert.Equal(t, "test-model", p.Model())
	assert.Same(t, p.GetMockEmbedder(), p.Embedder())
	assert.NoError(t, p.Close())
}
