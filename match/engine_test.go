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


package match

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/yojana/ai/mock"
	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/eligibility"
	"github.com/poiesic/yojana/index"
	"github.com/poiesic/yojana/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const farmerQuery = "farmer scheme"

func testScheme(slug, name string) *core.Scheme {
	return &core.Scheme{Id: core.IDFromContent(slug), Slug: slug, Name: name}
}

func testEmbedding(slug string, v ...float32) *core.Embedding {
	return &core.Embedding{SchemeId: core.IDFromContent(slug), Vector: v}
}

func fixture() ([]*core.Scheme, []*core.Embedding) {
	pmKisan := testScheme("pm-kisan", "PM-KISAN")
	pmKisan.Category = "Agriculture"
	pmKisan.Description = "Income support for farmer families"
	pmKisan.State = "All States"

	maha := testScheme("maha-farmer", "Maharashtra Farmer Aid")
	maha.State = "Maharashtra"
	maha.MinAge = core.Int(18)
	maha.MaxAge = core.Int(60)
	maha.Category = "Agriculture"
	maha.Description = "Support for farmers in Maharashtra"

	kerala := testScheme("kerala-farmer", "Kerala Farmer Scheme")
	kerala.State = "Kerala"
	kerala.Category = "Agriculture"
	kerala.Description = "farmer scheme for Kerala"

	beti := testScheme("beti-bachao", "Beti Bachao Beti Padhao")
	beti.Gender = core.GenderFemale
	beti.Category = "Women"
	beti.Description = "farmer scheme for the girl child"

	pmay := testScheme("pmay", "Pradhan Mantri Awas Yojana")
	pmay.Category = "Housing"
	pmay.Description = "Housing for all"

	noVec := testScheme("farmer-helpline", "Farmer Helpline")
	noVec.Category = "Agriculture"
	noVec.Description = "farmer scheme advice line"

	schemes := []*core.Scheme{pmKisan, maha, kerala, beti, pmay, noVec}
	embeddings := []*core.Embedding{
		testEmbedding("pm-kisan", 0.9, 0.1, 0, 0),
		testEmbedding("maha-farmer", 1, 0, 0, 0),
		testEmbedding("kerala-farmer", 1, 0, 0, 0),
		testEmbedding("beti-bachao", 1, 0, 0, 0),
		testEmbedding("pmay", 0, 0, 1, 0),
	}
	return schemes, embeddings
}

func newTestEmbedder() *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 4
	embedder.WithVector(farmerQuery, []float32{1, 0, 0, 0})
	return embedder
}

func newTestEngine(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	schemes, embeddings := fixture()
	require.NoError(t, e.RebuildIndex(context.Background(), schemes, embeddings))
	return e
}

func slugs(results []core.MatchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Slug
	}
	return out
}

func maharashtraMale() *core.UserProfile {
	return &core.UserProfile{Age: core.Int(35), Gender: core.GenderMale, State: "maharashtra"}
}

func TestNewEngine(t *testing.T) {
	embedder := newTestEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		e, err := NewEngine(embedder)
		require.NoError(t, err)
		defer e.Close()
		assert.Equal(t, uint64(0), e.Index().Current().Version())
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewEngine(nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		e, err := NewEngine(embedder, WithLogger(nil))
		require.NoError(t, err)
		e.Close()
	})

	t.Run("invalid weights", func(t *testing.T) {
		_, err := NewEngine(embedder, WithWeights(ranking.Weights{Vector: 1}))
		assert.ErrorIs(t, err, ranking.ErrInvalidWeights)
	})

	t.Run("invalid candidate pool", func(t *testing.T) {
		_, err := NewEngine(embedder, WithCandidatePool(0))
		assert.Error(t, err)
	})

	t.Run("shared index", func(t *testing.T) {
		idx := index.New()
		e, err := NewEngine(embedder, WithIndex(idx))
		require.NoError(t, err)
		defer e.Close()
		assert.Same(t, idx, e.Index())
	})
}

func TestNewEngine_IndexLogsUnderItsOwnComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	e := newTestEngine(t, newTestEmbedder(), WithLogger(logger))
	require.Equal(t, uint64(1), e.Index().Current().Version())

	var published string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "published snapshot") {
			published = line
		}
	}
	require.NotEmpty(t, published)
	assert.Equal(t, 1, strings.Count(published, "component="))
	assert.Contains(t, published, "component=index")
}

func TestSearchSchemes_HardConstraintsExclude(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())

	resp, err := e.SearchSchemes(context.Background(), farmerQuery, maharashtraMale(), Options{Limit: 10})
	require.NoError(t, err)
	assert.False(t, resp.Degraded)
	assert.Empty(t, resp.Reasons)

	got := slugs(resp.Results)
	assert.Contains(t, got, "maha-farmer")
	assert.NotContains(t, got, "kerala-farmer", "state mismatch")
	assert.NotContains(t, got, "beti-bachao", "gender mismatch despite a perfect vector match")
	assert.Equal(t, "maha-farmer", got[0])
	assert.Equal(t, core.MatchedByVector, resp.Results[0].MatchedBy)
}

func TestSearchSchemes_AgeOutsideBoundsNeverReturned(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())

	for _, age := range []int{0, 17, 61, 90} {
		t.Run(fmt.Sprintf("age %d", age), func(t *testing.T) {
			profile := &core.UserProfile{Age: core.Int(age), State: "Maharashtra"}
			resp, err := e.SearchSchemes(context.Background(), farmerQuery, profile, Options{Limit: 10})
			require.NoError(t, err)
			assert.NotContains(t, slugs(resp.Results), "maha-farmer")
		})
	}
}

func TestSearchSchemes_EmbedderFailureDegrades(t *testing.T) {
	embedder := newTestEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("connection refused")
	}
	e := newTestEngine(t, embedder)

	resp, err := e.SearchSchemes(context.Background(), farmerQuery, maharashtraMale(), Options{Limit: 10})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Equal(t, []DegradeReason{ReasonEmbedderUnavailable}, resp.Reasons)
	require.NotEmpty(t, resp.Results)
	for _, r := range resp.Results {
		assert.Contains(t, []core.MatchedBy{core.MatchedByRule, core.MatchedByKeyword}, r.MatchedBy, r.Slug)
		assert.False(t, r.Components.HasSimilarity)
	}
}

func TestSearchSchemes_WrongQueryDimensionDegrades(t *testing.T) {
	embedder := newTestEmbedder()
	embedder.WithVector(farmerQuery, []float32{1, 0, 0})
	e := newTestEngine(t, embedder)

	resp, err := e.SearchSchemes(context.Background(), farmerQuery, nil, Options{})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Equal(t, []DegradeReason{ReasonEmbedderUnavailable}, resp.Reasons)
	assert.NotEmpty(t, resp.Results)
}

func TestSearchSchemes_IndexWithoutEmbeddings(t *testing.T) {
	embedder := newTestEmbedder()
	e, err := NewEngine(embedder)
	require.NoError(t, err)
	defer e.Close()

	schemes, _ := fixture()
	require.NoError(t, e.RebuildIndex(context.Background(), schemes, nil))

	resp, err := e.SearchSchemes(context.Background(), farmerQuery, nil, Options{})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Equal(t, []DegradeReason{ReasonIndexUnavailable}, resp.Reasons)
	assert.NotEmpty(t, resp.Results)
	assert.Zero(t, embedder.CallCount(), "no point embedding without vectors to compare")
}

func TestSearchSchemes_EmptyIndex(t *testing.T) {
	e, err := NewEngine(newTestEmbedder())
	require.NoError(t, err)
	defer e.Close()

	resp, err := e.SearchSchemes(context.Background(), farmerQuery, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results)
}

func TestSearchSchemes_BlankQueryRanksByEligibility(t *testing.T) {
	embedder := newTestEmbedder()
	e := newTestEngine(t, embedder)

	resp, err := e.SearchSchemes(context.Background(), "  ", maharashtraMale(), Options{Limit: 10})
	require.NoError(t, err)
	assert.False(t, resp.Degraded)
	assert.Zero(t, embedder.CallCount())
	for _, r := range resp.Results {
		assert.Equal(t, core.MatchedByRule, r.MatchedBy)
	}
}

func TestSearchSchemes_SchemeWithoutEmbedding(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())

	resp, err := e.SearchSchemes(context.Background(), farmerQuery, nil, Options{Limit: 10})
	require.NoError(t, err)

	var found bool
	for _, r := range resp.Results {
		if r.Slug != "farmer-helpline" {
			continue
		}
		found = true
		assert.False(t, r.Components.HasSimilarity)
		assert.Greater(t, r.Components.Keyword, 0.0)
		assert.Contains(t, []core.MatchedBy{core.MatchedByRule, core.MatchedByKeyword}, r.MatchedBy)
	}
	assert.True(t, found)
}

func TestSearchSchemes_SimilarityBeyondCandidatePool(t *testing.T) {
	embedder := newTestEmbedder()
	embedder.WithVector("need support", []float32{1, 0, 0, 0})
	e, err := NewEngine(embedder, WithCandidatePool(1))
	require.NoError(t, err)
	defer e.Close()

	schemes := []*core.Scheme{testScheme("alpha", "Alpha"), testScheme("beta", "Beta"), testScheme("gamma", "Gamma")}
	embeddings := []*core.Embedding{
		testEmbedding("alpha", 1, 0, 0, 0),
		testEmbedding("beta", 0.99, 0.14, 0, 0),
	}
	require.NoError(t, e.RebuildIndex(context.Background(), schemes, embeddings))

	resp, err := e.SearchSchemes(context.Background(), "need support", nil, Options{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta", "gamma"}, slugs(resp.Results))

	beta := resp.Results[1]
	assert.True(t, beta.Components.HasSimilarity)
	assert.InDelta(t, 0.99/math.Sqrt(0.99*0.99+0.14*0.14), beta.Components.Similarity, 1e-6)
	assert.Equal(t, core.MatchedByVector, beta.MatchedBy)
	assert.Greater(t, beta.Score, resp.Results[2].Score)
	assert.False(t, resp.Results[2].Components.HasSimilarity)
}

func TestSearchSchemes_TieBreakBySlug(t *testing.T) {
	e, err := NewEngine(newTestEmbedder())
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.RebuildIndex(context.Background(),
		[]*core.Scheme{testScheme("xyz", "Scheme X"), testScheme("abc", "Scheme A")}, nil))

	resp, err := e.SearchSchemes(context.Background(), "", nil, Options{})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.InDelta(t, resp.Results[0].Score, resp.Results[1].Score, 1e-12)
	assert.Equal(t, []string{"abc", "xyz"}, slugs(resp.Results))
}

func TestSearchSchemes_LimitAndInvariants(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())

	resp, err := e.SearchSchemes(context.Background(), farmerQuery, nil, Options{Limit: 3})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	all, err := e.SearchSchemes(context.Background(), farmerQuery, nil, Options{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, all.Results[:3], resp.Results)

	seen := map[core.ID]bool{}
	for i, r := range all.Results {
		assert.False(t, seen[r.SchemeId], "duplicate %s", r.Slug)
		seen[r.SchemeId] = true
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
		assert.Equal(t, i, r.Rank)
	}

	high, err := e.SearchSchemes(context.Background(), farmerQuery, nil, Options{Limit: 100, MinScore: 0.7})
	require.NoError(t, err)
	for _, r := range high.Results {
		assert.GreaterOrEqual(t, r.Score, 0.7)
	}
}

func TestSearchSchemes_Deterministic(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())

	first, err := e.SearchSchemes(context.Background(), farmerQuery, maharashtraMale(), Options{Limit: 10})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.SearchSchemes(context.Background(), farmerQuery, maharashtraMale(), Options{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearchSchemes_Category(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())

	resp, err := e.SearchSchemes(context.Background(), farmerQuery, nil, Options{Limit: 10, Category: "housing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pmay"}, slugs(resp.Results))
}

func TestSearchSchemes_Validation(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())

	tests := []struct {
		name    string
		query   string
		profile *core.UserProfile
		opts    Options
		wantErr error
	}{
		{"negative age", farmerQuery, &core.UserProfile{Age: core.Int(-1)}, Options{}, core.ErrInvalidAge},
		{"negative income", farmerQuery, &core.UserProfile{Income: core.Int64(-5)}, Options{}, core.ErrInvalidIncome},
		{"unknown gender", farmerQuery, &core.UserProfile{Gender: core.Gender(9)}, Options{}, core.ErrInvalidGender},
		{"invalid utf8", "\xff\xfe", nil, Options{}, core.ErrInvalidQuery},
		{"negative limit", farmerQuery, nil, Options{Limit: -1}, ErrInvalidOptions},
		{"min score above one", farmerQuery, nil, Options{MinScore: 1.5}, ErrInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.SearchSchemes(context.Background(), tt.query, tt.profile, tt.opts)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSearchSchemes_DeadlineReturnsPartialResults(t *testing.T) {
	base := time.Now()
	var calls atomic.Int32
	clock := func() time.Time {
		if calls.Add(1) == 1 {
			return base
		}
		return base.Add(time.Hour)
	}

	e, err := NewEngine(newTestEmbedder(), WithClock(clock))
	require.NoError(t, err)
	defer e.Close()

	var schemes []*core.Scheme
	for i := 0; i < 40; i++ {
		schemes = append(schemes, testScheme(fmt.Sprintf("scheme-%02d", i), fmt.Sprintf("Scheme %d", i)))
	}
	require.NoError(t, e.RebuildIndex(context.Background(), schemes, nil))

	monitor := &countingMonitor{}
	resp, err := e.SearchSchemesWithMonitor(context.Background(), "scheme", nil,
		Options{Limit: 5, Deadline: base.Add(time.Minute)}, monitor)
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Contains(t, resp.Reasons, ReasonTimeout)
	assert.Len(t, resp.Results, 5)
	assert.Equal(t, 2*deadlineCheckInterval, monitor.evaluated)
}

func TestSearchSchemes_CanceledContextDegrades(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := e.SearchSchemes(ctx, farmerQuery, nil, Options{})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Contains(t, resp.Reasons, ReasonEmbedderUnavailable)
}

// countingMonitor counts evaluated schemes.
type countingMonitor struct {
	noopMonitor
	evaluated int
}

func (m *countingMonitor) Evaluated(_ *core.Scheme, _ eligibility.Decision) { m.evaluated++ }

// rebuildingMonitor swaps the index as soon as a search starts.
type rebuildingMonitor struct {
	noopMonitor
	engine *Engine
	err    error
}

func (m *rebuildingMonitor) Start(_ string, _ uint64) {
	m.err = m.engine.RebuildIndex(context.Background(),
		[]*core.Scheme{testScheme("replacement", "Replacement Scheme")}, nil)
}

func TestSearchSchemes_UsesSnapshotCapturedAtStart(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())
	monitor := &rebuildingMonitor{engine: e}

	resp, err := e.SearchSchemesWithMonitor(context.Background(), farmerQuery, nil, Options{Limit: 10}, monitor)
	require.NoError(t, err)
	require.NoError(t, monitor.err)

	assert.Equal(t, uint64(1), resp.SnapshotVersion)
	assert.NotContains(t, slugs(resp.Results), "replacement")
	assert.Equal(t, uint64(2), e.Index().Current().Version())
	assert.False(t, resp.Degraded)
}

func TestSearchSchemes_Concurrent(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())
	schemes, embeddings := fixture()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				resp, err := e.SearchSchemes(context.Background(), farmerQuery, maharashtraMale(), Options{Limit: 10})
				assert.NoError(t, err)
				assert.NotContains(t, slugs(resp.Results), "kerala-farmer")
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 10; j++ {
			assert.NoError(t, e.RebuildIndex(context.Background(), schemes, embeddings))
		}
	}()
	wg.Wait()
}

type fakeRecorder struct {
	mu      sync.Mutex
	records map[string][][]core.MatchResult
	err     error
}

func (f *fakeRecorder) Persist(_ context.Context, userID string, results []core.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.records == nil {
		f.records = map[string][][]core.MatchResult{}
	}
	f.records[userID] = append(f.records[userID], results)
	return nil
}

func TestSearchSchemes_RecordsMatches(t *testing.T) {
	recorder := &fakeRecorder{}
	e := newTestEngine(t, newTestEmbedder(), WithRecorder(recorder))

	resp, err := e.SearchSchemes(context.Background(), farmerQuery, nil, Options{UserID: "user-1"})
	require.NoError(t, err)
	_, err = e.SearchSchemes(context.Background(), farmerQuery, nil, Options{})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.records, 1, "anonymous searches are not recorded")
	require.Len(t, recorder.records["user-1"], 1)
	assert.Equal(t, resp.Results, recorder.records["user-1"][0])
}

func TestSearchSchemes_RecorderFailureIgnored(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("disk full")}
	e := newTestEngine(t, newTestEmbedder(), WithRecorder(recorder))

	resp, err := e.SearchSchemes(context.Background(), farmerQuery, nil, Options{UserID: "user-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Results)
	assert.NoError(t, e.Close())
}

func TestExplain(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())

	resp, err := e.Explain(context.Background(), farmerQuery, maharashtraMale(), Options{Limit: 1})
	require.NoError(t, err)
	// Kerala is outside the state bucket and never becomes a candidate
	require.Len(t, resp.Candidates, 5, "every candidate is explained regardless of limit")

	var admitted, rejected []string
	for _, c := range resp.Candidates {
		if c.Admitted {
			admitted = append(admitted, c.Result.Slug)
			assert.Empty(t, c.Reasons)
			assert.GreaterOrEqual(t, c.Result.Rank, 0)
		} else {
			rejected = append(rejected, c.Result.Slug)
			assert.NotEmpty(t, c.Reasons)
			assert.Equal(t, -1, c.Result.Rank)
		}
	}
	assert.Equal(t, []string{"beti-bachao"}, rejected)
	assert.Equal(t, "maha-farmer", admitted[0])

	// Rejected candidates still carry their component scores
	last := resp.Candidates[len(resp.Candidates)-1]
	assert.True(t, last.Vector)
	assert.InDelta(t, 1.0, last.Result.Components.Similarity, 1e-6)
}

func TestCategories(t *testing.T) {
	e, err := NewEngine(newTestEmbedder())
	require.NoError(t, err)
	defer e.Close()
	assert.Empty(t, e.Categories())

	schemes, embeddings := fixture()
	require.NoError(t, e.RebuildIndex(context.Background(), schemes, embeddings))
	categories := e.Categories()
	assert.Equal(t, []string{"agriculture", "housing", "women"}, categories)

	// every listed category is a usable filter
	for _, category := range categories {
		resp, err := e.SearchSchemes(context.Background(), "", nil, Options{Category: category, Limit: 10})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Results, category)
	}
}

func TestLookup(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())

	tests := []struct {
		needle  string
		want    string
		wantErr bool
	}{
		{"pm-kisan", "pm-kisan", false},
		{"KISAN", "pm-kisan", false},
		{"awas", "pmay", false},
		{"moon mission", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.needle, func(t *testing.T) {
			got, err := e.Lookup(tt.needle)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSchemeNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Slug)
		})
	}
}

func TestSearchByTopic(t *testing.T) {
	embedder := newTestEmbedder()
	embedder.WithVector(topicQueries["housing"], []float32{0, 0, 1, 0})
	e := newTestEngine(t, embedder)

	resp, err := e.SearchByTopic(context.Background(), "Housing", nil, Options{Limit: 1})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "pmay", resp.Results[0].Slug)

	_, err = e.SearchByTopic(context.Background(), "space travel", nil, Options{})
	assert.ErrorIs(t, err, ErrUnknownTopic)
	assert.ErrorIs(t, err, core.ErrValidation)

	assert.Contains(t, Topics(), "farmer")
}

func TestRebuildIndex_DimensionMismatch(t *testing.T) {
	e := newTestEngine(t, newTestEmbedder())
	schemes, embeddings := fixture()
	embeddings[0] = testEmbedding("pm-kisan", 1, 0)

	err := e.RebuildIndex(context.Background(), schemes, embeddings)
	assert.ErrorIs(t, err, index.ErrDimensionMismatch)
	assert.Equal(t, uint64(1), e.Index().Current().Version())
}
