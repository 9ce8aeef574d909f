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
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/yojana/ai"
	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/eligibility"
	"github.com/poiesic/yojana/index"
	"github.com/poiesic/yojana/keyword"
	"github.com/poiesic/yojana/ranking"
	"github.com/poiesic/yojana/storage"
	"go.opentelemetry.io/otel/trace"
)

const (
	// deadlineCheckInterval is how many candidates are scored between
	// deadline checks.
	deadlineCheckInterval = 8

	recordTimeout = 10 * time.Second
)

// DegradeReason names an upstream signal that was missing from a search.
type DegradeReason string

const (
	ReasonEmbedderUnavailable DegradeReason = "embedder_unavailable"
	ReasonIndexUnavailable    DegradeReason = "index_unavailable"
	ReasonTimeout             DegradeReason = "timeout"
)

// Response is the outcome of a search.
type Response struct {
	Results         []core.MatchResult
	Degraded        bool
	Reasons         []DegradeReason
	SnapshotVersion uint64
}

// Engine matches queries and profiles against the active index snapshot.
// It is safe for concurrent use.
type Engine struct {
	embedder ai.Embedder
	index    *index.Index
	filter   *eligibility.Filter
	ranker   *ranking.Ranker
	recorder storage.MatchRecorder

	recordPool       *ants.Pool
	recordWG         sync.WaitGroup
	recorderPoolSize int
	closeOnce        sync.Once

	weights       ranking.Weights
	softWeights   eligibility.SoftWeights
	candidatePool int
	now           func() time.Time
	tracer        trace.Tracer
	logger        *slog.Logger
}

// NewEngine creates a matching engine that embeds queries with embedder.
func NewEngine(embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		embedder:         embedder,
		recorderPoolSize: DefaultRecorderPoolSize,
		weights:          ranking.DefaultWeights(),
		softWeights:      eligibility.DefaultSoftWeights(),
		candidatePool:    DefaultCandidatePool,
		now:              time.Now,
		tracer:           newTracer(),
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	base := e.logger
	e.logger = base.With("component", "match")

	filter, err := eligibility.NewFilter(eligibility.WithSoftWeights(e.softWeights))
	if err != nil {
		return nil, err
	}
	ranker, err := ranking.NewRanker(e.weights)
	if err != nil {
		return nil, err
	}
	e.filter = filter
	e.ranker = ranker

	if e.index == nil {
		e.index = index.New(index.WithLogger(base))
	}

	if e.recorder != nil {
		pool, err := ants.NewPool(e.recorderPoolSize, ants.WithNonblocking(true))
		if err != nil {
			return nil, err
		}
		e.recordPool = pool
	}

	return e, nil
}

// Index returns the index the engine searches.
func (e *Engine) Index() *index.Index {
	return e.index
}

// RebuildIndex replaces the active snapshot. It fails with
// index.ErrDimensionMismatch when embeddings differ in length, leaving the
// previous snapshot active.
func (e *Engine) RebuildIndex(ctx context.Context, schemes []*core.Scheme, embeddings []*core.Embedding) error {
	ctx, span := startRebuildSpan(ctx, e.tracer, len(schemes), len(embeddings))
	defer span.End()

	snap, err := e.index.Rebuild(ctx, schemes, embeddings)
	if err != nil {
		endWithError(span, err)
		return err
	}
	recordSnapshot(span, snap)
	return nil
}

// SearchSchemes returns the schemes best matching query for profile.
// Only validation errors and internal inconsistencies are returned as
// errors. Upstream failures degrade the response instead.
func (e *Engine) SearchSchemes(ctx context.Context, query string, profile *core.UserProfile, opts Options) (*Response, error) {
	return e.SearchSchemesWithMonitor(ctx, query, profile, opts, nil)
}

// SearchSchemesWithMonitor is SearchSchemes with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (e *Engine) SearchSchemesWithMonitor(ctx context.Context, query string, profile *core.UserProfile, opts Options, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	ctx, span := startSearchSpan(ctx, e.tracer, query, opts)
	defer span.End()

	if err := validateRequest(query, profile, opts); err != nil {
		endWithError(span, err)
		return nil, err
	}

	snap := e.index.Current()
	monitor.Start(query, snap.Version())

	run, err := e.gather(ctx, snap, query, profile, opts, monitor)
	if err != nil {
		e.logger.Error("search aborted", "snapshot", snap.Version(), "err", err)
		endWithError(span, err)
		return nil, err
	}

	results := e.ranker.Rank(run.candidates, ranking.Options{Limit: opts.Limit, MinScore: opts.MinScore})
	monitor.Finish(results)

	resp := &Response{
		Results:         results,
		Degraded:        len(run.reasons) > 0,
		Reasons:         run.reasons,
		SnapshotVersion: snap.Version(),
	}
	recordResponse(span, resp)

	e.record(opts.UserID, results)
	return resp, nil
}

// Explanation is one candidate's full evaluation.
type Explanation struct {
	Result   core.MatchResult // Rank is -1 for schemes not in the ordered list
	Admitted bool
	Reasons  []string // hard constraint failures
	Vector   bool     // surfaced by the vector search
}

// ExplainResponse lists every candidate a search considered.
type ExplainResponse struct {
	Candidates      []Explanation
	Degraded        bool
	Reasons         []DegradeReason
	SnapshotVersion uint64
}

// Explain runs a search and returns every candidate with its component
// scores, including schemes rejected by eligibility. Admitted schemes come
// first in rank order, then rejected schemes by slug. Limit and MinScore
// are ignored and nothing is recorded.
func (e *Engine) Explain(ctx context.Context, query string, profile *core.UserProfile, opts Options) (*ExplainResponse, error) {
	if err := validateRequest(query, profile, opts); err != nil {
		return nil, err
	}

	snap := e.index.Current()
	run, err := e.gather(ctx, snap, query, profile, opts, &noopMonitor{})
	if err != nil {
		return nil, err
	}

	ordered := e.ranker.Order(run.candidates)
	out := make([]Explanation, 0, len(run.candidates))
	for _, res := range ordered {
		out = append(out, Explanation{
			Result:   res,
			Admitted: true,
			Vector:   run.vector[res.SchemeId],
		})
	}

	var rejected []Explanation
	for _, c := range ranking.Merge(run.candidates) {
		if c.Admitted {
			continue
		}
		rejected = append(rejected, Explanation{
			Result:  e.ranker.Score(c),
			Reasons: run.rejections[c.SchemeId],
			Vector:  run.vector[c.SchemeId],
		})
	}
	sortBySlug(rejected)
	out = append(out, rejected...)

	return &ExplainResponse{
		Candidates:      out,
		Degraded:        len(run.reasons) > 0,
		Reasons:         run.reasons,
		SnapshotVersion: snap.Version(),
	}, nil
}

// Categories lists the folded scheme categories in the current snapshot.
// Any of them is a valid Options.Category.
func (e *Engine) Categories() []string {
	return e.index.Current().Categories()
}

// Lookup finds a scheme by exact slug, or else by a case-insensitive
// substring of its name. Among several name matches the lowest ID wins.
func (e *Engine) Lookup(nameOrSlug string) (*core.Scheme, error) {
	snap := e.index.Current()
	needle := strings.TrimSpace(nameOrSlug)
	if needle == "" {
		return nil, ErrSchemeNotFound
	}
	if entry, ok := snap.EntryBySlug(needle); ok {
		return entry.Scheme.Clone(), nil
	}
	folded := core.Fold(needle)
	for _, entry := range snap.Entries() {
		if strings.Contains(core.Fold(entry.Scheme.Name), folded) {
			return entry.Scheme.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSchemeNotFound, nameOrSlug)
}

// Close waits for pending match recordings and releases the worker pool.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.recordWG.Wait()
		if e.recordPool != nil {
			e.recordPool.Release()
		}
	})
	return nil
}

// gathered holds the per-scheme signals of one search.
type gathered struct {
	candidates []ranking.Candidate
	reasons    []DegradeReason
	vector     map[core.ID]bool
	rejections map[core.ID][]string
}

func (g *gathered) degrade(reason DegradeReason) {
	for _, r := range g.reasons {
		if r == reason {
			return
		}
	}
	g.reasons = append(g.reasons, reason)
}

func (e *Engine) gather(ctx context.Context, snap *index.Snapshot, query string, profile *core.UserProfile, opts Options, monitor SearchMonitor) (*gathered, error) {
	run := &gathered{
		vector:     make(map[core.ID]bool),
		rejections: make(map[core.ID][]string),
	}
	deadline, hasDeadline := effectiveDeadline(ctx, opts.Deadline)

	hits, similar, queryVec := e.vectorCandidates(ctx, snap, query, deadline, hasDeadline, run, monitor)

	selected := snap.Select(profileState(profile), opts.Category)
	inBucket := make(map[core.ID]bool, len(selected))
	for _, entry := range selected {
		inBucket[entry.Scheme.Id] = true
	}

	// Vector candidates are scored first so a timeout keeps the strongest
	ordered := make([]*index.Entry, 0, len(selected))
	for _, hit := range hits {
		entry, ok := snap.Entry(hit.SchemeId)
		if !ok {
			return nil, fmt.Errorf("%w: vector hit %d has no scheme", index.ErrInconsistentSnapshot, hit.SchemeId)
		}
		if inBucket[hit.SchemeId] {
			ordered = append(ordered, entry)
			run.vector[hit.SchemeId] = true
		}
	}
	for _, entry := range selected {
		if !run.vector[entry.Scheme.Id] {
			ordered = append(ordered, entry)
		}
	}

	queryTokens := keyword.NewTokenSet(query)
	run.candidates = make([]ranking.Candidate, 0, len(ordered))
	for i, entry := range ordered {
		if i > 0 && i%deadlineCheckInterval == 0 && e.expired(ctx, deadline, hasDeadline) {
			e.logger.Warn("search deadline exceeded", "scored", i, "candidates", len(ordered))
			run.degrade(ReasonTimeout)
			monitor.Degraded(ReasonTimeout, context.DeadlineExceeded)
			break
		}

		decision := e.filter.EvaluateTargeted(entry.Scheme, entry.Targets, profile)
		monitor.Evaluated(entry.Scheme, decision)
		if !decision.Admitted {
			run.rejections[entry.Scheme.Id] = decision.Reasons
		}

		c := ranking.Candidate{
			SchemeId:    entry.Scheme.Id,
			Slug:        entry.Scheme.Slug,
			Name:        entry.Scheme.Name,
			Keyword:     keyword.ScoreTokens(queryTokens, entry.Tokens),
			Admitted:    decision.Admitted,
			Eligibility: decision.SoftScore,
		}
		if sim, ok := similar[entry.Scheme.Id]; ok {
			c.Similarity, c.HasSimilarity = sim, true
		} else if queryVec != nil && entry.HasVector() {
			// Embedded but outside the candidate pool
			sim, err := index.Cosine(queryVec, entry.Vector)
			if err != nil {
				return nil, fmt.Errorf("%w: scheme %q: %w", index.ErrInconsistentSnapshot, entry.Scheme.Slug, err)
			}
			c.Similarity, c.HasSimilarity = sim, true
		}
		run.candidates = append(run.candidates, c)
	}

	return run, nil
}

// vectorCandidates embeds the query and searches the snapshot. A nil query
// vector means no vector signal is available for this search.
func (e *Engine) vectorCandidates(ctx context.Context, snap *index.Snapshot, query string, deadline time.Time, hasDeadline bool, run *gathered, monitor SearchMonitor) ([]index.Candidate, map[core.ID]float64, []float32) {
	if strings.TrimSpace(query) == "" {
		return nil, nil, nil
	}
	if snap.EmbeddedCount() == 0 {
		run.degrade(ReasonIndexUnavailable)
		monitor.Degraded(ReasonIndexUnavailable, nil)
		return nil, nil, nil
	}

	embedCtx := ctx
	if hasDeadline {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	vec, err := e.embedQuery(embedCtx, query)
	if err != nil {
		e.logger.Warn("query embedding failed, continuing without vectors", "err", err)
		run.degrade(ReasonEmbedderUnavailable)
		monitor.Degraded(ReasonEmbedderUnavailable, err)
		return nil, nil, nil
	}
	monitor.AfterQueryEmbedding(vec)

	hits, err := snap.Search(vec, e.candidatePool)
	if err != nil {
		// A vector of the wrong shape is the embedder's fault
		e.logger.Warn("query vector rejected by index", "dimension", len(vec), "expected", snap.Dimension(), "err", err)
		run.degrade(ReasonEmbedderUnavailable)
		monitor.Degraded(ReasonEmbedderUnavailable, err)
		return nil, nil, nil
	}
	monitor.AfterVectorSearch(hits)

	similar := make(map[core.ID]float64, len(hits))
	for _, hit := range hits {
		similar[hit.SchemeId] = hit.Similarity
	}
	return hits, similar, vec
}

func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, span := startEmbedSpan(ctx, e.tracer)
	defer span.End()

	vec, err := e.embedder.EmbedText(ctx, query)
	if err == nil && len(vec) == 0 {
		err = errors.New("embedder returned an empty vector")
	}
	if err != nil {
		endWithError(span, err)
		return nil, err
	}
	return vec, nil
}

func (e *Engine) expired(ctx context.Context, deadline time.Time, hasDeadline bool) bool {
	if ctx.Err() != nil {
		return true
	}
	return hasDeadline && !e.now().Before(deadline)
}

// record persists results in the background. It never blocks the caller.
func (e *Engine) record(userID string, results []core.MatchResult) {
	if e.recordPool == nil || userID == "" || len(results) == 0 {
		return
	}

	batch := make([]core.MatchResult, len(results))
	copy(batch, results)

	e.recordWG.Add(1)
	err := e.recordPool.Submit(func() {
		defer e.recordWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := e.recorder.Persist(ctx, userID, batch); err != nil {
			e.logger.Warn("error recording matches", "user", userID, "count", len(batch), "err", err)
		}
	})
	if err != nil {
		e.recordWG.Done()
		e.logger.Warn("match recording skipped", "user", userID, "err", err)
	}
}

func validateRequest(query string, profile *core.UserProfile, opts Options) error {
	if err := core.ValidateQuery(query); err != nil {
		return err
	}
	if err := core.ValidateProfile(profile); err != nil {
		return err
	}
	return opts.Validate()
}

func effectiveDeadline(ctx context.Context, explicit time.Time) (time.Time, bool) {
	deadline, ok := ctx.Deadline()
	if !explicit.IsZero() && (!ok || explicit.Before(deadline)) {
		return explicit, true
	}
	return deadline, ok
}

func profileState(p *core.UserProfile) string {
	if p == nil {
		return ""
	}
	return p.State
}

func sortBySlug(list []Explanation) {
	slices.SortFunc(list, func(a, b Explanation) int {
		if c := cmp.Compare(a.Result.Slug, b.Result.Slug); c != 0 {
			return c
		}
		return cmp.Compare(a.Result.SchemeId, b.Result.SchemeId)
	})
}
