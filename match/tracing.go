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
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/poiesic/yojana/index"
)

// TracerName is the instrumentation name of the engine's spans. Spans are
// no-ops unless the application installs a tracer provider.
const TracerName = "github.com/poiesic/yojana/match"

func newTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

func startSearchSpan(ctx context.Context, tracer trace.Tracer, query string, opts Options) (context.Context, trace.Span) {
	return tracer.Start(ctx, "match.search",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("yojana.query.length", len(query)),
			attribute.Int("yojana.limit", opts.Limit),
			attribute.Float64("yojana.min_score", opts.MinScore),
			attribute.String("yojana.category", opts.Category),
			attribute.Bool("yojana.deadline", !opts.Deadline.IsZero()),
		),
	)
}

func startEmbedSpan(ctx context.Context, tracer trace.Tracer) (context.Context, trace.Span) {
	return tracer.Start(ctx, "match.embed_query", trace.WithSpanKind(trace.SpanKindClient))
}

func startRebuildSpan(ctx context.Context, tracer trace.Tracer, schemes, embeddings int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "match.rebuild_index",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("yojana.schemes", schemes),
			attribute.Int("yojana.embeddings", embeddings),
		),
	)
}

func recordResponse(span trace.Span, resp *Response) {
	reasons := make([]string, len(resp.Reasons))
	for i, r := range resp.Reasons {
		reasons[i] = string(r)
	}
	span.SetAttributes(
		attribute.Int("yojana.results", len(resp.Results)),
		attribute.Bool("yojana.degraded", resp.Degraded),
		attribute.StringSlice("yojana.degrade_reasons", reasons),
		attribute.Int64("yojana.snapshot.version", int64(resp.SnapshotVersion)),
	)
}

func recordSnapshot(span trace.Span, snap *index.Snapshot) {
	span.SetAttributes(
		attribute.Int64("yojana.snapshot.version", int64(snap.Version())),
		attribute.Int("yojana.snapshot.dimension", snap.Dimension()),
	)
}

func endWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
