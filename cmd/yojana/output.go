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


package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/ingestion"
	"github.com/poiesic/yojana/match"
)

type resultJSON struct {
	Rank        int     `json:"rank"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	MatchedBy   string  `json:"matched_by"`
	Similarity  float64 `json:"similarity"`
	Keyword     float64 `json:"keyword"`
	Eligibility float64 `json:"eligibility"`
}

type responseJSON struct {
	Results         []resultJSON `json:"results"`
	Degraded        bool         `json:"degraded"`
	Reasons         []string     `json:"reasons,omitempty"`
	SnapshotVersion uint64       `json:"snapshot_version"`
}

func toResultJSON(r core.MatchResult) resultJSON {
	return resultJSON{
		Rank:        r.Rank,
		Slug:        r.Slug,
		Name:        r.Name,
		Score:       r.Score,
		MatchedBy:   r.MatchedBy.String(),
		Similarity:  r.Components.Similarity,
		Keyword:     r.Components.Keyword,
		Eligibility: r.Components.Eligibility,
	}
}

func reasonStrings(reasons []match.DegradeReason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResponse(c *cli.Context, w io.Writer, resp *match.Response) error {
	if c.Bool("json") {
		out := responseJSON{
			Results:         make([]resultJSON, 0, len(resp.Results)),
			Degraded:        resp.Degraded,
			Reasons:         reasonStrings(resp.Reasons),
			SnapshotVersion: resp.SnapshotVersion,
		}
		for _, r := range resp.Results {
			out.Results = append(out.Results, toResultJSON(r))
		}
		return writeJSON(w, out)
	}

	if resp.Degraded {
		fmt.Fprintf(w, "Degraded: %s\n", strings.Join(reasonStrings(resp.Reasons), ", "))
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No matching schemes found")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tBY\tSLUG\tNAME")
	for _, r := range resp.Results {
		fmt.Fprintf(tw, "%d\t%.3f\t%s\t%s\t%s\n", r.Rank+1, r.Score, r.MatchedBy, r.Slug, r.Name)
	}
	return tw.Flush()
}

func printExplain(c *cli.Context, w io.Writer, resp *match.ExplainResponse) error {
	if c.Bool("json") {
		type explanationJSON struct {
			resultJSON
			Admitted bool     `json:"admitted"`
			Vector   bool     `json:"vector"`
			Reasons  []string `json:"reasons,omitempty"`
		}
		out := struct {
			Candidates []explanationJSON `json:"candidates"`
			Degraded   bool              `json:"degraded"`
			Reasons    []string          `json:"reasons,omitempty"`
		}{Degraded: resp.Degraded, Reasons: reasonStrings(resp.Reasons)}
		for _, e := range resp.Candidates {
			out.Candidates = append(out.Candidates, explanationJSON{
				resultJSON: toResultJSON(e.Result),
				Admitted:   e.Admitted,
				Vector:     e.Vector,
				Reasons:    e.Reasons,
			})
		}
		return writeJSON(w, out)
	}

	if resp.Degraded {
		fmt.Fprintf(w, "Degraded: %s\n", strings.Join(reasonStrings(resp.Reasons), ", "))
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tSCORE\tVECTOR\tKEYWORD\tELIGIBILITY\tSTATUS")
	for _, e := range resp.Candidates {
		status := "admitted"
		if !e.Admitted {
			status = "rejected: " + strings.Join(e.Reasons, "; ")
		}
		sim := "-"
		if e.Result.Components.HasSimilarity {
			sim = fmt.Sprintf("%.3f", e.Result.Components.Similarity)
		}
		fmt.Fprintf(tw, "%s\t%.3f\t%s\t%.3f\t%.3f\t%s\n",
			e.Result.Slug, e.Result.Score, sim,
			e.Result.Components.Keyword, e.Result.Components.Eligibility, status)
	}
	return tw.Flush()
}

func printScheme(c *cli.Context, w io.Writer, s *core.Scheme) error {
	if c.Bool("json") {
		return writeJSON(w, s)
	}
	field := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(w, "%s: %s\n", label, value)
		}
	}
	field("Name", s.Name)
	field("Slug", s.Slug)
	state := s.State
	if state == "" {
		state = "National"
	}
	field("State", state)
	field("Category", s.Category)
	field("Description", s.Description)
	field("Benefits", s.Benefits)
	field("Eligibility", s.Eligibility)
	field("Application", s.Process)
	field("Documents", s.Documents)
	field("Website", s.URL)
	if s.MinAge != nil || s.MaxAge != nil {
		field("Age", ageRange(s.MinAge, s.MaxAge))
	}
	if s.Gender != core.GenderAny {
		field("Gender", s.Gender.String())
	}
	if s.IncomeLimit != nil {
		field("Income limit", fmt.Sprintf("₹%d", *s.IncomeLimit))
	}
	if len(s.Castes) > 0 {
		field("Castes", strings.Join(s.Castes, ", "))
	}
	return nil
}

func ageRange(lo, hi *int) string {
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("%d-%d", *lo, *hi)
	case lo != nil:
		return fmt.Sprintf("%d+", *lo)
	default:
		return fmt.Sprintf("up to %d", *hi)
	}
}

func printHistory(c *cli.Context, w io.Writer, records []*core.MatchRecord) error {
	if c.Bool("json") {
		type recordJSON struct {
			Slug       string    `json:"slug"`
			Rank       int       `json:"rank"`
			Score      float64   `json:"score"`
			MatchedBy  string    `json:"matched_by"`
			RecordedAt time.Time `json:"recorded_at"`
		}
		out := make([]recordJSON, 0, len(records))
		for _, r := range records {
			out = append(out, recordJSON{r.Slug, r.Rank, r.Score, r.MatchedBy.String(), r.RecordedAt})
		}
		return writeJSON(w, out)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No match history")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\t#\tSCORE\tBY\tSLUG")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%s\t%s\n",
			r.RecordedAt.Local().Format(time.DateTime), r.Rank+1, r.Score, r.MatchedBy, r.Slug)
	}
	return tw.Flush()
}

func printIngestReport(w io.Writer, r *ingestion.Report) {
	fmt.Fprintln(w)
	if r.Loaded > 0 || r.Stored > 0 {
		fmt.Fprintf(w, "Loaded %d, stored %d, skipped %d, pruned %d\n", r.Loaded, r.Stored, r.Skipped, r.Pruned)
	}
	if e := r.Embedding; e != nil {
		fmt.Fprintf(w, "Embedded %d of %d stale schemes (%d total, %d failed) in %s\n",
			e.Embedded, e.Stale, e.Total, e.Failed, e.Elapsed.Round(time.Millisecond))
	}
}
