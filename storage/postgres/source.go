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


package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/poiesic/yojana/core"
	"github.com/poiesic/yojana/storage"
)

// DefaultTable is the table the scraper writes to when none is configured.
const DefaultTable = "schemes"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SchemeSource implements storage.SchemeStore over the scraper table.
type SchemeSource struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
	owned  bool
}

var _ storage.SchemeStore = (*SchemeSource)(nil)

// Option configures a SchemeSource.
type Option func(*SchemeSource) error

// WithTable sets the table to read. The name must be a plain identifier,
// optionally schema-qualified.
func WithTable(table string) Option {
	return func(s *SchemeSource) error {
		if !identifierPattern.MatchString(table) {
			return fmt.Errorf("%w: %q", ErrInvalidTable, table)
		}
		s.table = table
		return nil
	}
}

// WithLogger sets the logger for row mapping warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SchemeSource) error {
		s.logger = logger
		return nil
	}
}

// Open connects to databaseURL and returns a source that owns the connection.
func Open(ctx context.Context, databaseURL string, opts ...Option) (*SchemeSource, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	source, err := New(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	source.owned = true
	return source, nil
}

// New wraps an existing connection. The caller keeps ownership of db.
func New(db *sql.DB, opts ...Option) (*SchemeSource, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	s := &SchemeSource{db: db, table: DefaultTable}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "postgres-source", "table", s.table)
	return s, nil
}

// Close closes the connection if the source opened it.
func (s *SchemeSource) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

func (s *SchemeSource) selectQuery() string {
	return `SELECT slug, url, name, tags, state, category, description, age,
	               benefits, exclusions, process, eligibility, documents_required
	        FROM ` + s.table + ` ORDER BY slug`
}

// LoadAll reads every row and maps it to a scheme. Rows with no slug are
// skipped. The returned embeddings are always nil.
func (s *SchemeSource) LoadAll(ctx context.Context) ([]*core.Scheme, []*core.Embedding, error) {
	rows, err := s.db.QueryContext(ctx, s.selectQuery())
	if err != nil {
		return nil, nil, fmt.Errorf("query schemes: %w", err)
	}
	defer rows.Close()

	var schemes []*core.Scheme
	for rows.Next() {
		var r row
		err := rows.Scan(
			&r.Slug, &r.URL, &r.Name,
			pq.Array(&r.Tags), pq.Array(&r.States), pq.Array(&r.Categories),
			&r.Description, &r.Age,
			&r.Benefits, &r.Exclusions, &r.Process, &r.Eligibility, &r.Documents,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("scan scheme: %w", err)
		}
		scheme, warnings := r.toScheme()
		for _, w := range warnings {
			s.logger.Warn(w, "slug", r.Slug.String)
		}
		if scheme != nil {
			schemes = append(schemes, scheme)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate schemes: %w", err)
	}

	s.logger.Info("loaded schemes", "count", len(schemes))
	return schemes, nil, nil
}

// row holds one scanned scraper row. Every text column is nullable.
type row struct {
	Slug        sql.NullString
	URL         sql.NullString
	Name        sql.NullString
	Tags        []string
	States      []string
	Categories  []string
	Description sql.NullString
	Age         []byte
	Benefits    sql.NullString
	Exclusions  sql.NullString
	Process     sql.NullString
	Eligibility sql.NullString
	Documents   sql.NullString
}

// toScheme maps a row to a scheme, returning warnings for data it had to
// interpret loosely. A nil scheme means the row is unusable.
func (r *row) toScheme() (*core.Scheme, []string) {
	var warnings []string
	slug := strings.TrimSpace(r.Slug.String)
	if slug == "" {
		return nil, []string{"skipping row without slug"}
	}

	scheme := &core.Scheme{
		Slug:        slug,
		Name:        strings.TrimSpace(r.Name.String),
		Category:    strings.Join(nonEmpty(r.Categories), ", "),
		Description: r.Description.String,
		Benefits:    r.Benefits.String,
		Eligibility: joinSections(r.Eligibility.String, r.Exclusions.String),
		Process:     r.Process.String,
		Documents:   r.Documents.String,
		URL:         r.URL.String,
		Tags:        nonEmpty(r.Tags),
	}

	scheme.State = pickState(nonEmpty(r.States), &warnings)

	minAge, maxAge, err := parseAgeRange(r.Age)
	if err != nil {
		warnings = append(warnings, "ignoring unparseable age: "+err.Error())
	} else {
		scheme.MinAge, scheme.MaxAge = minAge, maxAge
	}

	scheme.Castes = castesFromTags(scheme.Tags)
	scheme.Gender = genderFromTags(scheme.Tags)

	core.NormalizeScheme(scheme)
	return scheme, warnings
}

// pickState collapses the scraper's state list to one state. Any national
// spelling wins; otherwise the first state is kept, which under-matches
// rather than admitting users from states the scheme does not serve.
func pickState(states []string, warnings *[]string) string {
	if len(states) == 0 {
		return ""
	}
	for _, state := range states {
		if core.NormalizeState(state) == "" {
			return ""
		}
	}
	if len(states) > 1 {
		*warnings = append(*warnings, fmt.Sprintf("scheme lists %d states, keeping %q", len(states), states[0]))
	}
	return states[0]
}

func joinSections(eligibility, exclusions string) string {
	eligibility = strings.TrimSpace(eligibility)
	exclusions = strings.TrimSpace(exclusions)
	if exclusions == "" {
		return eligibility
	}
	if eligibility == "" {
		return "Exclusions:\n" + exclusions
	}
	return eligibility + "\n\nExclusions:\n" + exclusions
}

func nonEmpty(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
