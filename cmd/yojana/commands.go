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
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/yojana"
	"github.com/poiesic/yojana/config"
	"github.com/poiesic/yojana/ingestion"
	"github.com/poiesic/yojana/match"
	"github.com/poiesic/yojana/storage/postgres"
)

func dataDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Aliases: []string{"d"},
		Usage:   "Directory holding the scheme database (overrides config)",
	}
}

func matchFlags() []cli.Flag {
	return append([]cli.Flag{
		dataDirFlag(),
		&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of schemes to return"},
		&cli.Float64Flag{Name: "min-score", Usage: "Drop schemes scoring below this"},
		&cli.StringFlag{Name: "category", Usage: "Only consider schemes in this category"},
		&cli.StringFlag{Name: "user", Usage: "Record matches under this user id"},
		&cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
	}, profileFlags()...)
}

func ingestionFlags() []cli.Flag {
	return []cli.Flag{
		dataDirFlag(),
		&cli.IntFlag{Name: "batch-size", Usage: "Number of schemes per embedding call"},
		&cli.IntFlag{Name: "workers", Usage: "Number of embedding batches run concurrently"},
		&cli.IntFlag{Name: "max-retries", Usage: "Maximum attempts per embedding batch"},
		&cli.DurationFlag{Name: "retry-delay", Usage: "Base delay for exponential backoff"},
		&cli.BoolFlag{Name: "force", Usage: "Re-embed every scheme, not only stale ones"},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find schemes matching a free-text need and a profile",
		ArgsUsage: "<query>",
		Flags:     matchFlags(),
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, db *yojana.Database, cfg *config.Config) error {
				profile, err := profileFromFlags(c)
				if err != nil {
					return err
				}
				resp, err := db.Engine().SearchSchemes(ctx, strings.Join(c.Args().Slice(), " "), profile, matchOptions(c, cfg))
				if err != nil {
					return err
				}
				return printResponse(c, os.Stdout, resp)
			})
		},
	}
}

func explainCommand() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Show every candidate a search considered and why",
		ArgsUsage: "<query>",
		Flags:     matchFlags(),
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, db *yojana.Database, cfg *config.Config) error {
				profile, err := profileFromFlags(c)
				if err != nil {
					return err
				}
				resp, err := db.Engine().Explain(ctx, strings.Join(c.Args().Slice(), " "), profile, matchOptions(c, cfg))
				if err != nil {
					return err
				}
				return printExplain(c, os.Stdout, resp)
			})
		},
	}
}

func topicCommand() *cli.Command {
	return &cli.Command{
		Name:      "topic",
		Usage:     "Search by a predefined topic, or list topics when none is given",
		ArgsUsage: "[topic]",
		Flags:     matchFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				for _, t := range match.Topics() {
					fmt.Fprintln(os.Stdout, t)
				}
				return nil
			}
			return withDatabase(c, func(ctx context.Context, db *yojana.Database, cfg *config.Config) error {
				profile, err := profileFromFlags(c)
				if err != nil {
					return err
				}
				resp, err := db.Engine().SearchByTopic(ctx, c.Args().First(), profile, matchOptions(c, cfg))
				if err != nil {
					return err
				}
				return printResponse(c, os.Stdout, resp)
			})
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List the scheme categories accepted by --category",
		Flags: []cli.Flag{dataDirFlag()},
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, db *yojana.Database, cfg *config.Config) error {
				for _, category := range db.Engine().Categories() {
					fmt.Fprintln(os.Stdout, category)
				}
				return nil
			})
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a scheme by slug or name",
		ArgsUsage: "<slug or name>",
		Flags:     []cli.Flag{dataDirFlag(), &cli.BoolFlag{Name: "json", Usage: "Print the scheme as JSON"}},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("a scheme slug or name is required")
			}
			return withDatabase(c, func(ctx context.Context, db *yojana.Database, cfg *config.Config) error {
				scheme, err := db.Engine().Lookup(strings.Join(c.Args().Slice(), " "))
				if err != nil {
					return err
				}
				return printScheme(c, os.Stdout, scheme)
			})
		},
	}
}

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Sync schemes from the scraper's Postgres database and embed them",
		Flags: append(ingestionFlags(),
			&cli.StringFlag{Name: "database-url", Usage: "Postgres connection URL (overrides config and DATABASE_URL)"},
			&cli.StringFlag{Name: "table", Usage: "Source table name"},
			&cli.BoolFlag{Name: "prune", Usage: "Delete local schemes the source no longer lists"},
		),
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, db *yojana.Database, cfg *config.Config) error {
				url := cfg.Source.DatabaseURL
				if c.IsSet("database-url") {
					url = c.String("database-url")
				}
				if url == "" {
					return errors.New("a source database URL is required, set --database-url or DATABASE_URL")
				}
				table := cfg.Source.Table
				if c.IsSet("table") {
					table = c.String("table")
				}

				source, err := postgres.Open(ctx, url, postgres.WithTable(table))
				if err != nil {
					return fmt.Errorf("failed to open source database: %w", err)
				}
				defer source.Close()

				prune := cfg.Ingestion.Prune || c.Bool("prune")
				pipeline, err := newPipeline(c, db, cfg, ingestion.WithPrune(prune))
				if err != nil {
					return err
				}
				report, err := pipeline.Sync(ctx, source)
				if err != nil {
					return err
				}
				printIngestReport(os.Stderr, report)
				return nil
			})
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load a handful of well-known national schemes",
		Flags: ingestionFlags(),
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, db *yojana.Database, cfg *config.Config) error {
				pipeline, err := newPipeline(c, db, cfg)
				if err != nil {
					return err
				}
				report, err := pipeline.Sync(ctx, staticSource(sampleSchemes()))
				if err != nil {
					return err
				}
				printIngestReport(os.Stderr, report)
				return nil
			})
		},
	}
}

func reembedCommand() *cli.Command {
	return &cli.Command{
		Name:  "reembed",
		Usage: "Embed schemes whose vectors are missing or stale and rebuild the index",
		Flags: ingestionFlags(),
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, db *yojana.Database, cfg *config.Config) error {
				pipeline, err := newPipeline(c, db, cfg)
				if err != nil {
					return err
				}

				fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.Embedding.Host)
				fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.Embedding.Model)
				fmt.Fprintln(os.Stderr)

				report, err := pipeline.Refresh(ctx)
				if err != nil {
					return fmt.Errorf("reembedding failed: %w", err)
				}
				printIngestReport(os.Stderr, report)
				return nil
			})
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List schemes previously matched for a user",
		Flags: []cli.Flag{
			dataDirFlag(),
			&cli.StringFlag{Name: "user", Usage: "User id", Required: true},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of records, 0 for all", Value: 20},
			&cli.BoolFlag{Name: "json", Usage: "Print records as JSON"},
		},
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, db *yojana.Database, cfg *config.Config) error {
				records, err := db.MatchRepository().GetMatches(ctx, c.String("user"), c.Int("limit"))
				if err != nil {
					return err
				}
				return printHistory(c, os.Stdout, records)
			})
		},
	}
}

// withDatabase opens the configured database for the duration of fn.
func withDatabase(c *cli.Context, fn func(context.Context, *yojana.Database, *config.Config) error) error {
	cfg := appConfig(c)
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	aiConfig, err := cfg.AIConfig()
	if err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := yojana.NewDatabase(cfg.DatabasePath(),
		yojana.WithAIConfig(aiConfig),
		yojana.WithEngineOptions(
			match.WithWeights(cfg.Matching.Weights),
			match.WithSoftWeights(cfg.Matching.SoftWeights),
			match.WithCandidatePool(cfg.Matching.CandidatePool),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return fn(c.Context, db, cfg)
}

func matchOptions(c *cli.Context, cfg *config.Config) match.Options {
	opts := match.Options{
		Limit:    cfg.Matching.Limit,
		MinScore: cfg.Matching.MinScore,
		Category: c.String("category"),
		UserID:   c.String("user"),
	}
	if c.IsSet("limit") {
		opts.Limit = c.Int("limit")
	}
	if c.IsSet("min-score") {
		opts.MinScore = c.Float64("min-score")
	}
	if cfg.Matching.Deadline > 0 {
		opts.Deadline = time.Now().Add(cfg.Matching.Deadline)
	}
	return opts
}

func newPipeline(c *cli.Context, db *yojana.Database, cfg *config.Config, extra ...ingestion.Option) (*ingestion.Pipeline, error) {
	in := cfg.Ingestion
	if c.IsSet("batch-size") {
		in.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("workers") {
		in.Workers = c.Int("workers")
	}
	if c.IsSet("max-retries") {
		in.MaxRetries = c.Int("max-retries")
	}
	if c.IsSet("retry-delay") {
		in.RetryDelay = c.Duration("retry-delay")
	}
	opts := append([]ingestion.Option{
		ingestion.WithBatchSize(in.BatchSize),
		ingestion.WithPoolSize(in.Workers),
		ingestion.WithRetry(in.MaxRetries, in.RetryDelay),
		ingestion.WithForce(c.Bool("force")),
		ingestion.WithProgress(os.Stderr),
	}, extra...)
	return db.NewIngestionPipeline(opts...)
}
