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


package yojana

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/yojana/ai"
	"github.com/poiesic/yojana/ai/openai"
	"github.com/poiesic/yojana/index"
	"github.com/poiesic/yojana/ingestion"
	"github.com/poiesic/yojana/match"
	"github.com/poiesic/yojana/storage"
	"github.com/poiesic/yojana/storage/badger"
)

// Database ties the scheme store, the embedding provider and the
// matching engine together.
type Database struct {
	backend    *badger.Backend
	schemeRepo storage.SchemeRepository
	matchRepo  storage.MatchRepository
	provider   ai.Provider
	engine     *match.Engine
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	provider   ai.Provider
	inMemory   bool
	logger     *slog.Logger
	engineOpts []match.Option
}

// WithAIConfig sets the embedding endpoint used when no provider is given.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider supplies a ready-made provider. The Database closes it.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// InMemory keeps everything in memory. The path is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// WithEngineOptions passes options through to match.NewEngine.
func WithEngineOptions(opts ...match.Option) DatabaseOption {
	return func(o *databaseOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// NewDatabase opens the store at filePath and publishes an index from
// whatever it holds. A store whose embeddings cannot form an index still
// opens; searches then see an empty index until the next refresh.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory, badger.WithBackendLogger(options.logger))
	if err != nil {
		return nil, err
	}

	schemeRepo, err := badger.NewSchemeRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	matchRepo, err := badger.NewMatchRepository(backend)
	if err != nil {
		schemeRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			matchRepo.Close()
			schemeRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	engineOpts := append([]match.Option{
		match.WithLogger(options.logger),
		match.WithRecorder(matchRepo),
	}, options.engineOpts...)
	engine, err := match.NewEngine(provider.Embedder(), engineOpts...)
	if err != nil {
		provider.Close()
		matchRepo.Close()
		schemeRepo.Close()
		backend.Close()
		return nil, err
	}

	db := &Database{
		backend:    backend,
		schemeRepo: schemeRepo,
		matchRepo:  matchRepo,
		provider:   provider,
		engine:     engine,
		logger:     options.logger,
	}

	if err := db.Reload(context.Background()); err != nil {
		if !errors.Is(err, index.ErrDimensionMismatch) && !errors.Is(err, index.ErrInvalidSnapshot) {
			db.Close()
			return nil, err
		}
		db.logger.Warn("stored schemes could not be indexed, run reembed with --force", "err", err)
	}
	return db, nil
}

// Reload republishes the index from the stored schemes.
func (db *Database) Reload(ctx context.Context) error {
	schemes, embeddings, err := db.schemeRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schemes: %w", err)
	}
	return db.engine.RebuildIndex(ctx, schemes, embeddings)
}

// Close drains pending match records and releases every resource.
func (db *Database) Close() error {
	if err := db.engine.Close(); err != nil {
		db.logger.Error("error closing matching engine", "err", err)
	}
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.matchRepo.Close(); err != nil {
		db.logger.Error("error closing match repository", "err", err)
		return err
	}
	if err := db.schemeRepo.Close(); err != nil {
		db.logger.Error("error closing scheme repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) Engine() *match.Engine {
	return db.engine
}

func (db *Database) SchemeRepository() storage.SchemeRepository {
	return db.schemeRepo
}

func (db *Database) MatchRepository() storage.MatchRepository {
	return db.matchRepo
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

// NewIngestionPipeline returns a pipeline that publishes into this
// database's engine.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewPipeline(db.schemeRepo, db.provider, db.engine, opts...)
}
