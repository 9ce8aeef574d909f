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


package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/yojana/ai"
	"github.com/poiesic/yojana/eligibility"
	"github.com/poiesic/yojana/ranking"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables that override file settings.
const (
	EnvDataDir          = "YOJANA_DATA_DIR"
	EnvLogLevel         = "YOJANA_LOG_LEVEL"
	EnvEmbeddingHost    = "YOJANA_EMBEDDING_HOST"
	EnvEmbeddingModel   = "YOJANA_EMBEDDING_MODEL"
	EnvEmbeddingToken   = "YOJANA_EMBEDDING_TOKEN"
	EnvEmbeddingTimeout = "YOJANA_EMBEDDING_TIMEOUT"
	EnvDatabaseURL      = "DATABASE_URL"
	EnvSourceTable      = "YOJANA_SOURCE_TABLE"
	EnvMatchLimit       = "YOJANA_MATCH_LIMIT"
	EnvMinScore         = "YOJANA_MIN_SCORE"
)

// Config is the in-memory representation of yojana.yaml.
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Source    SourceConfig    `yaml:"source"`
	Matching  MatchingConfig  `yaml:"matching"`
	Ingestion IngestionConfig `yaml:"ingestion"`
}

// EmbeddingConfig points at an OpenAI-compatible embedding endpoint.
type EmbeddingConfig struct {
	Host    string        `yaml:"host"`
	Model   string        `yaml:"model"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// SourceConfig locates the scraper's Postgres scheme table.
type SourceConfig struct {
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
}

// MatchingConfig tunes the matching engine.
type MatchingConfig struct {
	Limit         int                     `yaml:"limit"`
	MinScore      float64                 `yaml:"min_score"`
	CandidatePool int                     `yaml:"candidate_pool"`
	Deadline      time.Duration           `yaml:"deadline"`
	Weights       ranking.Weights         `yaml:"weights"`
	SoftWeights   eligibility.SoftWeights `yaml:"soft_weights"`
}

// IngestionConfig tunes embedding refreshes.
type IngestionConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	Workers    int           `yaml:"workers"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Prune      bool          `yaml:"prune"`
}

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		DataDir:  "yojana-data",
		LogLevel: "info",
		Embedding: EmbeddingConfig{
			Host:    aiDefaults.EmbeddingHost,
			Model:   aiDefaults.EmbeddingModel,
			Token:   aiDefaults.APIToken,
			Timeout: aiDefaults.Timeout,
		},
		Source: SourceConfig{
			Table: "schemes",
		},
		Matching: MatchingConfig{
			Limit:         ranking.DefaultLimit,
			CandidatePool: 20,
			Deadline:      2 * time.Second,
			Weights:       ranking.DefaultWeights(),
			SoftWeights:   eligibility.DefaultSoftWeights(),
		},
		Ingestion: IngestionConfig{
			BatchSize:  32,
			Workers:    2,
			MaxRetries: 3,
			RetryDelay: time.Second,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. An empty path skips the file; a missing file is an error.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile reads KEY=value pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvDataDir, &c.DataDir)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvEmbeddingHost, &c.Embedding.Host)
	str(EnvEmbeddingModel, &c.Embedding.Model)
	str(EnvEmbeddingToken, &c.Embedding.Token)
	str(EnvDatabaseURL, &c.Source.DatabaseURL)
	str(EnvSourceTable, &c.Source.Table)

	if v, ok := lookup(EnvEmbeddingTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvEmbeddingTimeout, err)
		}
		c.Embedding.Timeout = d
	}
	if v, ok := lookup(EnvMatchLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvMatchLimit, err)
		}
		c.Matching.Limit = n
	}
	if v, ok := lookup(EnvMinScore); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvMinScore, err)
		}
		c.Matching.MinScore = f
	}
	return nil
}

// Validate checks the configuration for values no component accepts.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data_dir is required", ErrInvalidConfig)
	}
	if _, err := c.AIConfig(); err != nil {
		return fmt.Errorf("%w: embedding: %w", ErrInvalidConfig, err)
	}
	m := c.Matching
	if m.Limit < 0 {
		return fmt.Errorf("%w: matching.limit %d is negative", ErrInvalidConfig, m.Limit)
	}
	if m.MinScore < 0 || m.MinScore > 1 {
		return fmt.Errorf("%w: matching.min_score %v outside [0,1]", ErrInvalidConfig, m.MinScore)
	}
	if m.CandidatePool < 1 {
		return fmt.Errorf("%w: matching.candidate_pool must be positive", ErrInvalidConfig)
	}
	if m.Deadline < 0 {
		return fmt.Errorf("%w: matching.deadline is negative", ErrInvalidConfig)
	}
	if err := m.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: matching.weights: %w", ErrInvalidConfig, err)
	}
	if err := m.SoftWeights.Validate(); err != nil {
		return fmt.Errorf("%w: matching.soft_weights: %w", ErrInvalidConfig, err)
	}
	in := c.Ingestion
	if in.BatchSize < 1 || in.Workers < 1 || in.MaxRetries < 1 {
		return fmt.Errorf("%w: ingestion batch_size, workers and max_retries must be positive", ErrInvalidConfig)
	}
	return nil
}

// AIConfig converts the embedding settings for ai providers.
func (c *Config) AIConfig() (*ai.Config, error) {
	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithAPIToken(c.Embedding.Token),
		ai.WithTimeout(c.Embedding.Timeout),
	)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DatabasePath is the badger directory under DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "badger")
}
