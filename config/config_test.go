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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Matching.Limit)
	assert.Equal(t, "schemes", cfg.Source.Table)
	assert.Equal(t, filepath.Join("yojana-data", "badger"), cfg.DatabasePath())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := load("", envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "yojana.yaml", `
data_dir: /var/lib/yojana
embedding:
  host: http://embed:8080
  model: nomic-embed-text
  timeout: 5s
matching:
  limit: 5
  min_score: 0.2
  weights:
    vector: 0.6
    keyword: 0.1
    eligibility: 0.3
ingestion:
  prune: true
`)
	cfg, err := load(path, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/yojana", cfg.DataDir)
	assert.Equal(t, "http://embed:8080", cfg.Embedding.Host)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, 5*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, 5, cfg.Matching.Limit)
	assert.InDelta(t, 0.2, cfg.Matching.MinScore, 1e-9)
	assert.InDelta(t, 0.6, cfg.Matching.Weights.Vector, 1e-9)
	assert.True(t, cfg.Ingestion.Prune)
	// untouched fields keep their defaults
	assert.Equal(t, 32, cfg.Ingestion.BatchSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEmptyYAML(t *testing.T) {
	path := writeFile(t, "empty.yaml", "")
	cfg, err := load(path, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "bad.yaml", "matching:\n  limt: 4\n")
	_, err := load(path, envMap(nil))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yaml"), envMap(nil))
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "yojana.yaml", "data_dir: from-file\nmatching:\n  limit: 5\n")
	cfg, err := load(path, envMap(map[string]string{
		EnvDataDir:          "from-env",
		EnvDatabaseURL:      "postgres://localhost/schemes",
		EnvMatchLimit:       "7",
		EnvMinScore:         "0.1",
		EnvEmbeddingTimeout: "30s",
		EnvEmbeddingModel:   "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DataDir)
	assert.Equal(t, "postgres://localhost/schemes", cfg.Source.DatabaseURL)
	assert.Equal(t, 7, cfg.Matching.Limit)
	assert.InDelta(t, 0.1, cfg.Matching.MinScore, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, "embeddinggemma", cfg.Embedding.Model, "empty env values are ignored")
}

func TestEnvParseErrors(t *testing.T) {
	for _, key := range []string{EnvMatchLimit, EnvMinScore, EnvEmbeddingTimeout} {
		t.Run(key, func(t *testing.T) {
			_, err := load("", envMap(map[string]string{key: "lots"}))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = " " }},
		{"empty model", func(c *Config) { c.Embedding.Model = "" }},
		{"negative limit", func(c *Config) { c.Matching.Limit = -1 }},
		{"min score above one", func(c *Config) { c.Matching.MinScore = 1.5 }},
		{"zero candidate pool", func(c *Config) { c.Matching.CandidatePool = 0 }},
		{"negative deadline", func(c *Config) { c.Matching.Deadline = -time.Second }},
		{"negative weight", func(c *Config) { c.Matching.Weights.Keyword = -1 }},
		{"zero soft weights", func(c *Config) {
			c.Matching.SoftWeights.Constraints = 0
			c.Matching.SoftWeights.Caste = 0
			c.Matching.SoftWeights.Flags = 0
		}},
		{"zero batch size", func(c *Config) { c.Ingestion.BatchSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestAIConfigNormalizesHost(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Host = "http://localhost:8080/"
	cfg.Embedding.Token = ""
	aiCfg, err := cfg.AIConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/v1", aiCfg.EmbeddingHost)
	assert.Equal(t, "none", aiCfg.APIToken)
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := writeFile(t, ".env", "YOJANA_TEST_ONLY_VAR=hello\n")
	t.Cleanup(func() { os.Unsetenv("YOJANA_TEST_ONLY_VAR") })
	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("YOJANA_TEST_ONLY_VAR"))
}
