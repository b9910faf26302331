// Package config loads the settings cmd/orchestrator needs to construct
// its collaborators. Nothing under graph, internal/executor, or
// internal/nodes depends on this package directly — they take already
// resolved values through constructors, the way the teacher's graph/
// packages never import pkg/config either.
package config

import (
	"fmt"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// ModelConfig selects and authenticates the LLM backend.
type ModelConfig struct {
	Provider       string `env:"LLM_PROVIDER"`
	AnthropicKey   string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel string `env:"ANTHROPIC_MODEL"`
	OpenAIKey      string `env:"OPENAI_API_KEY"`
	OpenAIModel    string `env:"OPENAI_MODEL"`
	GoogleKey      string `env:"GOOGLE_API_KEY"`
	GoogleModel    string `env:"GOOGLE_MODEL"`
}

// CacheConfig controls the two-tier result cache.
type CacheConfig struct {
	RedisAddr     string `env:"CACHE_REDIS_ADDR"`
	RedisPassword string `env:"CACHE_REDIS_PASSWORD"`
	RedisDB       int    `env:"CACHE_REDIS_DB"`
	LocalLRUSize  int    `env:"CACHE_LOCAL_LRU_SIZE"`
}

// ExecutorConfig controls engine thresholds and the HTTP-backed engines'
// endpoints.
type ExecutorConfig struct {
	AggregationFloor int64  `env:"EXECUTOR_AGGREGATION_FLOOR"`
	BigDataFloor     int64  `env:"EXECUTOR_BIG_DATA_FLOOR"`
	SampleThreshold  int    `env:"EXECUTOR_SAMPLE_THRESHOLD"`
	SampleHead       int    `env:"EXECUTOR_SAMPLE_HEAD"`
	SampleTail       int    `env:"EXECUTOR_SAMPLE_TAIL"`
	AggregationURL   string `env:"EXECUTOR_AGGREGATION_URL"`
	AggregationKey   string `env:"EXECUTOR_AGGREGATION_API_KEY"`
	BigDataURL       string `env:"EXECUTOR_BIG_DATA_URL"`
}

// MemoryConfig controls conversation-memory persistence.
type MemoryConfig struct {
	SQLitePath     string `env:"MEMORY_SQLITE_PATH"`
	HistoryTurns   int    `env:"MEMORY_HISTORY_TURNS"`
	DedupWindowSec int    `env:"MEMORY_DEDUP_WINDOW_SECONDS"`
}

// ObservabilityConfig controls the engine's emit.Emitter and log verbosity.
type ObservabilityConfig struct {
	LogLevel     string `env:"LOG_LEVEL"`
	LogFormat    string `env:"LOG_FORMAT"`
	EmitMode     string `env:"EMIT_MODE"` // "null", "log", "buffered", "otel"
	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Config is the top-level configuration cmd/orchestrator decodes.
type Config struct {
	Model         ModelConfig
	Cache         CacheConfig
	Executor      ExecutorConfig
	Memory        MemoryConfig
	Observability ObservabilityConfig
}

// defaults mirrors the numeric floors and sizes spec.md §4.5/§4.9 state,
// so an operator only needs to set env vars for the values they want to
// override.
func defaults() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:       "anthropic",
			AnthropicModel: "claude-sonnet-4-5",
			OpenAIModel:    "gpt-4o",
			GoogleModel:    "gemini-1.5-pro",
		},
		Cache: CacheConfig{
			RedisAddr:    "localhost:6379",
			LocalLRUSize: 256,
		},
		Executor: ExecutorConfig{
			AggregationFloor: 1_000_000,
			BigDataFloor:     100_000_000,
			SampleThreshold:  1000,
			SampleHead:       500,
			SampleTail:       500,
		},
		Memory: MemoryConfig{
			SQLitePath:     "./orchestrator-memory.db",
			HistoryTurns:   10,
			DedupWindowSec: 30,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "text",
			EmitMode:  "null",
		},
	}
}

// Load reads a .env file if present, then decodes environment variables
// over a set of spec-aligned defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if err := envdecode.Decode(cfg); err != nil {
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("config: decode env: %w", err)
		}
	}
	return cfg, nil
}
