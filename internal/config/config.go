package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LLMBaseURL          string
	LLMModel            string
	LLMTimeout          time.Duration
	SourceLang          string
	TargetLang          string
	WorkerCount         int
	BatchSize           int
	MaxConcurrentLLM    int
	DatabaseURL         string
	Neo4jURI            string
	Neo4jUser           string
	Neo4jPassword       string
	EmbeddingModel      string
	EmbeddingDimensions int
	CacheSize           int
	CacheTTL            time.Duration
	LogLevel            zerolog.Level
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	return &Config{
		LLMBaseURL:          getEnv("LLM_BASE_URL", "http://localhost:11434"),
		LLMModel:            getEnv("LLM_MODEL", "qwen2.5:14b"),
		LLMTimeout:          time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		SourceLang:          getEnv("SOURCE_LANG", "Japanese"),
		TargetLang:          getEnv("TARGET_LANG", "English"),
		WorkerCount:         getEnvInt("WORKER_COUNT", 8),
		BatchSize:           getEnvInt("BATCH_SIZE", 32),
		MaxConcurrentLLM:    getEnvInt("MAX_CONCURRENT_API_CALLS", 4),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		Neo4jURI:            getEnv("NEO4J_URI", ""),
		Neo4jUser:           getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:       getEnv("NEO4J_PASSWORD", "password"),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 768),
		CacheSize:           getEnvInt("CACHE_SIZE", 50000),
		CacheTTL:            time.Duration(getEnvInt("CACHE_TTL_MINUTES", 24*60)) * time.Minute,
		LogLevel:            getEnvLevel("LOG_LEVEL", zerolog.InfoLevel),
	}
}

// Offline reports whether no external store is configured.
func (c *Config) Offline() bool {
	return c.DatabaseURL == "" && c.Neo4jURI == ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Int("default", fallback).Msg("Invalid integer setting, using default")
		return fallback
	}
	return n
}

func getEnvLevel(key string, fallback zerolog.Level) zerolog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	level, err := zerolog.ParseLevel(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Unknown log level, using default")
		return fallback
	}
	return level
}
