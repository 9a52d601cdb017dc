package cli

import (
	"context"
	"fmt"

	"rpgm-translator/internal/cache"
	"rpgm-translator/internal/config"
	"rpgm-translator/internal/glossary"
	"rpgm-translator/internal/memory"
	"rpgm-translator/internal/pipeline"
	"rpgm-translator/internal/store"
	"rpgm-translator/internal/translation"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

const (
	memoryTopK     = 3
	memoryMinScore = 0.75
)

// dependencies holds the optional stores behind the translation pipeline.
// Each one is nil when its connection setting is empty.
type dependencies struct {
	pgPool      *pgxpool.Pool
	neo4jDriver neo4j.DriverWithContext

	cache    *cache.TranslationCache
	glossary glossary.Glossary
	memory   *memory.Memory
}

// initDependencies connects to the configured stores for one language pair.
// PostgreSQL backs the cache and translation memory; Neo4j backs the
// glossary. Without them the cache and glossary live in process.
func initDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}

	var cacheStore cache.Store
	if cfg.DatabaseURL != "" {
		if err := store.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		deps.pgPool = pool
		cacheStore = cache.NewPGStore(pool)

		embedder := memory.NewEmbeddingClient("", cfg.EmbeddingModel, cfg.LLMBaseURL+"/v1", cfg.EmbeddingDimensions)
		deps.memory = memory.New(embedder, memory.NewVectorStore(pool), cfg.SourceLang, cfg.TargetLang, memoryTopK, memoryMinScore)
		deps.memory.SetBatchSize(cfg.BatchSize)
	}

	deps.cache = cache.NewTranslationCache(cacheStore, cfg.CacheSize, cfg.CacheTTL, cfg.SourceLang, cfg.TargetLang)
	if cacheStore != nil {
		if err := deps.cache.Preload(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to preload translation cache")
		}
	}

	if cfg.Neo4jURI != "" {
		driver, err := connectNeo4j(ctx, cfg)
		if err != nil {
			deps.close(ctx)
			return nil, err
		}
		deps.neo4jDriver = driver

		g := glossary.NewGraph(driver, cfg.SourceLang, cfg.TargetLang)
		if err := g.EnsureSchema(ctx); err != nil {
			deps.close(ctx)
			return nil, fmt.Errorf("ensure glossary schema: %w", err)
		}
		deps.glossary = g
	} else {
		deps.glossary = glossary.NewStatic()
	}

	log.Info().
		Bool("postgres", deps.pgPool != nil).
		Bool("neo4j", deps.neo4jDriver != nil).
		Int("cached", deps.cache.Len()).
		Msg("Dependencies ready")

	return deps, nil
}

func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}

func (d *dependencies) close(ctx context.Context) {
	if d.pgPool != nil {
		d.pgPool.Close()
	}
	if d.neo4jDriver != nil {
		if err := d.neo4jDriver.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to close Neo4j driver")
		}
	}
}

// translator builds the pipeline for cfg's language pair.
func (d *dependencies) translator(cfg *config.Config) *pipeline.Translator {
	provider := translation.NewOllamaClient(cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout)

	opts := []pipeline.Option{
		pipeline.WithCache(d.cache),
		pipeline.WithGlossary(d.glossary),
	}
	if d.memory != nil {
		opts = append(opts, pipeline.WithMemory(d.memory))
	}
	return pipeline.New(provider, cfg.SourceLang, cfg.TargetLang, cfg.MaxConcurrentLLM, opts...)
}
