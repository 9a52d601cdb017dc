package cache

import (
	"context"
	"fmt"
	"time"

	"rpgm-translator/internal/textutil"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

// Entry is one cached translation.
type Entry struct {
	Hash       string
	SourceLang string
	TargetLang string
	Source     string
	Translated string
}

// Store persists cache entries beyond the life of the process.
type Store interface {
	Get(ctx context.Context, hash string) (Entry, bool, error)
	Upsert(ctx context.Context, e Entry) error
	List(ctx context.Context, sourceLang, targetLang string) ([]Entry, error)
}

// TranslationCache provides in-memory + persistent caching for translations
// of one language pair.
type TranslationCache struct {
	store      Store
	memory     *expirable.LRU[string, string]
	sourceLang string
	targetLang string
}

// NewTranslationCache creates a cache holding at most size entries in memory
// for ttl. store may be nil for a process-local cache.
func NewTranslationCache(store Store, size int, ttl time.Duration, sourceLang, targetLang string) *TranslationCache {
	if size <= 0 {
		size = 10000
	}
	return &TranslationCache{
		store:      store,
		memory:     expirable.NewLRU[string, string](size, nil, ttl),
		sourceLang: sourceLang,
		targetLang: targetLang,
	}
}

// Key derives the cache key of a source text for a language pair.
func Key(sourceLang, targetLang, text string) string {
	return textutil.Hash(sourceLang + "\x00" + targetLang + "\x00" + text)
}

// Get retrieves a cached translation. Store failures count as a miss.
func (c *TranslationCache) Get(ctx context.Context, sourceText string) (string, bool) {
	hash := Key(c.sourceLang, c.targetLang, sourceText)

	if v, ok := c.memory.Get(hash); ok {
		return v, true
	}
	if c.store == nil {
		return "", false
	}

	e, ok, err := c.store.Get(ctx, hash)
	if err != nil {
		log.Warn().Err(err).Str("text", textutil.Truncate(sourceText, 40)).Msg("Cache lookup failed")
		return "", false
	}
	if !ok {
		return "", false
	}

	c.memory.Add(hash, e.Translated)
	return e.Translated, true
}

// Set stores a translation in memory and in the backing store.
func (c *TranslationCache) Set(ctx context.Context, sourceText, translated string) error {
	hash := Key(c.sourceLang, c.targetLang, sourceText)
	c.memory.Add(hash, translated)

	if c.store == nil {
		return nil
	}
	err := c.store.Upsert(ctx, Entry{
		Hash:       hash,
		SourceLang: c.sourceLang,
		TargetLang: c.targetLang,
		Source:     sourceText,
		Translated: translated,
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Preload loads the stored translations of this language pair into memory.
func (c *TranslationCache) Preload(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	entries, err := c.store.List(ctx, c.sourceLang, c.targetLang)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}
	for _, e := range entries {
		c.memory.Add(e.Hash, e.Translated)
	}

	log.Info().Int("count", len(entries)).Msg("Preloaded translation cache")
	return nil
}

// Len returns the number of entries held in memory.
func (c *TranslationCache) Len() int {
	return c.memory.Len()
}
