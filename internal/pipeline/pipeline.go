// Package pipeline turns extracted units into translated units: it dedupes
// texts, serves what it can from the cache, and sends the rest to the
// translation provider with glossary and memory context.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"rpgm-translator/internal/document"
	"rpgm-translator/internal/glossary"
	"rpgm-translator/internal/interpolation"
	"rpgm-translator/internal/memory"
	"rpgm-translator/internal/textutil"
	"rpgm-translator/internal/translation"
	"rpgm-translator/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// fieldTypeName marks units whose translation becomes a glossary term.
const fieldTypeName = "name"

// Cache serves and stores finished translations.
type Cache interface {
	Get(ctx context.Context, sourceText string) (string, bool)
	Set(ctx context.Context, sourceText, translated string) error
}

// Memory recalls similar translations and remembers new ones.
type Memory interface {
	Recall(ctx context.Context, text string) ([]translation.Example, error)
	Remember(ctx context.Context, pairs []memory.Pair) error
}

// Stats summarizes one TranslateUnits call.
type Stats struct {
	RunID       string
	Units       int
	Unique      int
	Cached      int
	Passthrough int
	Translated  int
	Failed      int
}

// Translator runs the translation pipeline for one language pair.
type Translator struct {
	provider   translation.Provider
	cache      Cache
	glossary   glossary.Glossary
	memory     Memory
	sourceLang string
	targetLang string
	workers    int
}

// Option configures a Translator.
type Option func(*Translator)

// WithCache serves repeated texts from c and stores new translations in it.
func WithCache(c Cache) Option {
	return func(t *Translator) { t.cache = c }
}

// WithGlossary adds matching terms to every prompt and records translated
// names as new terms.
func WithGlossary(g glossary.Glossary) Option {
	return func(t *Translator) { t.glossary = g }
}

// WithMemory adds similar past translations to every prompt.
func WithMemory(m Memory) Option {
	return func(t *Translator) { t.memory = m }
}

// New creates a Translator that calls provider with at most workers
// concurrent requests.
func New(provider translation.Provider, sourceLang, targetLang string, workers int, opts ...Option) *Translator {
	t := &Translator{
		provider:   provider,
		sourceLang: sourceLang,
		targetLang: targetLang,
		workers:    workers,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// group is one distinct source text and the units that carry it.
type group struct {
	text       string
	fieldType  string
	sourceFile string
	isName     bool
	units      []int

	result string
	origin string
	err    error
}

// TranslateUnits translates units and returns one TranslatedUnit per input,
// in input order. Units sharing a source text share one translation attempt;
// a failed attempt marks all of them with the error.
func (t *Translator) TranslateUnits(ctx context.Context, units []document.ExtractedUnit) ([]document.TranslatedUnit, Stats) {
	stats := Stats{RunID: uuid.NewString(), Units: len(units)}
	logger := log.With().Str("run_id", stats.RunID).Logger()

	groups := groupUnits(units)
	stats.Unique = len(groups)

	var names, rest []*group
	for _, g := range groups {
		switch {
		case !textutil.HasLetters(g.text):
			g.result, g.origin = g.text, document.OriginPassthrough
			stats.Passthrough++
		case t.fromCache(ctx, g):
			stats.Cached++
		case g.isName:
			names = append(names, g)
		default:
			rest = append(rest, g)
		}
	}

	logger.Info().
		Int("units", stats.Units).
		Int("unique", stats.Unique).
		Int("cached", stats.Cached).
		Int("passthrough", stats.Passthrough).
		Int("to_translate", len(names)+len(rest)).
		Msg("Translation plan")

	// Names go first so later prompts can use them as glossary terms.
	t.translateGroups(ctx, logger, names)
	t.addTerms(ctx, logger, groups)
	t.translateGroups(ctx, logger, rest)

	var pairs []memory.Pair
	for _, g := range append(names, rest...) {
		if g.err != nil {
			stats.Failed++
			continue
		}
		stats.Translated++
		pairs = append(pairs, memory.Pair{Source: g.text, Translated: g.result, FieldType: g.fieldType})
		if t.cache != nil {
			if err := t.cache.Set(ctx, g.text, g.result); err != nil {
				logger.Warn().Err(err).Str("text", textutil.Truncate(g.text, 30)).Msg("Failed to cache translation")
			}
		}
	}
	if t.memory != nil && len(pairs) > 0 {
		if err := t.memory.Remember(ctx, pairs); err != nil {
			logger.Warn().Err(err).Msg("Failed to update translation memory")
		}
	}

	out := make([]document.TranslatedUnit, len(units))
	for _, g := range groups {
		for _, i := range g.units {
			if g.err != nil {
				out[i] = document.Failure(units[i], document.OriginLLM, g.err)
			} else {
				out[i] = document.Translated(units[i], g.result, g.origin)
			}
		}
	}

	logger.Info().
		Int("translated", stats.Translated).
		Int("failed", stats.Failed).
		Msg("Translation complete")

	return out, stats
}

func groupUnits(units []document.ExtractedUnit) []*group {
	index := make(map[string]*group)
	var groups []*group
	for i, u := range units {
		g, ok := index[u.Text]
		if !ok {
			g = &group{text: u.Text, fieldType: u.FieldType, sourceFile: u.SourceFile}
			index[u.Text] = g
			groups = append(groups, g)
		}
		if u.FieldType == fieldTypeName {
			g.isName = true
			g.fieldType = fieldTypeName
		}
		g.units = append(g.units, i)
	}
	return groups
}

func (t *Translator) fromCache(ctx context.Context, g *group) bool {
	if t.cache == nil {
		return false
	}
	v, ok := t.cache.Get(ctx, g.text)
	if !ok {
		return false
	}
	g.result, g.origin = v, document.OriginCache
	return true
}

func (t *Translator) translateGroups(ctx context.Context, logger zerolog.Logger, groups []*group) {
	if len(groups) == 0 {
		return
	}
	pool := worker.NewPool(t.workers, func(ctx context.Context, g *group) (string, error) {
		return t.translateOne(ctx, logger, g)
	})
	for _, task := range pool.Execute(ctx, groups) {
		g := task.Input
		if task.Err != nil {
			g.err = task.Err
			logger.Error().Err(task.Err).
				Str("text", textutil.Truncate(g.text, 30)).
				Int("units", len(g.units)).
				Msg("Translation failed")
			continue
		}
		g.result, g.origin = task.Result, document.OriginLLM
	}
}

func (t *Translator) translateOne(ctx context.Context, logger zerolog.Logger, g *group) (string, error) {
	safe, mappings := interpolation.Protect(g.text)

	req := translation.Request{
		Text:       safe,
		FieldType:  g.fieldType,
		SourceLang: t.sourceLang,
		TargetLang: t.targetLang,
	}
	if t.glossary != nil {
		terms, err := t.glossary.Lookup(ctx, g.text)
		if err != nil {
			logger.Warn().Err(err).Msg("Glossary lookup failed")
		}
		req.Glossary = terms
	}
	if t.memory != nil {
		examples, err := t.memory.Recall(ctx, g.text)
		if err != nil {
			logger.Warn().Err(err).Msg("Memory recall failed")
		}
		req.Examples = examples
	}

	translated, err := t.provider.Translate(ctx, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(translated) == "" {
		return "", fmt.Errorf("translate %q: %w", textutil.Truncate(g.text, 40), translation.ErrEmptyTranslation)
	}
	if err := interpolation.Verify(translated, mappings); err != nil {
		return "", fmt.Errorf("verify %q: %w", textutil.Truncate(g.text, 40), err)
	}
	return textutil.KeepPadding(g.text, interpolation.Restore(translated, mappings)), nil
}

// addTerms records every translated or cached name as a glossary term.
func (t *Translator) addTerms(ctx context.Context, logger zerolog.Logger, groups []*group) {
	if t.glossary == nil {
		return
	}
	var terms []glossary.Term
	for _, g := range groups {
		if !g.isName || g.err != nil || g.origin == "" || g.origin == document.OriginPassthrough {
			continue
		}
		terms = append(terms, glossary.Term{
			Source:     g.text,
			Target:     g.result,
			Kind:       fieldTypeName,
			SourceFile: g.sourceFile,
		})
	}
	if len(terms) == 0 {
		return
	}
	if err := t.glossary.Add(ctx, terms); err != nil {
		logger.Warn().Err(err).Msg("Failed to add glossary terms")
	}
}
