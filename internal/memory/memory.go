// Package memory is a translation memory: accepted translations are embedded
// and stored, and the nearest ones are recalled as examples for new texts.
package memory

import (
	"context"
	"fmt"

	"rpgm-translator/internal/textutil"
	"rpgm-translator/internal/translation"
	"rpgm-translator/internal/worker"

	"github.com/rs/zerolog/log"
)

// Record is one stored translation with the embedding of its source.
type Record struct {
	Hash       string
	SourceLang string
	TargetLang string
	Source     string
	Translated string
	FieldType  string
	Vector     []float32
}

// Match is a recalled translation and its cosine similarity to the query.
type Match struct {
	Source     string
	Translated string
	FieldType  string
	Score      float64
}

// Pair is an accepted translation to remember.
type Pair struct {
	Source     string
	Translated string
	FieldType  string
}

// Embedder turns texts into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Index stores and searches records.
type Index interface {
	Store(ctx context.Context, records []Record) error
	Search(ctx context.Context, vector []float32, sourceLang, targetLang string, topK int) ([]Match, error)
}

// Memory recalls and remembers translations for one language pair.
type Memory struct {
	embedder   Embedder
	index      Index
	sourceLang string
	targetLang string
	topK       int
	minScore   float64
	batchSize  int
}

// New creates a memory that recalls up to topK examples scoring at least
// minScore.
func New(embedder Embedder, index Index, sourceLang, targetLang string, topK int, minScore float64) *Memory {
	if topK <= 0 {
		topK = 3
	}
	return &Memory{
		embedder:   embedder,
		index:      index,
		sourceLang: sourceLang,
		targetLang: targetLang,
		topK:       topK,
		minScore:   minScore,
		batchSize:  32,
	}
}

// SetBatchSize caps how many texts Remember embeds per request.
func (m *Memory) SetBatchSize(n int) {
	if n > 0 {
		m.batchSize = n
	}
}

// Recall returns stored translations similar to text, best first. An exact
// source match is excluded since the cache already serves it.
func (m *Memory) Recall(ctx context.Context, text string) ([]translation.Example, error) {
	vecs, err := m.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	matches, err := m.index.Search(ctx, vecs[0], m.sourceLang, m.targetLang, m.topK)
	if err != nil {
		return nil, err
	}

	var examples []translation.Example
	for _, match := range matches {
		if match.Score < m.minScore || match.Source == text {
			continue
		}
		examples = append(examples, translation.Example{Source: match.Source, Target: match.Translated})
	}
	return examples, nil
}

// Remember embeds and stores accepted translations.
func (m *Memory) Remember(ctx context.Context, pairs []Pair) error {
	for _, batch := range worker.Batch(pairs, m.batchSize) {
		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Source
		}
		vecs, err := m.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		if len(vecs) != len(batch) {
			return fmt.Errorf("embed batch: got %d vectors for %d texts", len(vecs), len(batch))
		}

		records := make([]Record, len(batch))
		for i, p := range batch {
			records[i] = Record{
				Hash:       textutil.Hash(m.sourceLang + "\x00" + m.targetLang + "\x00" + p.Source),
				SourceLang: m.sourceLang,
				TargetLang: m.targetLang,
				Source:     p.Source,
				Translated: p.Translated,
				FieldType:  p.FieldType,
				Vector:     vecs[i],
			}
		}
		if err := m.index.Store(ctx, records); err != nil {
			return err
		}
	}

	log.Info().Int("count", len(pairs)).Msg("Updated translation memory")
	return nil
}
