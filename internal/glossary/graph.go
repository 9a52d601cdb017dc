package glossary

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Graph stores terms in Neo4j. Each term is linked to the data file it was
// first seen in.
type Graph struct {
	driver     neo4j.DriverWithContext
	sourceLang string
	targetLang string
}

// NewGraph creates a glossary for one language pair.
func NewGraph(driver neo4j.DriverWithContext, sourceLang, targetLang string) *Graph {
	return &Graph{driver: driver, sourceLang: sourceLang, targetLang: targetLang}
}

func termKey(sourceLang, targetLang, source string) string {
	return sourceLang + "|" + targetLang + "|" + source
}

// EnsureSchema creates constraints on the Neo4j database.
func (g *Graph) EnsureSchema(ctx context.Context) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Term) REQUIRE t.key IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (f:DataFile) REQUIRE f.name IS UNIQUE",
	}
	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Glossary schema ensured")
	return nil
}

// Add upserts terms. An existing term keeps its first translation.
func (g *Graph) Add(ctx context.Context, terms []Term) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	created, existing := 0, 0
	for _, t := range terms {
		if !usable(t) {
			continue
		}
		res, err := session.Run(ctx, `
			MERGE (t:Term {key: $key})
			ON CREATE SET t.source = $source,
			              t.target = $target,
			              t.kind = $kind,
			              t.source_lang = $source_lang,
			              t.target_lang = $target_lang
		`, map[string]any{
			"key":         termKey(g.sourceLang, g.targetLang, t.Source),
			"source":      t.Source,
			"target":      t.Target,
			"kind":        t.Kind,
			"source_lang": g.sourceLang,
			"target_lang": g.targetLang,
		})
		if err != nil {
			return fmt.Errorf("upsert term %s: %w", t.Source, err)
		}
		isNew, err := createdNode(ctx, res)
		if err != nil {
			return fmt.Errorf("upsert term %s: %w", t.Source, err)
		}
		if isNew {
			created++
		} else {
			existing++
		}

		if t.SourceFile == "" {
			continue
		}
		_, err = session.Run(ctx, `
			MATCH (t:Term {key: $key})
			MERGE (f:DataFile {name: $file})
			MERGE (t)-[:DEFINED_IN]->(f)
		`, map[string]any{
			"key":  termKey(g.sourceLang, g.targetLang, t.Source),
			"file": t.SourceFile,
		})
		if err != nil {
			log.Warn().Err(err).Str("term", t.Source).Str("file", t.SourceFile).Msg("Failed to link term to file")
		}
	}

	log.Info().Int("created", created).Int("existing", existing).Msg("Upserted glossary terms")
	return nil
}

// Lookup returns every term of this language pair whose source occurs in text.
func (g *Graph) Lookup(ctx context.Context, text string) (map[string]string, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (t:Term {source_lang: $source_lang, target_lang: $target_lang})
		WHERE $text CONTAINS t.source
		RETURN t.source AS source, t.target AS target
		ORDER BY size(t.source) DESC
	`, map[string]any{
		"text":        text,
		"source_lang": g.sourceLang,
		"target_lang": g.targetLang,
	})
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}

	found := make(map[string]string)
	for result.Next(ctx) {
		record := result.Record()
		source, _ := record.Get("source")
		target, _ := record.Get("target")
		found[fmt.Sprintf("%v", source)] = fmt.Sprintf("%v", target)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read terms: %w", err)
	}
	return found, nil
}

// All loads every term of this language pair.
func (g *Graph) All(ctx context.Context) ([]Term, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (t:Term {source_lang: $source_lang, target_lang: $target_lang})
		RETURN t.source AS source, t.target AS target, t.kind AS kind
		ORDER BY t.source
	`, map[string]any{
		"source_lang": g.sourceLang,
		"target_lang": g.targetLang,
	})
	if err != nil {
		return nil, fmt.Errorf("get all terms: %w", err)
	}

	terms, err := readTerms(ctx, result)
	if err != nil {
		return nil, err
	}

	log.Info().Int("count", len(terms)).Msg("Loaded glossary from graph")
	return terms, nil
}

// summaryReader is the part of neo4j.ResultWithContext that reports counters.
type summaryReader interface {
	Consume(ctx context.Context) (neo4j.ResultSummary, error)
}

// createdNode reports whether the MERGE behind res created its node.
func createdNode(ctx context.Context, res summaryReader) (bool, error) {
	summary, err := res.Consume(ctx)
	if err != nil {
		return false, err
	}
	return summary.Counters().NodesCreated() > 0, nil
}

// recordStream is the part of neo4j.ResultWithContext that yields rows.
type recordStream interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// readTerms collects source, target and kind columns. A stream that fails
// part way is an error, not a short list.
func readTerms(ctx context.Context, rows recordStream) ([]Term, error) {
	var terms []Term
	for rows.Next(ctx) {
		record := rows.Record()
		source, _ := record.Get("source")
		target, _ := record.Get("target")
		kind, _ := record.Get("kind")
		terms = append(terms, Term{
			Source: fmt.Sprintf("%v", source),
			Target: fmt.Sprintf("%v", target),
			Kind:   fmt.Sprintf("%v", kind),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read terms: %w", err)
	}
	return terms, nil
}
