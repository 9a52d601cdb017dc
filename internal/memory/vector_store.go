package memory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

// VectorStore keeps accepted translations with their source embedding in
// the translation_memory table.
type VectorStore struct {
	pool *pgxpool.Pool
}

// NewVectorStore creates a new vector store.
func NewVectorStore(pool *pgxpool.Pool) *VectorStore {
	return &VectorStore{pool: pool}
}

const (
	insertMemorySQL = `INSERT INTO translation_memory
    (hash, source_lang, target_lang, source_text, translated_text, field_type, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (hash) DO UPDATE SET
    translated_text = EXCLUDED.translated_text,
    field_type = EXCLUDED.field_type,
    embedding = EXCLUDED.embedding`

	searchMemorySQL = `SELECT source_text, translated_text, field_type, 1 - (embedding <=> $1) AS similarity
FROM translation_memory
WHERE source_lang = $2 AND target_lang = $3 AND vector_dims(embedding) = $4
ORDER BY embedding <=> $1
LIMIT $5`
)

// Store upserts records keyed by hash.
func (vs *VectorStore) Store(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		_, err := vs.pool.Exec(ctx, insertMemorySQL,
			r.Hash, r.SourceLang, r.TargetLang, r.Source, r.Translated, r.FieldType,
			pgvector.NewVector(r.Vector),
		)
		if err != nil {
			return fmt.Errorf("insert memory %s: %w", r.Hash, err)
		}
	}

	log.Debug().Int("count", len(records)).Msg("Stored translation memory")
	return nil
}

// Search finds the topK stored translations closest to vector for a
// language pair.
func (vs *VectorStore) Search(ctx context.Context, vector []float32, sourceLang, targetLang string, topK int) ([]Match, error) {
	rows, err := vs.pool.Query(ctx, searchMemorySQL,
		pgvector.NewVector(vector), sourceLang, targetLang, len(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Source, &m.Translated, &m.FieldType, &m.Score); err != nil {
			return nil, fmt.Errorf("scan memory match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return matches, nil
}
