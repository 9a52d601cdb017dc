package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps cache entries in the translation_cache table.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a store on an open pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const (
	getEntrySQL = `SELECT hash, source_lang, target_lang, source_text, translated_text
FROM translation_cache WHERE hash = $1`

	upsertEntrySQL = `INSERT INTO translation_cache (hash, source_lang, target_lang, source_text, translated_text)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (hash) DO UPDATE SET translated_text = EXCLUDED.translated_text, updated_at = now()`

	listEntriesSQL = `SELECT hash, source_lang, target_lang, source_text, translated_text
FROM translation_cache WHERE source_lang = $1 AND target_lang = $2`
)

func (s *PGStore) Get(ctx context.Context, hash string) (Entry, bool, error) {
	var e Entry
	err := s.pool.QueryRow(ctx, getEntrySQL, hash).
		Scan(&e.Hash, &e.SourceLang, &e.TargetLang, &e.Source, &e.Translated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get cached translation: %w", err)
	}
	return e, true, nil
}

func (s *PGStore) Upsert(ctx context.Context, e Entry) error {
	if _, err := s.pool.Exec(ctx, upsertEntrySQL, e.Hash, e.SourceLang, e.TargetLang, e.Source, e.Translated); err != nil {
		return fmt.Errorf("upsert cached translation: %w", err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context, sourceLang, targetLang string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, listEntriesSQL, sourceLang, targetLang)
	if err != nil {
		return nil, fmt.Errorf("list cached translations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Hash, &e.SourceLang, &e.TargetLang, &e.Source, &e.Translated); err != nil {
			return nil, fmt.Errorf("scan cached translation: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cached translations: %w", err)
	}
	return entries, nil
}
