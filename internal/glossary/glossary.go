// Package glossary keeps fixed translations of proper names so that every
// string mentioning a character, item or place uses the same rendering.
package glossary

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// minTermRunes keeps one-letter names from matching inside ordinary words.
const minTermRunes = 2

// Term is one source name and its fixed translation.
type Term struct {
	Source     string
	Target     string
	Kind       string
	SourceFile string
}

// Glossary stores terms and finds the ones mentioned in a text.
type Glossary interface {
	Add(ctx context.Context, terms []Term) error
	Lookup(ctx context.Context, text string) (map[string]string, error)
}

func usable(t Term) bool {
	src := strings.TrimSpace(t.Source)
	return utf8.RuneCountInString(src) >= minTermRunes && strings.TrimSpace(t.Target) != "" && src == t.Source
}

// Static is an in-process glossary used when no graph database is configured.
type Static struct {
	mu    sync.RWMutex
	terms map[string]string
}

// NewStatic creates an empty in-process glossary.
func NewStatic() *Static {
	return &Static{terms: make(map[string]string)}
}

// Add stores terms. An existing term keeps its first translation.
func (s *Static) Add(_ context.Context, terms []Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range terms {
		if _, ok := s.terms[t.Source]; ok || !usable(t) {
			continue
		}
		s.terms[t.Source] = t.Target
	}
	return nil
}

// Lookup returns every stored term whose source occurs in text.
func (s *Static) Lookup(_ context.Context, text string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]string)
	for src, dst := range s.terms {
		if strings.Contains(text, src) {
			found[src] = dst
		}
	}
	return found, nil
}

// Terms returns all stored terms sorted by source.
func (s *Static) Terms() []Term {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Term, 0, len(s.terms))
	for src, dst := range s.terms {
		out = append(out, Term{Source: src, Target: dst})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
