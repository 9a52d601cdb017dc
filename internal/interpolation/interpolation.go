package interpolation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrPlaceholderMismatch is returned by Verify when a translation lost,
// duplicated or invented a placeholder.
var ErrPlaceholderMismatch = errors.New("placeholder mismatch")

// Mapping stores the original control code and its safe replacement.
type Mapping struct {
	Original    string
	Placeholder string
	Index       int
}

// codeMatch stores a detected control code position.
type codeMatch struct {
	start, end int
	value      string
}

// patterns to detect RPG Maker control codes in message text.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\\[A-Za-z]+\[[^\]]*\]`), // \V[1], \N[2], \C[3], \FS[24]
	regexp.MustCompile(`\\[A-Za-z]+<[^>]*>`),    // \n<Name> name boxes
	regexp.MustCompile(`\\[{}\\$.|!><^G]`),      // \{, \$, \., \|, \!, \G ...
	regexp.MustCompile(`%[0-9]+`),               // %1, %2 in system messages
}

var placeholderPattern = regexp.MustCompile(`\{\{var_[0-9]+\}\}`)

// Protect replaces all control codes with safe {{var_N}} placeholders.
// Returns the safe string and a mapping to restore originals after translation.
func Protect(text string) (string, []Mapping) {
	var all []codeMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, codeMatch{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return text, nil
	}

	// By position, longest first on ties.
	sort.Slice(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end-all[i].start > all[j].end-all[j].start
	})

	var filtered []codeMatch
	lastEnd := -1
	for _, m := range all {
		if m.start >= lastEnd {
			filtered = append(filtered, m)
			lastEnd = m.end
		}
	}

	mappings := make([]Mapping, len(filtered))
	var sb strings.Builder
	prev := 0
	for i, m := range filtered {
		placeholder := fmt.Sprintf("{{var_%d}}", i+1)
		mappings[i] = Mapping{Original: m.value, Placeholder: placeholder, Index: i + 1}
		sb.WriteString(text[prev:m.start])
		sb.WriteString(placeholder)
		prev = m.end
	}
	sb.WriteString(text[prev:])
	return sb.String(), mappings
}

// Restore replaces {{var_N}} placeholders back with the original control codes.
func Restore(translated string, mappings []Mapping) string {
	result := translated
	for _, m := range mappings {
		result = strings.Replace(result, m.Placeholder, m.Original, 1)
	}
	return result
}

// Verify checks that translated carries every placeholder in mappings exactly
// once and no others. It must be called before Restore.
func Verify(translated string, mappings []Mapping) error {
	var missing, repeated []string
	for _, m := range mappings {
		switch n := strings.Count(translated, m.Placeholder); {
		case n == 0:
			missing = append(missing, m.Original)
		case n > 1:
			repeated = append(repeated, m.Original)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrPlaceholderMismatch, strings.Join(missing, " "))
	}
	if len(repeated) > 0 {
		return fmt.Errorf("%w: repeated %s", ErrPlaceholderMismatch, strings.Join(repeated, " "))
	}
	if n := len(placeholderPattern.FindAllString(translated, -1)); n != len(mappings) {
		return fmt.Errorf("%w: expected %d placeholders, found %d", ErrPlaceholderMismatch, len(mappings), n)
	}
	return nil
}
