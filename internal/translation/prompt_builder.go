package translation

import (
	"fmt"
	"sort"
	"strings"
)

// PromptBuilder constructs system and user prompts for translation.
type PromptBuilder struct{}

// NewPromptBuilder creates a new prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

const systemPrompt = `You are a professional game localizer translating an RPG Maker game from %s to %s.

Rules:
1. Translate the text from %s to %s.
2. Preserve ALL placeholders like {{var_1}}, {{var_2}} exactly as-is. You may move them, never drop, repeat or alter them.
3. Use the terminology reference when one is given. Names must match it exactly.
4. Keep line breaks where the original has them.
5. Output ONLY the translation, nothing else. No quotes, notes or explanations.
6. Maintain the tone and register of the original.`

// fieldGuidance tells the model what kind of string it is looking at.
var fieldGuidance = map[string]string{
	"name":        "This is a proper name or short label (character, item, skill or place). Keep it short. Transliterate names that have no meaning.",
	"description": "This is an in-game help text shown in a menu window. Keep it to roughly the same length.",
	"message":     "This is a battle or status message. The actor or target name is usually inserted before it, so it may start mid-sentence.",
	"term":        "This is a user-interface term (menu command, parameter or currency). Keep it as short as the original.",
	"dialogue":    "This is one line of character dialogue in a message window. Keep it natural and spoken.",
	"choice":      "This is a player choice button. Keep it very short.",
	"speaker":     "This is the speaker name shown above a message window.",
}

// SystemPrompt returns the system prompt for a language pair.
func (pb *PromptBuilder) SystemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf(systemPrompt, sourceLang, targetLang, sourceLang, targetLang)
}

// UserPrompt constructs the user prompt with glossary and memory context.
func (pb *PromptBuilder) UserPrompt(req Request) string {
	var sb strings.Builder

	if len(req.Glossary) > 0 {
		terms := make([]string, 0, len(req.Glossary))
		for src := range req.Glossary {
			terms = append(terms, src)
		}
		sort.Strings(terms)

		sb.WriteString("=== Terminology Reference ===\n")
		for _, src := range terms {
			fmt.Fprintf(&sb, "• %s → %s\n", src, req.Glossary[src])
		}
		sb.WriteString("\n")
	}

	if len(req.Examples) > 0 {
		sb.WriteString("=== Previous Translations ===\n")
		for _, ex := range req.Examples {
			fmt.Fprintf(&sb, "%s\n→ %s\n", ex.Source, ex.Target)
		}
		sb.WriteString("\n")
	}

	if g, ok := fieldGuidance[req.FieldType]; ok {
		sb.WriteString(g)
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "Text to translate:\n%s", req.Text)
	return sb.String()
}
