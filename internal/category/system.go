package category

import (
	"fmt"
	"sort"

	"rpgm-translator/internal/document"
)

var (
	systemStrings = []string{"gameTitle", "currencyUnit"}
	systemLists   = []string{"elements", "skillTypes", "weaponTypes", "armorTypes", "equipTypes"}
	termLists     = []string{"basic", "commands", "params"}
)

// systemHandler serves System.json. Every string it extracts is
// document-scoped and carries record id 0.
type systemHandler struct{}

func (systemHandler) Extract(doc any, sourceFile string) ([]document.ExtractedUnit, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, document.ShapeError(sourceFile, "object", doc)
	}

	var units []document.ExtractedUnit
	emit := func(v any, path, fieldType string) {
		text, ok := v.(string)
		if !ok || document.IsBlank(text) {
			return
		}
		units = append(units, document.ExtractedUnit{
			RecordID:   document.NoRecord,
			Text:       text,
			SourceFile: sourceFile,
			Path:       path,
			FieldType:  fieldType,
		})
	}

	for _, key := range systemStrings {
		emit(root[key], key, TypeTerm)
	}
	for _, key := range systemLists {
		list, _ := root[key].([]any)
		for i, v := range list {
			emit(v, fmt.Sprintf("%s[%d]", key, i), TypeTerm)
		}
	}

	terms, _ := root["terms"].(map[string]any)
	for _, key := range termLists {
		list, _ := terms[key].([]any)
		for i, v := range list {
			emit(v, fmt.Sprintf("terms.%s[%d]", key, i), TypeTerm)
		}
	}

	messages, _ := terms["messages"].(map[string]any)
	keys := make([]string, 0, len(messages))
	for k := range messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		emit(messages[k], "terms.messages."+k, TypeMessage)
	}
	return units, nil
}

func (systemHandler) Apply(doc any, units []document.TranslatedUnit, report *document.Report) error {
	root, ok := doc.(map[string]any)
	if !ok {
		return document.ShapeError(report.SourceFile, "object", doc)
	}
	applyScoped(root, units, report)
	return nil
}
