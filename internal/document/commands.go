package document

import (
	"fmt"
	"strings"
)

// Event command opcodes that carry player-visible text.
const (
	CodeShowText      = 101
	CodeShowChoices   = 102
	CodeTextLine      = 401
	CodeScrollingLine = 405
)

// TextSlot says which positional parameter of a command holds text.
type TextSlot struct {
	// Arg is the index into the command's parameters.
	Arg int
	// List means the parameter is an array of strings (choices).
	List      bool
	FieldType string
}

// TextSlots maps opcodes to their text parameter. Comments, scripts and plugin
// commands are deliberately absent.
var TextSlots = map[int]TextSlot{
	CodeShowText:      {Arg: 4, FieldType: "speaker"},
	CodeShowChoices:   {Arg: 0, List: true, FieldType: "choice"},
	CodeTextLine:      {Arg: 0, FieldType: "dialogue"},
	CodeScrollingLine: {Arg: 0, FieldType: "dialogue"},
}

// ExtractCommands emits the text carried by an event command list. Units are
// addressed as prefix[cmd].parameters[arg], or
// prefix[cmd].parameters[arg][choice] for choice lists, and tagged with ownerID.
func ExtractCommands(commands []any, ownerID uint32, sourceFile, prefix string) []ExtractedUnit {
	var units []ExtractedUnit
	emit := func(text, fieldType, path string) {
		if IsBlank(text) {
			return
		}
		units = append(units, ExtractedUnit{
			RecordID:   ownerID,
			Text:       text,
			SourceFile: sourceFile,
			Path:       path,
			FieldType:  fieldType,
		})
	}

	for i, c := range commands {
		cmd, ok := c.(map[string]any)
		if !ok {
			continue
		}
		code, ok := intValue(cmd["code"])
		if !ok {
			continue
		}
		slot, ok := TextSlots[int(code)]
		if !ok {
			continue
		}
		params, ok := cmd["parameters"].([]any)
		if !ok || slot.Arg >= len(params) {
			continue
		}
		base := fmt.Sprintf("%s[%d].parameters[%d]", prefix, i, slot.Arg)

		if !slot.List {
			if text, ok := params[slot.Arg].(string); ok {
				emit(text, slot.FieldType, base)
			}
			continue
		}
		choices, ok := params[slot.Arg].([]any)
		if !ok {
			continue
		}
		for j, ch := range choices {
			if text, ok := ch.(string); ok {
				emit(text, slot.FieldType, fmt.Sprintf("%s[%d]", base, j))
			}
		}
	}
	return units
}

// ReconstructCommands writes units back into a live command list. Only units
// owned by ownerID whose path lies under prefix are considered. Each unit must
// address prefix[cmd].parameters[arg] or prefix[cmd].parameters[arg][choice];
// any unit that does not resolve is reported and the rest are still applied.
func ReconstructCommands(commands []any, ownerID uint32, units []TranslatedUnit, prefix string, report *Report) {
	prefixPath, err := ParsePath(prefix)
	if err != nil {
		for _, u := range units {
			if u.RecordID == ownerID && strings.HasPrefix(u.Path, prefix) {
				report.Skip(u, fmt.Sprintf("command list prefix: %v", err))
			}
		}
		return
	}

	for _, u := range units {
		if u.RecordID != ownerID {
			continue
		}
		p, err := ParsePath(u.Path)
		if err != nil {
			if strings.HasPrefix(u.Path, prefix) {
				report.Skip(u, err.Error())
			}
			continue
		}
		rel, ok := p.TrimPrefix(prefixPath)
		if !ok {
			continue
		}
		if reason := checkCommandAddress(rel); reason != "" {
			report.Skip(u, reason)
			continue
		}
		if err := ReplaceString(commands, rel, u.Text()); err != nil {
			report.Skip(u, err.Error())
			continue
		}
		report.Applied++
	}
}

// checkCommandAddress validates the shape [cmd].parameters[arg] or
// [cmd].parameters[arg][choice] so a unit can never overwrite a command's
// code or indent.
func checkCommandAddress(rel Path) string {
	if len(rel) != 2 {
		return fmt.Sprintf("%q is not a command parameter address", rel.String())
	}
	if rel[0].Field != "" || len(rel[0].Indices) != 1 {
		return fmt.Sprintf("%q does not start with a command index", rel.String())
	}
	if rel[1].Field != "parameters" || len(rel[1].Indices) < 1 || len(rel[1].Indices) > 2 {
		return fmt.Sprintf("%q does not address a command parameter", rel.String())
	}
	return ""
}
