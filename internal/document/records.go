package document

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field declares one translatable record field and the kind of text it holds.
type Field struct {
	Name string
	Type string
}

// RecordSpec declares how a record-array category is read.
type RecordSpec struct {
	// IDField names the identifier field; "id" when empty.
	IDField string
	Fields  []Field
}

func (s RecordSpec) idField() string {
	if s.IDField == "" {
		return "id"
	}
	return s.IDField
}

// Declares reports whether name is one of the translatable fields.
func (s RecordSpec) Declares(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// ID returns the declared identifier of rec. Records without a usable
// unsigned integer id report false.
func (s RecordSpec) ID(rec map[string]any) (uint32, bool) {
	return IntID(rec[s.idField()])
}

// IntID converts a decoded JSON number to a record id.
func IntID(v any) (uint32, bool) {
	n, ok := intValue(v)
	if !ok || n < 0 || n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil || f != math.Trunc(f) {
				return 0, false
			}
			return int64(f), true
		}
		return i, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ExtractRecords walks an array of optional records and emits one unit per
// non-blank declared field. Null slots and records whose id is 0 or missing
// are skipped. Paths are "[index].field" with index the array position.
func ExtractRecords(records []any, sourceFile string, spec RecordSpec) []ExtractedUnit {
	var units []ExtractedUnit
	for i, r := range records {
		rec, ok := r.(map[string]any)
		if !ok {
			continue
		}
		id, ok := spec.ID(rec)
		if !ok || id == NoRecord {
			continue
		}
		for _, f := range spec.Fields {
			text, ok := rec[f.Name].(string)
			if !ok || IsBlank(text) {
				continue
			}
			units = append(units, ExtractedUnit{
				RecordID:   id,
				Text:       text,
				SourceFile: sourceFile,
				Path:       Path{{Indices: []int{i}}, {Field: f.Name}}.String(),
				FieldType:  f.Type,
			})
		}
	}
	return units
}
