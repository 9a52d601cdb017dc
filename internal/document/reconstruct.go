package document

import "fmt"

// ApplyByID writes each unit into the first record whose id equals the
// unit's RecordID. The unit path is taken relative to that record; a leading
// "[index]" segment, as produced by ExtractRecords, is ignored because the
// record is located by id.
func ApplyByID(records []any, units []TranslatedUnit, spec RecordSpec, report *Report) {
	byID := make(map[uint32]map[string]any, len(records))
	for _, r := range records {
		rec, ok := r.(map[string]any)
		if !ok {
			continue
		}
		id, ok := spec.ID(rec)
		if !ok {
			continue
		}
		if _, seen := byID[id]; !seen {
			byID[id] = rec
		}
	}

	for _, u := range units {
		p, err := ParsePath(u.Path)
		if err != nil {
			report.Skip(u, err.Error())
			continue
		}
		if _, rest, ok := p.LeadingIndex(); ok {
			p = rest
		}
		if len(p) == 0 {
			report.Skip(u, "path does not address a field inside the record")
			continue
		}

		rec, ok := byID[u.RecordID]
		if !ok {
			report.Skip(u, fmt.Sprintf("no record with id %d", u.RecordID))
			continue
		}
		if reason := checkRecordField(p, spec); reason != "" {
			report.Skip(u, reason)
			continue
		}
		if err := ReplaceString(rec, p, u.Text()); err != nil {
			report.Skip(u, err.Error())
			continue
		}
		report.Applied++
	}
}

// ApplyByIndex writes each unit into the record at the array position given
// by the path's leading "[index]" segment. The record's id must equal the
// unit's RecordID; a mismatch means the translation set is stale and the
// unit is skipped.
func ApplyByIndex(records []any, units []TranslatedUnit, spec RecordSpec, report *Report) {
	for _, u := range units {
		p, err := ParsePath(u.Path)
		if err != nil {
			report.Skip(u, err.Error())
			continue
		}
		idx, rest, ok := p.LeadingIndex()
		if !ok {
			report.Skip(u, "path has no leading record index")
			continue
		}
		if len(rest) == 0 {
			report.Skip(u, "path does not address a field inside the record")
			continue
		}
		if idx >= len(records) {
			report.Skip(u, fmt.Sprintf("record index %d out of range (len %d)", idx, len(records)))
			continue
		}
		rec, ok := records[idx].(map[string]any)
		if !ok {
			report.Skip(u, fmt.Sprintf("no record at index %d", idx))
			continue
		}
		id, ok := spec.ID(rec)
		if !ok || id != u.RecordID {
			report.Skip(u, fmt.Sprintf("record at index %d has id %d, unit expects %d", idx, id, u.RecordID))
			continue
		}
		if reason := checkRecordField(rest, spec); reason != "" {
			report.Skip(u, reason)
			continue
		}
		if err := ReplaceString(rec, rest, u.Text()); err != nil {
			report.Skip(u, err.Error())
			continue
		}
		report.Applied++
	}
}

// checkRecordField returns a skip reason unless rel is a bare field name
// declared by spec.
func checkRecordField(rel Path, spec RecordSpec) string {
	if len(rel) != 1 || rel[0].Field == "" || len(rel[0].Indices) > 0 {
		return fmt.Sprintf("%q is not a record field address", rel.String())
	}
	if !spec.Declares(rel[0].Field) {
		return fmt.Sprintf("field %q is not translatable", rel[0].Field)
	}
	return ""
}

// ReconstructByID parses data as a record array, applies units with
// ApplyByID and serializes the result. Only parse and serialize failures are
// returned as errors; skipped units are listed in the report.
func ReconstructByID(data []byte, sourceFile string, units []TranslatedUnit, spec RecordSpec) ([]byte, *Report, error) {
	return reconstructRecords(data, sourceFile, units, spec, ApplyByID)
}

// ReconstructByIndex is ReconstructByID with positional record lookup.
func ReconstructByIndex(data []byte, sourceFile string, units []TranslatedUnit, spec RecordSpec) ([]byte, *Report, error) {
	return reconstructRecords(data, sourceFile, units, spec, ApplyByIndex)
}

func reconstructRecords(
	data []byte,
	sourceFile string,
	units []TranslatedUnit,
	spec RecordSpec,
	apply func([]any, []TranslatedUnit, RecordSpec, *Report),
) ([]byte, *Report, error) {
	records, err := DecodeArray(data, sourceFile)
	if err != nil {
		return nil, nil, err
	}
	report := NewReport(sourceFile)
	apply(records, units, spec, report)

	out, err := Encode(records, sourceFile)
	if err != nil {
		return nil, nil, err
	}
	return out, report, nil
}
