package category

import "rpgm-translator/internal/document"

// ExtractFile parses one data file and extracts its units. Unknown files
// yield no units and no error.
func ExtractFile(data []byte, sourceFile string) ([]document.ExtractedUnit, error) {
	c := Detect(sourceFile)
	if c == Unknown {
		return nil, nil
	}
	doc, err := document.Decode(data, sourceFile)
	if err != nil {
		return nil, err
	}
	return c.Handler().Extract(doc, sourceFile)
}

// ReconstructFile applies units to one data file and returns the patched
// document. Unknown files are returned unchanged. Only parse, shape and
// serialize failures are errors; skipped units are listed in the report.
func ReconstructFile(data []byte, sourceFile string, units []document.TranslatedUnit) ([]byte, *document.Report, error) {
	report := document.NewReport(sourceFile)
	c := Detect(sourceFile)
	if c == Unknown {
		return data, report, nil
	}
	doc, err := document.Decode(data, sourceFile)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Handler().Apply(doc, units, report); err != nil {
		return nil, nil, err
	}
	out, err := document.Encode(doc, sourceFile)
	if err != nil {
		return nil, nil, err
	}
	return out, report, nil
}
