// Package document extracts translatable text from parsed game data trees
// and writes translations back to the addresses it was found at.
package document

// RecordID 0 marks text that belongs to the document rather than a record.
const NoRecord uint32 = 0

// Origins recorded on TranslatedUnit.
const (
	OriginLLM         = "llm"
	OriginCache       = "cache"
	OriginPassthrough = "passthrough"
)

// ExtractedUnit is one translatable fragment found in a document.
type ExtractedUnit struct {
	// RecordID is the owning record's declared id, or NoRecord.
	RecordID uint32 `json:"record_id"`
	// Text is the source string exactly as it appears in the document.
	Text string `json:"text"`
	// SourceFile is the document's file name, e.g. "Actors.json".
	SourceFile string `json:"source_file"`
	// Path addresses Text inside the document.
	Path string `json:"path"`
	// FieldType classifies the text for the translator (name, dialogue, ...).
	FieldType string `json:"field_type,omitempty"`
}

// TranslatedUnit is an ExtractedUnit plus the outcome of translating it.
type TranslatedUnit struct {
	RecordID       uint32 `json:"record_id"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceFile     string `json:"source_file"`
	Path           string `json:"path"`
	FieldType      string `json:"field_type,omitempty"`
	Origin         string `json:"origin,omitempty"`
	// Error is set when translation failed; TranslatedText must then be ignored.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the translation attempt failed upstream.
func (u TranslatedUnit) Failed() bool { return u.Error != "" }

// Text returns the string reconstruction writes: the original text when the
// translation failed, the translation otherwise.
func (u TranslatedUnit) Text() string {
	if u.Failed() {
		return u.OriginalText
	}
	return u.TranslatedText
}

// Translated builds a successful TranslatedUnit for e.
func Translated(e ExtractedUnit, text, origin string) TranslatedUnit {
	return TranslatedUnit{
		RecordID:       e.RecordID,
		OriginalText:   e.Text,
		TranslatedText: text,
		SourceFile:     e.SourceFile,
		Path:           e.Path,
		FieldType:      e.FieldType,
		Origin:         origin,
	}
}

// Failure builds a TranslatedUnit for e that carries err. The translated
// text is set to the original so the unit stays harmless if misused.
func Failure(e ExtractedUnit, origin string, err error) TranslatedUnit {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	u := Translated(e, e.Text, origin)
	u.Error = msg
	return u
}
