package category

import "rpgm-translator/internal/document"

// Field types handed to the translator.
const (
	TypeName        = "name"
	TypeDescription = "description"
	TypeMessage     = "message"
	TypeTerm        = "term"
)

var (
	actorSpec = document.RecordSpec{Fields: []document.Field{
		{Name: "name", Type: TypeName},
		{Name: "nickname", Type: TypeName},
		{Name: "profile", Type: TypeDescription},
	}}
	equipmentSpec = document.RecordSpec{Fields: []document.Field{
		{Name: "name", Type: TypeName},
		{Name: "description", Type: TypeDescription},
	}}
	skillSpec = document.RecordSpec{Fields: []document.Field{
		{Name: "name", Type: TypeName},
		{Name: "description", Type: TypeDescription},
		{Name: "message1", Type: TypeMessage},
		{Name: "message2", Type: TypeMessage},
	}}
	stateSpec = document.RecordSpec{Fields: []document.Field{
		{Name: "name", Type: TypeName},
		{Name: "message1", Type: TypeMessage},
		{Name: "message2", Type: TypeMessage},
		{Name: "message3", Type: TypeMessage},
		{Name: "message4", Type: TypeMessage},
	}}
	nameSpec = document.RecordSpec{Fields: []document.Field{
		{Name: "name", Type: TypeName},
	}}
)

// recordHandler serves categories that are a plain array of records.
type recordHandler struct {
	spec    document.RecordSpec
	byIndex bool
}

func (h recordHandler) Extract(doc any, sourceFile string) ([]document.ExtractedUnit, error) {
	records, ok := doc.([]any)
	if !ok {
		return nil, document.ShapeError(sourceFile, "array", doc)
	}
	return document.ExtractRecords(records, sourceFile, h.spec), nil
}

func (h recordHandler) Apply(doc any, units []document.TranslatedUnit, report *document.Report) error {
	records, ok := doc.([]any)
	if !ok {
		return document.ShapeError(report.SourceFile, "array", doc)
	}
	if h.byIndex {
		document.ApplyByIndex(records, units, h.spec, report)
	} else {
		document.ApplyByID(records, units, h.spec, report)
	}
	return nil
}
