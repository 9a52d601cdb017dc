package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	actorSpec = RecordSpec{Fields: []Field{{Name: "name", Type: "name"}, {Name: "nickname", Type: "name"}, {Name: "profile", Type: "description"}}}
	nameSpec  = RecordSpec{Fields: []Field{{Name: "name", Type: "name"}}}
	itemSpec  = RecordSpec{Fields: []Field{{Name: "name", Type: "name"}, {Name: "description", Type: "description"}}}
)

func mustDecode(t *testing.T, s string) any {
	t.Helper()
	doc, err := Decode([]byte(s), "test.json")
	require.NoError(t, err)
	return doc
}

func assertJSON(t *testing.T, want string, doc any) {
	t.Helper()
	out, err := Encode(doc, "test.json")
	require.NoError(t, err)
	assert.JSONEq(t, want, string(out))
}

func TestExtractRecords(t *testing.T) {
	records := mustDecode(t, `[
		null,
		{"id": 1, "name": "Harold", "nickname": "  ", "profile": "A young hero."},
		{"id": 0, "name": "Placeholder", "nickname": "", "profile": ""},
		{"id": 3, "name": "", "nickname": "The Quiet", "profile": "\n"},
		{"name": "No id"}
	]`).([]any)

	units := ExtractRecords(records, "Actors.json", actorSpec)

	require.Len(t, units, 3)
	assert.Equal(t, ExtractedUnit{RecordID: 1, Text: "Harold", SourceFile: "Actors.json", Path: "[1].name", FieldType: "name"}, units[0])
	assert.Equal(t, "[1].profile", units[1].Path)
	assert.Equal(t, ExtractedUnit{RecordID: 3, Text: "The Quiet", SourceFile: "Actors.json", Path: "[3].nickname", FieldType: "name"}, units[2])
	for _, u := range units {
		assert.False(t, IsBlank(u.Text))
	}
}

func TestReconstructByID(t *testing.T) {
	t.Run("writes translation into matched record", func(t *testing.T) {
		data := []byte(`[null, {"id":1,"name":"Cat","note":""}]`)
		units := []TranslatedUnit{{RecordID: 1, OriginalText: "Cat", TranslatedText: "Gato", Path: "name"}}

		out, report, err := ReconstructByID(data, "Enemies.json", units, RecordSpec{Fields: []Field{{Name: "name"}}})
		require.NoError(t, err)
		assert.JSONEq(t, `[null, {"id":1,"name":"Gato","note":""}]`, string(out))
		assert.Equal(t, 1, report.Applied)
		assert.True(t, report.Clean())
	})

	t.Run("accepts extraction paths with leading index", func(t *testing.T) {
		data := []byte(`[null, {"id":7,"name":"Potion"}]`)
		units := []TranslatedUnit{{RecordID: 7, OriginalText: "Potion", TranslatedText: "Poción", Path: "[1].name"}}

		out, report, err := ReconstructByID(data, "Items.json", units, nameSpec)
		require.NoError(t, err)
		assert.JSONEq(t, `[null, {"id":7,"name":"Poción"}]`, string(out))
		assert.Equal(t, 1, report.Applied)
	})

	t.Run("error falls back to original text", func(t *testing.T) {
		data := []byte(`[null, null, {"id":2,"name":"Fire"}]`)
		units := []TranslatedUnit{{RecordID: 2, OriginalText: "Fire", TranslatedText: "BROKEN", Path: "name", Error: "timeout"}}

		out, _, err := ReconstructByID(data, "Skills.json", units, nameSpec)
		require.NoError(t, err)
		assert.JSONEq(t, `[null, null, {"id":2,"name":"Fire"}]`, string(out))
		assert.NotContains(t, string(out), "BROKEN")
	})

	t.Run("unknown id is skipped", func(t *testing.T) {
		data := []byte(`[null, {"id":1,"name":"Cat"}]`)
		units := []TranslatedUnit{{RecordID: 9, OriginalText: "Dog", TranslatedText: "Perro", Path: "name"}}

		out, report, err := ReconstructByID(data, "Enemies.json", units, nameSpec)
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(out))
		require.Len(t, report.Diagnostics, 1)
		assert.Contains(t, report.Diagnostics[0].Reason, "no record with id 9")
	})

	t.Run("first matching record wins", func(t *testing.T) {
		data := []byte(`[{"id":1,"name":"A"},{"id":1,"name":"B"}]`)
		units := []TranslatedUnit{{RecordID: 1, TranslatedText: "Z", Path: "name"}}

		out, _, err := ReconstructByID(data, "Items.json", units, nameSpec)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":1,"name":"Z"},{"id":1,"name":"B"}]`, string(out))
	})

	t.Run("parse failure is fatal", func(t *testing.T) {
		_, _, err := ReconstructByID([]byte(`[{"id":1,`), "Items.json", nil, RecordSpec{})
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "Items.json", pe.Source)
	})

	t.Run("non-array root is a parse failure", func(t *testing.T) {
		_, _, err := ReconstructByID([]byte(`{"id":1}`), "Items.json", nil, RecordSpec{})
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
	})
}

func TestReconstructByIndex(t *testing.T) {
	data := []byte(`[null, {"id":1,"name":"Cave"}, {"id":2,"name":"Town"}]`)

	t.Run("applies when index and id agree", func(t *testing.T) {
		units := []TranslatedUnit{{RecordID: 2, OriginalText: "Town", TranslatedText: "Pueblo", Path: "[2].name"}}
		out, report, err := ReconstructByIndex(data, "MapInfos.json", units, nameSpec)
		require.NoError(t, err)
		assert.JSONEq(t, `[null, {"id":1,"name":"Cave"}, {"id":2,"name":"Pueblo"}]`, string(out))
		assert.Equal(t, 1, report.Applied)
	})

	t.Run("id mismatch leaves document unchanged", func(t *testing.T) {
		units := []TranslatedUnit{{RecordID: 1, OriginalText: "Cave", TranslatedText: "Cueva", Path: "[2].name"}}
		out, report, err := ReconstructByIndex(data, "MapInfos.json", units, nameSpec)
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(out))
		require.Len(t, report.Diagnostics, 1)
		assert.Contains(t, report.Diagnostics[0].Reason, "has id 2, unit expects 1")
	})

	t.Run("rejects paths without leading index", func(t *testing.T) {
		units := []TranslatedUnit{{RecordID: 1, TranslatedText: "Cueva", Path: "name"}}
		out, report, err := ReconstructByIndex(data, "MapInfos.json", units, nameSpec)
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(out))
		assert.Equal(t, 1, report.Skipped())
	})

	t.Run("null slot and out of range index are skipped", func(t *testing.T) {
		units := []TranslatedUnit{
			{RecordID: 0, TranslatedText: "x", Path: "[0].name"},
			{RecordID: 5, TranslatedText: "y", Path: "[5].name"},
		}
		out, report, err := ReconstructByIndex(data, "MapInfos.json", units, nameSpec)
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(out))
		assert.Equal(t, 2, report.Skipped())
	})
}

func TestRoundTripIdentity(t *testing.T) {
	data := []byte(`[null,{"id":1,"name":"Harold","params":[[1,2],[3.5,4e2]],"note":"<tag:1>","traits":[],"x":null,"flag":true}]`)

	for name, fn := range map[string]func([]byte, string, []TranslatedUnit, RecordSpec) ([]byte, *Report, error){
		"by id":    ReconstructByID,
		"by index": ReconstructByIndex,
	} {
		t.Run(name, func(t *testing.T) {
			out, report, err := fn(data, "Actors.json", nil, actorSpec)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(out))
			assert.True(t, report.Clean())
		})
	}
}

func TestPartialFailureIsolation(t *testing.T) {
	data := []byte(`[null,{"id":1,"name":"A","description":"a"},{"id":2,"name":"B","description":"b"}]`)
	units := []TranslatedUnit{
		{RecordID: 1, TranslatedText: "A2", Path: "[1].name"},
		{RecordID: 1, TranslatedText: "bad", Path: "[1].name[[0"},
		{RecordID: 2, TranslatedText: "bad", Path: "[2].missing"},
		{RecordID: 2, TranslatedText: "b2", Path: "[2].description"},
	}

	out, report, err := ReconstructByIndex(data, "Items.json", units, itemSpec)
	require.NoError(t, err)
	assert.JSONEq(t, `[null,{"id":1,"name":"A2","description":"a"},{"id":2,"name":"B","description":"b2"}]`, string(out))
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 2, report.Skipped())
}

func TestReconstructOnlyTouchesDeclaredTextFields(t *testing.T) {
	data := []byte(`[null,{"id":1,"name":"Cat","list":[{"code":401}],"params":[1,2],"note":"<x>","icon":5}]`)
	spec := RecordSpec{Fields: []Field{{Name: "name"}, {Name: "icon"}}}
	units := []TranslatedUnit{
		{RecordID: 1, TranslatedText: "oops", Path: "[1].id"},
		{RecordID: 1, TranslatedText: "oops", Path: "[1].list"},
		{RecordID: 1, TranslatedText: "oops", Path: "[1].params[0]"},
		{RecordID: 1, TranslatedText: "oops", Path: "[1].note"},
		{RecordID: 1, TranslatedText: "oops", Path: "[1].icon"},
		{RecordID: 1, TranslatedText: "Gato", Path: "[1].name"},
	}

	for name, fn := range map[string]func([]byte, string, []TranslatedUnit, RecordSpec) ([]byte, *Report, error){
		"by id":    ReconstructByID,
		"by index": ReconstructByIndex,
	} {
		t.Run(name, func(t *testing.T) {
			out, report, err := fn(data, "Enemies.json", units, spec)
			require.NoError(t, err)
			assert.JSONEq(t, `[null,{"id":1,"name":"Gato","list":[{"code":401}],"params":[1,2],"note":"<x>","icon":5}]`, string(out))
			assert.Equal(t, 1, report.Applied)
			require.Equal(t, 5, report.Skipped())
			assert.Contains(t, report.Diagnostics[0].Reason, `field "id" is not translatable`)
			assert.Contains(t, report.Diagnostics[1].Reason, `field "list" is not translatable`)
			assert.Contains(t, report.Diagnostics[2].Reason, "is not a record field address")
			assert.Contains(t, report.Diagnostics[3].Reason, `field "note" is not translatable`)
			assert.Contains(t, report.Diagnostics[4].Reason, ErrNotText.Error())
		})
	}
}
