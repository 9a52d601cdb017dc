package category

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpgm-translator/internal/document"
)

func TestDetect(t *testing.T) {
	tests := map[string]Category{
		"Actors.json":          Actors,
		"data/Weapons.json":    Weapons,
		"www/data/Map001.json": Map,
		"Map1234.json":         Map,
		"MapInfos.json":        MapInfos,
		"CommonEvents.JSON":    CommonEvents,
		"System.json":          System,
		"Troops.json":          Troops,
		"Animations.json":      Unknown,
		"Tilesets.json":        Unknown,
		"Map01.json":           Unknown,
		"Actors.txt":           Unknown,
		"actors.json":          Unknown,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, Detect(name))
		})
	}
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "CommonEvents", CommonEvents.String())
	assert.Equal(t, "Unknown", Category(99).String())
}

// translateAll marks every extracted text so round trips are visible.
func translateAll(units []document.ExtractedUnit) []document.TranslatedUnit {
	out := make([]document.TranslatedUnit, len(units))
	for i, u := range units {
		out[i] = document.Translated(u, "T("+u.Text+")", document.OriginLLM)
	}
	return out
}

func roundTrip(t *testing.T, file, src string) (string, []document.ExtractedUnit, *document.Report) {
	t.Helper()
	units, err := ExtractFile([]byte(src), file)
	require.NoError(t, err)
	out, report, err := ReconstructFile([]byte(src), file, translateAll(units))
	require.NoError(t, err)
	return string(out), units, report
}

func TestActorsRoundTrip(t *testing.T) {
	src := `[null,
		{"id":1,"name":"Harold","nickname":"","profile":"A hero.","note":"<x>"},
		{"id":2,"name":"Therese","nickname":"Priestess","profile":"","note":""}]`

	out, units, report := roundTrip(t, "Actors.json", src)

	require.Len(t, units, 4)
	assert.Equal(t, "[1].name", units[0].Path)
	assert.Equal(t, 4, report.Applied)
	assert.True(t, report.Clean())
	assert.JSONEq(t, `[null,
		{"id":1,"name":"T(Harold)","nickname":"","profile":"T(A hero.)","note":"<x>"},
		{"id":2,"name":"T(Therese)","nickname":"T(Priestess)","profile":"","note":""}]`, out)
}

func TestItemsAreMatchedByID(t *testing.T) {
	src := `[null,{"id":1,"name":"Potion","description":"Heals."},{"id":2,"name":"Ether","description":""}]`
	reordered := `[null,{"id":2,"name":"Ether","description":""},{"id":1,"name":"Potion","description":"Heals."}]`

	units, err := ExtractFile([]byte(src), "Items.json")
	require.NoError(t, err)

	out, report, err := ReconstructFile([]byte(reordered), "Items.json", translateAll(units))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Applied)
	assert.JSONEq(t, `[null,{"id":2,"name":"T(Ether)","description":""},{"id":1,"name":"T(Potion)","description":"T(Heals.)"}]`, string(out))
}

func TestMapInfosRejectsDriftedPositions(t *testing.T) {
	src := `[null,{"id":1,"name":"Town"},{"id":2,"name":"Cave"}]`
	drifted := `[null,{"id":2,"name":"Cave"},{"id":1,"name":"Town"}]`

	units, err := ExtractFile([]byte(src), "MapInfos.json")
	require.NoError(t, err)

	out, report, err := ReconstructFile([]byte(drifted), "MapInfos.json", translateAll(units))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Applied)
	assert.Equal(t, 2, report.Skipped())
	assert.JSONEq(t, drifted, string(out))
}

func TestCommonEventsRoundTrip(t *testing.T) {
	src := `[null,
		{"id":1,"name":"Intro","list":[
			{"code":101,"indent":0,"parameters":["",0,0,2,"Guide"]},
			{"code":401,"indent":0,"parameters":["Welcome!"]},
			{"code":102,"indent":0,"parameters":[["Go","Stay"],1,0,2,0]},
			{"code":355,"indent":0,"parameters":["console.log('x')"]},
			{"code":0,"indent":0,"parameters":[]}]},
		{"id":2,"name":"","list":[{"code":405,"indent":0,"parameters":["Once upon a time"]}]}]`

	out, units, report := roundTrip(t, "CommonEvents.json", src)

	paths := make([]string, len(units))
	for i, u := range units {
		paths[i] = u.Path
	}
	assert.Equal(t, []string{
		"[1].name",
		"[1].list[0].parameters[4]",
		"[1].list[1].parameters[0]",
		"[1].list[2].parameters[0][0]",
		"[1].list[2].parameters[0][1]",
		"[2].list[0].parameters[0]",
	}, paths)
	assert.True(t, report.Clean())
	assert.Equal(t, len(units), report.Applied)
	assert.Contains(t, out, `"T(Welcome!)"`)
	assert.Contains(t, out, `"T(Stay)"`)
	assert.Contains(t, out, `"T(Once upon a time)"`)
	assert.Contains(t, out, `"console.log('x')"`)
}

func TestCommonEventsOwnerMismatch(t *testing.T) {
	src := `[null,{"id":1,"name":"A","list":[{"code":401,"parameters":["Hi"]}]}]`
	units := []document.TranslatedUnit{
		{RecordID: 5, TranslatedText: "Hola", Path: "[1].list[0].parameters[0]"},
		{RecordID: 1, TranslatedText: "Hola", Path: "[3].list[0].parameters[0]"},
	}

	out, report, err := ReconstructFile([]byte(src), "CommonEvents.json", units)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(out))
	require.Len(t, report.Diagnostics, 2)
	assert.Contains(t, report.Diagnostics[0].Reason, "belongs to record 1")
	assert.Contains(t, report.Diagnostics[1].Reason, "no command list")
}

func TestNonTextTargetsAreSkipped(t *testing.T) {
	tests := []struct {
		file  string
		src   string
		units []document.TranslatedUnit
	}{
		{
			file: "CommonEvents.json",
			src:  `[null,{"id":1,"name":"A","trigger":0,"list":[{"code":401,"parameters":["Hi"]}]}]`,
			units: []document.TranslatedUnit{
				{RecordID: 1, TranslatedText: "oops", Path: "[1].list"},
				{RecordID: 1, TranslatedText: "oops", Path: "[1].id"},
				{RecordID: 1, TranslatedText: "oops", Path: "[1].trigger"},
			},
		},
		{
			file: "System.json",
			src:  `{"gameTitle":"Quest","elements":["","Fire"],"terms":{"commands":["Fight",null]}}`,
			units: []document.TranslatedUnit{
				{TranslatedText: "oops", Path: "elements"},
				{TranslatedText: "oops", Path: "terms.commands[1]"},
				{TranslatedText: "oops", Path: "terms"},
			},
		},
		{
			file: "Map001.json",
			src:  `{"displayName":"Town","width":17,"events":[null]}`,
			units: []document.TranslatedUnit{
				{TranslatedText: "oops", Path: "width"},
				{TranslatedText: "oops", Path: "events"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			out, report, err := ReconstructFile([]byte(tt.src), tt.file, tt.units)
			require.NoError(t, err)
			assert.JSONEq(t, tt.src, string(out))
			assert.Equal(t, 0, report.Applied)
			assert.Equal(t, len(tt.units), report.Skipped())
		})
	}
}

func TestTroopsRoundTrip(t *testing.T) {
	src := `[null,{"id":4,"name":"Slime*2","pages":[
		{"conditions":{},"list":[{"code":401,"parameters":["Blub!"]}]},
		{"conditions":{},"list":[{"code":401,"parameters":["Blub blub!"]}]}]}]`

	out, units, report := roundTrip(t, "Troops.json", src)

	require.Len(t, units, 3)
	assert.Equal(t, "[1].pages[1].list[0].parameters[0]", units[2].Path)
	assert.Equal(t, uint32(4), units[2].RecordID)
	assert.True(t, report.Clean())
	assert.Contains(t, out, `"T(Blub blub!)"`)
	assert.Contains(t, out, `"T(Slime*2)"`)
}

func TestMapRoundTrip(t *testing.T) {
	src := `{"displayName":"Forest","width":17,"events":[null,
		{"id":1,"name":"EV001","pages":[{"list":[
			{"code":401,"parameters":["Who goes there?"]},
			{"code":0,"parameters":[]}]}]},
		{"id":3,"name":"EV003","pages":[{"list":[]},{"list":[{"code":102,"parameters":[["Fight","Flee"],1]}]}]}]}`

	out, units, report := roundTrip(t, "Map007.json", src)

	require.Len(t, units, 4)
	assert.Equal(t, document.ExtractedUnit{RecordID: 0, Text: "Forest", SourceFile: "Map007.json", Path: "displayName", FieldType: TypeName}, units[0])
	assert.Equal(t, "events[1].pages[0].list[0].parameters[0]", units[1].Path)
	assert.Equal(t, uint32(3), units[3].RecordID)
	assert.Equal(t, "events[2].pages[1].list[0].parameters[0][1]", units[3].Path)
	assert.True(t, report.Clean())
	assert.Contains(t, out, `"T(Forest)"`)
	assert.Contains(t, out, `"T(Flee)"`)
	assert.Contains(t, out, `"EV001"`)
}

func TestSystemRoundTrip(t *testing.T) {
	src := `{"gameTitle":"Quest","currencyUnit":"G","elements":["","Fire","Ice"],
		"equipTypes":["","Weapon"],"switches":["","Door open"],
		"terms":{"basic":["Level","Lv"],"commands":["Fight",null],"params":["Max HP"],
		"messages":{"victory":"%1 was victorious!","defeat":"%1 was defeated."}}}`

	out, units, report := roundTrip(t, "System.json", src)

	paths := make([]string, len(units))
	for i, u := range units {
		assert.Equal(t, uint32(0), u.RecordID)
		paths[i] = u.Path
	}
	assert.Equal(t, []string{
		"gameTitle", "currencyUnit",
		"elements[1]", "elements[2]",
		"equipTypes[1]",
		"terms.basic[0]", "terms.basic[1]",
		"terms.commands[0]",
		"terms.params[0]",
		"terms.messages.defeat", "terms.messages.victory",
	}, paths)
	assert.True(t, report.Clean())
	assert.Contains(t, out, `"T(%1 was victorious!)"`)
	assert.Contains(t, out, `"Door open"`)
}

func TestSystemRejectsRecordScopedUnits(t *testing.T) {
	src := `{"gameTitle":"Quest"}`
	units := []document.TranslatedUnit{{RecordID: 3, TranslatedText: "Aventura", Path: "gameTitle"}}

	out, report, err := ReconstructFile([]byte(src), "System.json", units)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(out))
	assert.Equal(t, 1, report.Skipped())
}

func TestUnknownIsNoop(t *testing.T) {
	src := []byte(`{"anything": [1, 2]}`)

	units, err := ExtractFile(src, "Tilesets.json")
	require.NoError(t, err)
	assert.Empty(t, units)

	out, report, err := ReconstructFile(src, "Tilesets.json", []document.TranslatedUnit{{Path: "anything[0]"}})
	require.NoError(t, err)
	assert.Equal(t, src, out)
	assert.True(t, report.Clean())
}

func TestShapeErrors(t *testing.T) {
	_, err := ExtractFile([]byte(`{"id":1}`), "Actors.json")
	var pe *document.ParseError
	require.ErrorAs(t, err, &pe)

	_, _, err = ReconstructFile([]byte(`[]`), "System.json", nil)
	require.ErrorAs(t, err, &pe)
	assert.True(t, strings.Contains(err.Error(), "expected object"))

	_, _, err = ReconstructFile([]byte(`[`), "Map001.json", nil)
	require.ErrorAs(t, err, &pe)
}

func TestEmptyTranslationSetIsIdentity(t *testing.T) {
	docs := map[string]string{
		"Actors.json":       `[null,{"id":1,"name":"A","nickname":"","profile":"","note":""}]`,
		"CommonEvents.json": `[null,{"id":1,"name":"A","list":[{"code":401,"parameters":["x"]}],"switchId":1,"trigger":0}]`,
		"Map002.json":       `{"displayName":"","events":[null,{"id":1,"pages":[{"list":[{"code":401,"parameters":["x"]}]}]}]}`,
		"System.json":       `{"gameTitle":"Q","terms":{"messages":{"a":"b"}}}`,
	}
	for file, src := range docs {
		t.Run(file, func(t *testing.T) {
			out, report, err := ReconstructFile([]byte(src), file, nil)
			require.NoError(t, err)
			assert.JSONEq(t, src, string(out))
			assert.Equal(t, 0, report.Applied)
		})
	}
}
