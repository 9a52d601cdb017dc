package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeepsNumbers(t *testing.T) {
	doc, err := Decode([]byte(`{"big": 9007199254740993, "f": 0.10, "e": 1e3}`), "System.json")
	require.NoError(t, err)

	out, err := Encode(doc, "System.json")
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "9007199254740993")
	assert.Contains(t, s, "0.10")
	assert.Contains(t, s, "1e3")
}

func TestDecodeStripsBOM(t *testing.T) {
	doc, err := Decode([]byte("\xef\xbb\xbf[1]"), "Items.json")
	require.NoError(t, err)
	assert.Len(t, doc, 1)
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	_, err := Decode([]byte(`[1] [2]`), "Items.json")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestEncodeDoesNotEscapeHTML(t *testing.T) {
	out, err := Encode(map[string]any{"note": "<hp:10> & more"}, "Items.json")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<hp:10> & more")
	assert.True(t, strings.HasPrefix(string(out), "{\n  \"note\""))
}

func TestEncodeFailure(t *testing.T) {
	_, err := Encode(map[string]any{"bad": make(chan int)}, "Items.json")
	var se *SerializeError
	require.ErrorAs(t, err, &se)
}
