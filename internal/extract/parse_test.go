package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archgram/archgram/internal/domain/schema"
)

func TestFirstJSONSpan_InsideProse(t *testing.T) {
	raw := "Sure! Here is the inventory you asked for:\n```json\n{\"categories\":[]}\n```\nLet me know if you need anything else."
	span, ok := FirstJSONSpan(raw)
	require.True(t, ok)
	assert.JSONEq(t, `{"categories":[]}`, string(span))
}

func TestFirstJSONSpan_SkipsBrokenPrefix(t *testing.T) {
	raw := `{oops not json} and then ["a","b"]`
	span, ok := FirstJSONSpan(raw)
	require.True(t, ok)
	assert.JSONEq(t, `["a","b"]`, string(span))
}

func TestFirstJSONSpan_NoJSON(t *testing.T) {
	_, ok := FirstJSONSpan("the model refused to answer")
	assert.False(t, ok)
}

func TestDecodeInventory_DropsMalformedUnits(t *testing.T) {
	span := []byte(`{"categories":[
		{"name":"web tier","components":[
			{"name":"nginx","type":"network","relationships":["app server"]},
			"not an object",
			{"type":"compute"}
		]},
		42,
		{"components":[{"name":"orphan"}]}
	]}`)

	inv, ok := decodeInventory(span)
	require.True(t, ok)
	require.Len(t, inv.Categories, 1)
	require.Len(t, inv.Categories[0].Components, 1)
	assert.Equal(t, "nginx", inv.Categories[0].Components[0].Name)
	assert.Equal(t, schema.TypeNetwork, inv.Categories[0].Components[0].Type)
}

func TestDecodeInventory_BareCategoryArray(t *testing.T) {
	span := []byte(`[{"name":"data","components":[{"name":"rds","type":"database"}]}]`)
	inv, ok := decodeInventory(span)
	require.True(t, ok)
	require.Len(t, inv.Categories, 1)
	assert.Equal(t, "data", inv.Categories[0].Name)
}

func TestDecodeInventory_Defaults(t *testing.T) {
	span := []byte(`{"categories":[{"name":"misc","components":[{"name":"thing","type":"quantum"}]}]}`)
	inv, ok := decodeInventory(span)
	require.True(t, ok)
	c := inv.Categories[0].Components[0]
	assert.Equal(t, schema.TypeUnrecognized, c.Type)
	assert.NotNil(t, c.Relationships)
	assert.Empty(t, c.Relationships)
}

func TestDecodeInventory_NothingUsable(t *testing.T) {
	_, ok := decodeInventory([]byte(`{"categories":["x",1]}`))
	assert.False(t, ok)
}

func TestDecodeSummary_ObjectAndBareString(t *testing.T) {
	s, ok := decodeSummary([]byte(`{"summary":"  three-tier web app  "}`))
	require.True(t, ok)
	assert.Equal(t, "three-tier web app", s.Summary)

	s, ok = decodeSummary([]byte(`"a bare string summary"`))
	require.True(t, ok)
	assert.Equal(t, "a bare string summary", s.Summary)

	_, ok = decodeSummary([]byte(`{"summary":"   "}`))
	assert.False(t, ok)
}

func TestDecodeDiagram_DefaultFormat(t *testing.T) {
	d, ok := decodeDiagram([]byte(`{"syntax":"flowchart LR\n a --> b"}`))
	require.True(t, ok)
	assert.Equal(t, schema.FormatMermaid, d.Format)

	_, ok = decodeDiagram([]byte(`{"format":"mermaid","syntax":""}`))
	assert.False(t, ok)
}
