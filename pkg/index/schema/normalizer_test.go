package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsMissingFieldsWithZeroValues(t *testing.T) {
	fields := []Field{
		{Name: "title", Kind: KindString},
		{Name: "pages", Kind: KindInt},
		{Name: "score", Kind: KindFloat},
		{Name: "encrypted", Kind: KindBool},
		{Name: "extra", Kind: KindJSON},
	}

	got := Normalize(Metadata{}, fields)

	require.Len(t, got, 5)
	assert.Equal(t, "", got["title"].Any())
	assert.Equal(t, int64(0), got["pages"].Any())
	assert.Equal(t, 0.0, got["score"].Any())
	assert.Equal(t, false, got["encrypted"].Any())
	assert.Equal(t, map[string]any{}, got["extra"].Any())
}

func TestNormalizeDropsUndeclaredFields(t *testing.T) {
	fields := []Field{{Name: "title", Kind: KindString}}

	got := Normalize(Metadata{
		"title":    StringValue("manual"),
		"producer": StringValue("scanner"),
		"junk":     IntValue(42),
	}, fields)

	require.Len(t, got, 1)
	assert.Equal(t, "manual", got["title"].String())
}

func TestNormalizeCastsToDeclaredKinds(t *testing.T) {
	fields := []Field{
		{Name: "pages", Kind: KindInt},
		{Name: "ratio", Kind: KindFloat},
		{Name: "encrypted", Kind: KindBool},
		{Name: "title", Kind: KindString},
	}

	got := Normalize(Metadata{
		"pages":     StringValue("12"),
		"ratio":     StringValue("0.5"),
		"encrypted": StringValue("Yes"),
		"title":     IntValue(7),
	}, fields)

	assert.Equal(t, int64(12), got["pages"].Int())
	assert.Equal(t, 0.5, got["ratio"].Float())
	assert.Equal(t, true, got["encrypted"].Bool())
	assert.Equal(t, "7", got["title"].String())
}

func TestCastFailuresCollapseToZeroValue(t *testing.T) {
	assert.Equal(t, int64(0), CastToKind(StringValue("not a number"), KindInt).Int())
	assert.Equal(t, 0.0, CastToKind(StringValue("n/a"), KindFloat).Float())
	assert.Equal(t, false, CastToKind(StringValue("nope"), KindBool).Bool())
	assert.Equal(t, map[string]any{}, CastToKind(StringValue("scalar"), KindJSON).JSON())
}

func TestNormalizeNeverPanicsOnArbitraryInput(t *testing.T) {
	fields := []Field{
		{Name: "a", Kind: KindString},
		{Name: "b", Kind: KindInt},
		{Name: "c", Kind: KindFloat},
		{Name: "d", Kind: KindBool},
		{Name: "e", Kind: KindJSON},
	}

	inputs := []Metadata{
		nil,
		{},
		{"a": Value{}, "b": Value{}, "c": Value{}, "d": Value{}, "e": Value{}},
		{"a": JSONValue(map[string]any{"nested": []any{1, "x"}}), "b": BoolValue(true),
			"c": StringValue(""), "d": FloatValue(3.2), "e": IntValue(-1)},
	}

	for _, md := range inputs {
		got := Normalize(md, fields)
		require.Len(t, got, len(fields))
		for _, f := range fields {
			assert.Equal(t, f.Kind, got[f.Name].Kind())
		}
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	md := Metadata{
		"title": StringValue("doc"),
		"pages": IntValue(3),
		"meta":  JSONValue(map[string]any{"k": "v"}),
	}

	raw, err := json.Marshal(md)
	require.NoError(t, err)

	var back Metadata
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.Equal(t, "doc", back["title"].String())
	assert.Equal(t, int64(3), back["pages"].Int())
	assert.Equal(t, KindJSON, back["meta"].Kind())
}

func TestFromAnyTagsJSONNumbers(t *testing.T) {
	assert.Equal(t, KindInt, FromAny(float64(5)).Kind())
	assert.Equal(t, KindFloat, FromAny(5.5).Kind())
	assert.Equal(t, KindBool, FromAny(true).Kind())
	assert.Equal(t, KindString, FromAny(nil).Kind())
}
