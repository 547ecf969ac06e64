package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeScalar(t *testing.T) {
	out, err := Encode(ScalarValue("Bekerja"))
	require.NoError(t, err)
	assert.Equal(t, "Bekerja", out)
}

func TestEncodeList(t *testing.T) {
	out, err := Encode(ListValue([]string{"A", "B"}))
	require.NoError(t, err)
	assert.Equal(t, `["A","B"]`, out)
}

func TestDecodeRoundTrip(t *testing.T) {
	lists := [][]string{
		{"A"},
		{"A", "B", "C"},
		{"with, comma", `with "quotes"`},
		{},
	}
	for _, list := range lists {
		stored, err := Encode(ListValue(list))
		require.NoError(t, err)
		got := Decode(stored)
		require.True(t, got.IsList)
		assert.Equal(t, list, got.List)
	}
}

func TestDecodeScalar(t *testing.T) {
	got := Decode("plain text answer")
	assert.False(t, got.IsList)
	assert.Equal(t, "plain text answer", got.Scalar)
}

func TestDecodeStripsWrappingQuotes(t *testing.T) {
	// A scalar that was JSON-encoded upstream.
	got := Decode(`"Bekerja"`)
	assert.False(t, got.IsList)
	assert.Equal(t, "Bekerja", got.Scalar)
}

func TestDecodeInvalidJSONArrayFallsBackToScalar(t *testing.T) {
	got := Decode("[not json")
	assert.False(t, got.IsList)
	assert.Equal(t, "[not json", got.Scalar)
}

func TestDecodeNonStringArrayElements(t *testing.T) {
	got := Decode(`[1,2,3]`)
	require.True(t, got.IsList)
	assert.Equal(t, []string{"1", "2", "3"}, got.List)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "A, B", ListValue([]string{"A", "B"}).Display())
	assert.Equal(t, "A", ScalarValue("A").Display())
}

func TestElements(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, ListValue([]string{"A", "B"}).Elements())
	assert.Equal(t, []string{"A"}, ScalarValue("A").Elements())
}
