package jsonx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePreservesNumbers(t *testing.T) {
	body := []byte(`{"id":9007199254740993,"ratio":0.25,"tags":["a"]}`)

	v, err := Decode(body)
	require.NoError(t, err)

	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("9007199254740993"), m["id"])

	out, err := Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, string(body), string(out))
	assert.Contains(t, string(out), "9007199254740993")
}

func TestDecodeRejectsInvalid(t *testing.T) {
	_, err := Decode([]byte(`{"id":`))
	assert.Error(t, err)
}

func TestUnmarshalStd(t *testing.T) {
	var m map[string]any
	require.NoError(t, Unmarshal([]byte(`{"n":3}`), &m))
	assert.Equal(t, float64(3), m["n"])
}
