package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitJSONPointer(t *testing.T) {
	segments, err := splitJSONPointer("/address/street_address")
	require.NoError(t, err)
	assert.Equal(t, []string{"address", "street_address"}, segments)
}

func TestSplitJSONPointer_EmptyYieldsNil(t *testing.T) {
	segments, err := splitJSONPointer("")
	require.NoError(t, err)
	assert.Nil(t, segments)
}

func TestSplitJSONPointer_MustStartWithSlash(t *testing.T) {
	_, err := splitJSONPointer("address")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestSplitJSONPointer_UnescapesTildeTokens(t *testing.T) {
	segments, err := splitJSONPointer("/a~1b/c~0d")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b", "c~d"}, segments)
}

func TestResolveLocation_ObjectProperty(t *testing.T) {
	root := map[string]any{
		"address": map[string]any{"locality": "Berlin"},
	}
	loc, err := resolveLocation(root, []string{"address", "locality"})
	require.NoError(t, err)
	v, ok := loc.get()
	require.True(t, ok)
	assert.Equal(t, "Berlin", v)
}

func TestResolveLocation_ArrayIndex(t *testing.T) {
	root := map[string]any{
		"nationalities": []any{"DE", "US"},
	}
	loc, err := resolveLocation(root, []string{"nationalities", "1"})
	require.NoError(t, err)
	require.True(t, loc.isArray)
	v, ok := loc.get()
	require.True(t, ok)
	assert.Equal(t, "US", v)
}

func TestResolveLocation_SetReplacesArrayElement(t *testing.T) {
	root := map[string]any{"values": []any{"a", "b", "c"}}
	loc, err := resolveLocation(root, []string{"values", "1"})
	require.NoError(t, err)
	loc.set("replaced")
	assert.Equal(t, "replaced", root["values"].([]any)[1])
}

func TestResolveLocation_DeleteObjectProperty(t *testing.T) {
	root := map[string]any{"a": "b"}
	loc, err := resolveLocation(root, []string{"a"})
	require.NoError(t, err)
	v, ok := loc.delete()
	require.True(t, ok)
	assert.Equal(t, "b", v)
	_, exists := root["a"]
	assert.False(t, exists)
}

func TestResolveLocation_InvalidIntermediateSegment(t *testing.T) {
	root := map[string]any{"a": "scalar"}
	_, err := resolveLocation(root, []string{"a", "b"})
	assert.ErrorIs(t, err, ErrInvalidPath)
}
