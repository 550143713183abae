package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_ConcealObjectProperty(t *testing.T) {
	object := map[string]any{
		"given_name":  "Erika",
		"family_name": "Mustermann",
	}
	enc := NewEncoder(object)
	disc, err := enc.Conceal("/given_name")
	require.NoError(t, err)
	assert.Equal(t, "given_name", *disc.ClaimName())
	assert.Equal(t, "Erika", disc.ClaimValue())

	_, exists := object["given_name"]
	assert.False(t, exists)

	sd, ok := object[DigestsKey].([]any)
	require.True(t, ok)
	require.Len(t, sd, 1)
	assert.Equal(t, EncodedDigest(enc.Hasher(), disc.ToWire()), sd[0])
}

func TestEncoder_ConcealArrayElement(t *testing.T) {
	object := map[string]any{
		"nationalities": []any{"DE", "US"},
	}
	enc := NewEncoder(object)
	disc, err := enc.Conceal("/nationalities/0")
	require.NoError(t, err)
	assert.Nil(t, disc.ClaimName())
	assert.Equal(t, "DE", disc.ClaimValue())

	arr := object["nationalities"].([]any)
	marker, ok := arr[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, EncodedDigest(enc.Hasher(), disc.ToWire()), marker[ArrayDigestKey])
	assert.Equal(t, "US", arr[1])
}

func TestEncoder_ConcealNestedProperty(t *testing.T) {
	object := map[string]any{
		"address": map[string]any{
			"locality": "Berlin",
			"country":  "DE",
		},
	}
	enc := NewEncoder(object)
	_, err := enc.Conceal("/address/locality")
	require.NoError(t, err)

	addr := object["address"].(map[string]any)
	_, exists := addr["locality"]
	assert.False(t, exists)
	assert.Equal(t, "DE", addr["country"])
	assert.Len(t, addr[DigestsKey].([]any), 1)
}

func TestEncoder_ConcealMissingPathFails(t *testing.T) {
	enc := NewEncoder(map[string]any{"a": "b"})
	_, err := enc.Conceal("/nonexistent")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestEncoder_SetSaltSizeRejectsTooSmall(t *testing.T) {
	enc := NewEncoder(map[string]any{})
	err := enc.SetSaltSize(8)
	assert.ErrorIs(t, err, ErrInvalidSaltSize)
}

func TestEncoder_AddDecoysToTopLevel(t *testing.T) {
	object := map[string]any{"a": "b"}
	enc := NewEncoder(object)
	decoys, err := enc.AddDecoys("", 3)
	require.NoError(t, err)
	assert.Len(t, decoys, 3)
	sd := object[DigestsKey].([]any)
	assert.Len(t, sd, 3)
	for _, d := range decoys {
		require.NotNil(t, d.ClaimName())
		assert.GreaterOrEqual(t, len(*d.ClaimName()), 4)
		assert.LessOrEqual(t, len(*d.ClaimName()), 10)
	}
}

func TestEncoder_AddDecoysToArrayHaveNoName(t *testing.T) {
	object := map[string]any{"values": []any{"x"}}
	enc := NewEncoder(object)
	decoys, err := enc.AddDecoys("/values", 2)
	require.NoError(t, err)
	require.Len(t, decoys, 2)
	for _, d := range decoys {
		assert.Nil(t, d.ClaimName())
	}
	arr := object["values"].([]any)
	assert.Len(t, arr, 3)
}

func TestEncoder_AddSDAlgProperty(t *testing.T) {
	object := map[string]any{}
	enc := NewEncoder(object)
	enc.AddSDAlgProperty()
	assert.Equal(t, "sha-256", object[SdAlgKey])
}
