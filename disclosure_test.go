package sdjwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDisclosure_ObjectProperty(t *testing.T) {
	disc, err := ParseDisclosure("WyI2cU1RdlJMNWhhaiIsICJmYW1pbHlfbmFtZSIsICJNw7ZiaXVzIl0")
	require.NoError(t, err)
	require.NotNil(t, disc.ClaimName())
	assert.Equal(t, "family_name", *disc.ClaimName())
	assert.Equal(t, "Möbius", disc.ClaimValue())
	assert.Equal(t, "6qMQvRL5haj", disc.Salt())
}

func TestParseDisclosure_ArrayElement(t *testing.T) {
	disc, err := ParseDisclosure("WyJsa2x4RjVqTVlsR1RQVW92TU5JdkNBIiwgIkZSIl0")
	require.NoError(t, err)
	assert.Nil(t, disc.ClaimName())
	assert.Equal(t, "FR", disc.ClaimValue())
}

func TestParseDisclosure_InvalidBase64(t *testing.T) {
	_, err := ParseDisclosure("not base64 at all!!!")
	assert.ErrorIs(t, err, ErrInvalidDisclosure)
}

func TestParseDisclosure_WrongArrayLength(t *testing.T) {
	badOneElement := "WyJzYWx0Il0" // base64url of ["salt"]
	_, err := ParseDisclosure(badOneElement)
	assert.ErrorIs(t, err, ErrInvalidDisclosure)
}

func TestNewDisclosure_RoundTripsThroughParse(t *testing.T) {
	name := "given_name"
	disc, err := NewDisclosure("2GLC42sKQveCfGfryNRN9w", &name, "John")
	require.NoError(t, err)

	reparsed, err := ParseDisclosure(disc.ToWire())
	require.NoError(t, err)
	assert.True(t, disc.Equal(reparsed))
}

func TestNewDisclosure_WireHasSpacesAfterCommas(t *testing.T) {
	// The specification requires the disclosure array to serialize with a
	// space after each comma; this is load-bearing because digests are
	// taken over these exact bytes.
	name := "family_name"
	disc, err := NewDisclosure("6qMQvRL5haj", &name, "Möbius")
	require.NoError(t, err)
	assert.Equal(t, "WyI2cU1RdlJMNWhhaiIsICJmYW1pbHlfbmFtZSIsICJNw7ZiaXVzIl0", disc.ToWire())
}

func TestDisclosure_EqualIsFalseForNilOrDifferent(t *testing.T) {
	name := "a"
	d1, _ := NewDisclosure("salt1234567890123", &name, "v")
	d2, _ := NewDisclosure("salt1234567890124", &name, "v")
	assert.False(t, d1.Equal(d2))
	assert.False(t, d1.Equal(nil))
	assert.True(t, d1.Equal(d1))
}
