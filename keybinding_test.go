package sdjwt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBindingJwt_RoundTrip(t *testing.T) {
	kb, err := NewKeyBindingJwt("HS256", "n0nce", "https://verifier.example.com", 1700000000, "abcDEF123", nil)
	require.NoError(t, err)
	kb.Jwt.Signature = []byte("sig")

	compact, err := kb.Jwt.Compact()
	require.NoError(t, err)

	parsed, err := ParseKeyBindingJwt(compact)
	require.NoError(t, err)
	assert.Equal(t, "n0nce", parsed.Jwt.Claims.Nonce)
	assert.Equal(t, "https://verifier.example.com", parsed.Jwt.Claims.Aud)
	assert.Equal(t, "abcDEF123", parsed.Jwt.Claims.SDHash)
	assert.Equal(t, KeyBindingJwtType, parsed.Jwt.Header["typ"])
}

func TestNewKeyBindingJwt_RejectsNoneAlg(t *testing.T) {
	_, err := NewKeyBindingJwt("none", "n", "aud", 0, "hash", nil)
	assert.ErrorIs(t, err, ErrDataTypeMismatch)
}

func TestParseKeyBindingJwt_RejectsWrongTyp(t *testing.T) {
	jwt := NewJwt[KeyBindingClaims](map[string]any{"typ": "jwt", "alg": "HS256"}, KeyBindingClaims{})
	jwt.Signature = []byte("sig")
	compact, err := jwt.Compact()
	require.NoError(t, err)

	_, err = ParseKeyBindingJwt(compact)
	assert.ErrorIs(t, err, ErrDeserialization)
}

func TestComputeSDHash_IsDeterministic(t *testing.T) {
	hasher := NewSha256Hasher()
	h1 := ComputeSDHash(hasher, "header.payload~disclosure~")
	h2 := ComputeSDHash(hasher, "header.payload~disclosure~")
	assert.Equal(t, h1, h2)

	h3 := ComputeSDHash(hasher, "different")
	assert.NotEqual(t, h1, h3)
}

func TestKeyBindingJwtBuilder_Finish(t *testing.T) {
	issued := issueTestSdJwt(t)
	hasher := NewSha256Hasher()

	presentation, err := issued.Presentation()
	require.NoError(t, err)
	wantSDHash := EncodedDigest(hasher, presentation)

	bound, err := NewKeyBindingJwtBuilder().
		SetNonce("n0nce").
		SetAud("https://verifier.example.com").
		SetIat(1700000000).
		Finish(context.Background(), issued, hasher, "HS256", fakeSigner{})
	require.NoError(t, err)
	require.NotNil(t, bound.KeyBinding)

	assert.Equal(t, "n0nce", bound.KeyBinding.Jwt.Claims.Nonce)
	assert.Equal(t, "https://verifier.example.com", bound.KeyBinding.Jwt.Claims.Aud)
	assert.Equal(t, wantSDHash, bound.KeyBinding.Jwt.Claims.SDHash)
	assert.NotEmpty(t, bound.KeyBinding.Jwt.Signature)

	compact, err := bound.KeyBinding.Jwt.Compact()
	require.NoError(t, err)
	assert.NotEmpty(t, compact)
}

func TestKeyBindingJwtBuilder_Finish_RejectsNoneAlg(t *testing.T) {
	issued := issueTestSdJwt(t)
	_, err := NewKeyBindingJwtBuilder().Finish(context.Background(), issued, NewSha256Hasher(), "none", fakeSigner{})
	assert.ErrorIs(t, err, ErrDataTypeMismatch)
}

func TestKeyBindingJwtBuilder_Finish_RejectsAlreadyBound(t *testing.T) {
	issued := issueTestSdJwt(t)
	bound, err := NewKeyBindingJwtBuilder().Finish(context.Background(), issued, NewSha256Hasher(), "HS256", fakeSigner{})
	require.NoError(t, err)

	_, err = NewKeyBindingJwtBuilder().Finish(context.Background(), bound, NewSha256Hasher(), "HS256", fakeSigner{})
	assert.ErrorIs(t, err, ErrDataTypeMismatch)
}

func TestKeyBindingJwtBuilder_Finish_RejectsMismatchedHasher(t *testing.T) {
	issued := issueTestSdJwt(t)
	issued.Jwt.Claims.SDAlg = "sha-256"

	_, err := NewKeyBindingJwtBuilder().Finish(context.Background(), issued, fakeHasher{alg: "sha-512"}, "HS256", fakeSigner{})
	assert.ErrorIs(t, err, ErrMissingHasher)
}
