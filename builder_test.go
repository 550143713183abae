package sdjwt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSdJwtBuilder_FinishProducesSdAlgAndHeader(t *testing.T) {
	builder := NewSdJwtBuilder(map[string]any{"given_name": "Erika"})
	_, err := builder.MakeConcealable("/given_name")
	require.NoError(t, err)

	issued, err := builder.Finish(context.Background(), fakeSigner{}, "HS256")
	require.NoError(t, err)

	assert.Equal(t, "HS256", issued.Jwt.Header["alg"])
	assert.Equal(t, "vc+sd-jwt", issued.Jwt.Header["typ"])
	assert.Equal(t, "sha-256", issued.Jwt.Claims.SDAlg)
	assert.Equal(t, []byte("fake-signature"), issued.Jwt.Signature)
}

func TestSdJwtBuilder_FinishRejectsNoneAlg(t *testing.T) {
	builder := NewSdJwtBuilder(map[string]any{"a": "b"})
	_, err := builder.Finish(context.Background(), fakeSigner{}, "none")
	assert.ErrorIs(t, err, ErrJwsSignerFailure)
}

func TestSdJwtBuilder_FinishRejectsNilSigner(t *testing.T) {
	builder := NewSdJwtBuilder(map[string]any{"a": "b"})
	_, err := builder.Finish(context.Background(), nil, "HS256")
	assert.ErrorIs(t, err, ErrJwsSignerFailure)
}

func TestSdJwtBuilder_RequireKeyBindingSetsCnf(t *testing.T) {
	builder := NewSdJwtBuilder(map[string]any{"a": "b"})
	builder.RequireKeyBinding(NewKidKeyBinding("holder-key-1"))

	issued, err := builder.Finish(context.Background(), fakeSigner{}, "HS256")
	require.NoError(t, err)
	require.NotNil(t, issued.Jwt.Claims.Cnf)
	assert.Equal(t, KeyBindingKid, issued.Jwt.Claims.Cnf.Kind)
	assert.Equal(t, "holder-key-1", issued.Jwt.Claims.Cnf.Kid)
}

func TestSdJwtBuilder_SetHeaderIsPreserved(t *testing.T) {
	builder := NewSdJwtBuilder(map[string]any{"a": "b"})
	builder.SetHeader("kid", "issuer-key-1")

	issued, err := builder.Finish(context.Background(), fakeSigner{}, "HS256")
	require.NoError(t, err)
	assert.Equal(t, "issuer-key-1", issued.Jwt.Header["kid"])
}

func TestSdJwtBuilder_ContextCancellationStopsSigning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder := NewSdJwtBuilder(map[string]any{"a": "b"})
	_, err := builder.Finish(ctx, fakeSigner{}, "HS256")
	assert.ErrorIs(t, err, ErrJwsSignerFailure)
}
