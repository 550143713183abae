package sdjwt

import (
	"context"
	"fmt"
)

// SdJwtBuilder assembles an issuer-side SD-JWT: start from a plain claims
// object, mark selected claims concealable, optionally salt in decoys and a
// confirmation key, then sign to produce the final SdJwt.
type SdJwtBuilder struct {
	encoder     *Encoder
	disclosures []*Disclosure
	header      map[string]any
}

// NewSdJwtBuilder starts a builder over claims, using the SHA-256 Hasher.
func NewSdJwtBuilder(claims map[string]any) *SdJwtBuilder {
	return NewSdJwtBuilderWithHasher(claims, NewSha256Hasher())
}

// NewSdJwtBuilderWithHasher starts a builder using a custom Hasher.
func NewSdJwtBuilderWithHasher(claims map[string]any, hasher Hasher) *SdJwtBuilder {
	return &SdJwtBuilder{
		encoder: NewEncoderWithHasher(claims, hasher),
		header:  map[string]any{"typ": "vc+sd-jwt"},
	}
}

// SetSaltSize overrides the salt size used for subsequently generated
// disclosures and decoys.
func (b *SdJwtBuilder) SetSaltSize(n int) error {
	return b.encoder.SetSaltSize(n)
}

// MakeConcealable conceals the claim addressed by the JSON Pointer path,
// recording the Disclosure the holder will need to later reveal it.
func (b *SdJwtBuilder) MakeConcealable(path string) (*SdJwtBuilder, error) {
	disclosure, err := b.encoder.Conceal(path)
	if err != nil {
		return b, err
	}
	b.disclosures = append(b.disclosures, disclosure)
	return b, nil
}

// AddDecoys adds n decoy digests at path (use "" for the top level). The
// decoys' disclosures are discarded, so no decoy can ever be disclosed.
func (b *SdJwtBuilder) AddDecoys(path string, n int) (*SdJwtBuilder, error) {
	if _, err := b.encoder.AddDecoys(path, n); err != nil {
		return b, err
	}
	return b, nil
}

// RequireKeyBinding sets the "cnf" claim, committing the issued SD-JWT to
// requiring a key-binding JWT signed by the named key at presentation time.
func (b *SdJwtBuilder) RequireKeyBinding(cnf *RequiredKeyBinding) *SdJwtBuilder {
	b.encoder.Object()["cnf"] = cnf
	return b
}

// SetHeader overrides or adds a JWT header property (e.g. "kid"). "typ" and
// "alg" are otherwise managed by Finish.
func (b *SdJwtBuilder) SetHeader(key string, value any) *SdJwtBuilder {
	b.header[key] = value
	return b
}

// Finish stamps "_sd_alg", signs the resulting claims with signer under the
// named algorithm, and returns the issued SdJwt together with every
// disclosure produced by MakeConcealable, which the holder needs to present
// any subset of the concealed claims later. Decoys contribute digests only.
func (b *SdJwtBuilder) Finish(ctx context.Context, signer Signer, alg string) (*SdJwt, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: signer must not be nil", ErrJwsSignerFailure)
	}
	if alg == "" || alg == "none" {
		return nil, fmt.Errorf("%w: alg must not be \"none\"", ErrJwsSignerFailure)
	}

	b.encoder.AddSDAlgProperty()

	header := make(map[string]any, len(b.header)+1)
	for k, v := range b.header {
		header[k] = v
	}
	header["alg"] = alg

	var claims SdJwtClaims
	if err := claims.fromMap(b.encoder.Object()); err != nil {
		return nil, err
	}

	jwt := NewJwt(header, claims)
	signingInput, err := jwt.SigningInput()
	if err != nil {
		return nil, err
	}

	signature, err := signWithContext(ctx, signer, header, []byte(signingInput))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrJwsSignerFailure, err)
	}
	jwt.Signature = signature

	return &SdJwt{Jwt: jwt, Disclosures: b.disclosures}, nil
}

// signWithContext lets a context-aware Signer bail out early on
// cancellation without forcing every Signer implementation to accept a
// context.Context itself.
func signWithContext(ctx context.Context, signer Signer, header map[string]any, signingInput []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return signer.Sign(header, signingInput)
}
