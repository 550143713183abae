package sdjwt

import (
	"context"
	"encoding/json"
	"fmt"
)

// KeyBindingClaims is the payload of a key-binding JWT: proof, bound to a
// specific presentation, that the holder controls the key named in the
// SD-JWT's "cnf" claim.
type KeyBindingClaims struct {
	Nonce  string         `json:"nonce"`
	Aud    string         `json:"aud"`
	Iat    int64          `json:"iat"`
	SDHash string         `json:"sd_hash"`
	Extra  map[string]any `json:"-"`
}

// MarshalJSON implements json.Marshaler, flattening Extra alongside the
// named fields.
func (c KeyBindingClaims) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+4)
	for k, v := range c.Extra {
		out[k] = v
	}
	out["nonce"] = c.Nonce
	out["aud"] = c.Aud
	out["iat"] = c.Iat
	out["sd_hash"] = c.SDHash
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *KeyBindingClaims) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: parsing key-binding claims: %s", ErrDeserialization, err)
	}

	extra := make(map[string]any, len(raw))
	for k, v := range raw {
		extra[k] = v
	}

	nonce, _ := extra["nonce"].(string)
	aud, _ := extra["aud"].(string)
	sdHash, _ := extra["sd_hash"].(string)
	var iat int64
	if v, ok := extra["iat"].(float64); ok {
		iat = int64(v)
	}
	delete(extra, "nonce")
	delete(extra, "aud")
	delete(extra, "iat")
	delete(extra, "sd_hash")

	c.Nonce = nonce
	c.Aud = aud
	c.Iat = iat
	c.SDHash = sdHash
	c.Extra = extra
	return nil
}

// KeyBindingJwt is a parsed or freshly built key-binding JWT, always using
// the "kb+jwt" typ header per the specification.
type KeyBindingJwt struct {
	Jwt *Jwt[KeyBindingClaims]
}

// KeyBindingJwtType is the required "typ" header value for a key-binding
// JWT.
const KeyBindingJwtType = "kb+jwt"

// ParseKeyBindingJwt parses a compact key-binding JWT and validates that its
// "typ" header and algorithm are acceptable.
func ParseKeyBindingJwt(token string) (*KeyBindingJwt, error) {
	jwt, err := ParseJwt[KeyBindingClaims](token)
	if err != nil {
		return nil, err
	}
	if err := validateKeyBindingHeader(jwt.Header); err != nil {
		return nil, err
	}
	return &KeyBindingJwt{Jwt: jwt}, nil
}

func validateKeyBindingHeader(header map[string]any) error {
	typ, _ := header["typ"].(string)
	if typ != KeyBindingJwtType {
		return fmt.Errorf("%w: key-binding JWT typ must be %q, got %q", ErrDeserialization, KeyBindingJwtType, typ)
	}
	alg, _ := header["alg"].(string)
	if alg == "" || alg == "none" {
		return fmt.Errorf("%w: key-binding JWT must declare a signing algorithm other than \"none\"", ErrDeserialization)
	}
	return nil
}

// NewKeyBindingJwt builds an unsigned key-binding JWT from already-computed
// fields, including a pre-computed sd_hash. Most callers should instead use
// KeyBindingJwtBuilder.Finish, which derives sd_hash from the presentation
// being bound to and performs the signing this constructor leaves to the
// caller.
func NewKeyBindingJwt(alg, nonce, aud string, iat int64, sdHash string, extra map[string]any) (*KeyBindingJwt, error) {
	if alg == "" || alg == "none" {
		return nil, fmt.Errorf("%w: key-binding JWT must declare a signing algorithm other than \"none\"", ErrDataTypeMismatch)
	}
	header := map[string]any{"typ": KeyBindingJwtType, "alg": alg}
	claims := KeyBindingClaims{Nonce: nonce, Aud: aud, Iat: iat, SDHash: sdHash, Extra: extra}
	return &KeyBindingJwt{Jwt: NewJwt(header, claims)}, nil
}

// ComputeSDHash returns the base64url-unpadded digest, under hasher, of the
// presentation string (the SD-JWT plus its disclosures, WITHOUT any
// key-binding JWT appended) that a key-binding JWT's sd_hash claim must
// name. hasher must match the SD-JWT's own "_sd_alg", since a verifier will
// recompute this digest the same way.
func ComputeSDHash(hasher Hasher, presentation string) string {
	return EncodedDigest(hasher, presentation)
}

// KeyBindingJwtBuilder assembles a holder-side key-binding JWT bound to a
// specific SD-JWT presentation.
type KeyBindingJwtBuilder struct {
	nonce string
	aud   string
	iat   int64
	extra map[string]any
}

// NewKeyBindingJwtBuilder starts a KeyBindingJwtBuilder.
func NewKeyBindingJwtBuilder() *KeyBindingJwtBuilder {
	return &KeyBindingJwtBuilder{}
}

// SetNonce sets the "nonce" claim, normally copied verbatim from the
// verifier's request.
func (b *KeyBindingJwtBuilder) SetNonce(nonce string) *KeyBindingJwtBuilder {
	b.nonce = nonce
	return b
}

// SetAud sets the "aud" claim, normally the verifier's identifier.
func (b *KeyBindingJwtBuilder) SetAud(aud string) *KeyBindingJwtBuilder {
	b.aud = aud
	return b
}

// SetIat sets the "iat" claim.
func (b *KeyBindingJwtBuilder) SetIat(iat int64) *KeyBindingJwtBuilder {
	b.iat = iat
	return b
}

// SetCustom adds a custom claim to the key-binding JWT payload, alongside
// the reserved nonce/aud/iat/sd_hash properties.
func (b *KeyBindingJwtBuilder) SetCustom(key string, value any) *KeyBindingJwtBuilder {
	if b.extra == nil {
		b.extra = make(map[string]any)
	}
	b.extra[key] = value
	return b
}

// Finish computes sd_hash over sdJwt's current presentation, signs a
// key-binding JWT with signer under alg, and returns a new SdJwt with that
// key-binding JWT attached.
//
// It fails with ErrDataTypeMismatch if alg is "none" or sdJwt already
// carries a key-binding JWT, and with ErrMissingHasher if hasher does not
// match the algorithm named in sdJwt's own "_sd_alg" (a verifier would
// otherwise recompute a different digest than the one this holder sent).
func (b *KeyBindingJwtBuilder) Finish(ctx context.Context, sdJwt *SdJwt, hasher Hasher, alg string, signer Signer) (*SdJwt, error) {
	if alg == "" || alg == "none" {
		return nil, fmt.Errorf("%w: key-binding JWT must declare a signing algorithm other than \"none\"", ErrDataTypeMismatch)
	}
	if sdJwt.KeyBinding != nil {
		return nil, fmt.Errorf("%w: SD-JWT already carries a key-binding JWT", ErrDataTypeMismatch)
	}

	wantAlg := sdJwt.Jwt.Claims.SDAlg
	if wantAlg == "" {
		wantAlg = "sha-256"
	}
	if hasher.AlgName() != wantAlg {
		return nil, fmt.Errorf("%w: SD-JWT declares %q, hasher is %q", ErrMissingHasher, wantAlg, hasher.AlgName())
	}
	if signer == nil {
		return nil, fmt.Errorf("%w: signer must not be nil", ErrJwsSignerFailure)
	}

	presentation, err := sdJwt.Presentation()
	if err != nil {
		return nil, err
	}
	sdHash := ComputeSDHash(hasher, presentation)

	header := map[string]any{"typ": KeyBindingJwtType, "alg": alg}
	claims := KeyBindingClaims{Nonce: b.nonce, Aud: b.aud, Iat: b.iat, SDHash: sdHash, Extra: b.extra}
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

	return &SdJwt{
		Jwt:         sdJwt.Jwt,
		Disclosures: sdJwt.Disclosures,
		KeyBinding:  &KeyBindingJwt{Jwt: jwt},
	}, nil
}
