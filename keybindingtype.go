package sdjwt

import (
	"encoding/json"
	"fmt"
)

// RequiredKeyBindingKind discriminates the variant held by a
// RequiredKeyBinding, mirroring the "cnf" claim's possible shapes from
// RFC 7800 and the SD-JWT specification.
type RequiredKeyBindingKind int

const (
	// KeyBindingJwk holds the holder's public key directly as a JWK, under
	// cnf.jwk.
	KeyBindingJwk RequiredKeyBindingKind = iota
	// KeyBindingJwe holds the holder's public key encrypted to the issuer,
	// under cnf.jwe.
	KeyBindingJwe
	// KeyBindingKid references a key by identifier, under cnf.kid.
	KeyBindingKid
	// KeyBindingJwu references a key hosted at a URL, under cnf.jwu (with an
	// accompanying cnf.kid naming which key at that URL).
	KeyBindingJwu
	// KeyBindingCustom carries an arbitrary confirmation object this package
	// does not otherwise model, preserved verbatim.
	KeyBindingCustom
)

// RequiredKeyBinding is a Go encoding of the "cnf" confirmation claim as a
// tagged union: Go has no native sum type, so the active variant is recorded
// in Kind and only the fields that variant uses are meaningful.
type RequiredKeyBinding struct {
	Kind RequiredKeyBindingKind

	Jwk    map[string]any // KeyBindingJwk
	Jwe    string         // KeyBindingJwe
	Kid    string         // KeyBindingKid, and the key name for KeyBindingJwu
	Jwu    string         // KeyBindingJwu
	Custom map[string]any // KeyBindingCustom
}

// NewJwkKeyBinding builds a RequiredKeyBinding wrapping a JWK.
func NewJwkKeyBinding(jwk map[string]any) *RequiredKeyBinding {
	return &RequiredKeyBinding{Kind: KeyBindingJwk, Jwk: jwk}
}

// NewJweKeyBinding builds a RequiredKeyBinding wrapping an encrypted JWK.
func NewJweKeyBinding(jwe string) *RequiredKeyBinding {
	return &RequiredKeyBinding{Kind: KeyBindingJwe, Jwe: jwe}
}

// NewKidKeyBinding builds a RequiredKeyBinding that names a key by id.
func NewKidKeyBinding(kid string) *RequiredKeyBinding {
	return &RequiredKeyBinding{Kind: KeyBindingKid, Kid: kid}
}

// NewJwuKeyBinding builds a RequiredKeyBinding that references a key hosted
// at a JWK-set URL.
func NewJwuKeyBinding(jwu, kid string) *RequiredKeyBinding {
	return &RequiredKeyBinding{Kind: KeyBindingJwu, Jwu: jwu, Kid: kid}
}

// NewCustomKeyBinding wraps an arbitrary confirmation object verbatim.
func NewCustomKeyBinding(custom map[string]any) *RequiredKeyBinding {
	return &RequiredKeyBinding{Kind: KeyBindingCustom, Custom: custom}
}

// MarshalJSON implements json.Marshaler.
func (r RequiredKeyBinding) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KeyBindingJwk:
		return json.Marshal(map[string]any{"jwk": r.Jwk})
	case KeyBindingJwe:
		return json.Marshal(map[string]any{"jwe": r.Jwe})
	case KeyBindingKid:
		return json.Marshal(map[string]any{"kid": r.Kid})
	case KeyBindingJwu:
		return json.Marshal(map[string]any{"jwu": r.Jwu, "kid": r.Kid})
	case KeyBindingCustom:
		return json.Marshal(r.Custom)
	default:
		return nil, fmt.Errorf("%w: unknown RequiredKeyBindingKind %d", ErrDataTypeMismatch, r.Kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler, selecting a variant from the
// object's keys in the precedence order "jwk", "jwe", "jwu", "kid" ("jwu"
// before "kid", since a Jwu binding also carries a "kid"), and falling back
// to KeyBindingCustom when none of them is present.
func (r *RequiredKeyBinding) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: cnf is not an object: %s", ErrDeserialization, err)
	}

	if jwk, ok := raw["jwk"]; ok {
		obj, ok := jwk.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: cnf.jwk is not an object", ErrDataTypeMismatch)
		}
		*r = RequiredKeyBinding{Kind: KeyBindingJwk, Jwk: obj}
		return nil
	}
	if jwe, ok := raw["jwe"]; ok {
		s, ok := jwe.(string)
		if !ok {
			return fmt.Errorf("%w: cnf.jwe is not a string", ErrDataTypeMismatch)
		}
		*r = RequiredKeyBinding{Kind: KeyBindingJwe, Jwe: s}
		return nil
	}
	if jwu, ok := raw["jwu"]; ok {
		s, ok := jwu.(string)
		if !ok {
			return fmt.Errorf("%w: cnf.jwu is not a string", ErrDataTypeMismatch)
		}
		kid, _ := raw["kid"].(string)
		*r = RequiredKeyBinding{Kind: KeyBindingJwu, Jwu: s, Kid: kid}
		return nil
	}
	if kid, ok := raw["kid"]; ok {
		s, ok := kid.(string)
		if !ok {
			return fmt.Errorf("%w: cnf.kid is not a string", ErrDataTypeMismatch)
		}
		*r = RequiredKeyBinding{Kind: KeyBindingKid, Kid: s}
		return nil
	}

	*r = RequiredKeyBinding{Kind: KeyBindingCustom, Custom: raw}
	return nil
}
