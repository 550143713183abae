package sdjwt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Jwt is the parsed three-segment compact JWS representation shared by both
// the SD-JWT's own JWT and any key-binding JWT. Claims is generic so callers
// get a typed view (SdJwtClaims, KeyBindingClaims) without a type assertion.
type Jwt[T any] struct {
	Header    map[string]any
	Claims    T
	Signature []byte

	// rawHeader and rawPayload retain the exact base64url segments the JWT
	// was parsed from, so re-serializing a Jwt we only read (never built)
	// reproduces byte-identical output even if json.Marshal would reorder
	// or respace the original.
	rawHeader  string
	rawPayload string
}

// ParseJwt splits a compact "header.payload.signature" string, base64url
// decodes each segment and JSON-unmarshals the header and payload.
func ParseJwt[T any](token string) (*Jwt[T], error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 JWT segments, got %d", ErrDeserialization, len(parts))
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding JWT header: %s", ErrDeserialization, err)
	}
	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding JWT payload: %s", ErrDeserialization, err)
	}
	sigBytes, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding JWT signature: %s", ErrDeserialization, err)
	}

	var header map[string]any
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("%w: parsing JWT header: %s", ErrDeserialization, err)
	}
	var claims T
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return nil, fmt.Errorf("%w: parsing JWT payload: %s", ErrDeserialization, err)
	}

	return &Jwt[T]{
		Header:     header,
		Claims:     claims,
		Signature:  sigBytes,
		rawHeader:  parts[0],
		rawPayload: parts[1],
	}, nil
}

// SigningInput returns the "header.payload" bytes a Signer must sign.
func (j *Jwt[T]) SigningInput() (string, error) {
	header, payload, err := j.encodedSegments()
	if err != nil {
		return "", err
	}
	return header + "." + payload, nil
}

// Compact returns the full "header.payload.signature" compact serialization.
func (j *Jwt[T]) Compact() (string, error) {
	input, err := j.SigningInput()
	if err != nil {
		return "", err
	}
	return input + "." + base64.RawURLEncoding.EncodeToString(j.Signature), nil
}

func (j *Jwt[T]) encodedSegments() (string, string, error) {
	header := j.rawHeader
	if header == "" {
		headerBytes, err := json.Marshal(j.Header)
		if err != nil {
			return "", "", fmt.Errorf("%w: encoding JWT header: %s", ErrDeserialization, err)
		}
		header = base64.RawURLEncoding.EncodeToString(headerBytes)
	}
	payload := j.rawPayload
	if payload == "" {
		payloadBytes, err := json.Marshal(j.Claims)
		if err != nil {
			return "", "", fmt.Errorf("%w: encoding JWT payload: %s", ErrDeserialization, err)
		}
		payload = base64.RawURLEncoding.EncodeToString(payloadBytes)
	}
	return header, payload, nil
}

// NewJwt builds an unsigned Jwt from a header and claims value, forcing
// re-derivation of the raw segments from Header/Claims on the next call to
// SigningInput/Compact.
func NewJwt[T any](header map[string]any, claims T) *Jwt[T] {
	return &Jwt[T]{Header: header, Claims: claims}
}

// Signer produces the raw signature bytes over signingInput for the
// algorithm named in header["alg"]. Implementations wrap a specific JWS
// library or external signing service; this package never implements one
// itself, so that callers choose their own key management and algorithm
// support.
type Signer interface {
	Sign(header map[string]any, signingInput []byte) ([]byte, error)
}
