package sdjwt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Disclosure represents the triple (salt, claim name?, claim value) that an
// issuer removes from a JSON object and transmits out-of-band alongside an
// SD-JWT. A Disclosure with a nil ClaimName discloses an array element; one
// with a non-nil ClaimName discloses an object property.
//
// The wire form is cached at construction/parse time and is never
// re-derived: digests are taken over the exact received bytes (see
// EncodedDigest), so a Disclosure must keep saying the same bytes for as
// long as it exists.
type Disclosure struct {
	salt       string
	claimName  *string
	claimValue any
	wire       string
}

// NewDisclosure builds a Disclosure from its structured fields and computes
// its canonical wire form. Pass a nil claimName to build an array-element
// disclosure.
func NewDisclosure(salt string, claimName *string, claimValue any) (*Disclosure, error) {
	wire, err := encodeDisclosureWire(salt, claimName, claimValue)
	if err != nil {
		return nil, err
	}
	return &Disclosure{
		salt:       salt,
		claimName:  claimName,
		claimValue: claimValue,
		wire:       wire,
	}, nil
}

// ParseDisclosure base64url-decodes s, JSON-parses the result as a 2- or
// 3-element array, and returns the resulting Disclosure. The original wire
// string s is retained verbatim as ToWire's return value.
func ParseDisclosure(s string) (*Disclosure, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not base64url: %s", ErrInvalidDisclosure, s, err)
	}

	var arr []any
	if err := json.Unmarshal(decoded, &arr); err != nil {
		return nil, fmt.Errorf("%w: decoded disclosure is not a JSON array: %s", ErrInvalidDisclosure, err)
	}

	switch len(arr) {
	case 2:
		salt, ok := arr[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: salt is not a string", ErrInvalidDisclosure)
		}
		return &Disclosure{salt: salt, claimValue: arr[1], wire: s}, nil
	case 3:
		salt, ok := arr[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: salt is not a string", ErrInvalidDisclosure)
		}
		name, ok := arr[1].(string)
		if !ok {
			return nil, fmt.Errorf("%w: claim name is not a string", ErrInvalidDisclosure)
		}
		return &Disclosure{salt: salt, claimName: &name, claimValue: arr[2], wire: s}, nil
	default:
		return nil, fmt.Errorf("%w: array has invalid length %d", ErrInvalidDisclosure, len(arr))
	}
}

// Salt returns the disclosure's base64url-encoded salt.
func (d *Disclosure) Salt() string { return d.salt }

// ClaimName returns the disclosed object property name, or nil for an
// array-element disclosure.
func (d *Disclosure) ClaimName() *string { return d.claimName }

// ClaimValue returns the disclosed value.
func (d *Disclosure) ClaimValue() any { return d.claimValue }

// ToWire returns the base64url-unpadded wire form of the disclosure: the
// exact bytes a verifier is expected to hash.
func (d *Disclosure) ToWire() string { return d.wire }

// Equal reports whether two disclosures have the same salt, claim name and
// wire form. ClaimValue is compared only through the wire form's bytes, so
// two disclosures whose values serialize differently are not equal.
func (d *Disclosure) Equal(other *Disclosure) bool {
	if other == nil {
		return false
	}
	if d.salt != other.salt || d.wire != other.wire {
		return false
	}
	if (d.claimName == nil) != (other.claimName == nil) {
		return false
	}
	if d.claimName != nil && *d.claimName != *other.claimName {
		return false
	}
	return true
}

func encodeDisclosureWire(salt string, claimName *string, claimValue any) (string, error) {
	saltJSON, err := json.Marshal(salt)
	if err != nil {
		return "", fmt.Errorf("%w: encoding salt: %s", ErrInvalidDisclosure, err)
	}
	valueJSON, err := json.Marshal(claimValue)
	if err != nil {
		return "", fmt.Errorf("%w: encoding claim value: %s", ErrInvalidDisclosure, err)
	}

	var raw string
	if claimName != nil {
		nameJSON, err := json.Marshal(*claimName)
		if err != nil {
			return "", fmt.Errorf("%w: encoding claim name: %s", ErrInvalidDisclosure, err)
		}
		raw = fmt.Sprintf("[%s, %s, %s]", saltJSON, nameJSON, valueJSON)
	} else {
		raw = fmt.Sprintf("[%s, %s]", saltJSON, valueJSON)
	}

	return base64.RawURLEncoding.EncodeToString([]byte(raw)), nil
}
