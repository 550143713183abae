package sdjwt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SdJwtClaims is the typed view of an SD-JWT's JWT payload: the reserved
// "_sd", "_sd_alg" and "cnf" properties are pulled out as fields, and every
// other property - disclosed or not yet concealed - round-trips through
// Extra.
type SdJwtClaims struct {
	SD    []string            `json:"-"`
	SDAlg string              `json:"-"`
	Cnf   *RequiredKeyBinding `json:"-"`
	Extra map[string]any      `json:"-"`
}

// MarshalJSON implements json.Marshaler, flattening Extra back alongside the
// reserved properties.
func (c SdJwtClaims) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+3)
	for k, v := range c.Extra {
		out[k] = v
	}
	if len(c.SD) > 0 {
		out[DigestsKey] = c.SD
	}
	if c.SDAlg != "" {
		out[SdAlgKey] = c.SDAlg
	}
	if c.Cnf != nil {
		out["cnf"] = c.Cnf
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *SdJwtClaims) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: parsing SD-JWT claims: %s", ErrDeserialization, err)
	}
	return c.fromMap(raw)
}

func (c *SdJwtClaims) fromMap(raw map[string]any) error {
	extra := make(map[string]any, len(raw))
	for k, v := range raw {
		extra[k] = v
	}

	var sd []string
	if rawSD, ok := extra[DigestsKey]; ok {
		arr, ok := rawSD.([]any)
		if !ok {
			return fmt.Errorf("%w: %q is not an array", ErrDataTypeMismatch, DigestsKey)
		}
		for _, v := range arr {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: %q entry is not a string", ErrDataTypeMismatch, DigestsKey)
			}
			sd = append(sd, s)
		}
		delete(extra, DigestsKey)
	}

	var alg string
	if rawAlg, ok := extra[SdAlgKey]; ok {
		s, ok := rawAlg.(string)
		if !ok {
			return fmt.Errorf("%w: %q is not a string", ErrDataTypeMismatch, SdAlgKey)
		}
		alg = s
		delete(extra, SdAlgKey)
	}

	var cnf *RequiredKeyBinding
	if rawCnf, ok := extra["cnf"]; ok {
		encoded, err := json.Marshal(rawCnf)
		if err != nil {
			return fmt.Errorf("%w: re-encoding cnf: %s", ErrDeserialization, err)
		}
		var kb RequiredKeyBinding
		if err := json.Unmarshal(encoded, &kb); err != nil {
			return err
		}
		cnf = &kb
		delete(extra, "cnf")
	}

	c.SD = sd
	c.SDAlg = alg
	c.Cnf = cnf
	c.Extra = extra
	return nil
}

// asObject reconstructs the full JSON object (reserved properties and Extra
// together) that an Encoder or Decoder operates on.
func (c SdJwtClaims) asObject() (map[string]any, error) {
	encoded, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(encoded, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// SdJwt is an issued or presented SD-JWT: the signed JWT itself, the
// disclosures currently attached to it (in issuance order), and an optional
// key-binding JWT proving possession of the confirmation key named in
// Jwt.Claims.Cnf.
type SdJwt struct {
	Jwt         *Jwt[SdJwtClaims]
	Disclosures []*Disclosure
	KeyBinding  *KeyBindingJwt
}

// Parse splits a compact SD-JWT presentation string of the form
// "<jwt>~<disclosure>~...~<kb-jwt>?" and parses each segment. A trailing "~"
// with nothing after it signals "no key-binding JWT present"; per this
// package's resolution of the specification's presentation-format question,
// a presentation carrying zero disclosures omits the disclosure run
// entirely rather than leaving a second "~" in its place, i.e. it always
// reads "<jwt>~<kb-jwt>?", never "<jwt>~~<kb-jwt>?".
func Parse(token string) (*SdJwt, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty SD-JWT", ErrDeserialization)
	}

	segments := strings.Split(token, "~")
	if len(segments) < 2 {
		return nil, fmt.Errorf("%w: SD-JWT must contain at least one '~'", ErrDeserialization)
	}

	jwt, err := ParseJwt[SdJwtClaims](segments[0])
	if err != nil {
		return nil, err
	}

	middle := segments[1 : len(segments)-1]
	last := segments[len(segments)-1]

	disclosures := make([]*Disclosure, 0, len(middle))
	for _, s := range middle {
		if s == "" {
			continue
		}
		disc, err := ParseDisclosure(s)
		if err != nil {
			return nil, err
		}
		disclosures = append(disclosures, disc)
	}

	sd := &SdJwt{Jwt: jwt, Disclosures: disclosures}

	if last != "" {
		kb, err := ParseKeyBindingJwt(last)
		if err != nil {
			return nil, err
		}
		sd.KeyBinding = kb
	}

	return sd, nil
}

// Presentation serializes the SD-JWT back to compact form: the JWT and each
// disclosure joined by '~', followed by a final '~' and the key-binding JWT
// if present. With zero disclosures and no key-binding JWT this renders as
// "<jwt>~", never "<jwt>~~": the specification's chosen resolution is that
// the trailing '~' is always singular, regardless of how many segments
// precede it.
func (s *SdJwt) Presentation() (string, error) {
	jwtCompact, err := s.Jwt.Compact()
	if err != nil {
		return "", err
	}

	segments := make([]string, 0, len(s.Disclosures)+1)
	segments = append(segments, jwtCompact)
	for _, d := range s.Disclosures {
		segments = append(segments, d.ToWire())
	}

	kb := ""
	if s.KeyBinding != nil {
		kb, err = s.KeyBinding.Jwt.Compact()
		if err != nil {
			return "", err
		}
	}

	return strings.Join(segments, "~") + "~" + kb, nil
}

// IntoDisclosedObject resolves every digest in the SD-JWT's claims against
// its attached disclosures and returns the fully disclosed claim set, using
// a Decoder equipped with the given hasher in addition to SHA-256.
func (s *SdJwt) IntoDisclosedObject(hasher Hasher) (map[string]any, error) {
	obj, err := s.Jwt.Claims.asObject()
	if err != nil {
		return nil, err
	}
	decoder := NewDecoder()
	if hasher != nil {
		decoder.AddHasher(hasher)
	}
	return decoder.Decode(obj, s.Disclosures)
}
