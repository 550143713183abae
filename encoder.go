package sdjwt

import "fmt"

// DefaultSaltSize is the byte length of randomly generated salts when an
// Encoder is not given an explicit salt size; it comfortably exceeds the
// 16-byte entropy floor the specification requires.
const DefaultSaltSize = 24

// DigestsKey is the reserved object key holding concealed property digests.
const DigestsKey = "_sd"

// ArrayDigestKey is the reserved single key of an array element object that
// represents a concealed array entry.
const ArrayDigestKey = "..."

// SdAlgKey is the reserved top-level key naming the hash algorithm used to
// compute digests.
const SdAlgKey = "_sd_alg"

// Encoder transforms a JSON object into its SD form by concealing selected
// object properties and array elements behind digests, and by inserting
// decoy digests to hide how many real claims were concealed.
type Encoder struct {
	object   map[string]any
	hasher   Hasher
	saltSize int
}

// NewEncoder creates an Encoder over object using the SHA-256 Hasher and
// DefaultSaltSize.
func NewEncoder(object map[string]any) *Encoder {
	return NewEncoderWithHasher(object, NewSha256Hasher())
}

// NewEncoderWithHasher creates an Encoder over object using a custom Hasher.
func NewEncoderWithHasher(object map[string]any, hasher Hasher) *Encoder {
	return &Encoder{
		object:   object,
		hasher:   hasher,
		saltSize: DefaultSaltSize,
	}
}

// Object returns the (mutable, in-progress) SD object.
func (e *Encoder) Object() map[string]any { return e.object }

// Hasher returns the Hasher this Encoder was constructed with.
func (e *Encoder) Hasher() Hasher { return e.hasher }

// SetSaltSize overrides the byte length of generated salts. Values below 16
// bytes are rejected, as 16 bytes of entropy is the floor the specification
// requires for disclosure salts.
func (e *Encoder) SetSaltSize(n int) error {
	if n < 16 {
		return ErrInvalidSaltSize
	}
	e.saltSize = n
	return nil
}

// Conceal replaces the value addressed by the JSON Pointer path with a
// digest: for an object property, the digest is appended to the parent's
// "_sd" array; for an array element, the element itself becomes
// {"...": "<digest>"}. It returns the Disclosure the caller must transmit
// out-of-band alongside the signed SD-JWT.
func (e *Encoder) Conceal(path string) (*Disclosure, error) {
	segments, err := splitJSONPointer(path)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: path must not be empty", ErrInvalidPath)
	}

	loc, err := resolveLocation(e.object, segments)
	if err != nil {
		return nil, err
	}

	salt, err := randomSalt(e.saltSize)
	if err != nil {
		return nil, err
	}

	if loc.isArray {
		value, ok := loc.get()
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrIndexOutOfBounds, loc.idx)
		}
		disclosure, err := NewDisclosure(salt, nil, value)
		if err != nil {
			return nil, err
		}
		digest := EncodedDigest(e.hasher, disclosure.ToWire())
		loc.set(map[string]any{ArrayDigestKey: digest})
		return disclosure, nil
	}

	value, ok := loc.delete()
	if !ok {
		return nil, fmt.Errorf("%w: %q does not exist", ErrInvalidPath, loc.key)
	}
	name := loc.key
	disclosure, err := NewDisclosure(salt, &name, value)
	if err != nil {
		return nil, err
	}
	digest := EncodedDigest(e.hasher, disclosure.ToWire())
	if err := addDigestToSD(loc.obj, digest); err != nil {
		return nil, err
	}
	return disclosure, nil
}

// AddDecoys appends n decoy digests at path: to the "_sd" array if path
// resolves to an object, or as "..." entries if path resolves to an array.
// Pass an empty path to add decoys at the top level. Decoys are
// indistinguishable from real digests to a verifier.
func (e *Encoder) AddDecoys(path string, n int) ([]*Disclosure, error) {
	disclosures := make([]*Disclosure, 0, n)
	for i := 0; i < n; i++ {
		d, err := e.addDecoy(path)
		if err != nil {
			return disclosures, err
		}
		disclosures = append(disclosures, d)
	}
	return disclosures, nil
}

func (e *Encoder) addDecoy(path string) (*Disclosure, error) {
	if path == "" {
		disclosure, digest, err := e.randomDigest(true)
		if err != nil {
			return nil, err
		}
		if err := addDigestToSD(e.object, digest); err != nil {
			return nil, err
		}
		return disclosure, nil
	}

	segments, err := splitJSONPointer(path)
	if err != nil {
		return nil, err
	}
	loc, err := resolveLocation(e.object, segments)
	if err != nil {
		return nil, err
	}
	value, ok := loc.get()
	if !ok {
		return nil, fmt.Errorf("%w: target does not exist", ErrInvalidPath)
	}

	switch node := value.(type) {
	case map[string]any:
		disclosure, digest, err := e.randomDigest(true)
		if err != nil {
			return nil, err
		}
		if err := addDigestToSD(node, digest); err != nil {
			return nil, err
		}
		return disclosure, nil
	case []any:
		disclosure, digest, err := e.randomDigest(false)
		if err != nil {
			return nil, err
		}
		node = append(node, map[string]any{ArrayDigestKey: digest})
		loc.set(node)
		return disclosure, nil
	default:
		return nil, fmt.Errorf("%w: target is neither an object nor an array", ErrInvalidPath)
	}
}

// AddSDAlgProperty inserts "_sd_alg" at the top level, set to the Encoder's
// hasher algorithm name, replacing any existing value and returning it.
func (e *Encoder) AddSDAlgProperty() any {
	previous := e.object[SdAlgKey]
	e.object[SdAlgKey] = e.hasher.AlgName()
	return previous
}

// randomDigest creates a decoy Disclosure with random salt and value. When
// withName is true the decoy gets a random 4-10 byte claim name (used for
// object "_sd" decoys); otherwise it has no name (used for array "..."
// decoys), since array elements never carry claim names.
func (e *Encoder) randomDigest(withName bool) (*Disclosure, string, error) {
	salt, err := randomSalt(e.saltSize)
	if err != nil {
		return nil, "", err
	}

	valueLen, err := randomIntRange(20, 100)
	if err != nil {
		return nil, "", err
	}
	value, err := randomAlphanumeric(valueLen)
	if err != nil {
		return nil, "", err
	}

	var name *string
	if withName {
		nameLen, err := randomIntRange(4, 10)
		if err != nil {
			return nil, "", err
		}
		n, err := randomAlphanumeric(nameLen)
		if err != nil {
			return nil, "", err
		}
		name = &n
	}

	disclosure, err := NewDisclosure(salt, name, value)
	if err != nil {
		return nil, "", err
	}
	digest := EncodedDigest(e.hasher, disclosure.ToWire())
	return disclosure, digest, nil
}

func addDigestToSD(obj map[string]any, digest string) error {
	existing, ok := obj[DigestsKey]
	if !ok {
		obj[DigestsKey] = []any{digest}
		return nil
	}
	arr, ok := existing.([]any)
	if !ok {
		return fmt.Errorf("%w: %q is not an array", ErrDataTypeMismatch, DigestsKey)
	}
	obj[DigestsKey] = append(arr, digest)
	return nil
}
