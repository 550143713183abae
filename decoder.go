package sdjwt

import "fmt"

// Decoder resolves the digests embedded in an SD-JWT object back into their
// disclosed claims, given the full set of disclosures the holder chose to
// present. A single Decoder can hold hashers for more than one algorithm;
// the algorithm actually used is selected by the object's own "_sd_alg"
// property.
type Decoder struct {
	hashers map[string]Hasher
}

// NewDecoder returns a Decoder pre-registered with the SHA-256 Hasher.
func NewDecoder() *Decoder {
	d := &Decoder{hashers: make(map[string]Hasher)}
	d.AddHasher(NewSha256Hasher())
	return d
}

// AddHasher registers h under h.AlgName(), replacing any hasher previously
// registered for that name.
func (d *Decoder) AddHasher(h Hasher) {
	d.hashers[h.AlgName()] = h
}

// RemoveHasher deregisters the hasher for algName, if any.
func (d *Decoder) RemoveHasher(algName string) {
	delete(d.hashers, algName)
}

// Decode resolves every digest in object against disclosures, returning a
// new object with "_sd"/"..." markers replaced by their disclosed claims and
// "_sd_alg" removed. Every disclosure in disclosures must be consumed
// exactly once; any disclosure whose digest never appears in object is
// reported via ErrUnusedDisclosures. A digest that matches one of
// disclosures and appears more than once anywhere in object, or two
// disclosures with the same digest, are rejected via ErrDuplicateDigest,
// since a legitimate issuer never repeats a digest. A repeated digest that
// matches none of disclosures is skipped like any other unmatched digest
// and is not reported.
func (d *Decoder) Decode(object map[string]any, disclosures []*Disclosure) (map[string]any, error) {
	algName := "sha-256"
	if raw, ok := object[SdAlgKey]; ok {
		name, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a string", ErrDataTypeMismatch, SdAlgKey)
		}
		algName = name
	}
	hasher, ok := d.hashers[algName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingHasher, algName)
	}

	byDigest := make(map[string]*Disclosure, len(disclosures))
	for _, disc := range disclosures {
		digest := EncodedDigest(hasher, disc.ToWire())
		if _, dup := byDigest[digest]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDigest, digest)
		}
		byDigest[digest] = disc
	}

	processed := make(map[string]bool)
	result, err := d.decodeObject(object, byDigest, processed)
	if err != nil {
		return nil, err
	}

	if len(processed) != len(byDigest) {
		unused := make([]string, 0, len(byDigest)-len(processed))
		for digest := range byDigest {
			if !processed[digest] {
				unused = append(unused, digest)
			}
		}
		return nil, fmt.Errorf("%w: %d: %v", ErrUnusedDisclosures, len(unused), unused)
	}

	return result, nil
}

func (d *Decoder) decodeObject(obj map[string]any, byDigest map[string]*Disclosure, processed map[string]bool) (map[string]any, error) {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if k == DigestsKey || k == SdAlgKey {
			continue
		}
		decoded, err := d.decodeValue(v, byDigest, processed)
		if err != nil {
			return nil, err
		}
		out[k] = decoded
	}

	rawDigests, ok := obj[DigestsKey]
	if !ok {
		return out, nil
	}
	digestList, ok := rawDigests.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an array", ErrDataTypeMismatch, DigestsKey)
	}

	for _, rawDigest := range digestList {
		digest, ok := rawDigest.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %q entry is not a string", ErrDataTypeMismatch, DigestsKey)
		}
		if processed[digest] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDigest, digest)
		}
		disc, ok := byDigest[digest]
		if !ok {
			// No matching disclosure: this digest is either a decoy or was
			// deliberately withheld by the holder. Either way it is simply
			// dropped, not an error.
			continue
		}
		processed[digest] = true
		if disc.ClaimName() == nil {
			return nil, fmt.Errorf("%w: object digest resolved to an array-element disclosure", ErrInvalidDisclosure)
		}
		name := *disc.ClaimName()
		if _, collides := out[name]; collides {
			return nil, fmt.Errorf("%w: %q", ErrClaimCollision, name)
		}
		decoded, err := d.decodeValue(disc.ClaimValue(), byDigest, processed)
		if err != nil {
			return nil, err
		}
		out[name] = decoded
	}

	return out, nil
}

func (d *Decoder) decodeArray(arr []any, byDigest map[string]*Disclosure, processed map[string]bool) ([]any, error) {
	out := make([]any, 0, len(arr))
	for _, elem := range arr {
		obj, ok := elem.(map[string]any)
		if ok {
			if rawDigest, has := obj[ArrayDigestKey]; has {
				if len(obj) != 1 {
					return nil, fmt.Errorf("%w: %v", ErrInvalidArrayDisclosureObject, obj)
				}
				digest, ok := rawDigest.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %q entry is not a string", ErrDataTypeMismatch, ArrayDigestKey)
				}
				if processed[digest] {
					return nil, fmt.Errorf("%w: %s", ErrDuplicateDigest, digest)
				}
				disc, found := byDigest[digest]
				if !found {
					// Decoy array entry or a withheld element: omitted entirely.
					continue
				}
				processed[digest] = true
				if disc.ClaimName() != nil {
					return nil, fmt.Errorf("%w: array digest resolved to an object-property disclosure", ErrInvalidDisclosure)
				}
				decoded, err := d.decodeValue(disc.ClaimValue(), byDigest, processed)
				if err != nil {
					return nil, err
				}
				out = append(out, decoded)
				continue
			}
		}
		decoded, err := d.decodeValue(elem, byDigest, processed)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

func (d *Decoder) decodeValue(v any, byDigest map[string]*Disclosure, processed map[string]bool) (any, error) {
	switch node := v.(type) {
	case map[string]any:
		return d.decodeObject(node, byDigest, processed)
	case []any:
		return d.decodeArray(node, byDigest, processed)
	default:
		return v, nil
	}
}
