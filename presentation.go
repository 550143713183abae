package sdjwt

import "fmt"

// PresentationBuilder derives a presentation from an issued SdJwt by
// choosing which of its disclosures to keep. Every disclosure starts out
// disclosed; Conceal hides one and, transitively, every disclosure nested
// within the value it captured.
type PresentationBuilder struct {
	sdJwt         *SdJwt
	object        map[string]any
	digestToIndex map[string]int
	omitted       map[int]bool
	hasher        Hasher
}

// NewPresentationBuilder starts a PresentationBuilder over sdJwt, using the
// SHA-256 Hasher to recompute digests while walking paths.
func NewPresentationBuilder(sdJwt *SdJwt) (*PresentationBuilder, error) {
	return NewPresentationBuilderWithHasher(sdJwt, NewSha256Hasher())
}

// NewPresentationBuilderWithHasher starts a PresentationBuilder using a
// custom Hasher, needed when the SD-JWT's "_sd_alg" is not SHA-256.
func NewPresentationBuilderWithHasher(sdJwt *SdJwt, hasher Hasher) (*PresentationBuilder, error) {
	if alg := sdJwt.Jwt.Claims.SDAlg; alg != "" && alg != hasher.AlgName() {
		return nil, fmt.Errorf("%w: SD-JWT declares %q, hasher is %q", ErrInvalidHasher, alg, hasher.AlgName())
	}

	object, err := sdJwt.Jwt.Claims.asObject()
	if err != nil {
		return nil, err
	}

	digestToIndex := make(map[string]int, len(sdJwt.Disclosures))
	for i, d := range sdJwt.Disclosures {
		digestToIndex[EncodedDigest(hasher, d.ToWire())] = i
	}

	return &PresentationBuilder{
		sdJwt:         sdJwt,
		object:        object,
		digestToIndex: digestToIndex,
		omitted:       make(map[int]bool),
		hasher:        hasher,
	}, nil
}

// Conceal hides the disclosure reachable by path, which must name an object
// property or array element that was itself made concealable by the
// issuer's Encoder. Concealing a path also conceals every disclosure
// captured within its disclosed value, since presenting an ancestor's
// digest while still including a descendant's disclosure would leak
// information the concealment was meant to hide.
func (p *PresentationBuilder) Conceal(path string) error {
	segments, err := splitJSONPointer(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("%w: path must not be empty", ErrInvalidPath)
	}

	finalIndex, ok, err := p.walk(segments)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q does not resolve to a disclosed claim", ErrInvalidPath, path)
	}

	p.concealIndexAndDescendants(finalIndex)
	return nil
}

// ConcealAll hides every disclosure currently attached to the SD-JWT.
func (p *PresentationBuilder) ConcealAll() {
	for i := range p.sdJwt.Disclosures {
		p.omitted[i] = true
	}
}

// Disclose reveals the disclosure reachable by path, together with every
// ancestor disclosure that had to be crossed to reach it: revealing a
// child without its parent's digest would leave the presentation unable to
// place the child anywhere in the decoded object.
func (p *PresentationBuilder) Disclose(path string) error {
	segments, err := splitJSONPointer(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("%w: path must not be empty", ErrInvalidPath)
	}

	crossed, err := p.crossedDisclosures(segments)
	if err != nil {
		return err
	}
	for _, idx := range crossed {
		delete(p.omitted, idx)
	}
	return nil
}

// Finish returns a new SdJwt carrying only the disclosures that remain
// disclosed, and separately the disclosures that were concealed. It never
// mutates the original signed JWT, since re-serializing the claims would
// invalidate the signature.
func (p *PresentationBuilder) Finish() (presented *SdJwt, concealed []*Disclosure, err error) {
	kept := make([]*Disclosure, 0, len(p.sdJwt.Disclosures))
	for i, d := range p.sdJwt.Disclosures {
		if p.omitted[i] {
			concealed = append(concealed, d)
		} else {
			kept = append(kept, d)
		}
	}
	presented = &SdJwt{
		Jwt:         p.sdJwt.Jwt,
		Disclosures: kept,
		KeyBinding:  p.sdJwt.KeyBinding,
	}
	return presented, concealed, nil
}

// walk navigates segments against p.object, following "_sd"/"..." markers
// transparently by substituting in the referenced disclosure's value, and
// returns the disclosure index the FINAL segment resolved through. ok is
// false if the final segment itself was reached without crossing a
// disclosure (a claim that was never made concealable), even when an
// earlier segment crossed one.
func (p *PresentationBuilder) walk(segments []string) (int, bool, error) {
	var current any = p.object
	lastIndex := -1
	lastOk := false

	for _, seg := range segments {
		next, idx, crossed, err := p.stepThroughDisclosures(current, seg)
		if err != nil {
			return 0, false, err
		}
		current = next
		lastIndex = idx
		lastOk = crossed
	}

	return lastIndex, lastOk, nil
}

// crossedDisclosures returns, in traversal order, the index of every
// disclosure crossed while navigating segments (ancestors and, if
// applicable, the final segment).
func (p *PresentationBuilder) crossedDisclosures(segments []string) ([]int, error) {
	var current any = p.object
	var crossed []int

	for _, seg := range segments {
		next, idx, ok, err := p.stepThroughDisclosures(current, seg)
		if err != nil {
			return nil, err
		}
		if ok {
			crossed = append(crossed, idx)
		}
		current = next
	}

	return crossed, nil
}

// stepThroughDisclosures advances one JSON Pointer segment from current. If
// segment names a property that is only reachable via a "_sd" digest (for
// an object) or the element at that position is a "..." marker (for an
// array), it resolves the matching disclosure and returns its value along
// with crossed=true and the disclosure's index.
func (p *PresentationBuilder) stepThroughDisclosures(current any, segment string) (any, int, bool, error) {
	switch node := current.(type) {
	case map[string]any:
		if v, ok := node[segment]; ok {
			return v, -1, false, nil
		}
		digest, idx, err := p.findPropertyDigest(node, segment)
		if err != nil {
			return nil, 0, false, err
		}
		disc := p.sdJwt.Disclosures[idx]
		_ = digest
		return disc.ClaimValue(), idx, true, nil
	case []any:
		i, err := parseArrayIndex(segment)
		if err != nil {
			return nil, 0, false, err
		}
		if i < 0 || i >= len(node) {
			return nil, 0, false, fmt.Errorf("%w: %d", ErrIndexOutOfBounds, i)
		}
		elem := node[i]
		if obj, ok := elem.(map[string]any); ok && len(obj) == 1 {
			if rawDigest, has := obj[ArrayDigestKey]; has {
				digest, _ := rawDigest.(string)
				idx, ok := p.digestToIndex[digest]
				if !ok {
					return nil, 0, false, fmt.Errorf("%w: no disclosure for digest %s", ErrInvalidPath, digest)
				}
				return p.sdJwt.Disclosures[idx].ClaimValue(), idx, true, nil
			}
		}
		return elem, -1, false, nil
	default:
		return nil, 0, false, fmt.Errorf("%w: %q is not an object or array", ErrInvalidPath, segment)
	}
}

func (p *PresentationBuilder) findPropertyDigest(obj map[string]any, name string) (string, int, error) {
	rawDigests, ok := obj[DigestsKey]
	if !ok {
		return "", 0, fmt.Errorf("%w: %q does not exist", ErrInvalidPath, name)
	}
	digestList, ok := rawDigests.([]any)
	if !ok {
		return "", 0, fmt.Errorf("%w: %q is not an array", ErrDataTypeMismatch, DigestsKey)
	}
	for _, rawDigest := range digestList {
		digest, ok := rawDigest.(string)
		if !ok {
			continue
		}
		idx, ok := p.digestToIndex[digest]
		if !ok {
			continue
		}
		disc := p.sdJwt.Disclosures[idx]
		if disc.ClaimName() != nil && *disc.ClaimName() == name {
			return digest, idx, nil
		}
	}
	return "", 0, fmt.Errorf("%w: %q does not exist", ErrInvalidPath, name)
}

// concealIndexAndDescendants marks index omitted, then recursively marks
// omitted every digest reachable by walking the disclosure's own claim
// value, so concealing a parent also conceals everything nested inside it.
func (p *PresentationBuilder) concealIndexAndDescendants(index int) {
	if p.omitted[index] {
		return
	}
	p.omitted[index] = true
	p.concealNestedDigests(p.sdJwt.Disclosures[index].ClaimValue())
}

func (p *PresentationBuilder) concealNestedDigests(value any) {
	switch node := value.(type) {
	case map[string]any:
		if rawDigests, ok := node[DigestsKey]; ok {
			if digestList, ok := rawDigests.([]any); ok {
				for _, rawDigest := range digestList {
					if digest, ok := rawDigest.(string); ok {
						if idx, ok := p.digestToIndex[digest]; ok {
							p.concealIndexAndDescendants(idx)
						}
					}
				}
			}
		}
		for k, v := range node {
			if k == DigestsKey {
				continue
			}
			p.concealNestedDigests(v)
		}
	case []any:
		for _, elem := range node {
			if obj, ok := elem.(map[string]any); ok && len(obj) == 1 {
				if rawDigest, has := obj[ArrayDigestKey]; has {
					if digest, ok := rawDigest.(string); ok {
						if idx, ok := p.digestToIndex[digest]; ok {
							p.concealIndexAndDescendants(idx)
						}
						continue
					}
				}
			}
			p.concealNestedDigests(elem)
		}
	}
}

func parseArrayIndex(segment string) (int, error) {
	n := 0
	if segment == "" {
		return 0, fmt.Errorf("%w: empty array index", ErrInvalidPath)
	}
	for _, c := range segment {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q is not a valid array index", ErrInvalidPath, segment)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
