package sdjwt

// fakeSigner is a deterministic, insecure Signer used only by this
// package's own tests, standing in for a real JWS library the way the
// teacher repos' test suites stub out signing.
type fakeSigner struct{}

func (fakeSigner) Sign(header map[string]any, signingInput []byte) ([]byte, error) {
	return []byte("fake-signature"), nil
}

// fakeHasher reports an arbitrary AlgName without actually hashing
// differently from Sha256Hasher, used to exercise hasher/_sd_alg mismatch
// paths without pulling in a second real digest algorithm.
type fakeHasher struct {
	alg string
}

func (fakeHasher) Digest(input []byte) []byte {
	return Sha256Hasher{}.Digest(input)
}

func (h fakeHasher) AlgName() string { return h.alg }
