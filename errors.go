package sdjwt

import "errors"

// Sentinel errors returned by this package. Use errors.Is to discriminate;
// details are appended to the wrapping message, not carried as typed fields,
// matching the %w-wrapped sentinel convention used by the sibling
// MichaelFraser99/go-sd-jwt library this package generalizes from.
var (
	// ErrInvalidDisclosure is returned when a disclosure wire form is malformed:
	// not base64url, not a JSON array, the wrong length, or a non-string salt/name.
	ErrInvalidDisclosure = errors.New("sdjwt: invalid disclosure")

	// ErrMissingHasher is returned when no Hasher is registered for a requested
	// hash algorithm identifier.
	ErrMissingHasher = errors.New("sdjwt: no hasher registered for algorithm")

	// ErrDataTypeMismatch is returned when a JSON value does not have the shape
	// the SD conventions require (e.g. "_sd" is present but not an array).
	ErrDataTypeMismatch = errors.New("sdjwt: unexpected data type")

	// ErrClaimCollision is returned when a disclosed claim name collides with
	// a cleartext sibling property already present in the object.
	ErrClaimCollision = errors.New("sdjwt: disclosed claim collides with existing claim")

	// ErrDuplicateDigest is returned when a digest that matches a supplied
	// disclosure appears more than once across "_sd" arrays and "..." array
	// entries, or when two supplied disclosures have the same digest.
	ErrDuplicateDigest = errors.New("sdjwt: duplicate digest")

	// ErrInvalidArrayDisclosureObject is returned when an array element object
	// carries "..." together with any other key.
	ErrInvalidArrayDisclosureObject = errors.New("sdjwt: array disclosure object has extra keys")

	// ErrInvalidPath is returned when a JSON Pointer does not resolve, or
	// resolves to an element that cannot be concealed/disclosed.
	ErrInvalidPath = errors.New("sdjwt: invalid path")

	// ErrDeserialization is returned when a JWT or SD-JWT wire string is
	// malformed.
	ErrDeserialization = errors.New("sdjwt: deserialization failed")

	// ErrIndexOutOfBounds is returned when an array-conceal index is out of range.
	ErrIndexOutOfBounds = errors.New("sdjwt: array index out of bounds")

	// ErrInvalidSaltSize is returned when a requested salt size is below 16 bytes.
	ErrInvalidSaltSize = errors.New("sdjwt: salt size must be at least 16 bytes")

	// ErrJwsSignerFailure wraps an error returned by an injected Signer or by
	// a cancelled context, and is also returned when signing is requested
	// with a nil Signer or with alg "none" (or empty) by SdJwtBuilder.Finish.
	ErrJwsSignerFailure = errors.New("sdjwt: signer failed")

	// ErrInvalidHasher is returned when a presentation hasher's algorithm name
	// does not match the SD-JWT's declared "_sd_alg".
	ErrInvalidHasher = errors.New("sdjwt: hasher does not match _sd_alg")

	// ErrUnusedDisclosures is returned when the decoder is given more
	// disclosures than it consumed while walking the object.
	ErrUnusedDisclosures = errors.New("sdjwt: unused disclosures")
)
