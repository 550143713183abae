// Package examplesigner provides a reference sdjwt.Signer implementation
// wired to golang-jwt/jwt/v5, for use in tests and the sdjwt-demo command.
// It is deliberately thin: the sdjwt package never implements signing
// itself, so that callers remain free to bring their own key management.
package examplesigner

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// HMACSigner signs with a shared HMAC-SHA secret, selecting the signing
// method from the "alg" header golang-jwt/jwt/v5 is asked to produce.
type HMACSigner struct {
	Key []byte
}

// Sign implements sdjwt.Signer.
func (s HMACSigner) Sign(header map[string]any, signingInput []byte) ([]byte, error) {
	method, err := hmacMethod(header)
	if err != nil {
		return nil, err
	}
	return signRaw(method, signingInput, s.Key)
}

// ECDSASigner signs with an ECDSA private key (ES256/ES384/ES512).
type ECDSASigner struct {
	Key *ecdsa.PrivateKey
}

// Sign implements sdjwt.Signer.
func (s ECDSASigner) Sign(header map[string]any, signingInput []byte) ([]byte, error) {
	method, err := ecdsaMethod(header)
	if err != nil {
		return nil, err
	}
	return signRaw(method, signingInput, s.Key)
}

// RSASigner signs with an RSA private key (RS256/RS384/RS512).
type RSASigner struct {
	Key *rsa.PrivateKey
}

// Sign implements sdjwt.Signer.
func (s RSASigner) Sign(header map[string]any, signingInput []byte) ([]byte, error) {
	method, err := rsaMethod(header)
	if err != nil {
		return nil, err
	}
	return signRaw(method, signingInput, s.Key)
}

func signRaw(method jwt.SigningMethod, signingInput []byte, key any) ([]byte, error) {
	sig, err := method.Sign(string(signingInput), key)
	if err != nil {
		return nil, fmt.Errorf("examplesigner: signing: %w", err)
	}
	return sig, nil
}

func hmacMethod(header map[string]any) (*jwt.SigningMethodHMAC, error) {
	switch alg(header) {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("examplesigner: unsupported HMAC alg %q", alg(header))
	}
}

func ecdsaMethod(header map[string]any) (*jwt.SigningMethodECDSA, error) {
	switch alg(header) {
	case "ES256":
		return jwt.SigningMethodES256, nil
	case "ES384":
		return jwt.SigningMethodES384, nil
	case "ES512":
		return jwt.SigningMethodES512, nil
	default:
		return nil, fmt.Errorf("examplesigner: unsupported ECDSA alg %q", alg(header))
	}
}

func rsaMethod(header map[string]any) (*jwt.SigningMethodRSA, error) {
	switch alg(header) {
	case "RS256":
		return jwt.SigningMethodRS256, nil
	case "RS384":
		return jwt.SigningMethodRS384, nil
	case "RS512":
		return jwt.SigningMethodRS512, nil
	default:
		return nil, fmt.Errorf("examplesigner: unsupported RSA alg %q", alg(header))
	}
}

func alg(header map[string]any) string {
	a, _ := header["alg"].(string)
	return a
}
