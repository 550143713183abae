// Command sdjwt-demo issues an SD-JWT with a handful of concealable claims,
// builds a holder presentation that discloses only some of them, and
// decodes the result back to a plain claim set. It exists to exercise the
// package end to end, the way examples/sd_jwt.rs does for the original
// implementation this package's design was distilled from.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-sdjwt/sdjwt"
	"github.com/go-sdjwt/sdjwt/examplesigner"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	claims := map[string]any{
		"iss":          "https://issuer.example.com",
		"iat":          time.Now().Unix(),
		"given_name":   "Erika",
		"family_name":  "Mustermann",
		"email":        "erika@example.com",
		"phone_number": "+1-202-555-0101",
		"address": map[string]any{
			"street_address": "Sonnenallee 1",
			"locality":       "Berlin",
			"country":        "DE",
		},
		"nationalities": []any{"DE", "US"},
	}

	builder := sdjwt.NewSdJwtBuilder(claims)
	for _, path := range []string{
		"/given_name",
		"/family_name",
		"/email",
		"/phone_number",
		"/address/street_address",
		"/address/locality",
		"/nationalities/0",
		"/nationalities/1",
	} {
		if _, err := builder.MakeConcealable(path); err != nil {
			return fmt.Errorf("concealing %s: %w", path, err)
		}
	}
	if _, err := builder.AddDecoys("", 2); err != nil {
		return fmt.Errorf("adding decoys: %w", err)
	}

	signer := examplesigner.HMACSigner{Key: []byte("demo-signing-key-not-for-production")}
	issued, err := builder.Finish(context.Background(), signer, "HS256")
	if err != nil {
		return fmt.Errorf("issuing SD-JWT: %w", err)
	}

	issuance, err := issued.Presentation()
	if err != nil {
		return fmt.Errorf("serializing issuance: %w", err)
	}
	fmt.Println("issuance:")
	fmt.Println(issuance)
	fmt.Println()

	parsed, err := sdjwt.Parse(issuance)
	if err != nil {
		return fmt.Errorf("re-parsing issuance: %w", err)
	}

	presenter, err := sdjwt.NewPresentationBuilder(parsed)
	if err != nil {
		return fmt.Errorf("building presentation: %w", err)
	}
	for _, path := range []string{"/phone_number", "/address/street_address", "/nationalities/1"} {
		if err := presenter.Conceal(path); err != nil {
			return fmt.Errorf("concealing %s for presentation: %w", path, err)
		}
	}
	presented, _, err := presenter.Finish()
	if err != nil {
		return fmt.Errorf("finishing presentation: %w", err)
	}

	bound, err := sdjwt.NewKeyBindingJwtBuilder().
		SetNonce("n0nce-from-verifier").
		SetAud("https://verifier.example.com").
		SetIat(time.Now().Unix()).
		Finish(context.Background(), presented, sdjwt.NewSha256Hasher(), "HS256", signer)
	if err != nil {
		return fmt.Errorf("attaching key-binding JWT: %w", err)
	}

	presentation, err := bound.Presentation()
	if err != nil {
		return fmt.Errorf("serializing presentation: %w", err)
	}
	fmt.Println("holder presentation:")
	fmt.Println(presentation)
	fmt.Println()

	disclosed, err := bound.IntoDisclosedObject(sdjwt.NewSha256Hasher())
	if err != nil {
		return fmt.Errorf("decoding presentation: %w", err)
	}
	pretty, err := json.MarshalIndent(disclosed, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println("verifier-visible claims:")
	fmt.Println(string(pretty))
	return nil
}
