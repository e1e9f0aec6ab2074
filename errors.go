package oboron

import (
	"errors"
	"fmt"
)

// Error kinds shared by all layers. Functions wrap these with context via
// fmt.Errorf("...: %w", ...), so callers should test with errors.Is.
var (
	// ErrInvalidKey indicates a master key of the wrong length, a bad
	// alphabet, or a base64 key with a forbidden final character.
	ErrInvalidKey = errors.New("oboron: invalid key")

	// ErrMalformedEncoding indicates characters or a length that are
	// illegal for the chosen text encoding.
	ErrMalformedEncoding = errors.New("oboron: malformed encoding")

	// ErrMalformedPayload indicates a payload that is too short, missing
	// its scheme byte, or structurally invalid ciphertext.
	ErrMalformedPayload = errors.New("oboron: malformed payload")

	// ErrUnknownScheme indicates a scheme byte or scheme name that is not
	// in the registry.
	ErrUnknownScheme = errors.New("oboron: unknown scheme")

	// ErrUnknownEncoding indicates an unrecognized encoding name.
	ErrUnknownEncoding = errors.New("oboron: unknown encoding")

	// ErrSchemeMismatch indicates a strict decode against a payload whose
	// scheme byte differs from the configured scheme.
	ErrSchemeMismatch = errors.New("oboron: scheme mismatch")

	// ErrAuthFailed indicates an authenticated scheme failed its
	// integrity check. Tampered ciphertext and a wrong key surface
	// identically.
	ErrAuthFailed = errors.New("oboron: authentication failed")

	// ErrInvalidUTF8 indicates decrypted bytes that are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("oboron: decrypted bytes are not valid UTF-8")

	// ErrUnsupportedFormat indicates a format whose scheme is not in the
	// instance's enabled scheme set.
	ErrUnsupportedFormat = errors.New("oboron: format not enabled")
)

// KeyError is a structured validation error for master key input. It
// unwraps to ErrInvalidKey so callers can test the kind with errors.Is.
type KeyError struct {
	Field   string // the offending input form ("base64", "hex", "bytes")
	Value   any    // the invalid property (a length, a character), never key material
	Message string
}

func (e *KeyError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("oboron: invalid key: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("oboron: invalid key: %s", e.Message)
}

func (e *KeyError) Unwrap() error {
	return ErrInvalidKey
}
