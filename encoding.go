package oboron

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Encoding identifies a text representation for payload bytes.
type Encoding uint8

const (
	// Base32Crockford is Douglas Crockford's base32 alphabet, lowercase,
	// without the confusable symbols i, l, o, u. The default encoding.
	Base32Crockford Encoding = iota
	// Base32RFC is the RFC 4648 base32 alphabet, uppercase, unpadded.
	Base32RFC
	// Base64URL is the RFC 4648 URL-safe base64 alphabet, unpadded.
	Base64URL
	// HexLower is lowercase hexadecimal.
	HexLower

	numEncodings
)

const crockfordAlphabet = "0123456789abcdefghjkmnpqrstvwxyz"

var (
	crockfordEncoding = base32.NewEncoding(crockfordAlphabet).WithPadding(base32.NoPadding)
	base32RFCEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// autodecOrder is the fixed trial order for encoding autodetection.
var autodecOrder = [numEncodings]Encoding{Base32Crockford, Base32RFC, Base64URL, HexLower}

// String returns the short encoding tag used in format strings.
func (e Encoding) String() string {
	switch e {
	case Base32Crockford:
		return "c32"
	case Base32RFC:
		return "b32"
	case Base64URL:
		return "b64"
	case HexLower:
		return "hex"
	default:
		return "unknown"
	}
}

// ParseEncoding parses an encoding tag. Both the short tags (c32, b32,
// b64, hex) and the long names (base32crockford, base32rfc, base64, hex)
// are accepted, case-insensitively.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "c32", "base32crockford":
		return Base32Crockford, nil
	case "b32", "base32rfc":
		return Base32RFC, nil
	case "b64", "base64":
		return Base64URL, nil
	case "hex":
		return HexLower, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// encode converts payload bytes to the encoding's canonical text form.
func (e Encoding) encode(payload []byte) string {
	switch e {
	case Base32Crockford:
		return crockfordEncoding.EncodeToString(payload)
	case Base32RFC:
		return base32RFCEncoding.EncodeToString(payload)
	case Base64URL:
		return base64.RawURLEncoding.EncodeToString(payload)
	case HexLower:
		return hex.EncodeToString(payload)
	default:
		panic("oboron: encode called with invalid encoding")
	}
}

// decode converts obtext back to payload bytes. Crockford input is
// normalized (case folded, O->0, I/L->1) before decoding; hex input is
// case-insensitive; the RFC alphabets are strict.
func (e Encoding) decode(obtext string) ([]byte, error) {
	switch e {
	case Base32Crockford:
		// strings.Map drops runes mapped to -1, so a shrunken result
		// means an out-of-alphabet character was seen.
		normalized := strings.Map(normalizeCrockford, obtext)
		if len(normalized) != len(obtext) {
			return nil, fmt.Errorf("%w: invalid base32crockford character", ErrMalformedEncoding)
		}
		b, err := crockfordEncoding.DecodeString(normalized)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base32crockford input", ErrMalformedEncoding)
		}
		return b, nil
	case Base32RFC:
		b, err := base32RFCEncoding.DecodeString(obtext)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base32rfc input", ErrMalformedEncoding)
		}
		return b, nil
	case Base64URL:
		b, err := base64.RawURLEncoding.DecodeString(obtext)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 input", ErrMalformedEncoding)
		}
		return b, nil
	case HexLower:
		b, err := hex.DecodeString(strings.ToLower(obtext))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid hex input", ErrMalformedEncoding)
		}
		return b, nil
	default:
		panic("oboron: decode called with invalid encoding")
	}
}

// normalizeCrockford folds case and maps the standard Crockford
// confusables onto their canonical digits. Characters outside the
// alphabet map to -1 (dropped by strings.Map, detected by the caller
// via the length change).
func normalizeCrockford(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		r += 'a' - 'A'
	}
	switch r {
	case 'o':
		return '0'
	case 'i', 'l':
		return '1'
	}
	if strings.ContainsRune(crockfordAlphabet, r) {
		return r
	}
	return -1
}
