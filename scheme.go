package oboron

import (
	"fmt"
)

// Scheme identifies an encryption scheme variant.
type Scheme uint8

const (
	// SchemeOb00 is the legacy AES-CBC scheme: deterministic,
	// unauthenticated, '=' fill padding, obtext reversed at the text
	// level, no scheme byte. Compatibility only.
	SchemeOb00 Scheme = iota
	// SchemeOb01 is deterministic AES-CBC with the fixed IV from the key
	// partition. Not cryptographically secure; obfuscation only.
	SchemeOb01
	// SchemeOb21p is probabilistic AES-CBC with a random per-message IV.
	SchemeOb21p
	// SchemeOb31 is deterministic AES-256-GCM-SIV with a zero nonce.
	SchemeOb31
	// SchemeOb31p is probabilistic AES-256-GCM-SIV with a random nonce.
	SchemeOb31p
	// SchemeOb32 is deterministic AES-256-SIV (RFC 5297).
	SchemeOb32
	// SchemeOb32p is probabilistic AES-256-SIV with a random nonce as
	// associated data.
	SchemeOb32p
	// SchemeOb70 is the identity scheme (no encryption). Testing only.
	SchemeOb70
	// SchemeOb71 is the byte-reversal scheme (no encryption). Testing only.
	SchemeOb71

	numSchemes
)

// Scheme bytes appended to the payload tail before encoding. The bytes
// pack [tier:3][scheme:4][probabilistic:1], except tagOb21p, whose tier
// bits read 1 rather than the 2 of its name. These values are the wire
// contract shared with every oboron implementation.
const (
	tagOb01  = 0x02 // tier 0 (insecure), scheme 1
	tagOb21p = 0x23 // tier bits 1, scheme 1, probabilistic
	tagOb31  = 0x62 // tier 3 (authenticated), scheme 1
	tagOb31p = 0x63
	tagOb32  = 0x64 // tier 3, scheme 2
	tagOb32p = 0x65
	tagOb70  = 0xE0 // tier 7 (testing), scheme 0
	tagOb71  = 0xE2 // tier 7, scheme 1
)

// String returns the scheme's wire name.
func (s Scheme) String() string {
	switch s {
	case SchemeOb00:
		return "ob00"
	case SchemeOb01:
		return "ob01"
	case SchemeOb21p:
		return "ob21p"
	case SchemeOb31:
		return "ob31"
	case SchemeOb31p:
		return "ob31p"
	case SchemeOb32:
		return "ob32"
	case SchemeOb32p:
		return "ob32p"
	case SchemeOb70:
		return "ob70"
	case SchemeOb71:
		return "ob71"
	default:
		return "unknown"
	}
}

// ParseScheme parses a scheme name. Names are case-sensitive.
func ParseScheme(s string) (Scheme, error) {
	switch s {
	case "ob00":
		return SchemeOb00, nil
	case "ob01":
		return SchemeOb01, nil
	case "ob21p":
		return SchemeOb21p, nil
	case "ob31":
		return SchemeOb31, nil
	case "ob31p":
		return SchemeOb31p, nil
	case "ob32":
		return SchemeOb32, nil
	case "ob32p":
		return SchemeOb32p, nil
	case "ob70":
		return SchemeOb70, nil
	case "ob71":
		return SchemeOb71, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// Deterministic reports whether the scheme maps equal plaintexts to
// equal outputs under a fixed key.
func (s Scheme) Deterministic() bool {
	switch s {
	case SchemeOb21p, SchemeOb31p, SchemeOb32p:
		return false
	default:
		return true
	}
}

// Probabilistic reports whether independent encryptions of the same
// plaintext diverge.
func (s Scheme) Probabilistic() bool {
	return !s.Deterministic()
}

// Authenticated reports whether the scheme detects ciphertext tampering.
func (s Scheme) Authenticated() bool {
	switch s {
	case SchemeOb31, SchemeOb31p, SchemeOb32, SchemeOb32p:
		return true
	default:
		return false
	}
}

// reversed reports whether the ciphertext bytes are reversed before
// framing. CBC's high-entropy block is its last; reversal moves it to
// the front of the encoded string so short prefixes stay unique. AES-SIV
// output already leads with its synthetic IV, and GCM-SIV output leads
// with ciphertext keyed by its trailing tag, so both are left alone.
// ob00 reverses the encoded text instead and is handled in legacy.go.
func (s Scheme) reversed() bool {
	switch s {
	case SchemeOb01, SchemeOb21p, SchemeOb71:
		return true
	default:
		return false
	}
}

// tag returns the scheme byte. ok is false for ob00, which predates the
// scheme byte.
func (s Scheme) tag() (byte, bool) {
	switch s {
	case SchemeOb01:
		return tagOb01, true
	case SchemeOb21p:
		return tagOb21p, true
	case SchemeOb31:
		return tagOb31, true
	case SchemeOb31p:
		return tagOb31p, true
	case SchemeOb32:
		return tagOb32, true
	case SchemeOb32p:
		return tagOb32p, true
	case SchemeOb70:
		return tagOb70, true
	case SchemeOb71:
		return tagOb71, true
	default:
		return 0, false
	}
}

// schemeForTag maps a payload tail byte back to its scheme.
func schemeForTag(tag byte) (Scheme, bool) {
	switch tag {
	case tagOb01:
		return SchemeOb01, true
	case tagOb21p:
		return SchemeOb21p, true
	case tagOb31:
		return SchemeOb31, true
	case tagOb31p:
		return SchemeOb31p, true
	case tagOb32:
		return SchemeOb32, true
	case tagOb32p:
		return SchemeOb32p, true
	case tagOb70:
		return SchemeOb70, true
	case tagOb71:
		return SchemeOb71, true
	default:
		return 0, false
	}
}

// SchemeSet is a bitmask of enabled schemes. A façade rejects formats
// whose scheme is outside its set with ErrUnsupportedFormat.
type SchemeSet uint16

// AllSchemes enables every scheme, including the insecure ob00 and ob01.
const AllSchemes SchemeSet = 1<<numSchemes - 1

// DefaultSchemes enables everything except ob00 and ob01, which are
// broken by design and must be opted into explicitly.
const DefaultSchemes = AllSchemes &^ (1<<SchemeOb00 | 1<<SchemeOb01)

// Contains reports whether the set includes the scheme.
func (ss SchemeSet) Contains(s Scheme) bool {
	return s < numSchemes && ss&(1<<s) != 0
}

// With returns a copy of the set with the given schemes added.
func (ss SchemeSet) With(schemes ...Scheme) SchemeSet {
	for _, s := range schemes {
		ss |= 1 << s
	}
	return ss
}

// Without returns a copy of the set with the given schemes removed.
func (ss SchemeSet) Without(schemes ...Scheme) SchemeSet {
	for _, s := range schemes {
		ss &^= 1 << s
	}
	return ss
}
