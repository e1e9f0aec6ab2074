package oboron

import (
	"fmt"
	"strings"
)

// Format pairs a scheme with a text encoding. The canonical string form
// is "<scheme>:<encoding>", e.g. "ob32:b64". Equality is structural.
type Format struct {
	Scheme   Scheme
	Encoding Encoding
}

// NewFormat builds a Format from its parts.
func NewFormat(s Scheme, e Encoding) Format {
	return Format{Scheme: s, Encoding: e}
}

// ParseFormat parses a "scheme:encoding" string. The scheme name is
// case-sensitive; the encoding tag is not.
func ParseFormat(s string) (Format, error) {
	schemeName, encodingName, ok := strings.Cut(s, ":")
	if !ok {
		return Format{}, fmt.Errorf("%w: %q is not scheme:encoding", ErrUnknownScheme, s)
	}
	scheme, err := ParseScheme(schemeName)
	if err != nil {
		return Format{}, err
	}
	encoding, err := ParseEncoding(encodingName)
	if err != nil {
		return Format{}, err
	}
	return Format{Scheme: scheme, Encoding: encoding}, nil
}

// String returns the canonical "scheme:encoding" identifier.
func (f Format) String() string {
	return f.Scheme.String() + ":" + f.Encoding.String()
}

// Named formats for every scheme and encoding pair.
var (
	Ob00C32 = Format{SchemeOb00, Base32Crockford}
	Ob00B32 = Format{SchemeOb00, Base32RFC}
	Ob00B64 = Format{SchemeOb00, Base64URL}
	Ob00Hex = Format{SchemeOb00, HexLower}

	Ob01C32 = Format{SchemeOb01, Base32Crockford}
	Ob01B32 = Format{SchemeOb01, Base32RFC}
	Ob01B64 = Format{SchemeOb01, Base64URL}
	Ob01Hex = Format{SchemeOb01, HexLower}

	Ob21pC32 = Format{SchemeOb21p, Base32Crockford}
	Ob21pB32 = Format{SchemeOb21p, Base32RFC}
	Ob21pB64 = Format{SchemeOb21p, Base64URL}
	Ob21pHex = Format{SchemeOb21p, HexLower}

	Ob31C32 = Format{SchemeOb31, Base32Crockford}
	Ob31B32 = Format{SchemeOb31, Base32RFC}
	Ob31B64 = Format{SchemeOb31, Base64URL}
	Ob31Hex = Format{SchemeOb31, HexLower}

	Ob31pC32 = Format{SchemeOb31p, Base32Crockford}
	Ob31pB32 = Format{SchemeOb31p, Base32RFC}
	Ob31pB64 = Format{SchemeOb31p, Base64URL}
	Ob31pHex = Format{SchemeOb31p, HexLower}

	Ob32C32 = Format{SchemeOb32, Base32Crockford}
	Ob32B32 = Format{SchemeOb32, Base32RFC}
	Ob32B64 = Format{SchemeOb32, Base64URL}
	Ob32Hex = Format{SchemeOb32, HexLower}

	Ob32pC32 = Format{SchemeOb32p, Base32Crockford}
	Ob32pB32 = Format{SchemeOb32p, Base32RFC}
	Ob32pB64 = Format{SchemeOb32p, Base64URL}
	Ob32pHex = Format{SchemeOb32p, HexLower}

	Ob70C32 = Format{SchemeOb70, Base32Crockford}
	Ob70B32 = Format{SchemeOb70, Base32RFC}
	Ob70B64 = Format{SchemeOb70, Base64URL}
	Ob70Hex = Format{SchemeOb70, HexLower}

	Ob71C32 = Format{SchemeOb71, Base32Crockford}
	Ob71B32 = Format{SchemeOb71, Base32RFC}
	Ob71B64 = Format{SchemeOb71, Base64URL}
	Ob71Hex = Format{SchemeOb71, HexLower}
)
