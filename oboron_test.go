package oboron

import (
	"errors"
	"strings"
	"testing"
)

var (
	_ Codec = (*Ob)(nil)
	_ Codec = (*Flex)(nil)
)

func allFormats() []Format {
	var fs []Format
	for s := SchemeOb00; s < numSchemes; s++ {
		for _, e := range autodecOrder {
			fs = append(fs, NewFormat(s, e))
		}
	}
	return fs
}

func TestUniversalRoundTrip(t *testing.T) {
	key := hardcodedKey()
	for _, f := range allFormats() {
		ob, err := NewWithFormat(f, key, WithSchemeSet(AllSchemes))
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		for _, pt := range schemeTestPlaintexts {
			if f.Scheme == SchemeOb00 && pt == "" {
				continue // legacy ob00 has no framing for the empty string
			}
			ot, err := ob.Enc(pt)
			if err != nil {
				t.Fatalf("%s: Enc(%q): %v", f, pt, err)
			}
			back, err := ob.Dec(ot)
			if err != nil {
				t.Fatalf("%s: Dec(%q) of %q: %v", f, ot, pt, err)
			}
			if back != pt {
				t.Errorf("%s: round trip of %q gave %q", f, pt, back)
			}
			strict, err := ob.DecStrict(ot)
			if err != nil || strict != pt {
				t.Errorf("%s: DecStrict gave %q, %v", f, strict, err)
			}
		}
	}
}

func TestEncDeterminism(t *testing.T) {
	key := hardcodedKey()
	for _, f := range allFormats() {
		if !f.Scheme.Deterministic() {
			continue
		}
		ob, err := NewWithFormat(f, key, WithSchemeSet(AllSchemes))
		if err != nil {
			t.Fatal(err)
		}
		a, err := ob.Enc("stable")
		if err != nil {
			t.Fatal(err)
		}
		b, err := ob.Enc("stable")
		if err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Errorf("%s: deterministic scheme diverged: %q vs %q", f, a, b)
		}
	}
}

func TestProbabilisticEncDiverges(t *testing.T) {
	key := hardcodedKey()
	ob, err := New("ob32p:b64", key)
	if err != nil {
		t.Fatal(err)
	}
	a, err := ob.Enc("a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ob.Enc("a")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two ob32p encryptions are identical")
	}
	for _, ot := range []string{a, b} {
		pt, err := ob.Dec(ot)
		if err != nil || pt != "a" {
			t.Errorf("Dec(%q) = %q, %v", ot, pt, err)
		}
	}
}

func TestPayloadTagByteLocation(t *testing.T) {
	key := hardcodedKey()
	for _, f := range allFormats() {
		if f.Scheme == SchemeOb00 {
			continue
		}
		ob, err := NewWithFormat(f, key, WithSchemeSet(AllSchemes))
		if err != nil {
			t.Fatal(err)
		}
		ot, err := ob.Enc("prefix entropy")
		if err != nil {
			t.Fatal(err)
		}
		payload, err := f.Encoding.decode(ot)
		if err != nil {
			t.Fatalf("%s: decode: %v", f, err)
		}
		tag, _ := f.Scheme.tag()
		if payload[len(payload)-1] != tag {
			t.Errorf("%s: final payload byte 0x%02x, want 0x%02x", f, payload[len(payload)-1], tag)
		}
	}
}

func TestSchemeAutodetectAcrossSharedEncoding(t *testing.T) {
	key := hardcodedKey()
	dec, err := New("ob32:c32", key)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []Scheme{SchemeOb21p, SchemeOb31, SchemeOb31p, SchemeOb32, SchemeOb32p, SchemeOb70, SchemeOb71} {
		enc, err := NewWithFormat(NewFormat(s, Base32Crockford), key)
		if err != nil {
			t.Fatal(err)
		}
		ot, err := enc.Enc("shared encoding")
		if err != nil {
			t.Fatal(err)
		}
		pt, err := dec.Dec(ot)
		if err != nil {
			t.Fatalf("%s payload via ob32 facade: %v", s, err)
		}
		if pt != "shared encoding" {
			t.Errorf("%s payload decoded to %q", s, pt)
		}
		if s != SchemeOb32 {
			if _, err := dec.DecStrict(ot); !errors.Is(err, ErrSchemeMismatch) {
				t.Errorf("DecStrict of %s payload: %v, want ErrSchemeMismatch", s, err)
			}
		}
	}
}

func TestDecRejectsWrongEncoding(t *testing.T) {
	key := hardcodedKey()
	b64, err := New("ob32:b64", key)
	if err != nil {
		t.Fatal(err)
	}
	c32, err := New("ob32:c32", key)
	if err != nil {
		t.Fatal(err)
	}
	ot, err := b64.Enc("data3")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c32.Dec(ot); err == nil {
		t.Error("c32 facade decoded a b64 obtext")
	}
}

func TestAuthFailureOnFlippedObtext(t *testing.T) {
	key := hardcodedKey()
	ob, err := New("ob31:hex", key)
	if err != nil {
		t.Fatal(err)
	}
	ot, err := ob.Enc("Hello")
	if err != nil {
		t.Fatal(err)
	}
	// Flip one hex digit inside the ciphertext body (not the tag byte,
	// which occupies the final two digits).
	flipped := []byte(ot)
	if flipped[0] != 'f' {
		flipped[0] = 'f'
	} else {
		flipped[0] = '0'
	}
	if _, err := ob.Dec(string(flipped)); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("flipped obtext: got %v, want ErrAuthFailed", err)
	}
}

func TestAuthFailureSurfacesWithAllSchemes(t *testing.T) {
	// With ob00 enabled, the legacy fallback must not swallow a
	// recognized scheme's authentication failure: the fallback covers
	// undecodable text and unknown scheme bytes only.
	key := hardcodedKey()
	for _, s := range []Scheme{SchemeOb31, SchemeOb31p, SchemeOb32, SchemeOb32p} {
		t.Run(s.String(), func(t *testing.T) {
			ob, err := NewWithFormat(NewFormat(s, HexLower), key, WithSchemeSet(AllSchemes))
			if err != nil {
				t.Fatal(err)
			}
			ot, err := ob.Enc("Hello")
			if err != nil {
				t.Fatal(err)
			}
			// Flip a ciphertext nibble; the tag byte at the tail stays
			// intact, so scheme detection still matches.
			flipped := []byte(ot)
			if flipped[0] != 'f' {
				flipped[0] = 'f'
			} else {
				flipped[0] = '0'
			}
			if _, err := ob.Dec(string(flipped)); !errors.Is(err, ErrAuthFailed) {
				t.Errorf("flipped obtext: got %v, want ErrAuthFailed", err)
			}
		})
	}
}

func TestMultiAutoDec(t *testing.T) {
	key := hardcodedKey()
	m, err := NewMulti(key)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range autodecOrder {
		f := NewFormat(SchemeOb32, e)
		ot, err := m.EncFormat("test", f)
		if err != nil {
			t.Fatal(err)
		}
		pt, err := m.AutoDec(ot)
		if err != nil {
			t.Fatalf("AutoDec of %s obtext %q: %v", f, ot, err)
		}
		if pt != "test" {
			t.Errorf("AutoDec of %s = %q", f, pt)
		}
	}
}

func TestMultiAutoDecAcrossSchemes(t *testing.T) {
	key := hardcodedKey()
	m, err := NewMulti(key)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []Scheme{SchemeOb21p, SchemeOb31, SchemeOb31p, SchemeOb32, SchemeOb32p} {
		for _, e := range autodecOrder {
			ot, err := m.EncFormat("multi", NewFormat(s, e))
			if err != nil {
				t.Fatal(err)
			}
			pt, err := m.AutoDec(ot)
			if err != nil {
				t.Fatalf("AutoDec %s:%s: %v", s, e, err)
			}
			if pt != "multi" {
				t.Errorf("AutoDec %s:%s = %q", s, e, pt)
			}
		}
	}
}

func TestAutoDecFailureIsOpaque(t *testing.T) {
	key := hardcodedKey()
	m, err := NewMulti(key)
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range []string{"", "!!!", "zzzz not an obtext zzzz"} {
		if _, err := m.AutoDec(in); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("AutoDec(%q) = %v, want ErrMalformedPayload", in, err)
		}
	}
}

func TestMultiDecEnforcesFormat(t *testing.T) {
	key := hardcodedKey()
	m, err := NewMulti(key)
	if err != nil {
		t.Fatal(err)
	}
	ot, err := m.Enc("hello", "ob31:b64")
	if err != nil {
		t.Fatal(err)
	}
	if pt, err := m.Dec(ot, "ob31:b64"); err != nil || pt != "hello" {
		t.Fatalf("Dec under the right format: %q, %v", pt, err)
	}
	if _, err := m.Dec(ot, "ob32:b64"); !errors.Is(err, ErrSchemeMismatch) {
		t.Errorf("Dec under the wrong scheme: %v, want ErrSchemeMismatch", err)
	}
}

func TestSchemeSetGating(t *testing.T) {
	key := hardcodedKey()

	// ob01 is off by default.
	if _, err := New("ob01:c32", key); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("New(ob01) = %v, want ErrUnsupportedFormat", err)
	}
	// Explicit opt-in works.
	ob, err := New("ob01:c32", key, WithSchemeSet(DefaultSchemes.With(SchemeOb01)))
	if err != nil {
		t.Fatalf("opted-in ob01: %v", err)
	}
	ot, err := ob.Enc("x")
	if err != nil {
		t.Fatal(err)
	}
	if pt, err := ob.Dec(ot); err != nil || pt != "x" {
		t.Fatalf("ob01 round trip: %q, %v", pt, err)
	}

	// A default Multi refuses to decode payloads of disabled schemes.
	m, err := NewMulti(key)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Dec(ot, "ob01:c32"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Dec of disabled scheme: %v, want ErrUnsupportedFormat", err)
	}

	// An empty scheme set is rejected outright.
	if _, err := NewMulti(key, WithSchemeSet(0)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("empty scheme set: %v", err)
	}
}

func TestFlexSetters(t *testing.T) {
	key := hardcodedKey()
	flex, err := NewFlex("ob32:c32", key)
	if err != nil {
		t.Fatal(err)
	}

	ot1, err := flex.Enc("hello")
	if err != nil {
		t.Fatal(err)
	}

	if err := flex.SetScheme(SchemeOb70); err != nil {
		t.Fatal(err)
	}
	if flex.Format() != Ob70C32 {
		t.Errorf("format after SetScheme: %s", flex.Format())
	}
	if err := flex.SetEncoding(HexLower); err != nil {
		t.Fatal(err)
	}
	if flex.Format() != Ob70Hex {
		t.Errorf("format after SetEncoding: %s", flex.Format())
	}
	if err := flex.SetFormat("ob32:b32"); err != nil {
		t.Fatal(err)
	}
	ot2, err := flex.Enc("hello")
	if err != nil {
		t.Fatal(err)
	}
	if pt, err := flex.Dec(ot2); err != nil || pt != "hello" {
		t.Fatalf("Dec after format changes: %q, %v", pt, err)
	}

	// The old c32 obtext no longer decodes under b32.
	if _, err := flex.Dec(ot1); err == nil {
		t.Error("b32 flex decoded a c32 obtext")
	}

	// Setters respect the scheme set.
	if err := flex.SetScheme(SchemeOb01); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("SetScheme(ob01) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestUTF8Validation(t *testing.T) {
	key := hardcodedKey()

	// ob70 is the identity scheme, so a payload of invalid UTF-8 framed
	// by hand exercises the validator.
	payload := framePayload(SchemeOb70, []byte{0xff, 0xfe})
	ot := Base32Crockford.encode(payload)

	ob, err := New("ob70:c32", key)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ob.Dec(ot); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("invalid UTF-8 accepted: %v", err)
	}

	unchecked, err := New("ob70:c32", key, WithoutUTF8Validation())
	if err != nil {
		t.Fatal(err)
	}
	pt, err := unchecked.Dec(ot)
	if err != nil {
		t.Fatalf("unchecked Dec: %v", err)
	}
	if pt != "\xff\xfe" {
		t.Errorf("unchecked Dec = %q", pt)
	}
}

func TestScenarioOb32C32Shape(t *testing.T) {
	key := hardcodedKey()
	ob, err := New("ob32:c32", key)
	if err != nil {
		t.Fatal(err)
	}
	ot, err := ob.Enc("Hello World")
	if err != nil {
		t.Fatal(err)
	}
	// 11-byte plaintext -> 27-byte SIV output + tag = 28 payload bytes
	// -> ceil(224/5) = 45 Crockford characters, all lowercase.
	if len(ot) != 45 {
		t.Errorf("obtext is %d chars, want 45: %q", len(ot), ot)
	}
	if ot != strings.ToLower(ot) {
		t.Errorf("obtext is not lowercase: %q", ot)
	}
	payload, err := Base32Crockford.decode(ot)
	if err != nil {
		t.Fatal(err)
	}
	if payload[len(payload)-1] != tagOb32 {
		t.Errorf("tail byte 0x%02x, want 0x%02x", payload[len(payload)-1], tagOb32)
	}
	if pt, err := ob.Dec(ot); err != nil || pt != "Hello World" {
		t.Errorf("Dec = %q, %v", pt, err)
	}
}

func TestScenarioOb01EmptyPlaintext(t *testing.T) {
	key := hardcodedKey()
	ob, err := New("ob01:c32", key, WithSchemeSet(AllSchemes))
	if err != nil {
		t.Fatal(err)
	}
	a, err := ob.Enc("")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ob.Enc("")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("ob01 empty-plaintext obtexts differ: %q vs %q", a, b)
	}
	// One padded block plus the scheme byte: 17 bytes -> 28 characters.
	if len(a) != 28 {
		t.Errorf("obtext is %d chars, want 28: %q", len(a), a)
	}
	if pt, err := ob.Dec(a); err != nil || pt != "" {
		t.Errorf("Dec = %q, %v", pt, err)
	}
}

func TestConvenienceFunctions(t *testing.T) {
	key := hardcodedKey()
	ot, err := Enc("one shot", "ob32:b64", key)
	if err != nil {
		t.Fatal(err)
	}
	if pt, err := Dec(ot, "ob32:b64", key); err != nil || pt != "one shot" {
		t.Fatalf("Dec = %q, %v", pt, err)
	}
	if pt, err := AutoDec(ot, key); err != nil || pt != "one shot" {
		t.Fatalf("AutoDec = %q, %v", pt, err)
	}

	// Naming an insecure format is its own opt-in.
	ot01, err := Enc("legacy", "ob01:hex", key)
	if err != nil {
		t.Fatal(err)
	}
	if pt, err := Dec(ot01, "ob01:hex", key); err != nil || pt != "legacy" {
		t.Fatalf("Dec(ob01) = %q, %v", pt, err)
	}
}

func TestKeylessConstructors(t *testing.T) {
	ob, err := NewKeyless("ob32:c32")
	if err != nil {
		t.Fatal(err)
	}
	ot, err := ob.Enc("keyless")
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMultiKeyless()
	if err != nil {
		t.Fatal(err)
	}
	if pt, err := m.AutoDec(ot); err != nil || pt != "keyless" {
		t.Fatalf("keyless AutoDec = %q, %v", pt, err)
	}
}

func TestNilKeyRejected(t *testing.T) {
	if _, err := New("ob32:c32", nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("nil key: %v, want ErrInvalidKey", err)
	}
}
