package oboron

import (
	"errors"
	"testing"
)

func TestSchemeNames(t *testing.T) {
	for s := SchemeOb00; s < numSchemes; s++ {
		name := s.String()
		if name == "unknown" {
			t.Fatalf("scheme %d has no name", s)
		}
		parsed, err := ParseScheme(name)
		if err != nil {
			t.Fatalf("ParseScheme(%q): %v", name, err)
		}
		if parsed != s {
			t.Errorf("ParseScheme(%q) = %v, want %v", name, parsed, s)
		}
	}
}

func TestParseSchemeCaseSensitive(t *testing.T) {
	for _, in := range []string{"OB32", "Ob32", "ob-32", "ob99", ""} {
		if _, err := ParseScheme(in); !errors.Is(err, ErrUnknownScheme) {
			t.Errorf("ParseScheme(%q) = %v, want ErrUnknownScheme", in, err)
		}
	}
}

func TestSchemeTagRegistry(t *testing.T) {
	want := map[Scheme]byte{
		SchemeOb01:  0x02,
		SchemeOb21p: 0x23,
		SchemeOb31:  0x62,
		SchemeOb31p: 0x63,
		SchemeOb32:  0x64,
		SchemeOb32p: 0x65,
		SchemeOb70:  0xE0,
		SchemeOb71:  0xE2,
	}
	seen := map[byte]Scheme{}
	for s, tag := range want {
		got, ok := s.tag()
		if !ok || got != tag {
			t.Errorf("%s tag = 0x%02x (%v), want 0x%02x", s, got, ok, tag)
		}
		if prev, dup := seen[got]; dup {
			t.Errorf("tag 0x%02x shared by %s and %s", got, prev, s)
		}
		seen[got] = s

		back, ok := schemeForTag(tag)
		if !ok || back != s {
			t.Errorf("schemeForTag(0x%02x) = %v (%v), want %s", tag, back, ok, s)
		}
	}

	if _, ok := SchemeOb00.tag(); ok {
		t.Error("ob00 must not have a scheme byte")
	}
	if _, ok := schemeForTag(0x00); ok {
		t.Error("tag 0x00 resolved to a scheme")
	}
}

func TestSchemeProperties(t *testing.T) {
	tests := []struct {
		scheme        Scheme
		deterministic bool
		authenticated bool
		reversed      bool
	}{
		{SchemeOb00, true, false, false}, // text-level reversal, not byte-level
		{SchemeOb01, true, false, true},
		{SchemeOb21p, false, false, true},
		{SchemeOb31, true, true, false},
		{SchemeOb31p, false, true, false},
		{SchemeOb32, true, true, false},
		{SchemeOb32p, false, true, false},
		{SchemeOb70, true, false, false},
		{SchemeOb71, true, false, true},
	}
	for _, tt := range tests {
		if got := tt.scheme.Deterministic(); got != tt.deterministic {
			t.Errorf("%s.Deterministic() = %v", tt.scheme, got)
		}
		if got := tt.scheme.Probabilistic(); got == tt.deterministic {
			t.Errorf("%s.Probabilistic() = %v", tt.scheme, got)
		}
		if got := tt.scheme.Authenticated(); got != tt.authenticated {
			t.Errorf("%s.Authenticated() = %v", tt.scheme, got)
		}
		if got := tt.scheme.reversed(); got != tt.reversed {
			t.Errorf("%s.reversed() = %v", tt.scheme, got)
		}
	}
}

func TestSchemeSet(t *testing.T) {
	if DefaultSchemes.Contains(SchemeOb00) || DefaultSchemes.Contains(SchemeOb01) {
		t.Error("default set includes an insecure scheme")
	}
	for _, s := range []Scheme{SchemeOb21p, SchemeOb31, SchemeOb31p, SchemeOb32, SchemeOb32p, SchemeOb70, SchemeOb71} {
		if !DefaultSchemes.Contains(s) {
			t.Errorf("default set is missing %s", s)
		}
	}
	for s := SchemeOb00; s < numSchemes; s++ {
		if !AllSchemes.Contains(s) {
			t.Errorf("AllSchemes is missing %s", s)
		}
	}

	set := DefaultSchemes.With(SchemeOb01).Without(SchemeOb32)
	if !set.Contains(SchemeOb01) || set.Contains(SchemeOb32) {
		t.Error("With/Without did not apply")
	}
}
