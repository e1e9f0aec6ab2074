package oboron

import (
	"bytes"
	"errors"
	"testing"
)

func testSIVEngine(t *testing.T) *sivEngine {
	t.Helper()
	e, err := newSIV(HardcodedKeyBytes[:])
	if err != nil {
		t.Fatalf("newSIV: %v", err)
	}
	return e
}

func TestSIVSealOpen(t *testing.T) {
	e := testSIVEngine(t)

	tests := []struct {
		name      string
		plaintext []byte
		ad        [][]byte
	}{
		{"simple text", []byte("Hello, World!"), nil},
		{"empty plaintext", []byte{}, nil},
		{"single byte", []byte("x"), nil},
		{"block sized", bytes.Repeat([]byte{'b'}, 16), nil},
		{"with AD", []byte("secret message"), [][]byte{[]byte("context")}},
		{"long plaintext", bytes.Repeat([]byte("A"), 1000), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := e.seal(tt.plaintext, tt.ad...)
			if len(ct) != len(tt.plaintext)+16 {
				t.Fatalf("ciphertext is %d bytes, want %d", len(ct), len(tt.plaintext)+16)
			}
			pt, err := e.open(ct, tt.ad...)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if !bytes.Equal(pt, tt.plaintext) {
				t.Errorf("round trip gave %q, want %q", pt, tt.plaintext)
			}
		})
	}
}

func TestSIVDeterministic(t *testing.T) {
	e := testSIVEngine(t)
	pt := []byte("deterministic test")
	if !bytes.Equal(e.seal(pt), e.seal(pt)) {
		t.Error("two seals of the same plaintext differ")
	}
	if bytes.Equal(e.seal(pt), e.seal(append(pt, '!'))) {
		t.Error("different plaintexts sealed identically")
	}
}

func TestSIVTamperDetection(t *testing.T) {
	e := testSIVEngine(t)
	ct := e.seal([]byte("integrity matters"))

	for _, i := range []int{0, 15, 16, len(ct) - 1} {
		mangled := make([]byte, len(ct))
		copy(mangled, ct)
		mangled[i] ^= 0x01
		if _, err := e.open(mangled); !errors.Is(err, ErrAuthFailed) {
			t.Errorf("flip at byte %d: got %v, want ErrAuthFailed", i, err)
		}
	}
}

func TestSIVWrongAD(t *testing.T) {
	e := testSIVEngine(t)
	ct := e.seal([]byte("bound to context"), []byte("right"))
	if _, err := e.open(ct, []byte("wrong")); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("wrong AD: got %v, want ErrAuthFailed", err)
	}
	if _, err := e.open(ct); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("missing AD: got %v, want ErrAuthFailed", err)
	}
}

func TestSIVShortInput(t *testing.T) {
	e := testSIVEngine(t)
	if _, err := e.open([]byte("short")); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("short input: got %v, want ErrMalformedPayload", err)
	}
}

func TestSIVKeySize(t *testing.T) {
	for _, n := range []int{0, 16, 32, 48, 63, 65} {
		if _, err := newSIV(make([]byte, n)); err == nil {
			t.Errorf("newSIV accepted a %d-byte key", n)
		}
	}
}
