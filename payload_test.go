package oboron

import (
	"bytes"
	"errors"
	"testing"
)

func TestFramePayloadTagAtTail(t *testing.T) {
	ct := []byte{0x10, 0x20, 0x30, 0x40}
	for s := SchemeOb01; s < numSchemes; s++ {
		tag, ok := s.tag()
		if !ok {
			continue
		}
		payload := framePayload(s, ct)
		if len(payload) != len(ct)+1 {
			t.Fatalf("%s: payload is %d bytes", s, len(payload))
		}
		if payload[len(payload)-1] != tag {
			t.Errorf("%s: tail byte 0x%02x, want 0x%02x", s, payload[len(payload)-1], tag)
		}
		if s.reversed() {
			if !bytes.Equal(payload[:len(ct)], []byte{0x40, 0x30, 0x20, 0x10}) {
				t.Errorf("%s: body not reversed: %x", s, payload[:len(ct)])
			}
		} else if !bytes.Equal(payload[:len(ct)], ct) {
			t.Errorf("%s: body altered: %x", s, payload[:len(ct)])
		}
	}
}

func TestSplitPayloadInvertsFrame(t *testing.T) {
	ct := []byte{0xde, 0xad, 0xbe, 0xef}
	for s := SchemeOb01; s < numSchemes; s++ {
		if _, ok := s.tag(); !ok {
			continue
		}
		scheme, body, err := splitPayload(framePayload(s, ct))
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		if scheme != s {
			t.Errorf("detected %s, want %s", scheme, s)
		}
		if !bytes.Equal(body, ct) {
			t.Errorf("%s: recovered body %x, want %x", s, body, ct)
		}
	}
}

func TestSplitPayloadErrors(t *testing.T) {
	if _, _, err := splitPayload(nil); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("empty payload: %v", err)
	}
	if _, _, err := splitPayload([]byte{0x01, 0x02, 0x00}); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("unknown tag: %v", err)
	}
}

func TestSplitPayloadTagOnly(t *testing.T) {
	// A bare tag byte is a valid frame around an empty ciphertext.
	scheme, body, err := splitPayload([]byte{tagOb70})
	if err != nil {
		t.Fatal(err)
	}
	if scheme != SchemeOb70 || len(body) != 0 {
		t.Errorf("got %s with %d body bytes", scheme, len(body))
	}
}
