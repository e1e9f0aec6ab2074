package oboron

import (
	"fmt"
)

// Payload framing: orient(ciphertext) || scheme byte. The scheme byte
// rides at the tail so that, after encoding, it sits at the end of the
// obtext and the prefix keeps full ciphertext entropy.

// framePayload builds the payload for a scheme's ciphertext.
func framePayload(s Scheme, ciphertext []byte) []byte {
	tag, ok := s.tag()
	if !ok {
		panic("oboron: framePayload called for a scheme without a scheme byte")
	}
	payload := make([]byte, len(ciphertext)+1)
	if s.reversed() {
		for i, b := range ciphertext {
			payload[len(ciphertext)-1-i] = b
		}
	} else {
		copy(payload, ciphertext)
	}
	payload[len(ciphertext)] = tag
	return payload
}

// splitPayload reads the scheme byte from the payload tail and restores
// the ciphertext orientation. The scheme is detected from the payload
// alone; callers enforce stricter expectations on top.
func splitPayload(payload []byte) (Scheme, []byte, error) {
	if len(payload) == 0 {
		return 0, nil, fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}
	tag := payload[len(payload)-1]
	scheme, ok := schemeForTag(tag)
	if !ok {
		return 0, nil, fmt.Errorf("%w: scheme byte 0x%02x", ErrUnknownScheme, tag)
	}
	body := payload[:len(payload)-1]
	if scheme.reversed() {
		body = reverseBytes(body)
	}
	return scheme, body, nil
}
