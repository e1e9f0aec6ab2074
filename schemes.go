package oboron

import (
	"fmt"
)

// schemeCipher is the capability a scheme exposes to the framer: raw
// encrypt and decrypt over its subkey slice of the master key. The
// scheme byte and orientation are framing concerns and never appear
// here.
type schemeCipher interface {
	encrypt(key *Key, plaintext []byte) ([]byte, error)
	decrypt(key *Key, data []byte) ([]byte, error)
}

// schemeCiphers maps each scheme to its primitive. ob00 is absent: the
// legacy path frames at the text level and lives in legacy.go.
var schemeCiphers = [numSchemes]schemeCipher{
	SchemeOb01:  ob01Cipher{},
	SchemeOb21p: ob21pCipher{},
	SchemeOb31:  ob31Cipher{},
	SchemeOb31p: ob31pCipher{},
	SchemeOb32:  ob32Cipher{},
	SchemeOb32p: ob32pCipher{},
	SchemeOb70:  ob70Cipher{},
	SchemeOb71:  ob71Cipher{},
}

// ob01: deterministic AES-128-CBC with the fixed IV from the key
// partition. Ciphertext only; the IV is implicit. Obfuscation only.
type ob01Cipher struct{}

func (ob01Cipher) encrypt(key *Key, plaintext []byte) ([]byte, error) {
	return cbcEncrypt(key.cbcKey(), key.cbcIV(), padBlocks(plaintext))
}

func (ob01Cipher) decrypt(key *Key, data []byte) ([]byte, error) {
	pt, err := cbcDecrypt(key.cbcKey(), key.cbcIV(), data)
	if err != nil {
		return nil, err
	}
	return unpadBlocks(pt), nil
}

// ob21p: probabilistic AES-128-CBC. Layout: IV || ciphertext.
type ob21pCipher struct{}

func (ob21pCipher) encrypt(key *Key, plaintext []byte) ([]byte, error) {
	iv, err := randomBytes(aesBlockSize)
	if err != nil {
		return nil, err
	}
	ct, err := cbcEncrypt(key.cbcKey(), iv, padBlocks(plaintext))
	if err != nil {
		return nil, err
	}
	return append(iv, ct...), nil
}

func (ob21pCipher) decrypt(key *Key, data []byte) ([]byte, error) {
	if len(data) < 2*aesBlockSize {
		return nil, fmt.Errorf("%w: ob21p payload too short", ErrMalformedPayload)
	}
	pt, err := cbcDecrypt(key.cbcKey(), data[:aesBlockSize], data[aesBlockSize:])
	if err != nil {
		return nil, err
	}
	return unpadBlocks(pt), nil
}

// ob31: deterministic AES-256-GCM-SIV with a zero nonce. Layout:
// ciphertext || tag.
type ob31Cipher struct{}

var gcmsivZeroNonce = make([]byte, gcmsivNonceSize)

func (ob31Cipher) encrypt(key *Key, plaintext []byte) ([]byte, error) {
	engine, err := newGCMSIV(key.gcmSivKey())
	if err != nil {
		return nil, err
	}
	return engine.seal(gcmsivZeroNonce, plaintext)
}

func (ob31Cipher) decrypt(key *Key, data []byte) ([]byte, error) {
	engine, err := newGCMSIV(key.gcmSivKey())
	if err != nil {
		return nil, err
	}
	return engine.open(gcmsivZeroNonce, data)
}

// ob31p: probabilistic AES-256-GCM-SIV. Layout: ciphertext || tag || nonce.
type ob31pCipher struct{}

func (ob31pCipher) encrypt(key *Key, plaintext []byte) ([]byte, error) {
	nonce, err := randomBytes(gcmsivNonceSize)
	if err != nil {
		return nil, err
	}
	engine, err := newGCMSIV(key.gcmSivKey())
	if err != nil {
		return nil, err
	}
	ct, err := engine.seal(nonce, plaintext)
	if err != nil {
		return nil, err
	}
	return append(ct, nonce...), nil
}

func (ob31pCipher) decrypt(key *Key, data []byte) ([]byte, error) {
	if len(data) < gcmsivTagSize+gcmsivNonceSize {
		return nil, fmt.Errorf("%w: ob31p payload too short", ErrMalformedPayload)
	}
	engine, err := newGCMSIV(key.gcmSivKey())
	if err != nil {
		return nil, err
	}
	nonce := data[len(data)-gcmsivNonceSize:]
	return engine.open(nonce, data[:len(data)-gcmsivNonceSize])
}

// ob32: deterministic AES-256-SIV with no associated data. Layout:
// synthetic IV || ciphertext.
type ob32Cipher struct{}

func (ob32Cipher) encrypt(key *Key, plaintext []byte) ([]byte, error) {
	engine, err := newSIV(key.sivKey())
	if err != nil {
		return nil, err
	}
	return engine.seal(plaintext), nil
}

func (ob32Cipher) decrypt(key *Key, data []byte) ([]byte, error) {
	engine, err := newSIV(key.sivKey())
	if err != nil {
		return nil, err
	}
	return engine.open(data)
}

// ob32p: probabilistic AES-256-SIV with a random 16-byte nonce as the
// sole associated-data component. Layout: synthetic IV || ciphertext || nonce.
type ob32pCipher struct{}

const ob32pNonceSize = 16

func (ob32pCipher) encrypt(key *Key, plaintext []byte) ([]byte, error) {
	nonce, err := randomBytes(ob32pNonceSize)
	if err != nil {
		return nil, err
	}
	engine, err := newSIV(key.sivKey())
	if err != nil {
		return nil, err
	}
	ct := engine.seal(plaintext, nonce)
	return append(ct, nonce...), nil
}

func (ob32pCipher) decrypt(key *Key, data []byte) ([]byte, error) {
	if len(data) < 16+ob32pNonceSize {
		return nil, fmt.Errorf("%w: ob32p payload too short", ErrMalformedPayload)
	}
	engine, err := newSIV(key.sivKey())
	if err != nil {
		return nil, err
	}
	nonce := data[len(data)-ob32pNonceSize:]
	return engine.open(data[:len(data)-ob32pNonceSize], nonce)
}

// ob70: identity. Testing only.
type ob70Cipher struct{}

func (ob70Cipher) encrypt(_ *Key, plaintext []byte) ([]byte, error) {
	out := make([]byte, len(plaintext))
	copy(out, plaintext)
	return out, nil
}

func (ob70Cipher) decrypt(_ *Key, data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// ob71: byte reversal. Testing only.
type ob71Cipher struct{}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func (ob71Cipher) encrypt(_ *Key, plaintext []byte) ([]byte, error) {
	return reverseBytes(plaintext), nil
}

func (ob71Cipher) decrypt(_ *Key, data []byte) ([]byte, error) {
	return reverseBytes(data), nil
}
