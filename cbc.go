package oboron

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// AES-128-CBC helpers for the ob00/ob01/ob21p family. Padding is applied
// by the caller so the legacy scheme can keep its own fill byte.

// cbcEncrypt encrypts block-aligned plaintext in CBC mode.
func cbcEncrypt(key, iv, padded []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("oboron: aes init: %w", err)
	}
	if len(padded)%aesBlockSize != 0 {
		return nil, fmt.Errorf("%w: plaintext not block aligned", ErrMalformedPayload)
	}
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)
	return ct, nil
}

// cbcDecrypt decrypts CBC ciphertext. The result still carries padding.
func cbcDecrypt(key, iv, ct []byte) ([]byte, error) {
	if len(ct)%aesBlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext not block aligned", ErrMalformedPayload)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("oboron: aes init: %w", err)
	}
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)
	return pt, nil
}

// randomBytes fills a fresh buffer from the system CSPRNG. Failure
// propagates; it is never replaced with a weaker source.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("oboron: system random source failed: %w", err)
	}
	return b, nil
}
