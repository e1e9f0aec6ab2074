package oboron

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// gcmsivEngine implements AES-256-GCM-SIV (RFC 8452) over the standard
// AES block cipher, in the same explicit style as the RFC 5297 engine
// in siv.go. Per-message keys are derived from the key-generating key
// and the nonce, the POLYVAL hash binds plaintext and associated data,
// and the resulting tag doubles as the CTR counter seed. Output is
// ciphertext followed by the 16-byte tag.
type gcmsivEngine struct {
	block cipher.Block // key-generating key
}

const (
	gcmsivNonceSize = 12
	gcmsivTagSize   = 16
)

func newGCMSIV(key []byte) (*gcmsivEngine, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("oboron: AES-GCM-SIV requires a 32-byte key, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("oboron: aes init: %w", err)
	}
	return &gcmsivEngine{block: block}, nil
}

// deriveKeys derives the per-nonce POLYVAL key and AES-256 encryption
// key (RFC 8452 section 4).
func (e *gcmsivEngine) deriveKeys(nonce []byte) (authKey, encKey []byte) {
	in := make([]byte, 16)
	out := make([]byte, 16)
	copy(in[4:], nonce)

	derived := make([]byte, 48)
	for i := uint32(0); i < 6; i++ {
		binary.LittleEndian.PutUint32(in[:4], i)
		e.block.Encrypt(out, in)
		copy(derived[i*8:], out[:8])
	}
	return derived[:16], derived[16:48]
}

// seal encrypts and authenticates plaintext, returning ct || tag.
func (e *gcmsivEngine) seal(nonce, plaintext []byte) ([]byte, error) {
	if len(nonce) != gcmsivNonceSize {
		return nil, fmt.Errorf("%w: AES-GCM-SIV nonce must be %d bytes", ErrMalformedPayload, gcmsivNonceSize)
	}
	authKey, encKey := e.deriveKeys(nonce)
	encBlock, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("oboron: aes init: %w", err)
	}

	tag := gcmsivTag(authKey, nonce, plaintext, encBlock)

	out := make([]byte, len(plaintext)+gcmsivTagSize)
	gcmsivCTR(encBlock, tag, plaintext, out)
	copy(out[len(plaintext):], tag)
	return out, nil
}

// open decrypts ct || tag and verifies the tag.
func (e *gcmsivEngine) open(nonce, data []byte) ([]byte, error) {
	if len(nonce) != gcmsivNonceSize {
		return nil, fmt.Errorf("%w: AES-GCM-SIV nonce must be %d bytes", ErrMalformedPayload, gcmsivNonceSize)
	}
	if len(data) < gcmsivTagSize {
		return nil, fmt.Errorf("%w: AES-GCM-SIV input shorter than the tag", ErrMalformedPayload)
	}
	authKey, encKey := e.deriveKeys(nonce)
	encBlock, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("oboron: aes init: %w", err)
	}

	ct := data[:len(data)-gcmsivTagSize]
	tag := data[len(data)-gcmsivTagSize:]

	plaintext := make([]byte, len(ct))
	gcmsivCTR(encBlock, tag, ct, plaintext)

	expected := gcmsivTag(authKey, nonce, plaintext, encBlock)
	if subtle.ConstantTimeCompare(tag, expected) != 1 {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// gcmsivTag computes the authentication tag: POLYVAL over the padded
// plaintext and length block, xored with the nonce, top bit of the last
// byte cleared, then encrypted (RFC 8452 section 5). Oboron never
// passes associated data through GCM-SIV.
func gcmsivTag(authKey, nonce, plaintext []byte, encBlock cipher.Block) []byte {
	var p polyval
	p.init(authKey)

	block := make([]byte, 16)
	for i := 0; i < len(plaintext); i += 16 {
		if len(plaintext)-i >= 16 {
			p.update(plaintext[i : i+16])
		} else {
			for j := range block {
				block[j] = 0
			}
			copy(block, plaintext[i:])
			p.update(block)
		}
	}

	length := make([]byte, 16)
	binary.LittleEndian.PutUint64(length[8:], uint64(len(plaintext))*8)
	p.update(length)

	s := p.sum()
	for i := 0; i < gcmsivNonceSize; i++ {
		s[i] ^= nonce[i]
	}
	s[15] &= 0x7f

	tag := make([]byte, 16)
	encBlock.Encrypt(tag, s)
	return tag
}

// gcmsivCTR applies the AES-CTR keystream with the tag-derived counter
// block: the tag with the top bit of its last byte set, incremented as
// a 32-bit little-endian counter in its first four bytes.
func gcmsivCTR(encBlock cipher.Block, tag, src, dst []byte) {
	counter := make([]byte, 16)
	copy(counter, tag)
	counter[15] |= 0x80

	keystream := make([]byte, 16)
	for i := 0; i < len(src); i += 16 {
		encBlock.Encrypt(keystream, counter)
		n := len(src) - i
		if n > 16 {
			n = 16
		}
		for j := 0; j < n; j++ {
			dst[i+j] = src[i+j] ^ keystream[j]
		}
		binary.LittleEndian.PutUint32(counter[:4], binary.LittleEndian.Uint32(counter[:4])+1)
	}
}

// polyval evaluates the POLYVAL universal hash from RFC 8452 section 3.
// Field elements are 128-bit little-endian polynomials over GF(2); bit
// i of the integer is the coefficient of x^i. Multiplication by H is
// folded together with the x^-128 factor of the dot operation by
// premultiplying H with the x^-128 constant once.
type polyval struct {
	h fe128 // H * x^-128
	s fe128
}

type fe128 struct {
	lo, hi uint64
}

// feInv128 is x^-128 mod x^128 + x^127 + x^126 + x^121 + 1, equal to
// x^127 + x^124 + x^121 + x^114 + 1.
var feInv128 = fe128{lo: 1, hi: 0x9204000000000000}

// feModulus folds the x^128 overflow term back into the field:
// x^128 = x^127 + x^126 + x^121 + 1.
const (
	feModulusHi = 0xC200000000000000
	feModulusLo = 1
)

func (p *polyval) init(authKey []byte) {
	h := feFromBytes(authKey)
	p.h = feMul(h, feInv128)
	p.s = fe128{}
}

func (p *polyval) update(block []byte) {
	x := feFromBytes(block)
	p.s = feMul(fe128{lo: p.s.lo ^ x.lo, hi: p.s.hi ^ x.hi}, p.h)
}

func (p *polyval) sum() []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[:8], p.s.lo)
	binary.LittleEndian.PutUint64(out[8:], p.s.hi)
	return out
}

func feFromBytes(b []byte) fe128 {
	return fe128{
		lo: binary.LittleEndian.Uint64(b[:8]),
		hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// feMulX multiplies by x in the field.
func feMulX(a fe128) fe128 {
	carry := a.hi >> 63
	a.hi = a.hi<<1 | a.lo>>63
	a.lo <<= 1
	if carry != 0 {
		a.lo ^= feModulusLo
		a.hi ^= feModulusHi
	}
	return a
}

// feMul is carryless shift-and-add multiplication in the field. Short
// payloads keep the block count low, so the bit-serial loop is fine.
func feMul(a, b fe128) fe128 {
	var r fe128
	for i := 0; i < 64; i++ {
		if b.lo>>i&1 != 0 {
			r.lo ^= a.lo
			r.hi ^= a.hi
		}
		a = feMulX(a)
	}
	for i := 0; i < 64; i++ {
		if b.hi>>i&1 != 0 {
			r.lo ^= a.lo
			r.hi ^= a.hi
		}
		a = feMulX(a)
	}
	return r
}
