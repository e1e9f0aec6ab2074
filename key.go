package oboron

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeySize is the master key length in bytes (512 bits).
const KeySize = 64

const (
	keyBase64Len = 86  // ceil(512/6)
	keyHexLen    = 128 // 64 bytes * 2
)

// keyBase64FinalChars are the only legal final characters of an 86-char
// base64 key: 86*6 = 516 bits, so the last character must zero-pad the
// 4 unused low bits. Exactly four symbols do.
const keyBase64FinalChars = "AQgw"

// Key is the 512-bit master secret. Subkeys for the individual schemes
// are fixed slices of it (see the partition table below); the slices are
// a public wire contract and must never change:
//
//	[0, 16)  AES-128-CBC key           (ob00, ob01, ob21p)
//	[16, 32) fixed CBC IV              (ob00, ob01)
//	[32, 64) AES-256-GCM-SIV key       (ob31, ob31p)
//	[0, 64)  AES-256-SIV double key    (ob32, ob32p)
//
// A Key is immutable and safe for concurrent use. Call Destroy to zero
// the buffer when the key is no longer needed.
type Key struct {
	data [KeySize]byte
}

// NewKey constructs a Key from a 64-byte sequence. The bytes are copied.
func NewKey(b []byte) (*Key, error) {
	if len(b) != KeySize {
		return nil, &KeyError{Field: "bytes", Value: len(b), Message: fmt.Sprintf("key must be %d bytes, got %d", KeySize, len(b))}
	}
	k := &Key{}
	copy(k.data[:], b)
	return k, nil
}

// NewKeyFromBase64 constructs a Key from an 86-character URL-safe base64
// string. The final character must be one of A, Q, g, w; any other
// symbol would claim nonzero bits beyond the 512th.
func NewKeyFromBase64(s string) (*Key, error) {
	if len(s) != keyBase64Len {
		return nil, &KeyError{Field: "base64", Value: len(s), Message: fmt.Sprintf("key must be %d characters, got %d", keyBase64Len, len(s))}
	}
	if !strings.ContainsRune(keyBase64FinalChars, rune(s[keyBase64Len-1])) {
		return nil, &KeyError{Field: "base64", Value: string(s[keyBase64Len-1]), Message: "final character must be one of A, Q, g, w"}
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, &KeyError{Field: "base64", Message: "invalid base64url character"}
	}
	return NewKey(b)
}

// NewKeyFromHex constructs a Key from a 128-character hex string. Decode
// accepts either case; the canonical rendering is lowercase.
func NewKeyFromHex(s string) (*Key, error) {
	if len(s) != keyHexLen {
		return nil, &KeyError{Field: "hex", Value: len(s), Message: fmt.Sprintf("key must be %d characters, got %d", keyHexLen, len(s))}
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, &KeyError{Field: "hex", Message: "invalid hex character"}
	}
	return NewKey(b)
}

// GenerateKey returns a fresh random master key from the system CSPRNG.
// RNG failure is fatal and panics; it is never masked with a weaker
// source.
func GenerateKey() *Key {
	k := &Key{}
	if _, err := rand.Read(k.data[:]); err != nil {
		panic("oboron: system random source failed: " + err.Error())
	}
	return k
}

// GenerateKeyBase64 returns a fresh random key rendered as base64,
// regenerated until the rendering contains neither '-' nor '_' so the
// key stays double-click-selectable in terminals and GUIs.
func GenerateKeyBase64() string {
	for {
		s := GenerateKey().Base64()
		if strings.ContainsAny(s, "-_") {
			continue
		}
		if !strings.ContainsRune(keyBase64FinalChars, rune(s[keyBase64Len-1])) {
			panic("oboron: generated key has nonzero trailing bits")
		}
		return s
	}
}

// GenerateKeyHex returns a fresh random key rendered as lowercase hex.
func GenerateKeyHex() string {
	return GenerateKey().Hex()
}

// Base64 renders the key as 86 characters of unpadded URL-safe base64.
func (k *Key) Base64() string {
	return base64.RawURLEncoding.EncodeToString(k.data[:])
}

// Hex renders the key as 128 characters of lowercase hex.
func (k *Key) Hex() string {
	return hex.EncodeToString(k.data[:])
}

// Bytes returns a copy of the raw key material.
func (k *Key) Bytes() []byte {
	b := make([]byte, KeySize)
	copy(b, k.data[:])
	return b
}

// Destroy zeroes the key buffer. The Key must not be used afterwards;
// operations with a destroyed key produce garbage, not errors.
func (k *Key) Destroy() {
	for i := range k.data {
		k.data[i] = 0
	}
}

// Subkey slices. These return views into the key buffer; callers must
// not retain or modify them.

func (k *Key) cbcKey() []byte { return k.data[0:16] }

func (k *Key) cbcIV() []byte { return k.data[16:32] }

func (k *Key) gcmSivKey() []byte { return k.data[32:64] }

func (k *Key) sivKey() []byte { return k.data[0:64] }

// HardcodedKeyBase64 is a fixed, publicly known key for tests and
// examples. It provides no secrecy whatsoever.
const HardcodedKeyBase64 = "OBKEYz0C6l8134WWtcxCGDEAYEaOi0ZUVaQVF06m6Wap9I7sS6RG3fyLeFh4lTVvRadaGrdBlFTdn3qoqV291Q"

// HardcodedKeyBytes is the byte form of HardcodedKeyBase64.
var HardcodedKeyBytes = [KeySize]byte{
	0x38, 0x12, 0x84, 0x63, 0x3d, 0x02, 0xea, 0x5f, 0x35, 0xdf, 0x85, 0x96, 0xb5, 0xcc, 0x42, 0x18,
	0x31, 0x00, 0x60, 0x46, 0x8e, 0x8b, 0x46, 0x54, 0x55, 0xa4, 0x15, 0x17, 0x4e, 0xa6, 0xe9, 0x66,
	0xa9, 0xf4, 0x8e, 0xec, 0x4b, 0xa4, 0x46, 0xdd, 0xfc, 0x8b, 0x78, 0x58, 0x78, 0x95, 0x35, 0x6f,
	0x45, 0xa7, 0x5a, 0x1a, 0xb7, 0x41, 0x94, 0x54, 0xdd, 0x9f, 0x7a, 0xa8, 0xa9, 0x5d, 0xbd, 0xd5,
}

// hardcodedKey constructs the well-known test key.
func hardcodedKey() *Key {
	k, err := NewKey(HardcodedKeyBytes[:])
	if err != nil {
		panic("oboron: hardcoded key is invalid: " + err.Error())
	}
	return k
}
