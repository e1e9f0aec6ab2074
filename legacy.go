package oboron

import (
	"strings"
	"unicode"
)

// Legacy ob00 scheme. Kept for compatibility with pre-scheme-byte
// deployments; everything about it is quirky and isolated here:
//
//   - '=' (0x3D) fill padding instead of the 0x01 sentinel
//   - no scheme byte
//   - the encoded text is reversed, not the payload bytes
//   - b32 obtexts are lowercased on encode and restored on decode
//
// New code should never emit ob00.

const ob00PadByte = '='

// ob00Encrypt encrypts with the ob01 key/IV slices and '=' padding.
func ob00Encrypt(key *Key, plaintext []byte) ([]byte, error) {
	n := len(plaintext)
	total := n + (aesBlockSize-n%aesBlockSize)%aesBlockSize
	padded := make([]byte, total)
	copy(padded, plaintext)
	for i := n; i < total; i++ {
		padded[i] = ob00PadByte
	}
	return cbcEncrypt(key.cbcKey(), key.cbcIV(), padded)
}

// ob00Decrypt decrypts and strips the trailing '=' fill.
func ob00Decrypt(key *Key, data []byte) ([]byte, error) {
	pt, err := cbcDecrypt(key.cbcKey(), key.cbcIV(), data)
	if err != nil {
		return nil, err
	}
	end := len(pt)
	for end > 0 && pt[end-1] == ob00PadByte {
		end--
	}
	return pt[:end], nil
}

// encOb00 runs the full legacy pipeline: encrypt, encode, reverse text.
func encOb00(plaintext string, enc Encoding, key *Key) (string, error) {
	ct, err := ob00Encrypt(key, []byte(plaintext))
	if err != nil {
		return "", err
	}
	var encoded string
	switch enc {
	case Base32RFC:
		// legacy b32 output is lowercase
		encoded = strings.ToLower(base32RFCEncoding.EncodeToString(ct))
	default:
		encoded = enc.encode(ct)
	}
	return string(reverseBytes([]byte(encoded))), nil
}

// decOb00 inverts encOb00.
func decOb00(obtext string, enc Encoding, key *Key) (string, error) {
	forward := string(reverseBytes([]byte(obtext)))
	var ct []byte
	var err error
	switch enc {
	case Base32RFC:
		ct, err = enc.decode(strings.ToUpper(forward))
	default:
		ct, err = enc.decode(forward)
	}
	if err != nil {
		return "", err
	}
	pt, err := ob00Decrypt(key, ct)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// plausibleOb00 guards the ob00 autodetection fallback. Legacy payloads
// carry no scheme byte, so a wrong-encoding decode can "succeed" into
// garbage; require most characters to be printable before accepting.
func plausibleOb00(s string) bool {
	if s == "" {
		return true
	}
	total := 0
	reasonable := 0
	for _, r := range s {
		total++
		if r == unicode.ReplacementChar {
			continue
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			reasonable++
		}
	}
	return reasonable*10 >= total*7
}
