// Package oboron provides symmetric encryption-and-encoding for short
// UTF-8 strings: a single enc step bundles AES encryption, a scheme
// byte, and a text encoding into one string-in, string-out transform,
// and dec inverts it.
//
// # Obtexts
//
// For a scheme S and encoding E, an obtext is
//
//	encode_E( orient_S(ciphertext) || schemeByte_S )
//
// The scheme byte rides at the payload tail, and CBC ciphertexts are
// byte-reversed before framing, so the first characters of every obtext
// carry full ciphertext entropy. Short prefixes of obtexts are
// therefore usable as Git-style short references, and deterministic
// schemes map distinct plaintexts to distinct obtexts under one key.
//
// # Schemes
//
//   - ob32 / ob32p: AES-256-SIV (RFC 5297), authenticated, deterministic /
//     probabilistic. The recommended default.
//   - ob31 / ob31p: AES-256-GCM-SIV (RFC 8452), authenticated.
//   - ob21p: AES-128-CBC with a random IV. Unauthenticated.
//   - ob01: deterministic AES-128-CBC with a fixed IV. Broken by design,
//     obfuscation only, disabled by default.
//   - ob70 / ob71: identity and byte-reversal, for tests.
//   - ob00: legacy CBC variant predating the scheme byte, disabled by
//     default.
//
// Each scheme pairs with four encodings: Crockford base32 (c32, the
// default), RFC 4648 base32 (b32), URL-safe base64 (b64), and hex. A
// format names one pair, written "scheme:encoding".
//
// # Keys
//
// The master key is 512 bits, accepted as 64 raw bytes, 128 hex
// characters, or 86 base64 characters. Per-scheme subkeys are fixed
// slices of it (see Key); the partition is a wire contract shared by
// every oboron implementation. KeyProvider implementations load keys
// from the environment, files, passwords, or a password-sealed
// Keystore, and Keyring tries several keys on decode for rotation.
//
// # Basic usage
//
//	key, err := oboron.NewKeyFromBase64(os.Getenv(oboron.EnvKey))
//	if err != nil {
//	    return err
//	}
//	ob, err := oboron.New("ob32:c32", key)
//	if err != nil {
//	    return err
//	}
//	ot, err := ob.Enc("secret data")   // obtext
//	pt, err := ob.Dec(ot)              // "secret data"
//
// Dec autodetects the scheme from the payload, so an ob32:c32 instance
// decodes any c32 obtext; DecStrict pins the configured scheme. Flex
// adds format setters, and Multi takes the format per call and offers
// AutoDec, which detects the encoding as well.
//
// # Security notes
//
// Deterministic encryption deliberately reveals plaintext equality.
// The CBC schemes are unauthenticated and documented insecure against
// active attackers; the default scheme set excludes ob00 and ob01
// entirely. Plaintext length is hidden only up to block or cipher
// granularity. Streaming and asymmetric cryptography are out of scope.
package oboron
