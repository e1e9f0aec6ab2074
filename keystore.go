package oboron

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Keystore persists master keys as password-sealed files on an absfs
// filesystem. The key material is encrypted with ChaCha20-Poly1305
// under an Argon2id-derived file key, so a stolen key file is useless
// without the password.
//
// File layout:
//
//	magic    (4)  "OBKS"
//	version  (1)
//	id       (16) random UUID naming this key file
//	saltSize (2, little-endian) + salt
//	nonceSize(2, little-endian) + nonce
//	sealed key material (ciphertext + 16-byte Poly1305 tag)
type Keystore struct {
	fs     absfs.FileSystem
	argon2 Argon2idParams
}

var keystoreMagic = [4]byte{'O', 'B', 'K', 'S'}

const (
	keystoreVersion  = uint8(1)
	keystoreSaltSize = 32
)

// NewKeystore creates a keystore over the given filesystem with the
// default Argon2id parameters.
func NewKeystore(fs absfs.FileSystem) *Keystore {
	return &Keystore{
		fs:     fs,
		argon2: Argon2idParams{Memory: 64 * 1024, Iterations: 3, Parallelism: 4},
	}
}

// SaveKey seals the key under the password and writes it to path,
// returning the generated key file ID.
func (s *Keystore) SaveKey(path string, key *Key, password []byte) (string, error) {
	if key == nil {
		return "", &KeyError{Message: "key is nil"}
	}
	if len(password) == 0 {
		return "", &KeyError{Field: "password", Message: "password cannot be empty"}
	}

	id := uuid.New()
	salt, err := randomBytes(keystoreSaltSize)
	if err != nil {
		return "", err
	}
	nonce, err := randomBytes(chacha20poly1305.NonceSize)
	if err != nil {
		return "", err
	}

	aead, err := chacha20poly1305.New(s.fileKey(password, salt))
	if err != nil {
		return "", fmt.Errorf("oboron: keystore cipher init: %w", err)
	}
	sealed := aead.Seal(nil, nonce, key.Bytes(), id[:])

	buf := new(bytes.Buffer)
	buf.Write(keystoreMagic[:])
	buf.WriteByte(keystoreVersion)
	buf.Write(id[:])
	binary.Write(buf, binary.LittleEndian, uint16(len(salt)))
	buf.Write(salt)
	binary.Write(buf, binary.LittleEndian, uint16(len(nonce)))
	buf.Write(nonce)
	buf.Write(sealed)

	f, err := s.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("oboron: create key file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("oboron: write key file: %w", err)
	}
	return id.String(), nil
}

// LoadKey reads and unseals the key at path. A wrong password surfaces
// as ErrAuthFailed.
func (s *Keystore) LoadKey(path string, password []byte) (*Key, error) {
	id, salt, nonce, sealed, err := s.readKeyFile(path)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(s.fileKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("oboron: keystore cipher init: %w", err)
	}
	raw, err := aead.Open(nil, nonce, sealed, id[:])
	if err != nil {
		return nil, ErrAuthFailed
	}
	return NewKey(raw)
}

// KeyID returns the UUID of the key file at path without unsealing it.
func (s *Keystore) KeyID(path string) (string, error) {
	id, _, _, _, err := s.readKeyFile(path)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *Keystore) fileKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, s.argon2.Iterations, s.argon2.Memory, s.argon2.Parallelism, chacha20poly1305.KeySize)
}

func (s *Keystore) readKeyFile(path string) (uuid.UUID, []byte, []byte, []byte, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return uuid.UUID{}, nil, nil, nil, fmt.Errorf("oboron: open key file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return uuid.UUID{}, nil, nil, nil, fmt.Errorf("oboron: read key file: %w", err)
	}

	r := bytes.NewReader(raw)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || magic != keystoreMagic {
		return uuid.UUID{}, nil, nil, nil, fmt.Errorf("%w: not a keystore file", ErrMalformedPayload)
	}
	version, err := r.ReadByte()
	if err != nil {
		return uuid.UUID{}, nil, nil, nil, fmt.Errorf("%w: truncated keystore header", ErrMalformedPayload)
	}
	if version > keystoreVersion {
		return uuid.UUID{}, nil, nil, nil, fmt.Errorf("%w: keystore version %d", ErrMalformedPayload, version)
	}

	var idBytes [16]byte
	if _, err := io.ReadFull(r, idBytes[:]); err != nil {
		return uuid.UUID{}, nil, nil, nil, fmt.Errorf("%w: truncated keystore header", ErrMalformedPayload)
	}
	id, err := uuid.FromBytes(idBytes[:])
	if err != nil {
		return uuid.UUID{}, nil, nil, nil, fmt.Errorf("%w: bad keystore id", ErrMalformedPayload)
	}

	salt, err := readSized(r)
	if err != nil {
		return uuid.UUID{}, nil, nil, nil, err
	}
	nonce, err := readSized(r)
	if err != nil {
		return uuid.UUID{}, nil, nil, nil, err
	}
	sealed, err := io.ReadAll(r)
	if err != nil {
		return uuid.UUID{}, nil, nil, nil, fmt.Errorf("oboron: read key file: %w", err)
	}
	return id, salt, nonce, sealed, nil
}

func readSized(r *bytes.Reader) ([]byte, error) {
	var size uint16
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("%w: truncated keystore header", ErrMalformedPayload)
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: truncated keystore header", ErrMalformedPayload)
	}
	return b, nil
}

// KeystoreKeyProvider adapts a keystore entry to the KeyProvider
// interface.
type KeystoreKeyProvider struct {
	store    *Keystore
	path     string
	password []byte
}

func NewKeystoreKeyProvider(store *Keystore, path string, password []byte) *KeystoreKeyProvider {
	return &KeystoreKeyProvider{store: store, path: path, password: password}
}

func (p *KeystoreKeyProvider) ProvideKey() (*Key, error) {
	return p.store.LoadKey(p.path, p.password)
}
