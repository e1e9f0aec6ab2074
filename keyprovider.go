package oboron

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/absfs/absfs"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// EnvKey is the conventional environment variable for a base64 master
// key. Nothing in the core reads it implicitly; use EnvKeyProvider.
const EnvKey = "OBORON_KEY"

// KeyProvider supplies a master key from some external source: an
// environment variable, a file, a password, a keystore. Providers are
// how deployments keep key material out of code.
type KeyProvider interface {
	ProvideKey() (*Key, error)
}

// EnvKeyProvider reads a base64 master key from an environment variable.
type EnvKeyProvider struct {
	envVar string
}

// NewEnvKeyProvider creates a provider for the given variable; an empty
// name means EnvKey.
func NewEnvKeyProvider(envVar string) *EnvKeyProvider {
	if envVar == "" {
		envVar = EnvKey
	}
	return &EnvKeyProvider{envVar: envVar}
}

func (p *EnvKeyProvider) ProvideKey() (*Key, error) {
	v := os.Getenv(p.envVar)
	if v == "" {
		return nil, &KeyError{Field: "env", Value: p.envVar, Message: "environment variable not set"}
	}
	return NewKeyFromBase64(v)
}

// LiteralKeyProvider wraps an already-constructed key.
type LiteralKeyProvider struct {
	key *Key
}

func NewLiteralKeyProvider(key *Key) *LiteralKeyProvider {
	return &LiteralKeyProvider{key: key}
}

func (p *LiteralKeyProvider) ProvideKey() (*Key, error) {
	if p.key == nil {
		return nil, &KeyError{Message: "key is nil"}
	}
	return p.key, nil
}

// FileKeyProvider reads a key file from an absfs filesystem. The file
// holds a single base64 or hex rendering of the key, optionally
// newline-terminated.
type FileKeyProvider struct {
	fs   absfs.FileSystem
	path string
}

func NewFileKeyProvider(fs absfs.FileSystem, path string) *FileKeyProvider {
	return &FileKeyProvider{fs: fs, path: path}
}

func (p *FileKeyProvider) ProvideKey() (*Key, error) {
	f, err := p.fs.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("oboron: open key file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("oboron: read key file: %w", err)
	}
	s := strings.TrimSpace(string(raw))
	switch len(s) {
	case keyBase64Len:
		return NewKeyFromBase64(s)
	case keyHexLen:
		return NewKeyFromHex(s)
	default:
		return nil, &KeyError{Field: "file", Value: len(s), Message: "key file must hold an 86-char base64 or 128-char hex key"}
	}
}

// HashFunc selects the PBKDF2 hash.
type HashFunc uint8

const (
	SHA256 HashFunc = iota
	SHA512
)

// PBKDF2Params configures the PBKDF2 password provider.
type PBKDF2Params struct {
	Iterations int      // minimum 100,000 recommended
	HashFunc   HashFunc // hash function to use
}

// Argon2idParams configures the Argon2id password provider.
type Argon2idParams struct {
	Memory      uint32 // KiB, e.g. 64*1024 for 64 MB
	Iterations  uint32
	Parallelism uint8
}

// PasswordKeyProvider derives the 64-byte master key from a password
// and salt. This derives the *master* key from a human secret; the
// per-scheme subkeys are still plain slices of the result, never a
// second derivation.
type PasswordKeyProvider struct {
	password     []byte
	salt         []byte
	useArgon2id  bool
	pbkdf2Params PBKDF2Params
	argon2Params Argon2idParams
}

// NewPasswordKeyProvider creates an Argon2id-based provider
// (recommended). Zero-valued params get the defaults: 64 MB memory,
// 3 iterations, parallelism 4.
func NewPasswordKeyProvider(password, salt []byte, params Argon2idParams) *PasswordKeyProvider {
	if params.Memory == 0 {
		params.Memory = 64 * 1024
	}
	if params.Iterations == 0 {
		params.Iterations = 3
	}
	if params.Parallelism == 0 {
		params.Parallelism = 4
	}
	return &PasswordKeyProvider{
		password:     password,
		salt:         salt,
		useArgon2id:  true,
		argon2Params: params,
	}
}

// NewPasswordKeyProviderPBKDF2 creates a PBKDF2-based provider for
// environments that require it. Zero-valued params get 100,000
// iterations of SHA-256.
func NewPasswordKeyProviderPBKDF2(password, salt []byte, params PBKDF2Params) *PasswordKeyProvider {
	if params.Iterations == 0 {
		params.Iterations = 100000
	}
	return &PasswordKeyProvider{
		password:     password,
		salt:         salt,
		pbkdf2Params: params,
	}
}

func (p *PasswordKeyProvider) ProvideKey() (*Key, error) {
	if len(p.password) == 0 {
		return nil, &KeyError{Field: "password", Message: "password cannot be empty"}
	}
	if len(p.salt) == 0 {
		return nil, &KeyError{Field: "salt", Message: "salt cannot be empty"}
	}

	if p.useArgon2id {
		derived := argon2.IDKey(
			p.password,
			p.salt,
			p.argon2Params.Iterations,
			p.argon2Params.Memory,
			p.argon2Params.Parallelism,
			KeySize,
		)
		return NewKey(derived)
	}

	var hashFunc func() hash.Hash
	switch p.pbkdf2Params.HashFunc {
	case SHA256:
		hashFunc = sha256.New
	case SHA512:
		hashFunc = sha512.New
	default:
		return nil, &KeyError{Field: "hash", Value: p.pbkdf2Params.HashFunc, Message: "unsupported hash function"}
	}
	derived := pbkdf2.Key(p.password, p.salt, p.pbkdf2Params.Iterations, KeySize, hashFunc)
	return NewKey(derived)
}

// GenerateSalt returns a fresh 32-byte random salt for the password
// providers.
func GenerateSalt() ([]byte, error) {
	return randomBytes(32)
}
