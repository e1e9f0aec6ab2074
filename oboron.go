package oboron

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"
)

// Codec is the uniform enc/dec contract shared by the format-holding
// façades. Multi is the one type outside it: it takes the format per
// call instead of holding one.
type Codec interface {
	// Enc encrypts and encodes a UTF-8 plaintext into an obtext.
	Enc(plaintext string) (string, error)
	// Dec decodes and decrypts an obtext. The scheme is autodetected
	// from the payload's scheme byte; only the encoding must match.
	Dec(obtext string) (string, error)
	// DecStrict is Dec, but rejects payloads whose scheme byte differs
	// from the configured scheme with ErrSchemeMismatch.
	DecStrict(obtext string) (string, error)
	// Format returns the active format.
	Format() Format
}

// Option configures a façade at construction.
type Option func(*core)

// WithSchemeSet replaces the enabled scheme set. The default set
// excludes the insecure ob00 and ob01 schemes.
func WithSchemeSet(set SchemeSet) Option {
	return func(c *core) { c.schemes = set }
}

// WithoutUTF8Validation skips UTF-8 validation of decrypted bytes. A
// speed-over-safety trade for trusted inputs; the wire format is
// unaffected.
func WithoutUTF8Validation() Option {
	return func(c *core) { c.validateUTF8 = false }
}

// core holds the state and pipeline shared by every façade.
type core struct {
	key          *Key
	schemes      SchemeSet
	validateUTF8 bool
}

func newCore(key *Key, opts []Option) (*core, error) {
	if key == nil {
		return nil, &KeyError{Message: "key is nil"}
	}
	c := &core{key: key, schemes: DefaultSchemes, validateUTF8: true}
	for _, opt := range opts {
		opt(c)
	}
	if c.schemes == 0 {
		return nil, fmt.Errorf("%w: empty scheme set", ErrUnsupportedFormat)
	}
	return c, nil
}

// enc runs encrypt -> frame -> encode for one format.
func (c *core) enc(plaintext string, f Format) (string, error) {
	if !c.schemes.Contains(f.Scheme) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	if f.Scheme == SchemeOb00 {
		return encOb00(plaintext, f.Encoding, c.key)
	}
	ct, err := schemeCiphers[f.Scheme].encrypt(c.key, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return f.Encoding.encode(framePayload(f.Scheme, ct)), nil
}

// decAny decodes with the given encoding and autodetects the scheme
// from the payload tail. When ob00 is enabled it doubles as the
// fallback for undecodable text and unknown scheme bytes.
func (c *core) decAny(obtext string, enc Encoding) (string, error) {
	payload, err := enc.decode(obtext)
	if err != nil {
		if c.schemes.Contains(SchemeOb00) {
			if pt, err00 := decOb00(obtext, enc, c.key); err00 == nil && plausibleOb00(pt) {
				return pt, nil
			}
		}
		return "", err
	}
	scheme, ct, err := splitPayload(payload)
	if err != nil {
		if errors.Is(err, ErrUnknownScheme) && c.schemes.Contains(SchemeOb00) {
			if pt, err00 := decOb00(obtext, enc, c.key); err00 == nil && plausibleOb00(pt) {
				return pt, nil
			}
		}
		return "", err
	}
	if !c.schemes.Contains(scheme) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, scheme)
	}
	pt, err := schemeCiphers[scheme].decrypt(c.key, ct)
	if err != nil {
		return "", err
	}
	return c.finish(pt)
}

// decStrict decodes under one exact format.
func (c *core) decStrict(obtext string, f Format) (string, error) {
	if !c.schemes.Contains(f.Scheme) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	if f.Scheme == SchemeOb00 {
		pt, err := decOb00(obtext, f.Encoding, c.key)
		if err != nil {
			return "", err
		}
		return c.finish([]byte(pt))
	}
	payload, err := f.Encoding.decode(obtext)
	if err != nil {
		return "", err
	}
	scheme, ct, err := splitPayload(payload)
	if err != nil {
		return "", err
	}
	if scheme != f.Scheme {
		return "", fmt.Errorf("%w: payload is %s, configured %s", ErrSchemeMismatch, scheme, f.Scheme)
	}
	pt, err := schemeCiphers[scheme].decrypt(c.key, ct)
	if err != nil {
		return "", err
	}
	return c.finish(pt)
}

// finish applies the optional UTF-8 check to decrypted bytes.
func (c *core) finish(plaintext []byte) (string, error) {
	if c.validateUTF8 && !utf8.Valid(plaintext) {
		return "", ErrInvalidUTF8
	}
	return string(plaintext), nil
}

// checkFormat validates a format against the enabled scheme set.
func (c *core) checkFormat(f Format) error {
	if !c.schemes.Contains(f.Scheme) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	return nil
}

// Ob is a façade whose format is fixed at construction. It covers both
// the compile-time-known and runtime-chosen format cases: parsing
// happens once, and per-call work is just the pipeline. Safe for
// concurrent use.
type Ob struct {
	core   *core
	format Format
}

// New creates an Ob from a "scheme:encoding" format string.
func New(format string, key *Key, opts ...Option) (*Ob, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return NewWithFormat(f, key, opts...)
}

// NewWithFormat creates an Ob from a pre-built Format.
func NewWithFormat(f Format, key *Key, opts ...Option) (*Ob, error) {
	c, err := newCore(key, opts)
	if err != nil {
		return nil, err
	}
	if err := c.checkFormat(f); err != nil {
		return nil, err
	}
	return &Ob{core: c, format: f}, nil
}

// NewKeyless creates an Ob with the hardcoded, publicly known test key.
// Obtexts produced this way are obfuscated, not protected.
func NewKeyless(format string, opts ...Option) (*Ob, error) {
	return New(format, hardcodedKey(), opts...)
}

func (o *Ob) Enc(plaintext string) (string, error) {
	return o.core.enc(plaintext, o.format)
}

func (o *Ob) Dec(obtext string) (string, error) {
	return o.core.decAny(obtext, o.format.Encoding)
}

func (o *Ob) DecStrict(obtext string) (string, error) {
	return o.core.decStrict(obtext, o.format)
}

func (o *Ob) Format() Format {
	return o.format
}

// Flex is a façade whose format can be replaced after construction. The
// setters replace the format atomically with respect to concurrent Enc
// and Dec calls.
type Flex struct {
	mu     sync.RWMutex
	core   *core
	format Format
}

// NewFlex creates a Flex from a "scheme:encoding" format string.
func NewFlex(format string, key *Key, opts ...Option) (*Flex, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return NewFlexWithFormat(f, key, opts...)
}

// NewFlexWithFormat creates a Flex from a pre-built Format.
func NewFlexWithFormat(f Format, key *Key, opts ...Option) (*Flex, error) {
	c, err := newCore(key, opts)
	if err != nil {
		return nil, err
	}
	if err := c.checkFormat(f); err != nil {
		return nil, err
	}
	return &Flex{core: c, format: f}, nil
}

func (x *Flex) Enc(plaintext string) (string, error) {
	return x.core.enc(plaintext, x.Format())
}

func (x *Flex) Dec(obtext string) (string, error) {
	return x.core.decAny(obtext, x.Format().Encoding)
}

func (x *Flex) DecStrict(obtext string) (string, error) {
	return x.core.decStrict(obtext, x.Format())
}

func (x *Flex) Format() Format {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.format
}

// SetFormat replaces the active format from a format string.
func (x *Flex) SetFormat(format string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	return x.SetFormatTo(f)
}

// SetFormatTo replaces the active format.
func (x *Flex) SetFormatTo(f Format) error {
	if err := x.core.checkFormat(f); err != nil {
		return err
	}
	x.mu.Lock()
	x.format = f
	x.mu.Unlock()
	return nil
}

// SetScheme replaces the scheme, keeping the encoding.
func (x *Flex) SetScheme(s Scheme) error {
	return x.SetFormatTo(Format{Scheme: s, Encoding: x.Format().Encoding})
}

// SetEncoding replaces the encoding, keeping the scheme.
func (x *Flex) SetEncoding(e Encoding) error {
	return x.SetFormatTo(Format{Scheme: x.Format().Scheme, Encoding: e})
}

// Multi is a façade with no stored format: Enc and Dec take the format
// per call, and AutoDec detects both encoding and scheme. Safe for
// concurrent use.
type Multi struct {
	core *core
}

// NewMulti creates a Multi.
func NewMulti(key *Key, opts ...Option) (*Multi, error) {
	c, err := newCore(key, opts)
	if err != nil {
		return nil, err
	}
	return &Multi{core: c}, nil
}

// NewMultiKeyless creates a Multi with the hardcoded test key.
func NewMultiKeyless(opts ...Option) (*Multi, error) {
	return NewMulti(hardcodedKey(), opts...)
}

// Enc encrypts and encodes under the given "scheme:encoding" format.
func (m *Multi) Enc(plaintext, format string) (string, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	return m.core.enc(plaintext, f)
}

// EncFormat is Enc with a pre-built Format.
func (m *Multi) EncFormat(plaintext string, f Format) (string, error) {
	return m.core.enc(plaintext, f)
}

// Dec decodes under the given format. The payload's scheme byte must
// match the format's scheme.
func (m *Multi) Dec(obtext, format string) (string, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	return m.core.decStrict(obtext, f)
}

// DecFormat is Dec with a pre-built Format.
func (m *Multi) DecFormat(obtext string, f Format) (string, error) {
	return m.core.decStrict(obtext, f)
}

// AutoDec detects both encoding and scheme. Encodings are tried in the
// fixed order c32, b32, b64, hex; the first combination that decodes,
// decrypts, and authenticates wins. The per-attempt errors are
// deliberately collapsed into a single ErrMalformedPayload so the
// result does not reveal how far any alphabet got.
func (m *Multi) AutoDec(obtext string) (string, error) {
	for _, enc := range autodecOrder {
		if pt, err := m.core.decAny(obtext, enc); err == nil {
			return pt, nil
		}
	}
	return "", fmt.Errorf("%w: no encoding and scheme combination matched", ErrMalformedPayload)
}

// Package-level conveniences for one-shot operations.

// Enc encrypts plaintext under an explicit format. Every scheme is
// available: naming a format is the explicit opt-in the insecure
// schemes require.
func Enc(plaintext, format string, key *Key) (string, error) {
	m, err := NewMulti(key, WithSchemeSet(AllSchemes))
	if err != nil {
		return "", err
	}
	return m.Enc(plaintext, format)
}

// Dec decodes an obtext under an explicit format.
func Dec(obtext, format string, key *Key) (string, error) {
	m, err := NewMulti(key, WithSchemeSet(AllSchemes))
	if err != nil {
		return "", err
	}
	return m.Dec(obtext, format)
}

// AutoDec decodes an obtext, detecting encoding and scheme. Only the
// default scheme set participates.
func AutoDec(obtext string, key *Key) (string, error) {
	m, err := NewMulti(key)
	if err != nil {
		return "", err
	}
	return m.AutoDec(obtext)
}
