package oboron

import (
	"fmt"

	"github.com/google/uuid"
)

// Keyring decodes against several master keys in order, for key
// rotation: the first (primary) key encrypts, and every key is tried on
// decode until one succeeds. Authenticated schemes make the fallback
// reliable; for the unauthenticated CBC schemes a wrong key can decrypt
// into garbage that still unpads, so rotate those with care.
type Keyring struct {
	entries []keyringEntry
	opts    []Option
}

type keyringEntry struct {
	id    string
	multi *Multi
}

// NewKeyring creates a keyring with a primary key and optional older
// keys, most recent first. Options apply to every entry.
func NewKeyring(primary *Key, older []*Key, opts ...Option) (*Keyring, error) {
	r := &Keyring{opts: opts}
	if _, err := r.Add(primary); err != nil {
		return nil, err
	}
	for _, k := range older {
		if _, err := r.Add(k); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add appends a key to the ring and returns its generated entry ID.
func (r *Keyring) Add(key *Key) (string, error) {
	m, err := NewMulti(key, r.opts...)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	r.entries = append(r.entries, keyringEntry{id: id, multi: m})
	return id, nil
}

// Keys returns the entry IDs in trial order.
func (r *Keyring) Keys() []string {
	ids := make([]string, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.id
	}
	return ids
}

// Enc encrypts with the primary key.
func (r *Keyring) Enc(plaintext, format string) (string, error) {
	return r.entries[0].multi.Enc(plaintext, format)
}

// Dec decodes under the given format, trying each key in order.
func (r *Keyring) Dec(obtext, format string) (string, error) {
	var lastErr error
	for _, e := range r.entries {
		pt, err := e.multi.Dec(obtext, format)
		if err == nil {
			return pt, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("oboron: no key in the ring decodes this obtext: %w", lastErr)
}

// AutoDec detects encoding and scheme, trying each key in order.
func (r *Keyring) AutoDec(obtext string) (string, error) {
	for _, e := range r.entries {
		pt, err := e.multi.AutoDec(obtext)
		if err == nil {
			return pt, nil
		}
	}
	return "", fmt.Errorf("%w: no key, encoding and scheme combination matched", ErrMalformedPayload)
}
