package service

import (
	"time"

	authDomain "github.com/allisson/secretgate/internal/auth/domain"
)

// KeySet is an immutable snapshot of a fetched JWKS. A refresh builds a new KeySet and swaps
// it in whole.
type KeySet struct {
	keys      []authDomain.SigningKey
	byID      map[string]authDomain.SigningKey
	source    string
	fetchedAt time.Time
}

// NewKeySet indexes keys by id. When ids repeat, the first occurrence wins.
func NewKeySet(keys []authDomain.SigningKey, source string, fetchedAt time.Time) *KeySet {
	set := &KeySet{
		keys:      make([]authDomain.SigningKey, len(keys)),
		byID:      make(map[string]authDomain.SigningKey, len(keys)),
		source:    source,
		fetchedAt: fetchedAt,
	}
	copy(set.keys, keys)
	for _, key := range keys {
		if key.ID == "" || !key.CanSign() {
			continue
		}
		if _, exists := set.byID[key.ID]; !exists {
			set.byID[key.ID] = key
		}
	}
	return set
}

// Lookup returns the signing-capable key with the given id.
func (s *KeySet) Lookup(kid string) (authDomain.SigningKey, bool) {
	key, ok := s.byID[kid]
	return key, ok
}

// SigningKeys returns the signing-capable keys in source order.
func (s *KeySet) SigningKeys() []authDomain.SigningKey {
	keys := make([]authDomain.SigningKey, 0, len(s.keys))
	for _, key := range s.keys {
		if key.CanSign() {
			keys = append(keys, key)
		}
	}
	return keys
}

// Len returns the number of parsed keys, signing-capable or not.
func (s *KeySet) Len() int {
	return len(s.keys)
}

// Source returns the URI the snapshot was fetched from.
func (s *KeySet) Source() string {
	return s.source
}

// FetchedAt returns when the snapshot was fetched.
func (s *KeySet) FetchedAt() time.Time {
	return s.fetchedAt
}

// Expired reports whether the snapshot is older than ttl at now.
func (s *KeySet) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(s.fetchedAt.Add(ttl))
}
