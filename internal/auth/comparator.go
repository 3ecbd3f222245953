// Package auth gates mutating operations behind a shared API key.
//
// The comparison is constant-time in two senses: a content mismatch takes
// the same time regardless of where the strings first differ, and a length
// mismatch still pays a comparison over the supplied value so it cannot be
// told apart from a content mismatch by an external timer.
package auth

import (
	"crypto/subtle"
	"fmt"
)

// Comparator decides whether a caller-supplied secret equals the configured
// secret. It exposes a boolean only; no partial-match information is ever
// observable.
type Comparator struct {
	secret []byte
}

// NewComparator creates a Comparator for the given shared secret.
// An empty secret is a configuration error, not an open door.
func NewComparator(secret string) (*Comparator, error) {
	if secret == "" {
		return nil, fmt.Errorf("api key must not be empty")
	}
	return &Comparator{secret: []byte(secret)}, nil
}

// Authorize reports whether supplied matches the configured secret.
// An absent (empty) supplied value fails before any comparison.
func (c *Comparator) Authorize(supplied string) bool {
	if supplied == "" {
		return false
	}

	s := []byte(supplied)
	if len(s) != len(c.secret) {
		// Burn a comparison over the supplied value so the length
		// short-circuit is not distinguishable from a content mismatch.
		subtle.ConstantTimeCompare(s, s)
		return false
	}

	return subtle.ConstantTimeCompare(s, c.secret) == 1
}
