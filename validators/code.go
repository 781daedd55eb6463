// Package validators contains input validation shared by the API handlers
// and services
package validators

import (
	"errors"
	"strings"
)

var (
	ErrNoCode       = errors.New("receive code is required")
	ErrCodeTooShort = errors.New("receive code must be at least 3 characters")
	ErrCodeTooLong  = errors.New("receive code must be 30 characters or less")
)

const (
	minCodeLen = 3
	maxCodeLen = 30
)

// NormalizeReceiveCode lowercases, trims and strips a user-chosen receive
// code down to [a-z0-9_-], then checks the length bounds. Matching is done
// on the normalized form everywhere, which is what makes codes
// case-insensitive.
func NormalizeReceiveCode(raw string) (string, error) {
	if raw == "" {
		return "", ErrNoCode
	}

	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	clean := b.String()
	if len(clean) < minCodeLen {
		return "", ErrCodeTooShort
	}
	if len(clean) > maxCodeLen {
		return "", ErrCodeTooLong
	}

	return clean, nil
}
