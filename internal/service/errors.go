// Package service implements the clipboard lifecycle: record storage,
// identifier generation, expiry sweeping, device registration and push
// notification dispatch.
package service

import "errors"

var (
	// ErrNotFound covers both "never existed" and "existed but expired".
	// Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrCodeTaken means another device already registered the receive code.
	ErrCodeTaken = errors.New("receive code already taken")

	// ErrIDsExhausted means no free clipboard ID was found within the
	// attempt budget.
	ErrIDsExhausted = errors.New("unable to generate unique clipboard ID")
)
