// Package ids generates the tracking tokens used across a purchase attempt.
package ids

import "github.com/google/uuid"

// NewCorrelationID returns the token joining all audit events of one
// purchase attempt.
func NewCorrelationID() string {
	return uuid.NewString()
}

// NewLockToken returns an opaque value proving lock ownership.
func NewLockToken() string {
	return uuid.NewString()
}

// IsUUID reports whether s is a well-formed UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
