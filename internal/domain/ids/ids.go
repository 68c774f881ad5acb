// Package ids mints and validates the ULID identifiers used for all
// persisted entities.
package ids

import (
	"crypto/rand"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidRegex = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

	ErrInvalidULID = errors.New("invalid ULID")
)

// NewULID generates a new ULID string.
func NewULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// MustNewULID generates a new ULID or panics. Only for use in tests and
// one-off tooling.
func MustNewULID() string {
	id, err := NewULID()
	if err != nil {
		panic(err)
	}
	return id
}

// ValidateULID checks that a string is a well-formed ULID.
func ValidateULID(value string) error {
	value = strings.TrimSpace(value)
	if !ulidRegex.MatchString(value) {
		return ErrInvalidULID
	}
	return nil
}
