// Package uuid wraps google/uuid for the identifiers the API hands out.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a time-ordered UUIDv7 string. Request ids sort by arrival,
// which keeps log searches by id range cheap.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Entropy failure; a random v4 still identifies the request.
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}

// Normalize returns s in canonical lower-case form, or "" if it is not a UUID.
func Normalize(s string) string {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return ""
	}
	return parsed.String()
}
