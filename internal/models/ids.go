package models

import "github.com/google/uuid"

// NewID returns a time-ordered UUIDv7 string used as document _id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// only fails when the OS random source is unavailable
		return uuid.NewString()
	}
	return id.String()
}
