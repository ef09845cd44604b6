package core

import "github.com/google/uuid"

// NewResourceID returns a fresh identifier used to tag GPU resources in logs.
// It carries no meaning for the driver.
func NewResourceID() uuid.UUID {
	return uuid.New()
}

// ShortID is the first block of an identifier, enough to tell resources apart
// in a log line.
func ShortID(id uuid.UUID) string {
	return id.String()[:8]
}
