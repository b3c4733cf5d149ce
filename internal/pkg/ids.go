package pkg

import (
	"strings"

	"github.com/google/uuid"
)

const gameIDLength = 8

// GenerateGameID returns a short human-shareable code, e.g. "3F9A01C2".
// Codes are random, callers must still handle collisions.
func GenerateGameID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	return strings.ToUpper(id.String()[:gameIDLength]), nil
}

// GenerateNewSessionID returns an opaque participant identity.
func GenerateNewSessionID() string {
	return uuid.NewString()
}
