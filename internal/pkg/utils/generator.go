package utils

import (
	"github.com/google/uuid"
)

func GenerateRequestID() string {
	return uuid.NewString()
}

// GenerateLocalID produces the client-side identifier a record or entry keeps
// until the remote store assigns one.
func GenerateLocalID() string {
	return uuid.NewString()
}
