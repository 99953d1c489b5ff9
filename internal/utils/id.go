package utils

import (
	"github.com/google/uuid"
)

// ElementID generates a document-unique element id with the given prefix
func ElementID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
