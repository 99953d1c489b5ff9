package dataset

import (
	"fmt"

	"github.com/pkg/errors"
)

// NotFoundError reports a referenced file that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// IsNotFound reports whether err, or any error it wraps, is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := NotFoundPath(err)
	return ok
}

// NotFoundPath returns the missing path carried by err.
func NotFoundPath(err error) (string, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Path, true
	}
	return "", false
}
