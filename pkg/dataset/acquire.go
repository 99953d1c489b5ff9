package dataset

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// Acquirer makes a dataset available on the local filesystem and returns
// its root directory.
type Acquirer interface {
	Acquire(ctx context.Context) (string, error)
}

// LocalDir is a dataset that already exists on disk.
type LocalDir struct {
	Path string
}

func (d LocalDir) Acquire(ctx context.Context) (string, error) {
	fi, err := os.Stat(d.Path)
	if err != nil {
		return "", errors.Wrap(err, "dataset directory")
	}
	if !fi.IsDir() {
		return "", errors.Errorf("dataset path %s is not a directory", d.Path)
	}
	return d.Path, nil
}
