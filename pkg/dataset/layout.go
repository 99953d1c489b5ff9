package dataset

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	metadataFile = "metadata.csv"
	dataDir      = "data"
	// cleanedDir is the top directory of the Kaggle archive.
	cleanedDir = "cleaned_dataset"
)

// Layout locates the catalog and the measurement directory of a dataset.
type Layout struct {
	Root         string
	MetadataPath string
	DataDir      string
}

// ResolveLayout accepts either the dataset directory itself or the directory
// the Kaggle archive was extracted into.
func ResolveLayout(root string) (Layout, error) {
	for _, base := range []string{root, filepath.Join(root, cleanedDir)} {
		l := Layout{
			Root:         base,
			MetadataPath: filepath.Join(base, metadataFile),
			DataDir:      filepath.Join(base, dataDir),
		}
		if isFile(l.MetadataPath) && isDir(l.DataDir) {
			return l, nil
		}
	}
	return Layout{}, errors.Errorf("no %s and %s/ under %s", metadataFile, dataDir, root)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
