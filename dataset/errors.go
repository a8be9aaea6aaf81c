package dataset

import "github.com/cockroachdb/errors"

// ErrDatasetFormat marks every error caused by a missing, empty or malformed
// dataset file. It is fatal to the dataset size being loaded only.
var ErrDatasetFormat = errors.New("dataset format error")

// ErrDatasetMissing additionally marks errors caused by a file that does not
// exist.
var ErrDatasetMissing = errors.New("dataset file missing")

func formatError(path string, err error) error {
	return errors.Mark(errors.Wrapf(err, "dataset %s", path), ErrDatasetFormat)
}
