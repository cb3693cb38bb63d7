// ABOUTME: Typed install failures.
// ABOUTME: Callers distinguish them with errors.Is and errors.As.

package install

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the source archive or the named package does not exist.
	ErrNotFound = errors.New("package not found")
	// ErrCorrupted means the archive is unusable: wrong extension, bad zip,
	// bad metadata or no usable classes.
	ErrCorrupted = errors.New("package corrupted")
	// ErrOutdated means a newer version of the package is already installed.
	ErrOutdated = errors.New("newer version already installed")
)

// IOError wraps a filesystem failure during install or removal.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func corrupted(err error) error {
	return fmt.Errorf("%w: %v", ErrCorrupted, err)
}
