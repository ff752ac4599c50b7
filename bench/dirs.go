package bench

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// RemoveStatus reports what RemoveTree found at the target path.
type RemoveStatus int

const (
	// RemoveFailed is returned alongside a non-nil error.
	RemoveFailed RemoveStatus = iota
	// Removed means the path existed and was deleted.
	Removed
	// AlreadyAbsent means there was nothing to delete.
	AlreadyAbsent
)

func (s RemoveStatus) String() string {
	switch s {
	case RemoveFailed:
		return "failed"
	case Removed:
		return "removed"
	case AlreadyAbsent:
		return "already-absent"
	default:
		return fmt.Sprintf("RemoveStatus(%d)", int(s))
	}
}

// EnsureDir creates path and any missing parents. It is a no-op when the
// directory already exists.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", path, err)
	}

	return nil
}

// RemoveTree recursively deletes path. A missing path is not an error and
// is reported as AlreadyAbsent; any other failure is returned.
func RemoveTree(path string) (RemoveStatus, error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return AlreadyAbsent, nil
		}

		return RemoveFailed, fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.RemoveAll(path); err != nil {
		return RemoveFailed, fmt.Errorf("remove %s: %w", path, err)
	}

	return Removed, nil
}
