// Package filex prepares on-disk locations for local data.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir makes path absolute, relative to the working directory,
// and creates its parent directory (0o700) if missing. The absolute path is
// returned.
func EnsureParentDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return abs, nil
}
