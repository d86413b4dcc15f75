package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// writeNewFile creates path exclusively and writes content to it.
func writeNewFile(path, content string) error {
	if err := ensureParent(path); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm) //nolint:gosec // G304: path is under the configured root
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &FileCollisionError{Path: path}
		}
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
