package store

import (
	"errors"
	"fmt"

	"github.com/dotcommander/pai/internal/models"
)

// RecoverableError is an alias for models.RecoverableError.
type RecoverableError = models.RecoverableError

// ErrFileCollision is matched by every *FileCollisionError.
var ErrFileCollision = errors.New("signal document already exists")

// FileCollisionError is returned when a signal document name is already taken.
// Documents are never overwritten.
type FileCollisionError struct {
	Path string
}

func (e *FileCollisionError) Error() string {
	return fmt.Sprintf("signal document already exists: %s", e.Path)
}
func (e *FileCollisionError) ErrorCode() string { return "FILE_COLLISION" }
func (e *FileCollisionError) Context() map[string]string {
	return map[string]string{"path": e.Path}
}
func (e *FileCollisionError) SuggestedAction() string {
	return "retry after one second; document names carry a per-second timestamp"
}
func (e *FileCollisionError) Is(target error) bool { return target == ErrFileCollision }
