package backup

import (
	"fmt"
)

type ErrorType int

const (
	ErrorTypeInvalidName ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeFilesystem
)

type BackupError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *BackupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BackupError) Unwrap() error {
	return e.Err
}

func (e *BackupError) Is(target error) bool {
	if t, ok := target.(*BackupError); ok {
		return e.Type == t.Type
	}
	return false
}
