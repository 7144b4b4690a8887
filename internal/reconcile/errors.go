package reconcile

import (
	"fmt"
)

type ErrorType int

const (
	ErrorTypeLocalRootMissing ErrorType = iota
	ErrorTypeSyncedTreeMissing
	ErrorTypeBackup
	ErrorTypeFilesystem
)

type ReconcileError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *ReconcileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ReconcileError) Unwrap() error {
	return e.Err
}

func (e *ReconcileError) Is(target error) bool {
	if t, ok := target.(*ReconcileError); ok {
		return e.Type == t.Type
	}
	return false
}
