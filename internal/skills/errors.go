package skills

import (
	"fmt"
)

type ErrorType int

const (
	ErrorTypeFilesystem ErrorType = iota
	ErrorTypeManifest
	ErrorTypeUnsupported
)

type LedgerError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

func (e *LedgerError) Is(target error) bool {
	if t, ok := target.(*LedgerError); ok {
		return e.Type == t.Type
	}
	return false
}
