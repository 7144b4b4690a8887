package gitsync

import (
	"fmt"
)

type ErrorType int

const (
	ErrorTypeGit ErrorType = iota
	ErrorTypeInvalidURL
	ErrorTypeNoRemote
	ErrorTypeFilesystem
)

type SyncError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func (e *SyncError) Is(target error) bool {
	if t, ok := target.(*SyncError); ok {
		return e.Type == t.Type
	}
	return false
}
