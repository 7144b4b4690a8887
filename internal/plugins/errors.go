package plugins

import (
	"fmt"
)

type ErrorType int

const (
	ErrorTypeToolUnavailable ErrorType = iota
	ErrorTypeManifest
)

type PluginError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *PluginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

func (e *PluginError) Is(target error) bool {
	if t, ok := target.(*PluginError); ok {
		return e.Type == t.Type
	}
	return false
}
