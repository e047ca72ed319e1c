package errors

import (
	"errors"
	"fmt"
)

// Category groups errors by subsystem
type Category string

const (
	CategoryConfig Category = "config"
	CategoryEngine Category = "engine"
	CategoryRemote Category = "remote"
	CategoryTool   Category = "tool"
	CategoryPatch  Category = "patch"
)

// HubError is the structured error type for the project
type HubError struct {
	Category  Category
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *HubError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

func (e *HubError) Unwrap() error {
	return e.Cause
}

func (e *HubError) Is(target error) bool {
	t, ok := target.(*HubError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Category == t.Category
}

// IsRetryable checks whether an error is retryable.
// Returns false for nil errors or non-HubError types.
func IsRetryable(err error) bool {
	var he *HubError
	if errors.As(err, &he) {
		return he.Retryable
	}
	return false
}

// GetCategory extracts the error category from a HubError.
// Returns an empty Category for nil errors or non-HubError types.
func GetCategory(err error) Category {
	var he *HubError
	if errors.As(err, &he) {
		return he.Category
	}
	return ""
}

// GetUserMessage returns a user-friendly message for the error.
// For HubError it returns the Message field; for other errors it returns Error().
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var he *HubError
	if errors.As(err, &he) {
		return he.Message
	}
	return err.Error()
}

// HasCode reports whether err is a HubError with the given code.
func HasCode(err error, code string) bool {
	var he *HubError
	if errors.As(err, &he) {
		return he.Code == code
	}
	return false
}
