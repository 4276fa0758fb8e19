// Package errors defines the error taxonomy shared by the field-mapping
// pipeline: document access, model building, calibration and configuration.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes mapping failures
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeOpen
	ErrorTypeParse
	ErrorTypeCalibration
	ErrorTypeExtractionUnmatched
	ErrorTypeConfiguration
)

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeOpen:
		return "OPEN_ERROR"
	case ErrorTypeParse:
		return "PARSE_ERROR"
	case ErrorTypeCalibration:
		return "CALIBRATION_ERROR"
	case ErrorTypeExtractionUnmatched:
		return "EXTRACTION_UNMATCHED"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN"
	}
}

// MappingError carries the failure category plus the operation and file it
// occurred in.
type MappingError struct {
	Type    ErrorType `json:"type"`
	Op      string    `json:"op,omitempty"`
	Path    string    `json:"path,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *MappingError) Error() string {
	msg := fmt.Sprintf("[%s]", e.Type)
	if e.Op != "" {
		msg += " " + e.Op
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// Is matches any MappingError of the same type, so the sentinels below work
// with errors.Is.
func (e *MappingError) Is(target error) bool {
	t, ok := target.(*MappingError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Sentinels for errors.Is comparisons
var (
	ErrOpen          = &MappingError{Type: ErrorTypeOpen}
	ErrParse         = &MappingError{Type: ErrorTypeParse}
	ErrCalibration   = &MappingError{Type: ErrorTypeCalibration}
	ErrConfiguration = &MappingError{Type: ErrorTypeConfiguration}
)

// New creates a MappingError without an underlying cause
func New(errorType ErrorType, op, message string) *MappingError {
	return &MappingError{Type: errorType, Op: op, Message: message}
}

// Newf creates a MappingError with a formatted message
func Newf(errorType ErrorType, op, format string, args ...interface{}) *MappingError {
	return New(errorType, op, fmt.Sprintf(format, args...))
}

// Wrap attaches a type, operation and path to an underlying error
func Wrap(errorType ErrorType, op, path string, err error) *MappingError {
	return &MappingError{Type: errorType, Op: op, Path: path, Err: err}
}

// TypeOf returns the ErrorType of the first MappingError in err's chain
func TypeOf(err error) ErrorType {
	var me *MappingError
	if errors.As(err, &me) {
		return me.Type
	}
	return ErrorTypeUnknown
}
