package export

import (
	"errors"
	"fmt"
)

// ExportErrorType categorizes different types of export errors
type ExportErrorType string

const (
	ErrorTypeValidation    ExportErrorType = "validation"
	ErrorTypeStage         ExportErrorType = "stage"
	ErrorTypeRaster        ExportErrorType = "raster"
	ErrorTypeArchive       ExportErrorType = "archive"
	ErrorTypeSink          ExportErrorType = "sink"
	ErrorTypeTimeout       ExportErrorType = "timeout"
	ErrorTypeConfiguration ExportErrorType = "configuration"
)

// ExportError provides detailed error information with categorization
type ExportError struct {
	Type      ExportErrorType `json:"type"`
	Message   string          `json:"message"`
	Details   string          `json:"details,omitempty"`
	Code      string          `json:"code,omitempty"`
	Retryable bool            `json:"retryable"`
	Cause     error           `json:"-"`
}

func (e *ExportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s error: %s - %s", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err is an export error worth retrying
func IsRetryable(err error) bool {
	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr.Retryable
	}
	return false
}

// rasterError wraps a single slide failure
func rasterError(number int, err error) *ExportError {
	return &ExportError{
		Type:      ErrorTypeRaster,
		Message:   "failed to rasterize slide",
		Details:   fmt.Sprintf("slide %d", number),
		Code:      "RASTER_FAILED",
		Retryable: true,
		Cause:     err,
	}
}
