package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeIO          ErrorType = "io"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeOCR         ErrorType = "ocr"
	ErrorTypeConversion  ErrorType = "conversion"
	ErrorTypeSystem      ErrorType = "system"
	ErrorTypeUnsupported ErrorType = "unsupported"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypePermission  ErrorType = "permission"
	ErrorTypeNotFound    ErrorType = "not_found"

	ErrorTypeCameraUnavailable   ErrorType = "camera_unavailable"
	ErrorTypeCorruptDocument     ErrorType = "corrupt_document"
	ErrorTypePasswordProtected   ErrorType = "password_protected"
	ErrorTypeRendererUnavailable ErrorType = "renderer_unavailable"
	ErrorTypeEmptyText           ErrorType = "empty_text"
	ErrorTypeClipboard           ErrorType = "clipboard"
	ErrorTypeExtraction          ErrorType = "extraction"
	ErrorTypeBusy                ErrorType = "busy"
)

// User-facing messages
const (
	MsgPasswordProtected   = "PDF is password protected. Please use an unprotected PDF."
	MsgCorruptDocument     = "Invalid or corrupted PDF file. Please try a different file."
	MsgRendererUnavailable = "PDF processing service is currently unavailable. Please try again later."
	MsgConversionFailed    = "Failed to convert PDF to images"
	MsgEmptyText           = "No text found in the document"
	MsgCameraUnavailable   = "Camera access denied or unavailable"
	MsgClipboardFailed     = "Failed to copy text"
	MsgExtractionFailed    = "Failed to extract text from document"
	MsgBusy                = "A document is already being processed"
)

// AppError represents an application-specific error with context
type AppError struct {
	Type        ErrorType
	Message     string
	Cause       error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new application error
func NewError(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return NewError(ErrorTypeValidation, message, cause)
}

// NewIOError creates an I/O error
func NewIOError(message string, cause error) *AppError {
	return NewError(ErrorTypeIO, message, cause)
}

// NewOCRError creates an OCR error
func NewOCRError(message string, cause error) *AppError {
	return NewError(ErrorTypeOCR, message, cause)
}

// NewUnsupportedError creates an unsupported operation error
func NewUnsupportedError(message string, cause error) *AppError {
	return NewError(ErrorTypeUnsupported, message, cause)
}

// NewSystemError creates a system error
func NewSystemError(message string, cause error) *AppError {
	return NewError(ErrorTypeSystem, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string, cause error) *AppError {
	return NewError(ErrorTypeNotFound, message, cause)
}

// NewPasswordProtectedError reports a PDF that needs a password
func NewPasswordProtectedError(cause error) *AppError {
	return NewError(ErrorTypePasswordProtected, MsgPasswordProtected, cause)
}

// NewCorruptDocumentError reports a structurally invalid PDF
func NewCorruptDocumentError(cause error) *AppError {
	return NewError(ErrorTypeCorruptDocument, MsgCorruptDocument, cause)
}

// NewRendererUnavailableError reports a rasterizer backend that cannot run.
// It is the only rasterizer failure that advances the fallback chain.
func NewRendererUnavailableError(cause error) *AppError {
	err := NewError(ErrorTypeRendererUnavailable, MsgRendererUnavailable, cause)
	err.Recoverable = true
	return err
}

// NewConversionError wraps any other rasterizer failure with its underlying message
func NewConversionError(cause error) *AppError {
	msg := MsgConversionFailed
	if cause != nil {
		msg = fmt.Sprintf("%s: %s", MsgConversionFailed, UserMessage(cause))
	}
	return NewError(ErrorTypeConversion, msg, cause)
}

// NewEmptyTextError reports a run where every page came back blank
func NewEmptyTextError() *AppError {
	return NewError(ErrorTypeEmptyText, MsgEmptyText, nil)
}

// NewCameraUnavailableError reports a camera that could not be acquired
func NewCameraUnavailableError(cause error) *AppError {
	return NewError(ErrorTypeCameraUnavailable, MsgCameraUnavailable, cause)
}

// NewClipboardError reports a failed clipboard write
func NewClipboardError(cause error) *AppError {
	return NewError(ErrorTypeClipboard, MsgClipboardFailed, cause)
}

// NewBusyError rejects a capture while a recognition is in flight
func NewBusyError() *AppError {
	return NewError(ErrorTypeBusy, MsgBusy, nil)
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the original type unless explicitly overridden
	var appErr *AppError
	if errors.As(err, &appErr) && errorType == "" {
		return &AppError{
			Type:        appErr.Type,
			Message:     message + ": " + appErr.Message,
			Cause:       appErr.Cause,
			Context:     appErr.Context,
			Recoverable: appErr.Recoverable,
		}
	}

	if errorType == "" {
		errorType = classifyError(err)
	}

	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// classifyError automatically classifies an error based on its content
func classifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSystem
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return ErrorTypeTimeout
	case strings.Contains(errStr, "password"):
		return ErrorTypePasswordProtected
	case strings.Contains(errStr, "permission denied") || strings.Contains(errStr, "access denied"):
		return ErrorTypePermission
	case strings.Contains(errStr, "executable file not found"):
		return ErrorTypeRendererUnavailable
	case strings.Contains(errStr, "no such file") || strings.Contains(errStr, "not found"):
		return ErrorTypeNotFound
	case strings.Contains(errStr, "network") || strings.Contains(errStr, "connection"):
		return ErrorTypeNetwork
	case strings.Contains(errStr, "ocr") || strings.Contains(errStr, "tesseract"):
		return ErrorTypeOCR
	case strings.Contains(errStr, "malformed") || strings.Contains(errStr, "corrupt"):
		return ErrorTypeCorruptDocument
	case strings.Contains(errStr, "convert") || strings.Contains(errStr, "parsing"):
		return ErrorTypeConversion
	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "bad"):
		return ErrorTypeValidation
	default:
		return ErrorTypeSystem
	}
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}

	switch classifyError(err) {
	case ErrorTypeTimeout, ErrorTypeNetwork:
		return true
	default:
		return false
	}
}

// GetErrorType extracts the error type from an error
func GetErrorType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return classifyError(err)
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == errorType
}

// IsBusy reports whether err rejected a concurrent capture
func IsBusy(err error) bool {
	return IsType(err, ErrorTypeBusy)
}

// UserMessage returns the text shown in an error notification
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			return appErr.Message
		}
		return MsgExtractionFailed
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgExtractionFailed
}
