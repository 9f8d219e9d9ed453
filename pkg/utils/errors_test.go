package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"password", NewPasswordProtectedError(nil), MsgPasswordProtected},
		{"corrupt", NewCorruptDocumentError(errors.New("xref")), MsgCorruptDocument},
		{"empty text", NewEmptyTextError(), "No text found in the document"},
		{"camera", NewCameraUnavailableError(errors.New("no device")), "Camera access denied or unavailable"},
		{"clipboard", NewClipboardError(nil), "Failed to copy text"},
		{"conversion wraps cause", NewConversionError(errors.New("page 3 exploded")), "Failed to convert PDF to images: page 3 exploded"},
		{"plain error", errors.New("boom"), "boom"},
		{"app error without message", &AppError{Type: ErrorTypeSystem}, MsgExtractionFailed},
		{"wrapped app error", fmt.Errorf("outer: %w", NewBusyError()), MsgBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestAppError_IsMatchesByType(t *testing.T) {
	err := fmt.Errorf("ctx: %w", NewPasswordProtectedError(errors.New("needs password")))

	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypePasswordProtected}))
	assert.False(t, errors.Is(err, &AppError{Type: ErrorTypeCorruptDocument}))
	assert.True(t, IsType(err, ErrorTypePasswordProtected))
}

func TestRendererUnavailableIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewRendererUnavailableError(nil)))
	assert.False(t, IsRecoverable(NewCorruptDocumentError(nil)))
	assert.True(t, IsRecoverable(context.DeadlineExceeded))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, ErrorTypeIO, "x"))

	inner := NewRendererUnavailableError(errors.New("gs missing"))
	wrapped := WrapError(inner, "", "rasterize")
	require.NotNil(t, wrapped)
	assert.Equal(t, ErrorTypeRendererUnavailable, wrapped.Type)
	assert.True(t, wrapped.Recoverable)

	classified := WrapError(errors.New("open x: permission denied"), "", "read")
	assert.Equal(t, ErrorTypePermission, classified.Type)
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(context.Canceled))
	assert.Equal(t, ErrorTypeRendererUnavailable, GetErrorType(errors.New(`exec: "gs": executable file not found in $PATH`)))
	assert.Equal(t, ErrorTypePasswordProtected, GetErrorType(errors.New("encrypted PDF: invalid password")))
	assert.Equal(t, ErrorTypeSystem, GetErrorType(errors.New("something")))
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(NewBusyError()))
	assert.False(t, IsBusy(errors.New("busy")))
}
