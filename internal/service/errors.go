package service

import "errors"

// ValidationError reports input the caller must fix.
type ValidationError struct {
	message string
}

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(message string) ValidationError {
	return ValidationError{message: message}
}

func (e ValidationError) Error() string {
	return e.message
}

// Capability errors: the feature is switched off by configuration.
var (
	ErrSpeechDisabled    = errors.New("speech recognition is not configured")
	ErrTTSDisabled       = errors.New("text-to-speech is not configured")
	ErrAssistantDisabled = errors.New("voice assistant is not configured")
	ErrStorageDisabled   = errors.New("image storage is not configured")
)

// ErrLLMDisabled is returned when no chat model is configured.
var ErrLLMDisabled = errors.New("language model is not configured")
