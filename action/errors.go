package action

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidFormData is returned when a form is missing required fields
// and no structured error applies.
var ErrInvalidFormData = errors.New("invalid form data")

// DefaultFieldErrorMessage is shown when a form error carries no message.
const DefaultFieldErrorMessage = "Todo title error"

// FormError reports a validation failure that the user can fix by
// editing the submitted form.
type FormError struct {
	Message string
	// FieldErrors maps field names to messages.
	FieldErrors map[string]string
	// Fields echoes the submitted values so the form can be repopulated.
	Fields map[string]string
}

func (e *FormError) Error() string {
	return e.Message
}

// DisplayMessage returns the message, or DefaultFieldErrorMessage when empty.
func (e *FormError) DisplayMessage() string {
	if e == nil || e.Message == "" {
		return DefaultFieldErrorMessage
	}
	return e.Message
}

// ServerError is a failure carrying an HTTP status.
type ServerError struct {
	Message string
	Status  int
}

// NewServerError returns a ServerError. A zero status means 400.
func NewServerError(message string, status int) *ServerError {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return &ServerError{Message: message, Status: status}
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a ServerError with status 404.
func IsNotFound(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr) && serverErr.Status == http.StatusNotFound
}

func titleFormError(kind Kind, id, title, message string) *FormError {
	return &FormError{
		Message:     message,
		FieldErrors: map[string]string{FieldTitle: message},
		Fields: map[string]string{
			FieldKind:  string(kind),
			FieldID:    id,
			FieldTitle: title,
		},
	}
}
