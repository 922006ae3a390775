package client

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/dmm341/avocado-ledger/pkg/errors"
	"github.com/dmm341/avocado-ledger/pkg/validation"
)

// ErrNetwork wraps transport failures: the request never produced an HTTP response.
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx response. Message is the server's message, meant for the operator.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// Retryable reports whether a GET that failed this way may be retried.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

func (e *APIError) IsNotFound() bool { return e.Status == http.StatusNotFound }
func (e *APIError) IsConflict() bool { return e.Status == http.StatusConflict }

// ValidationError is raised locally, before any request is sent.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

func validate(body any) error {
	err := validation.Struct(body)
	if err == nil {
		return nil
	}
	verr := &ValidationError{Message: err.Error()}
	if typed := pkgerrors.As(err); typed != nil {
		verr.Message = typed.Message()
		if fields, ok := typed.Details().(map[string]string); ok {
			verr.Fields = fields
		}
	}
	return verr
}
