// File: internal/services/vector/errors.go
package vector

import "fmt"

// VectorError represents a vector-store-specific error.
type VectorError struct {
	Type    string
	Message string
	Err     error
}

func (e *VectorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vector %s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("vector %s error: %s", e.Type, e.Message)
}

func (e *VectorError) Unwrap() error {
	return e.Err
}

func NewConnectionError(message string, err error) *VectorError {
	return &VectorError{Type: "connection", Message: message, Err: err}
}

func NewOperationError(message string, err error) *VectorError {
	return &VectorError{Type: "operation", Message: message, Err: err}
}

func NewConfigError(message string) *VectorError {
	return &VectorError{Type: "config", Message: message}
}

func NewTimeoutError(message string, err error) *VectorError {
	return &VectorError{Type: "timeout", Message: message, Err: err}
}

func NewRetryError(message string, err error) *VectorError {
	return &VectorError{Type: "retry", Message: message, Err: err}
}
