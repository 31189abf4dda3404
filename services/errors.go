package services

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorKind classifies a ServiceError.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindForbidden  ErrorKind = "forbidden"
	KindStore      ErrorKind = "store"
)

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

func NewValidationError(message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, StatusCode: http.StatusBadRequest, Message: message}
}

func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, StatusCode: http.StatusNotFound, Message: message}
}

func NewConflictError(message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, StatusCode: http.StatusConflict, Message: message}
}

func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{Kind: KindForbidden, StatusCode: http.StatusForbidden, Message: message}
}

func NewStoreError(message string, err error) *ServiceError {
	return &ServiceError{Kind: KindStore, StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Kind == kind
}

// lookupError maps a repository lookup failure to NotFound or Store.
func lookupError(err error, notFoundMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(notFoundMsg)
	}
	return NewStoreError("database error", err)
}

// finish passes ServiceErrors through and turns anything else into a
// StoreError. Store causes are logged and never leave the service.
func finish(logger *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		if svcErr.Kind == KindStore {
			logger.Error(op+" failed", zap.Error(svcErr.Err))
			return &ServiceError{Kind: KindStore, StatusCode: svcErr.StatusCode, Message: op + " failed"}
		}
		return svcErr
	}
	logger.Error(op+" failed", zap.Error(err))
	return NewStoreError(op+" failed", nil)
}
