package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/agentic-commerce/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// fromDomainError maps a domain AppError code onto a transport status.
func fromDomainError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := apperrors.CodeInternalError
	switch {
	case apperrors.IsCode(err, apperrors.CodeInvalidInput):
		status, code = http.StatusBadRequest, apperrors.CodeInvalidInput
	case apperrors.IsCode(err, apperrors.CodeNotFound):
		status, code = http.StatusNotFound, apperrors.CodeNotFound
	case apperrors.IsCode(err, apperrors.CodeScrapeFailed):
		status, code = http.StatusUnprocessableEntity, apperrors.CodeScrapeFailed
	case apperrors.IsCode(err, apperrors.CodeLLM):
		status, code = http.StatusBadGateway, apperrors.CodeLLM
	case apperrors.IsCode(err, apperrors.CodeProvider):
		status, code = http.StatusBadGateway, apperrors.CodeProvider
	case apperrors.IsCode(err, apperrors.CodeUnavailable):
		status, code = http.StatusServiceUnavailable, apperrors.CodeUnavailable
	}
	message := apperrors.MessageOf(err)
	if status == http.StatusInternalServerError {
		message = "something went wrong"
	}
	return NewHTTPError(status, code, message, err)
}
