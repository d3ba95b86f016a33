package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is a plain acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Message: message})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Message: message})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: message})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: message})
}

// respondServiceError maps a service error to its HTTP status.
// Unclassified errors answer 500 with the raw message.
func respondServiceError(c echo.Context, err error) error {
	switch {
	case domain.IsValidationError(err):
		return NewValidationError(c, err.Error())
	case errors.Is(err, domain.ErrNotWorkspaceAdmin), errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, err.Error())
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrWorkspaceNotFound),
		errors.Is(err, domain.ErrMemberNotFound),
		errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Request failed")
		return NewInternalError(c, err.Error())
	}
}

// ErrorHandler renders framework errors (unknown routes, body limit, panics) as {message}
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			message = m
		case error:
			message = m.Error()
		default:
			message = fmt.Sprintf("%v", m)
		}
	} else {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled error")
		message = err.Error()
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, ErrorResponse{Message: message})
	}
	if writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}
