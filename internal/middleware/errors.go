package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorBody is the JSON error shape shared with the handlers
type errorBody struct {
	Message string `json:"message"`
}

// unauthorizedError writes the 401 response of the access guard
func unauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
}
