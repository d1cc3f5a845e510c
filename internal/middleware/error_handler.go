package middleware

import (
	"net/http"
	"silleShop/pkg/logger"

	jsonres "silleShop/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the echo HTTP error handler. Handlers that return plain
// errors instead of writing a response end up here.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error", err)
	}

	if err := c.JSON(code, jsonres.Error(http.StatusText(code), message, nil)); err != nil {
		logger.Error("Failed to write error response", err)
	}
}
