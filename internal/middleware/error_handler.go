package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CustomErrorHandler maps errors to consistent JSON error responses
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		}
	}

	switch code {
	case http.StatusNotFound:
		if message == http.StatusText(http.StatusNotFound) {
			message = "The requested resource was not found"
		}
	case http.StatusUnauthorized:
		if message == http.StatusText(http.StatusUnauthorized) {
			message = "Authentication is required"
		}
	case http.StatusForbidden:
		if message == http.StatusText(http.StatusForbidden) {
			message = "You do not have access to this resource"
		}
	case http.StatusInternalServerError:
		c.Logger().Error(err)
	}

	respErr := c.JSON(code, map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
	})
	if respErr != nil {
		c.Logger().Error(respErr)
	}
}
