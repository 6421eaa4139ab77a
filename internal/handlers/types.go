package handlers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubhouse_echo/internal/services"
)

// getEnv reads an env var with a default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}

// paramID parses a numeric :id path parameter
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// dateFromRequest parses a YYYY-MM-DD date field
func dateFromRequest(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// domainError maps reservation/reconciliation errors onto HTTP responses.
// Conflicts carry the remaining hold time so the caller knows when to retry.
func domainError(err error) error {
	var conflict *services.ConflictError
	switch {
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, conflict.Error())
	case errors.Is(err, services.ErrResourceInactive):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrCapacityExhausted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrZeroAmount):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAlreadyPaid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrOrderIDExhausted):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Record not found")
	}
	return err
}
