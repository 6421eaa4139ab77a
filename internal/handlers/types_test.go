package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubhouse_echo/internal/services"
)

func TestDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "conflict with hold", err: &services.ConflictError{Remaining: 3 * time.Minute}, wantCode: http.StatusConflict},
		{name: "conflict confirmed", err: &services.ConflictError{}, wantCode: http.StatusConflict},
		{name: "inactive resource", err: services.ErrResourceInactive, wantCode: http.StatusConflict},
		{name: "capacity exhausted", err: services.ErrCapacityExhausted, wantCode: http.StatusConflict},
		{name: "zero amount", err: services.ErrZeroAmount, wantCode: http.StatusBadRequest},
		{name: "already paid", err: services.ErrAlreadyPaid, wantCode: http.StatusBadRequest},
		{name: "order id exhausted", err: services.ErrOrderIDExhausted, wantCode: http.StatusServiceUnavailable},
		{name: "record not found", err: gorm.ErrRecordNotFound, wantCode: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("loading plan: %w", gorm.ErrRecordNotFound), wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domainError(tt.err)
			he, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("domainError(%v) = %T; want *echo.HTTPError", tt.err, err)
			}
			if he.Code != tt.wantCode {
				t.Errorf("domainError(%v) code = %d; want %d", tt.err, he.Code, tt.wantCode)
			}
		})
	}
}

func TestDomainErrorPassthrough(t *testing.T) {
	plain := fmt.Errorf("db connection lost")
	if got := domainError(plain); got != plain {
		t.Errorf("unexpected mapping for unknown error: %v", got)
	}
}

func TestConflictErrorMessage(t *testing.T) {
	held := &services.ConflictError{Remaining: 90 * time.Second}
	if held.Error() != "slot is held by a pending booking, try again in 1m30s" {
		t.Errorf("unexpected message: %s", held.Error())
	}

	confirmed := &services.ConflictError{}
	if confirmed.Error() != "slot is already booked" {
		t.Errorf("unexpected message: %s", confirmed.Error())
	}
}

func TestDateFromRequest(t *testing.T) {
	got, err := dateFromRequest("2024-06-15")
	if err != nil {
		t.Fatalf("dateFromRequest error = %v", err)
	}
	want := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("dateFromRequest = %s; want %s", got, want)
	}

	if _, err := dateFromRequest("15/06/2024"); err == nil {
		t.Error("expected error for legacy display format")
	}
}
