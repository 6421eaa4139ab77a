package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
	"clubhouse_echo/internal/services"
)

// BookingHandler exposes admin views over bookings of all kinds
type BookingHandler struct {
	db         *gorm.DB
	reconciler *services.ReconcileService
}

func NewBookingHandler(db *gorm.DB, reconciler *services.ReconcileService) *BookingHandler {
	return &BookingHandler{db: db, reconciler: reconciler}
}

// ListBookings returns batch bookings with filtering and paging
func (h *BookingHandler) ListBookings(c echo.Context) error {
	query := h.db.Model(&models.Booking{}).Preload("Member").Preload("Batch").Preload("Activity")

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("payment_status = ?", status)
	}
	if batchStr := c.QueryParam("batch_id"); batchStr != "" {
		if batchID, err := strconv.ParseUint(batchStr, 10, 32); err == nil {
			query = query.Where("batch_id = ?", batchID)
		}
	}
	if memberStr := c.QueryParam("member_id"); memberStr != "" {
		if memberID, err := strconv.ParseUint(memberStr, 10, 32); err == nil {
			query = query.Where("member_id = ?", memberID)
		}
	}

	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count bookings")
	}

	var bookings []models.Booking
	if err := query.Limit(pageSize).Offset((page - 1) * pageSize).Order("id desc").Find(&bookings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch bookings")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"bookings":    bookings,
		"total_count": totalCount,
		"page":        page,
		"page_size":   pageSize,
	})
}

// GetBooking returns one booking with its payment trail
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var booking models.Booking
	if err := h.db.Preload("Member").Preload("Batch").Preload("Activity").First(&booking, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Booking not found")
	}

	var payments []models.PaymentHistory
	h.db.Where("booking_id = ?", booking.ID).Order("id desc").Find(&payments)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"booking":  booking,
		"payments": payments,
	})
}

// CancelBooking fails a live-pending booking and gives its capacity back.
// The cancellation runs through the same state machine as a gateway
// failure callback so the ledger and the batch counter stay in step.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var booking models.Booking
	if err := h.db.First(&booking, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Booking not found")
	}
	if booking.PaymentStatus.IsTerminal() {
		return echo.NewHTTPError(http.StatusBadRequest, "Booking is already settled")
	}

	var history models.PaymentHistory
	if err := h.db.Where("booking_id = ?", booking.ID).Order("id desc").First(&history).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "No payment record for booking")
	}

	outcome, err := h.reconciler.Reconcile(c.Request().Context(), history.OrderID, false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to cancel booking")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"booking_id": booking.ID,
		"order_id":   outcome.OrderID,
		"status":     outcome.Status,
	})
}

// ListHallBookings returns hall bookings for the admin panel
func (h *BookingHandler) ListHallBookings(c echo.Context) error {
	query := h.db.Model(&models.HallBooking{}).Preload("Hall").Preload("Member")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("payment_status = ?", status)
	}

	var bookings []models.HallBooking
	if err := query.Order("id desc").Limit(100).Find(&bookings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch hall bookings")
	}
	return c.JSON(http.StatusOK, bookings)
}

// ListEventBookings returns event bookings for the admin panel
func (h *BookingHandler) ListEventBookings(c echo.Context) error {
	query := h.db.Model(&models.EventBooking{}).Preload("Event").Preload("Member")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("payment_status = ?", status)
	}

	var bookings []models.EventBooking
	if err := query.Order("id desc").Limit(100).Find(&bookings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch event bookings")
	}
	return c.JSON(http.StatusOK, bookings)
}
