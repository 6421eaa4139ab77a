package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
)

// DashboardHandler serves the admin summary figures
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Summary returns headline counts and the current month's collections
func (h *DashboardHandler) Summary(c echo.Context) error {
	var memberCount, bookingCount, pendingPayments int64
	h.db.Model(&models.Member{}).Where("status = ?", models.MemberStatusActive).Count(&memberCount)
	h.db.Model(&models.Booking{}).Where("payment_status = ?", models.PaymentStatusSuccess).Count(&bookingCount)
	h.db.Model(&models.PaymentHistory{}).
		Where("status IN ?", []models.PaymentStatus{models.PaymentStatusInitiated, models.PaymentStatusPending}).
		Count(&pendingPayments)

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var monthCollection float64
	h.db.Model(&models.PaymentHistory{}).
		Where("status = ? AND verified_at >= ?", models.PaymentStatusSuccess, monthStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&monthCollection)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"active_members":         memberCount,
		"confirmed_bookings":     bookingCount,
		"pending_payments":       pendingPayments,
		"month_collection":       monthCollection,
		"month_collection_since": monthStart.Format("2006-01-02"),
	})
}
