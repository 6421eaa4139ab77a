package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
)

// HallHandler handles hall CRUD and availability lookups
type HallHandler struct {
	db *gorm.DB
}

func NewHallHandler(db *gorm.DB) *HallHandler {
	return &HallHandler{db: db}
}

// ListHalls returns halls with their plan
func (h *HallHandler) ListHalls(c echo.Context) error {
	query := h.db.Preload("Plan")
	if c.QueryParam("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var halls []models.Hall
	if err := query.Find(&halls).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch halls")
	}
	return c.JSON(http.StatusOK, halls)
}

// HallRequest is the create/update payload
type HallRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"min=0"`
	PlanID   uint   `json:"plan_id" validate:"required"`
	IsActive *bool  `json:"is_active"`
}

// StoreHall creates a hall
func (h *HallHandler) StoreHall(c echo.Context) error {
	var req HallRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	hall := models.Hall{
		Name:     req.Name,
		Capacity: req.Capacity,
		PlanID:   req.PlanID,
		IsActive: true,
	}
	if req.IsActive != nil {
		hall.IsActive = *req.IsActive
	}

	if err := h.db.Create(&hall).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create hall")
	}
	return c.JSON(http.StatusCreated, hall)
}

// UpdateHall edits a hall
func (h *HallHandler) UpdateHall(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var hall models.Hall
	if err := h.db.First(&hall, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Hall not found")
	}

	var req HallRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	hall.Name = req.Name
	hall.Capacity = req.Capacity
	hall.PlanID = req.PlanID
	if req.IsActive != nil {
		hall.IsActive = *req.IsActive
	}

	if err := h.db.Save(&hall).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update hall")
	}
	return c.JSON(http.StatusOK, hall)
}

// HallAvailability lists the blocking bookings for a hall on a date so
// the booking page can grey out taken windows
func (h *HallHandler) HallAvailability(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	date, err := dateFromRequest(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var bookings []models.HallBooking
	err = h.db.
		Where("hall_id = ? AND booking_date >= ? AND booking_date < ?", id, dayStart, dayEnd).
		Where("payment_status IN ?", []models.PaymentStatus{
			models.PaymentStatusSuccess, models.PaymentStatusInitiated, models.PaymentStatusPending,
		}).
		Order("slot_from asc").
		Find(&bookings).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch bookings")
	}

	slots := make([]map[string]interface{}, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, map[string]interface{}{
			"slot_from": b.SlotFrom,
			"slot_to":   b.SlotTo,
			"status":    b.PaymentStatus,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"hall_id": id,
		"date":    date.Format("2006-01-02"),
		"slots":   slots,
	})
}
