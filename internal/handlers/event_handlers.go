package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
)

// EventHandler handles event CRUD
type EventHandler struct {
	db *gorm.DB
}

func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{db: db}
}

// ListEvents returns events, optionally only upcoming active ones
func (h *EventHandler) ListEvents(c echo.Context) error {
	query := h.db.Model(&models.Event{})
	if c.QueryParam("upcoming") == "true" {
		query = query.Where("is_active = ? AND event_date >= CURRENT_DATE", true)
	}

	var events []models.Event
	if err := query.Order("event_date asc").Find(&events).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch events")
	}
	return c.JSON(http.StatusOK, events)
}

// EventRequest is the create/update payload
type EventRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	EventDate   string  `json:"event_date" validate:"required"`
	SlotFrom    string  `json:"slot_from"`
	SlotTo      string  `json:"slot_to"`
	MemberPrice float64 `json:"member_price" validate:"min=0"`
	GuestPrice  float64 `json:"guest_price" validate:"min=0"`
	IsActive    *bool   `json:"is_active"`
}

// StoreEvent creates an event
func (h *EventHandler) StoreEvent(c echo.Context) error {
	var req EventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := dateFromRequest(req.EventDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event_date, expected YYYY-MM-DD")
	}

	event := models.Event{
		Name:        req.Name,
		Description: req.Description,
		EventDate:   date,
		SlotFrom:    req.SlotFrom,
		SlotTo:      req.SlotTo,
		MemberPrice: req.MemberPrice,
		GuestPrice:  req.GuestPrice,
		IsActive:    true,
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}

	if err := h.db.Create(&event).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create event")
	}
	return c.JSON(http.StatusCreated, event)
}

// GetEvent returns an event with its bookings
func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var event models.Event
	if err := h.db.Preload("Bookings").First(&event, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}
	return c.JSON(http.StatusOK, event)
}

// UpdateEvent edits an event
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var event models.Event
	if err := h.db.First(&event, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}

	var req EventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := dateFromRequest(req.EventDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid event_date, expected YYYY-MM-DD")
	}

	event.Name = req.Name
	event.Description = req.Description
	event.EventDate = date
	event.SlotFrom = req.SlotFrom
	event.SlotTo = req.SlotTo
	event.MemberPrice = req.MemberPrice
	event.GuestPrice = req.GuestPrice
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}

	if err := h.db.Save(&event).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update event")
	}
	return c.JSON(http.StatusOK, event)
}
