package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
)

// ActivityHandler handles activity and batch CRUD
type ActivityHandler struct {
	db *gorm.DB
}

func NewActivityHandler(db *gorm.DB) *ActivityHandler {
	return &ActivityHandler{db: db}
}

// ListActivities returns activities with their batches
func (h *ActivityHandler) ListActivities(c echo.Context) error {
	query := h.db.Preload("Batches")
	if c.QueryParam("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var activities []models.Activity
	if err := query.Find(&activities).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch activities")
	}
	return c.JSON(http.StatusOK, activities)
}

// ActivityRequest is the create/update payload
type ActivityRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// StoreActivity creates an activity
func (h *ActivityHandler) StoreActivity(c echo.Context) error {
	var req ActivityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	activity := models.Activity{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		activity.IsActive = *req.IsActive
	}

	if err := h.db.Create(&activity).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create activity")
	}
	return c.JSON(http.StatusCreated, activity)
}

// UpdateActivity edits an activity
func (h *ActivityHandler) UpdateActivity(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var activity models.Activity
	if err := h.db.First(&activity, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
	}

	var req ActivityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	activity.Name = req.Name
	activity.Description = req.Description
	if req.IsActive != nil {
		activity.IsActive = *req.IsActive
	}

	if err := h.db.Save(&activity).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update activity")
	}
	return c.JSON(http.StatusOK, activity)
}

// BatchRequest is the create/update payload for a batch
type BatchRequest struct {
	ActivityID uint    `json:"activity_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	SlotFrom   string  `json:"slot_from" validate:"required"`
	SlotTo     string  `json:"slot_to" validate:"required"`
	BatchLimit int     `json:"batch_limit" validate:"required,min=1"`
	PlanID     uint    `json:"plan_id" validate:"required"`
	Schedule   *string `json:"schedule"`
	IsActive   *bool   `json:"is_active"`
}

// StoreBatch creates a batch under an activity
func (h *ActivityHandler) StoreBatch(c echo.Context) error {
	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var activity models.Activity
	if err := h.db.First(&activity, req.ActivityID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Activity not found")
	}

	batch := models.Batch{
		ActivityID: req.ActivityID,
		Name:       req.Name,
		SlotFrom:   req.SlotFrom,
		SlotTo:     req.SlotTo,
		BatchLimit: req.BatchLimit,
		PlanID:     req.PlanID,
		Schedule:   req.Schedule,
		IsActive:   true,
	}
	if req.IsActive != nil {
		batch.IsActive = *req.IsActive
	}

	if err := h.db.Create(&batch).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create batch")
	}
	return c.JSON(http.StatusCreated, batch)
}

// GetBatch returns a batch with its activity, plan and next session date
func (h *ActivityHandler) GetBatch(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var batch models.Batch
	if err := h.db.Preload("Activity").Preload("Plan").First(&batch, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Batch not found")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"batch":        batch,
		"next_session": batch.NextSession().Format("2006-01-02"),
	})
}

// UpdateBatch edits a batch. The capacity counter is not editable here;
// it only moves through reservations and releases.
func (h *ActivityHandler) UpdateBatch(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var batch models.Batch
	if err := h.db.First(&batch, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Batch not found")
	}

	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updates := map[string]interface{}{
		"name":      req.Name,
		"slot_from": req.SlotFrom,
		"slot_to":   req.SlotTo,
		"plan_id":   req.PlanID,
		"schedule":  req.Schedule,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := h.db.Model(&batch).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update batch")
	}
	return c.JSON(http.StatusOK, batch)
}
