package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
	"clubhouse_echo/internal/services"
)

// PlanHandler handles fee plan CRUD
type PlanHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewPlanHandler(db *gorm.DB, cache *services.RedisCache) *PlanHandler {
	return &PlanHandler{db: db, cache: cache}
}

const planListCacheKey = "plans:active"

// ListPlans returns all plans; the active set is cached briefly since the
// public booking pages hit it on every load
func (h *PlanHandler) ListPlans(c echo.Context) error {
	if c.QueryParam("active") == "true" && h.cache != nil {
		plans, err := services.GetOrSet(h.cache, c.Request().Context(), planListCacheKey, 5*time.Minute, func() ([]models.Plan, error) {
			var plans []models.Plan
			err := h.db.Where("is_active = ?", true).Find(&plans).Error
			return plans, err
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch plans")
		}
		return c.JSON(http.StatusOK, plans)
	}

	var plans []models.Plan
	if err := h.db.Find(&plans).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch plans")
	}
	return c.JSON(http.StatusOK, plans)
}

// PlanRequest is the create/update payload
type PlanRequest struct {
	Name        string  `json:"name" validate:"required"`
	PlanType    string  `json:"plan_type" validate:"required,oneof=membership enrollment booking hall"`
	MemberPrice float64 `json:"member_price" validate:"min=0"`
	GuestPrice  float64 `json:"guest_price" validate:"min=0"`
	StartMonth  int     `json:"start_month" validate:"required,min=1,max=12"`
	EndMonth    int     `json:"end_month" validate:"required,min=1,max=12"`
	IsActive    *bool   `json:"is_active"`
}

// StorePlan handles the creation of a new plan
func (h *PlanHandler) StorePlan(c echo.Context) error {
	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	plan := models.Plan{
		Name:        req.Name,
		PlanType:    models.PlanType(req.PlanType),
		MemberPrice: req.MemberPrice,
		GuestPrice:  req.GuestPrice,
		StartMonth:  req.StartMonth,
		EndMonth:    req.EndMonth,
		IsActive:    true,
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := h.db.Create(&plan).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create plan")
	}
	h.invalidateCache(c)

	return c.JSON(http.StatusCreated, plan)
}

// GetPlan returns a single plan with its derived window for the current cycle
func (h *PlanHandler) GetPlan(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var plan models.Plan
	if err := h.db.First(&plan, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
	}

	start, end := services.MaterializeDates(time.Month(plan.StartMonth), time.Month(plan.EndMonth), time.Now())
	return c.JSON(http.StatusOK, map[string]interface{}{
		"plan":                plan,
		"current_cycle_start": services.FormatLegacyDate(start),
		"current_cycle_end":   services.FormatLegacyDate(end),
	})
}

// UpdatePlan edits a plan. Plans referenced by live bookings keep their
// fee snapshots; edits only affect future reservations.
func (h *PlanHandler) UpdatePlan(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var plan models.Plan
	if err := h.db.First(&plan, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Plan not found")
	}

	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	plan.Name = req.Name
	plan.PlanType = models.PlanType(req.PlanType)
	plan.MemberPrice = req.MemberPrice
	plan.GuestPrice = req.GuestPrice
	plan.StartMonth = req.StartMonth
	plan.EndMonth = req.EndMonth
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := h.db.Save(&plan).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update plan")
	}
	h.invalidateCache(c)

	return c.JSON(http.StatusOK, plan)
}

// DeletePlan soft-deletes a plan
func (h *PlanHandler) DeletePlan(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.db.Delete(&models.Plan{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete plan")
	}
	h.invalidateCache(c)

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *PlanHandler) invalidateCache(c echo.Context) {
	if h.cache != nil {
		_ = h.cache.Delete(c.Request().Context(), planListCacheKey)
	}
}
