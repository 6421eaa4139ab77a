package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
)

// MemberHandler handles member CRUD
type MemberHandler struct {
	db *gorm.DB
}

func NewMemberHandler(db *gorm.DB) *MemberHandler {
	return &MemberHandler{db: db}
}

// RegisterMemberRequest is the public registration payload
type RegisterMemberRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`

	FamilyMembers []struct {
		Name     string `json:"name" validate:"required"`
		Relation string `json:"relation"`
		PlanID   uint   `json:"plan_id"`
	} `json:"family_members"`
}

// RegisterMember creates a new member record with a generated member number
func (h *MemberHandler) RegisterMember(c echo.Context) error {
	var req RegisterMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	member := models.Member{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
		Country: req.Country,
		Status:  models.MemberStatusActive,
	}
	for _, fm := range req.FamilyMembers {
		member.FamilyMembers = append(member.FamilyMembers, models.FamilyMember{
			Name:        fm.Name,
			Relation:    fm.Relation,
			CurrentPlan: models.CurrentPlan{PlanID: fm.PlanID},
		})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Member{}).Unscoped().Count(&count).Error; err != nil {
			return err
		}
		member.MemberNo = fmt.Sprintf("CLB%d%05d", time.Now().Year(), count+1)
		return tx.Create(&member).Error
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to register member")
	}

	return c.JSON(http.StatusCreated, member)
}

// ListMembers returns members with optional status filtering and paging
func (h *MemberHandler) ListMembers(c echo.Context) error {
	query := h.db.Model(&models.Member{}).Preload("FamilyMembers")

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.QueryParam("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR member_no ILIKE ?", like, like, like)
	}

	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count members")
	}

	var members []models.Member
	if err := query.Limit(pageSize).Offset((page - 1) * pageSize).Order("id desc").Find(&members).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch members")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"members":     members,
		"total_count": totalCount,
		"page":        page,
		"page_size":   pageSize,
	})
}

// GetMember returns a single member with dependents and payment history
func (h *MemberHandler) GetMember(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var member models.Member
	if err := h.db.Preload("FamilyMembers").Preload("PaymentHistories").First(&member, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Member not found")
	}
	return c.JSON(http.StatusOK, member)
}

// UpdateMemberRequest is the admin edit payload
type UpdateMemberRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Status  string `json:"status"`
}

// UpdateMember applies an admin edit to a member record
func (h *MemberHandler) UpdateMember(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var member models.Member
	if err := h.db.First(&member, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Member not found")
	}

	var req UpdateMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.City != "" {
		updates["city"] = req.City
	}
	if req.State != "" {
		updates["state"] = req.State
	}
	if req.Zip != "" {
		updates["zip"] = req.Zip
	}
	if req.Country != "" {
		updates["country"] = req.Country
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := h.db.Model(&member).Updates(updates).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update member")
		}
	}
	return c.JSON(http.StatusOK, member)
}

// DeactivateMember soft-retains the member; records are never hard deleted
func (h *MemberHandler) DeactivateMember(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	res := h.db.Model(&models.Member{}).Where("id = ?", id).Update("status", models.MemberStatusInactive)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to deactivate member")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Member not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deactivated"})
}
