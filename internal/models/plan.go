package models

import (
	"time"

	"gorm.io/gorm"
)

// PlanType classifies what a fee plan is charged for
type PlanType string

const (
	PlanTypeMembership PlanType = "membership"
	PlanTypeEnrollment PlanType = "enrollment"
	PlanTypeBooking    PlanType = "booking"
	PlanTypeHall       PlanType = "hall"
)

// Plan represents a fee definition with a month-based validity window.
// StartMonth/EndMonth are calendar months; absolute dates are derived
// per booking cycle by the plan date materializer.
type Plan struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string   `gorm:"type:varchar(255)" json:"name"`
	PlanType    PlanType `gorm:"type:varchar(50);default:'membership'" json:"plan_type"`
	MemberPrice float64  `gorm:"type:decimal(15,2)" json:"member_price"`
	GuestPrice  float64  `gorm:"type:decimal(15,2)" json:"guest_price"`
	StartMonth  int      `gorm:"default:1" json:"start_month"`
	EndMonth    int      `gorm:"default:12" json:"end_month"`
	IsActive    bool     `gorm:"default:true" json:"is_active"`
}

// PriceFor returns the applicable tier for a member or guest booking
func (p Plan) PriceFor(isMember bool) float64 {
	if isMember {
		return p.MemberPrice
	}
	return p.GuestPrice
}
