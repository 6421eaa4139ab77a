package models

import (
	"time"

	"gorm.io/gorm"
)

// MemberStatus represents the lifecycle state of a member record
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "Active"
	MemberStatusInactive MemberStatus = "Inactive"
)

// CurrentPlan is the membership plan snapshot carried on a member.
// Dates are materialized from the plan's month window at payment time.
type CurrentPlan struct {
	PlanID    uint       `json:"plan_id"`
	Amount    float64    `gorm:"type:decimal(15,2)" json:"amount"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// Member represents a club member
type Member struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	MemberNo string       `gorm:"type:varchar(50);uniqueIndex" json:"member_no"`
	Name     string       `gorm:"type:varchar(255)" json:"name"`
	Phone    string       `gorm:"type:varchar(50)" json:"phone"`
	Email    string       `gorm:"type:varchar(255);index" json:"email"`
	Address  string       `gorm:"type:text" json:"address"`
	City     string       `gorm:"type:varchar(100)" json:"city"`
	State    string       `gorm:"type:varchar(100)" json:"state"`
	Zip      string       `gorm:"type:varchar(20)" json:"zip"`
	Country  string       `gorm:"type:varchar(100);default:'India'" json:"country"`
	Status   MemberStatus `gorm:"type:varchar(20);default:'Active'" json:"status"`

	CurrentPlan      CurrentPlan `gorm:"embedded;embeddedPrefix:current_plan_" json:"current_plan"`
	FeesPaid         bool        `gorm:"default:false" json:"fees_paid"`
	FeesVerified     bool        `gorm:"default:false" json:"fees_verified"`
	ConvertedToLogin bool        `gorm:"default:false" json:"converted_to_login"`

	// Relationships
	FamilyMembers    []FamilyMember   `gorm:"foreignKey:MemberID" json:"family_members,omitempty"`
	Bookings         []Booking        `gorm:"foreignKey:MemberID" json:"bookings,omitempty"`
	PaymentHistories []PaymentHistory `gorm:"foreignKey:MemberID" json:"payment_histories,omitempty"`
}

// FamilyMember is a dependent sub-record with its own plan snapshot
type FamilyMember struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	MemberID uint   `gorm:"index" json:"member_id"`
	Name     string `gorm:"type:varchar(255)" json:"name"`
	Relation string `gorm:"type:varchar(50)" json:"relation"`

	CurrentPlan  CurrentPlan `gorm:"embedded;embeddedPrefix:current_plan_" json:"current_plan"`
	FeesPaid     bool        `gorm:"default:false" json:"fees_paid"`
	FeesVerified bool        `gorm:"default:false" json:"fees_verified"`

	Member Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}
