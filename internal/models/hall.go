package models

import (
	"time"

	"gorm.io/gorm"
)

// Hall is a bookable hall with exclusive time slots
type Hall struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name     string `gorm:"type:varchar(255)" json:"name"`
	Capacity int    `json:"capacity"`
	PlanID   uint   `json:"plan_id"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Plan     Plan          `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Bookings []HallBooking `gorm:"foreignKey:HallID" json:"bookings,omitempty"`
}

// HallBooking reserves a hall for an exclusive slot on a calendar date.
// No two confirmed or live-pending bookings may overlap on the same
// hall and date.
type HallBooking struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UUID        string    `gorm:"type:varchar(50);uniqueIndex" json:"uuid"`
	HallID      uint      `gorm:"index" json:"hall_id"`
	MemberID    *uint     `gorm:"index" json:"member_id"`
	Purpose     string    `gorm:"type:varchar(255)" json:"purpose"`
	BookingDate time.Time `gorm:"index" json:"booking_date"`
	SlotFrom    string    `gorm:"type:varchar(10)" json:"slot_from"`
	SlotTo      string    `gorm:"type:varchar(10)" json:"slot_to"`

	Amount        float64       `gorm:"type:decimal(15,2)" json:"amount"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);index" json:"payment_status"`

	// Relationships
	Hall   Hall    `gorm:"foreignKey:HallID" json:"hall,omitempty"`
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}
