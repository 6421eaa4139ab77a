package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a one-off club event members can book seats for
type Event struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string    `gorm:"type:varchar(255)" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	EventDate   time.Time `gorm:"index" json:"event_date"`
	SlotFrom    string    `gorm:"type:varchar(10)" json:"slot_from"`
	SlotTo      string    `gorm:"type:varchar(10)" json:"slot_to"`
	MemberPrice float64   `gorm:"type:decimal(15,2)" json:"member_price"`
	GuestPrice  float64   `gorm:"type:decimal(15,2)" json:"guest_price"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`

	// Relationships
	Bookings []EventBooking `gorm:"foreignKey:EventID" json:"bookings,omitempty"`
}

// EventBooking is a member's reservation for an event
type EventBooking struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UUID     string `gorm:"type:varchar(50);uniqueIndex" json:"uuid"`
	EventID  uint   `gorm:"index" json:"event_id"`
	MemberID *uint  `gorm:"index" json:"member_id"`
	Guests   int    `json:"guests"`

	Amount        float64       `gorm:"type:decimal(15,2)" json:"amount"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);index" json:"payment_status"`

	// Relationships
	Event  Event   `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}
