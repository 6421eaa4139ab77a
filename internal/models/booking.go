package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus is the lifecycle of a reservation or ledger entry.
// Initiated/Pending may only move to Success or Failed; both are terminal.
type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "Initiated"
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusSuccess   PaymentStatus = "Success"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

// IsTerminal reports whether no further transition is allowed
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// FeesBreakup is the fee snapshot frozen onto a reservation at creation
// time, with the plan dates materialized on successful payment.
type FeesBreakup struct {
	PlanID    uint       `json:"plan_id"`
	Amount    float64    `gorm:"type:decimal(15,2)" json:"amount"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// Booking links a member (or guest players) to an activity batch
type Booking struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BookingNo    int       `gorm:"uniqueIndex" json:"booking_no"`
	UUID         string    `gorm:"type:varchar(50);uniqueIndex" json:"uuid"`
	MemberID     *uint     `gorm:"index" json:"member_id"`
	GuestPlayers string    `gorm:"type:text" json:"guest_players"`
	ActivityID   uint      `gorm:"index" json:"activity_id"`
	BatchID      uint      `gorm:"index" json:"batch_id"`
	BookingDate  time.Time `gorm:"index" json:"booking_date"`

	FeesBreakup   FeesBreakup   `gorm:"embedded;embeddedPrefix:fees_" json:"fees_breakup"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);index" json:"payment_status"`

	// Relationships
	Member   *Member  `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Activity Activity `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
	Batch    Batch    `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
}
