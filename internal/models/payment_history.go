package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PaymentGateway identifies which gateway a transaction runs through
type PaymentGateway string

const (
	PaymentGatewayCCAvenue PaymentGateway = "ccavenue"
	PaymentGatewayMidtrans PaymentGateway = "midtrans"
	PaymentGatewayManual   PaymentGateway = "manual"
)

// BookingType tags a ledger entry with the kind of reservation it pays
// for; reconciliation dispatches on this tag.
type BookingType string

const (
	BookingTypeMembership BookingType = "membership"
	BookingTypeEnrollment BookingType = "enrollment"
	BookingTypeRenewal    BookingType = "renewal"
	BookingTypeBooking    BookingType = "booking"
	BookingTypeEvent      BookingType = "event"
	BookingTypeHall       BookingType = "hall"
)

// PaymentHistory is the payment-intent / ledger entry for a gateway
// transaction. OrderID is globally unique.
type PaymentHistory struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	OrderID        string         `gorm:"type:varchar(100);uniqueIndex" json:"order_id"`
	BookingType    BookingType    `gorm:"type:varchar(50);not null;index" json:"booking_type"`
	PaymentGateway PaymentGateway `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	Amount         float64        `gorm:"type:decimal(15,2)" json:"amount"`
	Currency       string         `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Status         PaymentStatus  `gorm:"type:varchar(20);index" json:"status"`
	VerifiedAt     *time.Time     `json:"verified_at"`

	MemberID       *uint `gorm:"index" json:"member_id"`
	PlanID         *uint `json:"plan_id"`
	BookingID      *uint `gorm:"index" json:"booking_id"`
	EventBookingID *uint `gorm:"index" json:"event_booking_id"`
	HallBookingID  *uint `gorm:"index" json:"hall_booking_id"`

	RequestMetadata  json.RawMessage `gorm:"type:jsonb" json:"request_metadata"`
	ResponseMetadata json.RawMessage `gorm:"type:jsonb" json:"response_metadata"`
}

// PaymentCallbackHistory keeps the raw gateway callback for auditing
type PaymentCallbackHistory struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	PaymentGateway PaymentGateway  `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	OrderID        string          `gorm:"type:varchar(100);index" json:"order_id"`
	Metadata       json.RawMessage `gorm:"type:jsonb" json:"metadata"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}
