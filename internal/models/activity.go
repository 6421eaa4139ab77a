package models

import (
	"time"

	"github.com/teambition/rrule-go"
	"gorm.io/gorm"
)

// Activity is a club activity (e.g. badminton, swimming) that members
// enroll into through batches
type Activity struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string `gorm:"type:varchar(255)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Batches []Batch `gorm:"foreignKey:ActivityID" json:"batches,omitempty"`
}

// Batch is a recurring activity slot with finite capacity. BatchLimit is
// the remaining capacity counter; it is only ever changed through atomic
// conditional updates so it can never go negative.
type Batch struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ActivityID uint    `gorm:"index" json:"activity_id"`
	Name       string  `gorm:"type:varchar(255)" json:"name"`
	SlotFrom   string  `gorm:"type:varchar(10)" json:"slot_from"` // "HH:MM"
	SlotTo     string  `gorm:"type:varchar(10)" json:"slot_to"`   // "HH:MM"
	BatchLimit int     `json:"batch_limit"`
	PlanID     uint    `json:"plan_id"`
	Schedule   *string `gorm:"type:text" json:"schedule"` // RFC 5545 RRULE string
	IsActive   bool    `gorm:"default:true" json:"is_active"`

	// Relationships
	Activity Activity `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
	Plan     Plan     `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// NextSession calculates the next session date for the batch from its
// recurrence rule. Falls back to today when no rule is set or parsing fails.
func (b Batch) NextSession() time.Time {
	if b.Schedule != nil && *b.Schedule != "" {
		rule, err := rrule.StrToRRule(*b.Schedule)
		if err == nil {
			rule.DTStart(b.CreatedAt)
			next := rule.After(time.Now().Add(-24*time.Hour), true)
			if !next.IsZero() {
				return next
			}
		}
	}
	return time.Now()
}
