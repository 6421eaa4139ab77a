package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
)

// ResourceKind identifies the kind of time-limited resource being reserved
type ResourceKind string

const (
	ResourceBatch ResourceKind = "batch"
	ResourceHall  ResourceKind = "hall"
	ResourceEvent ResourceKind = "event"
)

// Default cooldowns: how long a Pending reservation keeps blocking the
// resource. Bookings hold longer than halls and events.
const (
	DefaultBookingCooldown = 10 * time.Minute
	DefaultHallCooldown    = 5 * time.Minute
	DefaultEventCooldown   = 5 * time.Minute
)

// ConflictChecker decides whether a requested resource window collides
// with an existing confirmed or live-pending reservation
type ConflictChecker struct {
	db        *gorm.DB
	cache     *RedisCache
	cooldowns map[ResourceKind]time.Duration
}

func NewConflictChecker(db *gorm.DB, cache *RedisCache) *ConflictChecker {
	return &ConflictChecker{
		db:    db,
		cache: cache,
		cooldowns: map[ResourceKind]time.Duration{
			ResourceBatch: DefaultBookingCooldown,
			ResourceHall:  DefaultHallCooldown,
			ResourceEvent: DefaultEventCooldown,
		},
	}
}

// Cooldown returns the configured hold window for a resource kind
func (c *ConflictChecker) Cooldown(kind ResourceKind) time.Duration {
	if d, ok := c.cooldowns[kind]; ok {
		return d
	}
	return DefaultHallCooldown
}

// SetCooldown overrides the hold window for a resource kind
func (c *ConflictChecker) SetCooldown(kind ResourceKind, d time.Duration) {
	c.cooldowns[kind] = d
}

// ParseSlot converts an "HH:MM" slot boundary into minutes from midnight
func ParseSlot(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid slot %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid slot hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid slot minute in %q", s)
	}
	return h*60 + m, nil
}

// windowsOverlap is the standard half-open interval overlap test:
// [aFrom,aTo) and [bFrom,bTo) overlap iff aFrom < bTo && bFrom < aTo.
// Adjacent windows (aTo == bFrom) do not overlap.
func windowsOverlap(aFrom, aTo, bFrom, bTo int) bool {
	return aFrom < bTo && bFrom < aTo
}

// isBlocking reports whether an existing reservation still blocks the
// resource: terminal Success always does, a Pending/Initiated one only
// within its cooldown window.
func isBlocking(status models.PaymentStatus, createdAt, now time.Time, cooldown time.Duration) bool {
	switch status {
	case models.PaymentStatusSuccess:
		return true
	case models.PaymentStatusInitiated, models.PaymentStatusPending:
		return now.Sub(createdAt) < cooldown
	}
	return false
}

// holdRemaining returns how much of the cooldown is left on a pending hold
func holdRemaining(createdAt, now time.Time, cooldown time.Duration) time.Duration {
	remaining := cooldown - now.Sub(createdAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HallConflict checks whether any confirmed or live-pending hall booking
// overlaps the requested window on the same calendar date. On conflict it
// returns the remaining hold time (zero for a confirmed booking).
func (c *ConflictChecker) HallConflict(ctx context.Context, hallID uint, date time.Time, slotFrom, slotTo string) (bool, time.Duration, error) {
	newFrom, err := ParseSlot(slotFrom)
	if err != nil {
		return false, 0, err
	}
	newTo, err := ParseSlot(slotTo)
	if err != nil {
		return false, 0, err
	}
	if newFrom >= newTo {
		return false, 0, fmt.Errorf("slot window %s-%s is empty", slotFrom, slotTo)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var existing []models.HallBooking
	err = c.db.WithContext(ctx).
		Where("hall_id = ? AND booking_date >= ? AND booking_date < ?", hallID, dayStart, dayEnd).
		Where("payment_status IN ?", []models.PaymentStatus{
			models.PaymentStatusSuccess, models.PaymentStatusInitiated, models.PaymentStatusPending,
		}).
		Find(&existing).Error
	if err != nil {
		return false, 0, err
	}

	now := time.Now()
	cooldown := c.Cooldown(ResourceHall)
	for _, b := range existing {
		if !isBlocking(b.PaymentStatus, b.CreatedAt, now, cooldown) {
			continue
		}
		oldFrom, err := ParseSlot(b.SlotFrom)
		if err != nil {
			continue
		}
		oldTo, err := ParseSlot(b.SlotTo)
		if err != nil {
			continue
		}
		if windowsOverlap(newFrom, newTo, oldFrom, oldTo) {
			if b.PaymentStatus == models.PaymentStatusSuccess {
				return true, 0, nil
			}
			return true, holdRemaining(b.CreatedAt, now, cooldown), nil
		}
	}
	return false, 0, nil
}

// EventConflict checks whether the member already holds a confirmed or
// live-pending booking for the event
func (c *ConflictChecker) EventConflict(ctx context.Context, eventID, memberID uint) (bool, time.Duration, error) {
	var existing []models.EventBooking
	err := c.db.WithContext(ctx).
		Where("event_id = ? AND member_id = ?", eventID, memberID).
		Where("payment_status IN ?", []models.PaymentStatus{
			models.PaymentStatusSuccess, models.PaymentStatusInitiated, models.PaymentStatusPending,
		}).
		Find(&existing).Error
	if err != nil {
		return false, 0, err
	}

	now := time.Now()
	cooldown := c.Cooldown(ResourceEvent)
	for _, b := range existing {
		if isBlocking(b.PaymentStatus, b.CreatedAt, now, cooldown) {
			if b.PaymentStatus == models.PaymentStatusSuccess {
				return true, 0, nil
			}
			return true, holdRemaining(b.CreatedAt, now, cooldown), nil
		}
	}
	return false, 0, nil
}

// ReserveBatchSlot atomically consumes one unit of batch capacity. The
// conditional UPDATE with the batch_limit > 0 guard is what guarantees the
// counter never goes negative under concurrent bookers.
func ReserveBatchSlot(ctx context.Context, db *gorm.DB, batchID uint) (bool, error) {
	res := db.WithContext(ctx).Model(&models.Batch{}).
		Where("id = ? AND batch_limit > 0", batchID).
		UpdateColumn("batch_limit", gorm.Expr("batch_limit - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseBatchSlot returns one unit of batch capacity after a failed or
// expired reservation. Every decrement has exactly one matching release.
func ReleaseBatchSlot(ctx context.Context, db *gorm.DB, batchID uint) error {
	return db.WithContext(ctx).Model(&models.Batch{}).
		Where("id = ?", batchID).
		UpdateColumn("batch_limit", gorm.Expr("batch_limit + 1")).Error
}

// slotHoldKey builds the Redis lock key for an exclusive resource window
func slotHoldKey(kind ResourceKind, resourceID uint, date time.Time, slotFrom, slotTo string) string {
	return fmt.Sprintf("slot_hold:%s:%d:%s:%s-%s", kind, resourceID, date.Format("2006-01-02"), slotFrom, slotTo)
}

// AcquireSlotHold takes a short-lived lock on the exact resource window
// between the conflict check and the reservation insert, closing the race
// two concurrent requests would otherwise have. The lock expires with the
// resource cooldown; reconciliation releases it early on failure.
func (c *ConflictChecker) AcquireSlotHold(ctx context.Context, kind ResourceKind, resourceID uint, date time.Time, slotFrom, slotTo string) (bool, error) {
	if c.cache == nil {
		// No redis configured: fall back to the db-only check.
		return true, nil
	}
	key := slotHoldKey(kind, resourceID, date, slotFrom, slotTo)
	return c.cache.SetNX(ctx, key, time.Now().Unix(), c.Cooldown(kind))
}

// ReleaseSlotHold drops the window lock, typically after a failed payment
func (c *ConflictChecker) ReleaseSlotHold(ctx context.Context, kind ResourceKind, resourceID uint, date time.Time, slotFrom, slotTo string) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Delete(ctx, slotHoldKey(kind, resourceID, date, slotFrom, slotTo))
}
