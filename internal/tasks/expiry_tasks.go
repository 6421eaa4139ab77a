package tasks

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
	"clubhouse_echo/internal/services"
)

// ExpirePendingTaskDef sweeps stale pending reservations. A Pending
// reservation only blocks its resource for the cooldown window; this pass
// makes the expiry explicit by failing the ledger entry and returning the
// held capacity, instead of leaving stale rows for the conflict checker
// to step past forever. Only resource-holding kinds are swept:
// membership and renewal intents hold nothing and stay open for the
// gateway callbacks to settle.
type ExpirePendingTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *ExpirePendingTaskDef) TaskID() string {
	return "expire_pending_reservations"
}

// midtransVerifyWindow matches the re-check horizon of the
// verify_pending_payments task. Pending midtrans orders are re-checked
// against the gateway for this long, so expiry keeps its hands off them
// until the window has passed.
const midtransVerifyWindow = 24 * time.Hour

// resourceKinds are the booking kinds that hold a resource while pending
var resourceKinds = []models.BookingType{
	models.BookingTypeBooking,
	models.BookingTypeEnrollment,
	models.BookingTypeHall,
	models.BookingTypeEvent,
}

// expiryCooldown returns the hold window for a booking kind and whether
// the kind holds a resource at all
func expiryCooldown(kind models.BookingType) (time.Duration, bool) {
	switch kind {
	case models.BookingTypeBooking, models.BookingTypeEnrollment:
		return services.DefaultBookingCooldown, true
	case models.BookingTypeHall:
		return services.DefaultHallCooldown, true
	case models.BookingTypeEvent:
		return services.DefaultEventCooldown, true
	}
	return 0, false
}

// shouldExpire decides whether a pending ledger entry is past its
// expiry horizon. Kinds that hold no resource never expire here, and
// midtrans orders stay alive for the verification task's full window.
func shouldExpire(entry models.PaymentHistory, now time.Time) bool {
	horizon, holds := expiryCooldown(entry.BookingType)
	if !holds {
		return false
	}
	if entry.PaymentGateway == models.PaymentGatewayMidtrans && horizon < midtransVerifyWindow {
		horizon = midtransVerifyWindow
	}
	return now.Sub(entry.CreatedAt) >= horizon
}

// HandleExecution fails every resource-holding ledger entry whose hold
// has lapsed
func (t *ExpirePendingTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	now := time.Now()

	var stale []models.PaymentHistory
	err := db.WithContext(ctx).
		Where("status IN ?", []models.PaymentStatus{models.PaymentStatusInitiated, models.PaymentStatusPending}).
		Where("booking_type IN ?", resourceKinds).
		Where("created_at < ?", now.Add(-services.DefaultEventCooldown)).
		Find(&stale).Error
	if err != nil {
		return nil, err
	}

	reconciler := services.NewReconcileService(db, services.NewCCAvenueService(), services.NewConflictChecker(db, nil))

	expired := 0
	for _, entry := range stale {
		if ctx.Err() != nil {
			break
		}
		if !shouldExpire(entry, now) {
			continue
		}

		outcome, err := reconciler.Reconcile(ctx, entry.OrderID, false)
		if err != nil {
			log.Printf("Failed to expire order %s: %v", entry.OrderID, err)
			continue
		}
		if !outcome.AlreadyFinal {
			expired++
		}
	}

	return map[string]interface{}{
		"status":  "success",
		"scanned": len(stale),
		"expired": expired,
	}, nil
}

// ExpirePendingTask is the singleton instance of ExpirePendingTaskDef
var ExpirePendingTask = &ExpirePendingTaskDef{}
