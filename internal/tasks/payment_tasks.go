package tasks

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
	"clubhouse_echo/internal/services"
)

// VerifyPendingPaymentsTaskDef re-checks pending midtrans orders against
// the gateway's status API. CCAvenue only reports through callbacks, so
// its pending orders are left to the expiry sweep.
type VerifyPendingPaymentsTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *VerifyPendingPaymentsTaskDef) TaskID() string {
	return "verify_pending_payments"
}

// HandleExecution polls the gateway for each pending midtrans order and
// reconciles any that reached a terminal state
func (t *VerifyPendingPaymentsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	var pending []models.PaymentHistory
	err := db.WithContext(ctx).
		Where("payment_gateway = ?", models.PaymentGatewayMidtrans).
		Where("status IN ?", []models.PaymentStatus{models.PaymentStatusInitiated, models.PaymentStatusPending}).
		Where("created_at > ?", time.Now().Add(-24*time.Hour)).
		Find(&pending).Error
	if err != nil {
		return nil, err
	}

	mid := services.NewMidtransService()
	reconciler := services.NewReconcileService(db, services.NewCCAvenueService(), services.NewConflictChecker(db, nil))

	settled, failed := 0, 0
	for _, entry := range pending {
		if ctx.Err() != nil {
			break
		}
		status, err := mid.CheckTransaction(entry.OrderID)
		if err != nil {
			log.Printf("Failed to check order %s at gateway: %v", entry.OrderID, err)
			continue
		}
		switch {
		case services.IsSettled(status.TransactionStatus):
			if _, err := reconciler.Reconcile(ctx, entry.OrderID, true); err != nil {
				log.Printf("Failed to reconcile settled order %s: %v", entry.OrderID, err)
				continue
			}
			settled++
		case services.IsDenied(status.TransactionStatus):
			if _, err := reconciler.Reconcile(ctx, entry.OrderID, false); err != nil {
				log.Printf("Failed to reconcile denied order %s: %v", entry.OrderID, err)
				continue
			}
			failed++
		}
	}

	return map[string]interface{}{
		"status":  "success",
		"checked": len(pending),
		"settled": settled,
		"failed":  failed,
	}, nil
}

// VerifyPendingPaymentsTask is the singleton instance
var VerifyPendingPaymentsTask = &VerifyPendingPaymentsTaskDef{}
