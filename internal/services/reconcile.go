package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
)

// ReconcileOutcome summarizes what a gateway callback did to the ledger
type ReconcileOutcome struct {
	OrderID      string
	BookingType  models.BookingType
	Status       models.PaymentStatus
	AlreadyFinal bool
}

// ReconcileService consumes asynchronous gateway callbacks and drives the
// payment state machine. One code path serves every booking kind; the
// kind-specific side effects hang off the BookingType tag.
type ReconcileService struct {
	db        *gorm.DB
	ccavenue  *CCAvenueService
	conflicts *ConflictChecker
}

func NewReconcileService(db *gorm.DB, ccav *CCAvenueService, conflicts *ConflictChecker) *ReconcileService {
	return &ReconcileService{db: db, ccavenue: ccav, conflicts: conflicts}
}

// ReconcileCCAvenue decrypts an encResp payload, records it for audit and
// reconciles the referenced order
func (s *ReconcileService) ReconcileCCAvenue(ctx context.Context, encResp string) (*ReconcileOutcome, error) {
	cb, err := s.ccavenue.DecryptCallback(encResp)
	if err != nil {
		return nil, err
	}

	meta, _ := json.Marshal(cb.Raw)
	if err := s.db.WithContext(ctx).Create(&models.PaymentCallbackHistory{
		PaymentGateway: models.PaymentGatewayCCAvenue,
		OrderID:        cb.OrderID,
		Metadata:       meta,
	}).Error; err != nil {
		log.Printf("Failed to record callback history for %s: %v", cb.OrderID, err)
	}

	return s.Reconcile(ctx, cb.OrderID, IsSuccessStatus(cb.OrderStatus))
}

// MidtransNotification is the shape of the gateway's HTTP notification
type MidtransNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

// ReconcileMidtrans verifies and applies a midtrans notification through
// the same state machine. Pending statuses leave the ledger untouched.
func (s *ReconcileService) ReconcileMidtrans(ctx context.Context, mid *MidtransService, notif MidtransNotification) (*ReconcileOutcome, error) {
	if !mid.VerifySignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, notif.SignatureKey) {
		return nil, fmt.Errorf("invalid midtrans signature for order %s", notif.OrderID)
	}

	meta, _ := json.Marshal(notif)
	if err := s.db.WithContext(ctx).Create(&models.PaymentCallbackHistory{
		PaymentGateway: models.PaymentGatewayMidtrans,
		OrderID:        notif.OrderID,
		Metadata:       meta,
	}).Error; err != nil {
		log.Printf("Failed to record callback history for %s: %v", notif.OrderID, err)
	}

	if !IsSettled(notif.TransactionStatus) && !IsDenied(notif.TransactionStatus) {
		// Still pending at the gateway; nothing to transition yet.
		return &ReconcileOutcome{OrderID: notif.OrderID, Status: models.PaymentStatusPending}, nil
	}

	return s.Reconcile(ctx, notif.OrderID, IsSettled(notif.TransactionStatus))
}

// Reconcile transitions the ledger entry for orderID to Success or
// Failed and applies the kind-specific side effects. The transition is a
// conditional update guarded on the non-terminal statuses, which makes a
// retried callback for an already-terminal order a no-op: side effects
// run at most once per order.
func (s *ReconcileService) Reconcile(ctx context.Context, orderID string, success bool) (*ReconcileOutcome, error) {
	outcome := &ReconcileOutcome{OrderID: orderID}
	var releaseHall *models.HallBooking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var history models.PaymentHistory
		if err := tx.Where("order_id = ?", orderID).First(&history).Error; err != nil {
			return fmt.Errorf("unknown order id %s: %w", orderID, err)
		}
		outcome.BookingType = history.BookingType

		target := models.PaymentStatusFailed
		if success {
			target = models.PaymentStatusSuccess
		}

		updates := map[string]interface{}{"status": target}
		if success {
			now := time.Now()
			updates["verified_at"] = &now
		}

		res := tx.Model(&models.PaymentHistory{}).
			Where("order_id = ? AND status IN ?", orderID, []models.PaymentStatus{
				models.PaymentStatusInitiated, models.PaymentStatusPending,
			}).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			outcome.AlreadyFinal = true
			outcome.Status = history.Status
			return nil
		}
		outcome.Status = target

		if success {
			return s.applySuccess(tx, &history)
		}
		hb, err := s.applyFailure(tx, &history)
		releaseHall = hb
		return err
	})
	if err != nil {
		return nil, err
	}

	if releaseHall != nil {
		s.conflicts.ReleaseSlotHold(ctx, ResourceHall, releaseHall.HallID,
			releaseHall.BookingDate, releaseHall.SlotFrom, releaseHall.SlotTo)
	}

	return outcome, nil
}

func (s *ReconcileService) applySuccess(tx *gorm.DB, history *models.PaymentHistory) error {
	switch history.BookingType {
	case models.BookingTypeMembership, models.BookingTypeRenewal:
		return s.confirmMembership(tx, history)

	case models.BookingTypeBooking, models.BookingTypeEnrollment:
		return s.confirmBooking(tx, history)

	case models.BookingTypeEvent:
		return s.confirmEvent(tx, history)

	case models.BookingTypeHall:
		return s.confirmHall(tx, history)
	}
	return fmt.Errorf("unknown booking type %q on order %s", history.BookingType, history.OrderID)
}

// applyFailure marks the reservation Failed and undoes resource holds.
// For hall bookings it returns the booking so the caller can drop the
// redis hold after the transaction commits.
func (s *ReconcileService) applyFailure(tx *gorm.DB, history *models.PaymentHistory) (*models.HallBooking, error) {
	switch history.BookingType {
	case models.BookingTypeMembership, models.BookingTypeRenewal:
		return nil, nil

	case models.BookingTypeBooking, models.BookingTypeEnrollment:
		if history.BookingID == nil {
			return nil, nil
		}
		var booking models.Booking
		if err := tx.First(&booking, *history.BookingID).Error; err != nil {
			return nil, err
		}
		if err := markReservation(tx, &models.Booking{}, history.BookingID, models.PaymentStatusFailed, nil); err != nil {
			return nil, err
		}
		// The slot was consumed at reservation time; give it back.
		return nil, tx.Model(&models.Batch{}).
			Where("id = ?", booking.BatchID).
			UpdateColumn("batch_limit", gorm.Expr("batch_limit + 1")).Error

	case models.BookingTypeEvent:
		return nil, markReservation(tx, &models.EventBooking{}, history.EventBookingID, models.PaymentStatusFailed, nil)

	case models.BookingTypeHall:
		if history.HallBookingID == nil {
			return nil, nil
		}
		var hall models.HallBooking
		if err := tx.First(&hall, *history.HallBookingID).Error; err != nil {
			return nil, err
		}
		if err := markReservation(tx, &models.HallBooking{}, history.HallBookingID, models.PaymentStatusFailed, nil); err != nil {
			return nil, err
		}
		return &hall, nil
	}
	return nil, fmt.Errorf("unknown booking type %q on order %s", history.BookingType, history.OrderID)
}

// confirmMembership stamps the member (and dependents) with materialized
// plan dates and queues the confirmation email
func (s *ReconcileService) confirmMembership(tx *gorm.DB, history *models.PaymentHistory) error {
	if history.MemberID == nil || history.PlanID == nil {
		return fmt.Errorf("membership order %s missing member or plan reference", history.OrderID)
	}

	var plan models.Plan
	if err := tx.First(&plan, *history.PlanID).Error; err != nil {
		return err
	}
	start, end := MaterializeDates(time.Month(plan.StartMonth), time.Month(plan.EndMonth), time.Now())

	var member models.Member
	if err := tx.First(&member, *history.MemberID).Error; err != nil {
		return err
	}

	err := tx.Model(&member).Updates(map[string]interface{}{
		"fees_paid":               true,
		"fees_verified":           true,
		"current_plan_plan_id":    plan.ID,
		"current_plan_amount":     history.Amount,
		"current_plan_start_date": &start,
		"current_plan_end_date":   &end,
	}).Error
	if err != nil {
		return err
	}

	// Dependents with their own plan snapshot get the same cycle dates.
	var family []models.FamilyMember
	if err := tx.Where("member_id = ? AND current_plan_plan_id <> 0", member.ID).Find(&family).Error; err != nil {
		return err
	}
	for _, fm := range family {
		var fmPlan models.Plan
		if err := tx.First(&fmPlan, fm.CurrentPlan.PlanID).Error; err != nil {
			continue
		}
		fmStart, fmEnd := MaterializeDates(time.Month(fmPlan.StartMonth), time.Month(fmPlan.EndMonth), time.Now())
		if err := tx.Model(&fm).Updates(map[string]interface{}{
			"fees_paid":               true,
			"current_plan_start_date": &fmStart,
			"current_plan_end_date":   &fmEnd,
		}).Error; err != nil {
			return err
		}
	}

	return enqueueNotification(tx, member.Email,
		"Membership payment received",
		fmt.Sprintf("Hi %s, your payment of %.2f for plan %s is confirmed. Valid %s to %s.",
			member.Name, history.Amount, plan.Name, FormatLegacyDate(start), FormatLegacyDate(end)))
}

// confirmBooking marks the booking Success and materializes the fee
// snapshot dates from the plan window. Capacity stays consumed; it was
// decremented at reservation time.
func (s *ReconcileService) confirmBooking(tx *gorm.DB, history *models.PaymentHistory) error {
	if history.BookingID == nil {
		return fmt.Errorf("booking order %s missing booking reference", history.OrderID)
	}

	var booking models.Booking
	if err := tx.First(&booking, *history.BookingID).Error; err != nil {
		return err
	}

	var dates map[string]interface{}
	if history.PlanID != nil {
		var plan models.Plan
		if err := tx.First(&plan, *history.PlanID).Error; err == nil {
			start, end := MaterializeDates(time.Month(plan.StartMonth), time.Month(plan.EndMonth), time.Now())
			dates = map[string]interface{}{
				"fees_start_date": &start,
				"fees_end_date":   &end,
			}
		}
	}
	if err := markReservation(tx, &models.Booking{}, history.BookingID, models.PaymentStatusSuccess, dates); err != nil {
		return err
	}

	if booking.MemberID != nil {
		var member models.Member
		if err := tx.First(&member, *booking.MemberID).Error; err == nil && member.Email != "" {
			return enqueueNotification(tx, member.Email,
				"Booking confirmed",
				fmt.Sprintf("Hi %s, your booking #%d is confirmed for %s.",
					member.Name, booking.BookingNo, FormatLegacyDate(booking.BookingDate)))
		}
	}
	return nil
}

// confirmEvent marks the event booking Success and queues the
// confirmation email
func (s *ReconcileService) confirmEvent(tx *gorm.DB, history *models.PaymentHistory) error {
	if history.EventBookingID == nil {
		return fmt.Errorf("event order %s missing booking reference", history.OrderID)
	}
	if err := markReservation(tx, &models.EventBooking{}, history.EventBookingID, models.PaymentStatusSuccess, nil); err != nil {
		return err
	}

	var booking models.EventBooking
	if err := tx.Preload("Event").First(&booking, *history.EventBookingID).Error; err != nil {
		return err
	}
	if booking.MemberID != nil {
		var member models.Member
		if err := tx.First(&member, *booking.MemberID).Error; err == nil && member.Email != "" {
			return enqueueNotification(tx, member.Email,
				"Event booking confirmed",
				fmt.Sprintf("Hi %s, your booking for %s on %s is confirmed.",
					member.Name, booking.Event.Name, FormatLegacyDate(booking.Event.EventDate)))
		}
	}
	return nil
}

// confirmHall marks the hall booking Success and queues the
// confirmation email
func (s *ReconcileService) confirmHall(tx *gorm.DB, history *models.PaymentHistory) error {
	if history.HallBookingID == nil {
		return fmt.Errorf("hall order %s missing booking reference", history.OrderID)
	}
	if err := markReservation(tx, &models.HallBooking{}, history.HallBookingID, models.PaymentStatusSuccess, nil); err != nil {
		return err
	}

	var booking models.HallBooking
	if err := tx.Preload("Hall").First(&booking, *history.HallBookingID).Error; err != nil {
		return err
	}
	if booking.MemberID != nil {
		var member models.Member
		if err := tx.First(&member, *booking.MemberID).Error; err == nil && member.Email != "" {
			return enqueueNotification(tx, member.Email,
				"Hall booking confirmed",
				fmt.Sprintf("Hi %s, %s is reserved for you on %s, %s to %s.",
					member.Name, booking.Hall.Name, FormatLegacyDate(booking.BookingDate),
					booking.SlotFrom, booking.SlotTo))
		}
	}
	return nil
}

// markReservation conditionally transitions a reservation record out of a
// live-pending status; terminal rows are left untouched
func markReservation(tx *gorm.DB, model interface{}, id *uint, target models.PaymentStatus, extra map[string]interface{}) error {
	if id == nil {
		return nil
	}
	updates := map[string]interface{}{"payment_status": target}
	for k, v := range extra {
		updates[k] = v
	}
	return tx.Model(model).
		Where("id = ? AND payment_status IN ?", *id, []models.PaymentStatus{
			models.PaymentStatusInitiated, models.PaymentStatusPending,
		}).
		Updates(updates).Error
}

// enqueueNotification schedules a one-time email task for the worker
func enqueueNotification(tx *gorm.DB, to, subject, body string) error {
	if to == "" {
		return nil
	}
	task := models.ScheduledTask{
		TaskName: "send_notification",
		Arguments: map[string]interface{}{
			"to":      to,
			"subject": subject,
			"body":    body,
		},
		Due:        time.Now(),
		Status:     models.ScheduledTaskStatusActive,
		TaskType:   models.ScheduledTaskTypeOneTime,
		MaxAttempt: 3,
	}
	return tx.Create(&task).Error
}
