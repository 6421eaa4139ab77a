package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clubhouse_echo/internal/models"
)

// newTestDB opens an isolated in-memory database per test. A single
// connection keeps every statement on the same memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newTestReconciler(db *gorm.DB) *ReconcileService {
	return NewReconcileService(db, &CCAvenueService{}, NewConflictChecker(db, nil))
}

func batchLimit(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var batch models.Batch
	if err := db.First(&batch, id).Error; err != nil {
		t.Fatalf("failed to load batch: %v", err)
	}
	return batch.BatchLimit
}

func notificationCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	db.Model(&models.ScheduledTask{}).Where("task_name = ?", "send_notification").Count(&count)
	return count
}

func TestReserveBatchSlotSingleWinner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	batch := models.Batch{Name: "Morning", BatchLimit: 1, IsActive: true}
	if err := db.Create(&batch).Error; err != nil {
		t.Fatal(err)
	}

	ok, err := ReserveBatchSlot(ctx, db, batch.ID)
	if err != nil || !ok {
		t.Fatalf("first reservation: ok=%v err=%v; want a winner", ok, err)
	}

	ok, err = ReserveBatchSlot(ctx, db, batch.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("second reservation won on a batch with one slot")
	}

	if got := batchLimit(t, db, batch.ID); got != 0 {
		t.Errorf("batch_limit = %d; want 0", got)
	}

	if err := ReleaseBatchSlot(ctx, db, batch.ID); err != nil {
		t.Fatal(err)
	}
	if got := batchLimit(t, db, batch.ID); got != 1 {
		t.Errorf("batch_limit after release = %d; want 1", got)
	}
}

func seedBookingLedger(t *testing.T, db *gorm.DB, orderID string, limit int) (models.Batch, models.Booking) {
	t.Helper()

	member := models.Member{MemberNo: "CLB202400001", Name: "Asha", Email: "asha@example.com"}
	if err := db.Create(&member).Error; err != nil {
		t.Fatal(err)
	}
	plan := models.Plan{Name: "Season", PlanType: models.PlanTypeBooking, MemberPrice: 500, StartMonth: 4, EndMonth: 9, IsActive: true}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatal(err)
	}
	batch := models.Batch{Name: "Evening", BatchLimit: limit, PlanID: plan.ID, IsActive: true}
	if err := db.Create(&batch).Error; err != nil {
		t.Fatal(err)
	}
	booking := models.Booking{
		BookingNo:     1001,
		UUID:          orderID + "-ref",
		MemberID:      &member.ID,
		BatchID:       batch.ID,
		BookingDate:   time.Now(),
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatal(err)
	}
	history := models.PaymentHistory{
		OrderID:        orderID,
		BookingType:    models.BookingTypeBooking,
		PaymentGateway: models.PaymentGatewayCCAvenue,
		Amount:         500,
		Status:         models.PaymentStatusInitiated,
		MemberID:       &member.ID,
		PlanID:         &plan.ID,
		BookingID:      &booking.ID,
	}
	if err := db.Create(&history).Error; err != nil {
		t.Fatal(err)
	}
	return batch, booking
}

func TestReconcileSecondCallbackIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReconciler(db)
	ctx := context.Background()

	batch, booking := seedBookingLedger(t, db, "BKG100", 2)

	first, err := svc.Reconcile(ctx, "BKG100", true)
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	if first.AlreadyFinal || first.Status != models.PaymentStatusSuccess {
		t.Fatalf("first reconcile = %+v; want fresh Success", first)
	}

	// A duplicate (even contradictory) callback must not flip anything.
	second, err := svc.Reconcile(ctx, "BKG100", false)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if !second.AlreadyFinal {
		t.Error("second reconcile ran side effects on a terminal order")
	}
	if second.Status != models.PaymentStatusSuccess {
		t.Errorf("second reconcile status = %s; want Success preserved", second.Status)
	}

	var got models.Booking
	if err := db.First(&got, booking.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.PaymentStatus != models.PaymentStatusSuccess {
		t.Errorf("booking status = %s; want Success", got.PaymentStatus)
	}
	if limit := batchLimit(t, db, batch.ID); limit != 2 {
		t.Errorf("batch_limit = %d; want untouched 2", limit)
	}
	if n := notificationCount(t, db); n != 1 {
		t.Errorf("notification tasks = %d; want exactly 1", n)
	}
}

func TestReconcileFailureRestoresCapacity(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReconciler(db)
	ctx := context.Background()

	batch, booking := seedBookingLedger(t, db, "BKG200", 3)

	// Reservation consumed one slot up front.
	ok, err := ReserveBatchSlot(ctx, db, batch.ID)
	if err != nil || !ok {
		t.Fatalf("slot reservation: ok=%v err=%v", ok, err)
	}
	if limit := batchLimit(t, db, batch.ID); limit != 2 {
		t.Fatalf("batch_limit after reservation = %d; want 2", limit)
	}

	outcome, err := svc.Reconcile(ctx, "BKG200", false)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if outcome.Status != models.PaymentStatusFailed || outcome.AlreadyFinal {
		t.Fatalf("outcome = %+v; want fresh Failed", outcome)
	}

	var got models.Booking
	if err := db.First(&got, booking.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.PaymentStatus != models.PaymentStatusFailed {
		t.Errorf("booking status = %s; want Failed", got.PaymentStatus)
	}
	if limit := batchLimit(t, db, batch.ID); limit != 3 {
		t.Errorf("batch_limit after failure = %d; want restored 3", limit)
	}
}

func TestReconcileHallSuccessQueuesNotification(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReconciler(db)
	ctx := context.Background()

	member := models.Member{MemberNo: "CLB202400002", Name: "Ravi", Email: "ravi@example.com"}
	if err := db.Create(&member).Error; err != nil {
		t.Fatal(err)
	}
	hall := models.Hall{Name: "Banquet", IsActive: true}
	if err := db.Create(&hall).Error; err != nil {
		t.Fatal(err)
	}
	booking := models.HallBooking{
		UUID:          "hall-ref-1",
		HallID:        hall.ID,
		MemberID:      &member.ID,
		BookingDate:   time.Now(),
		SlotFrom:      "10:00",
		SlotTo:        "12:00",
		Amount:        2500,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatal(err)
	}
	history := models.PaymentHistory{
		OrderID:        "HAL100",
		BookingType:    models.BookingTypeHall,
		PaymentGateway: models.PaymentGatewayCCAvenue,
		Amount:         2500,
		Status:         models.PaymentStatusInitiated,
		MemberID:       &member.ID,
		HallBookingID:  &booking.ID,
	}
	if err := db.Create(&history).Error; err != nil {
		t.Fatal(err)
	}

	outcome, err := svc.Reconcile(ctx, "HAL100", true)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if outcome.Status != models.PaymentStatusSuccess {
		t.Fatalf("outcome status = %s; want Success", outcome.Status)
	}

	var got models.HallBooking
	if err := db.First(&got, booking.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.PaymentStatus != models.PaymentStatusSuccess {
		t.Errorf("hall booking status = %s; want Success", got.PaymentStatus)
	}

	var task models.ScheduledTask
	if err := db.Where("task_name = ?", "send_notification").First(&task).Error; err != nil {
		t.Fatalf("no notification task queued: %v", err)
	}
	if to, _ := task.Arguments["to"].(string); to != "ravi@example.com" {
		t.Errorf("notification recipient = %q; want member email", to)
	}
}
