package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
)

// newTestReserver wires a reservation service against an unconfigured
// gateway, so intent creation fails after the reservation row exists.
func newTestReserver(db *gorm.DB) *ReservationService {
	return NewReservationService(db, NewConflictChecker(db, nil), &CCAvenueService{}, nil)
}

func seedBatchFixture(t *testing.T, db *gorm.DB, limit int) (models.Batch, models.Member) {
	t.Helper()

	activity := models.Activity{Name: "Badminton", IsActive: true}
	if err := db.Create(&activity).Error; err != nil {
		t.Fatal(err)
	}
	plan := models.Plan{Name: "Per session", PlanType: models.PlanTypeBooking, MemberPrice: 300, GuestPrice: 450, StartMonth: 4, EndMonth: 9, IsActive: true}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatal(err)
	}
	batch := models.Batch{ActivityID: activity.ID, Name: "Evening", SlotFrom: "18:00", SlotTo: "20:00", BatchLimit: limit, PlanID: plan.ID, IsActive: true}
	if err := db.Create(&batch).Error; err != nil {
		t.Fatal(err)
	}
	member := models.Member{MemberNo: "CLB202400010", Name: "Meera", Email: "meera@example.com"}
	if err := db.Create(&member).Error; err != nil {
		t.Fatal(err)
	}
	return batch, member
}

func TestReserveBookingIntentFailureMarksRowFailed(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReserver(db)
	ctx := context.Background()

	batch, member := seedBatchFixture(t, db, 2)

	_, err := svc.ReserveBooking(ctx, BookingRequest{
		MemberID:    &member.ID,
		BatchID:     batch.ID,
		BookingDate: time.Now().AddDate(0, 0, 1),
	})
	if err == nil {
		t.Fatal("expected intent creation to fail with unconfigured gateway")
	}

	// The orphaned row has no ledger entry, so the sweep would never
	// expire it; it must come out of the call already terminal.
	var booking models.Booking
	if err := db.Where("batch_id = ?", batch.ID).First(&booking).Error; err != nil {
		t.Fatalf("booking row not found: %v", err)
	}
	if booking.PaymentStatus != models.PaymentStatusFailed {
		t.Errorf("booking status = %s; want Failed", booking.PaymentStatus)
	}
	if got := batchLimit(t, db, batch.ID); got != 2 {
		t.Errorf("batch_limit = %d; want the slot given back, 2", got)
	}
}

func TestReserveHallIntentFailureMarksRowFailed(t *testing.T) {
	db := newTestDB(t)
	svc := newTestReserver(db)
	ctx := context.Background()

	plan := models.Plan{Name: "Hall hire", PlanType: models.PlanTypeHall, MemberPrice: 2000, GuestPrice: 3000, IsActive: true}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatal(err)
	}
	hall := models.Hall{Name: "Banquet", PlanID: plan.ID, IsActive: true}
	if err := db.Create(&hall).Error; err != nil {
		t.Fatal(err)
	}
	member := models.Member{MemberNo: "CLB202400011", Name: "Vikram", Email: "vikram@example.com"}
	if err := db.Create(&member).Error; err != nil {
		t.Fatal(err)
	}

	date := time.Now().AddDate(0, 0, 2)
	_, err := svc.ReserveHall(ctx, HallRequest{
		MemberID:    &member.ID,
		HallID:      hall.ID,
		BookingDate: date,
		SlotFrom:    "10:00",
		SlotTo:      "12:00",
		Purpose:     "Reception",
	})
	if err == nil {
		t.Fatal("expected intent creation to fail with unconfigured gateway")
	}

	var booking models.HallBooking
	if err := db.Where("hall_id = ?", hall.ID).First(&booking).Error; err != nil {
		t.Fatalf("hall booking row not found: %v", err)
	}
	if booking.PaymentStatus != models.PaymentStatusFailed {
		t.Errorf("hall booking status = %s; want Failed", booking.PaymentStatus)
	}

	// The failed row no longer blocks the window for a fresh attempt.
	conflict, _, err := svc.conflicts.HallConflict(ctx, hall.ID, date, "10:00", "12:00")
	if err != nil {
		t.Fatal(err)
	}
	if conflict {
		t.Error("failed reservation still blocks the slot window")
	}
}

func TestNextBookingNoSequence(t *testing.T) {
	db := newTestDB(t)

	no, err := nextBookingNo(db)
	if err != nil {
		t.Fatal(err)
	}
	if no != 1001 {
		t.Errorf("first booking number = %d; want 1001", no)
	}

	seed := models.Booking{BookingNo: 1050, UUID: "seq-ref", BookingDate: time.Now(), PaymentStatus: models.PaymentStatusPending}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatal(err)
	}
	no, err = nextBookingNo(db)
	if err != nil {
		t.Fatal(err)
	}
	if no != 1051 {
		t.Errorf("next booking number = %d; want 1051", no)
	}
}

func TestBookingNoCollisionTranslatesToDuplicatedKey(t *testing.T) {
	db := newTestDB(t)

	first := models.Booking{BookingNo: 1001, UUID: "dup-a", BookingDate: time.Now(), PaymentStatus: models.PaymentStatusPending}
	if err := db.Create(&first).Error; err != nil {
		t.Fatal(err)
	}

	// The retry loop in createBookingIntent keys on this sentinel; the
	// driver must surface unique violations as gorm.ErrDuplicatedKey.
	second := models.Booking{BookingNo: 1001, UUID: "dup-b", BookingDate: time.Now(), PaymentStatus: models.PaymentStatusPending}
	err := db.Create(&second).Error
	if err == nil {
		t.Fatal("duplicate booking number was accepted")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("duplicate insert error = %v; want gorm.ErrDuplicatedKey", err)
	}
}
