package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
)

// Domain errors surfaced to the HTTP layer as 4xx responses
var (
	ErrResourceInactive  = fmt.Errorf("resource is not active")
	ErrCapacityExhausted = fmt.Errorf("no remaining capacity")
	ErrZeroAmount        = fmt.Errorf("payable amount is zero")
	ErrAlreadyPaid       = fmt.Errorf("payment already made")
)

// ConflictError carries the remaining hold time so the handler can tell
// the caller when the slot frees up
type ConflictError struct {
	Remaining time.Duration
}

func (e *ConflictError) Error() string {
	if e.Remaining > 0 {
		return fmt.Sprintf("slot is held by a pending booking, try again in %s", e.Remaining.Round(time.Second))
	}
	return "slot is already booked"
}

// BillingDetails are the billing_* fields forwarded to the gateway
type BillingDetails struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Tel     string `json:"tel"`
	Email   string `json:"email" validate:"required,email"`
}

func billingFromMember(m *models.Member) BillingDetails {
	return BillingDetails{
		Name:    m.Name,
		Address: m.Address,
		City:    m.City,
		State:   m.State,
		Zip:     m.Zip,
		Country: m.Country,
		Tel:     m.Phone,
		Email:   m.Email,
	}
}

// ReservationResult is returned to the caller for redirecting to the
// gateway. CCAvenue flows fill EncRequest/AccessCode/GatewayURL; midtrans
// flows fill Token/RedirectURL.
type ReservationResult struct {
	ReservationRef string  `json:"reservation_ref"`
	OrderID        string  `json:"order_id"`
	Amount         float64 `json:"amount"`
	EncRequest     string  `json:"enc_request,omitempty"`
	AccessCode     string  `json:"access_code,omitempty"`
	GatewayURL     string  `json:"gateway_url,omitempty"`
	Token          string  `json:"token,omitempty"`
	RedirectURL    string  `json:"redirect_url,omitempty"`
}

// ReservationService creates pending reservations and the matching
// payment intents
type ReservationService struct {
	db        *gorm.DB
	conflicts *ConflictChecker
	ccavenue  *CCAvenueService
	midtrans  *MidtransService
	gateway   models.PaymentGateway
}

func NewReservationService(db *gorm.DB, conflicts *ConflictChecker, ccav *CCAvenueService, mid *MidtransService) *ReservationService {
	gateway := models.PaymentGatewayCCAvenue
	if os.Getenv("PAYMENT_GATEWAY") == string(models.PaymentGatewayMidtrans) {
		gateway = models.PaymentGatewayMidtrans
	}
	return &ReservationService{
		db:        db,
		conflicts: conflicts,
		ccavenue:  ccav,
		midtrans:  mid,
		gateway:   gateway,
	}
}

// BookingRequest reserves a batch slot for a single date. Either a
// member or a list of guest players must be given.
type BookingRequest struct {
	MemberID     *uint
	GuestPlayers string
	BatchID      uint
	BookingDate  time.Time
	Billing      *BillingDetails
}

// ReserveBooking validates capacity, persists a pending booking and
// returns the encrypted gateway payload
func (s *ReservationService) ReserveBooking(ctx context.Context, req BookingRequest) (*ReservationResult, error) {
	var batch models.Batch
	if err := s.db.WithContext(ctx).Preload("Activity").Preload("Plan").First(&batch, req.BatchID).Error; err != nil {
		return nil, err
	}
	if !batch.IsActive || !batch.Activity.IsActive {
		return nil, ErrResourceInactive
	}

	billing, member, err := s.resolveBilling(ctx, req.MemberID, req.Billing)
	if err != nil {
		return nil, err
	}

	amount := batch.Plan.PriceFor(member != nil)
	if amount <= 0 {
		return nil, ErrZeroAmount
	}

	// Capacity is consumed up front; a failed or expired payment gives
	// it back during reconciliation.
	ok, err := ReserveBatchSlot(ctx, s.db, batch.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCapacityExhausted
	}

	result, err := s.createBookingIntent(ctx, &batch, req, member, billing, amount, models.BookingTypeBooking)
	if err != nil {
		// Give the slot back, the reservation never materialized.
		_ = ReleaseBatchSlot(ctx, s.db, batch.ID)
		return nil, err
	}
	return result, nil
}

// EnrollmentRequest enrolls a member into a batch for the plan season
type EnrollmentRequest struct {
	MemberID uint
	BatchID  uint
}

// ReserveEnrollment is the seasonal variant of ReserveBooking: same
// capacity rules, but plan dates are materialized on payment success.
func (s *ReservationService) ReserveEnrollment(ctx context.Context, req EnrollmentRequest) (*ReservationResult, error) {
	var batch models.Batch
	if err := s.db.WithContext(ctx).Preload("Activity").Preload("Plan").First(&batch, req.BatchID).Error; err != nil {
		return nil, err
	}
	if !batch.IsActive || !batch.Activity.IsActive {
		return nil, ErrResourceInactive
	}

	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, req.MemberID).Error; err != nil {
		return nil, err
	}

	amount := batch.Plan.MemberPrice
	if amount <= 0 {
		return nil, ErrZeroAmount
	}

	ok, err := ReserveBatchSlot(ctx, s.db, batch.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCapacityExhausted
	}

	bookingReq := BookingRequest{
		MemberID:    &member.ID,
		BatchID:     batch.ID,
		BookingDate: batch.NextSession(),
	}
	result, err := s.createBookingIntent(ctx, &batch, bookingReq, &member, billingFromMember(&member), amount, models.BookingTypeEnrollment)
	if err != nil {
		_ = ReleaseBatchSlot(ctx, s.db, batch.ID)
		return nil, err
	}
	return result, nil
}

func (s *ReservationService) createBookingIntent(ctx context.Context, batch *models.Batch, req BookingRequest, member *models.Member, billing BillingDetails, amount float64, kind models.BookingType) (*ReservationResult, error) {
	booking := models.Booking{
		UUID:         uuid.New().String(),
		MemberID:     req.MemberID,
		GuestPlayers: req.GuestPlayers,
		ActivityID:   batch.ActivityID,
		BatchID:      batch.ID,
		BookingDate:  req.BookingDate,
		FeesBreakup: models.FeesBreakup{
			PlanID: batch.PlanID,
			Amount: amount,
		},
		PaymentStatus: models.PaymentStatusPending,
	}

	// Booking numbers are MAX+1; two concurrent bookers can race to the
	// same number, so a collision on the unique index retries the whole
	// transaction with a fresh read.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		booking.ID = 0
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			no, err := nextBookingNo(tx)
			if err != nil {
				return err
			}
			booking.BookingNo = no
			return tx.Create(&booking).Error
		})
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	result, err := s.createIntent(ctx, intentParams{
		Kind:      kind,
		Prefix:    "BKG",
		Amount:    amount,
		Billing:   billing,
		MemberID:  req.MemberID,
		PlanID:    &batch.PlanID,
		BookingID: &booking.ID,
		Ref:       booking.UUID,
	})
	if err != nil {
		// No ledger entry references the row, so the expiry sweep would
		// never find it; fail it here instead of leaving it Pending.
		_ = s.db.WithContext(ctx).Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update("payment_status", models.PaymentStatusFailed).Error
		return nil, err
	}
	return result, nil
}

// HallRequest reserves a hall for an exclusive slot on a date
type HallRequest struct {
	MemberID    *uint
	HallID      uint
	BookingDate time.Time
	SlotFrom    string
	SlotTo      string
	Purpose     string
	Billing     *BillingDetails
}

// ReserveHall checks the requested window against confirmed and
// live-pending bookings, takes a short-lived hold lock and persists the
// pending reservation
func (s *ReservationService) ReserveHall(ctx context.Context, req HallRequest) (*ReservationResult, error) {
	var hall models.Hall
	if err := s.db.WithContext(ctx).Preload("Plan").First(&hall, req.HallID).Error; err != nil {
		return nil, err
	}
	if !hall.IsActive {
		return nil, ErrResourceInactive
	}

	billing, member, err := s.resolveBilling(ctx, req.MemberID, req.Billing)
	if err != nil {
		return nil, err
	}

	amount := hall.Plan.PriceFor(member != nil)
	if amount <= 0 {
		return nil, ErrZeroAmount
	}

	conflict, remaining, err := s.conflicts.HallConflict(ctx, hall.ID, req.BookingDate, req.SlotFrom, req.SlotTo)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, &ConflictError{Remaining: remaining}
	}

	held, err := s.conflicts.AcquireSlotHold(ctx, ResourceHall, hall.ID, req.BookingDate, req.SlotFrom, req.SlotTo)
	if err != nil {
		return nil, err
	}
	if !held {
		return nil, &ConflictError{Remaining: s.conflicts.Cooldown(ResourceHall)}
	}

	booking := models.HallBooking{
		UUID:          uuid.New().String(),
		HallID:        hall.ID,
		MemberID:      req.MemberID,
		Purpose:       req.Purpose,
		BookingDate:   req.BookingDate,
		SlotFrom:      req.SlotFrom,
		SlotTo:        req.SlotTo,
		Amount:        amount,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		s.conflicts.ReleaseSlotHold(ctx, ResourceHall, hall.ID, req.BookingDate, req.SlotFrom, req.SlotTo)
		return nil, err
	}

	result, err := s.createIntent(ctx, intentParams{
		Kind:          models.BookingTypeHall,
		Prefix:        "HAL",
		Amount:        amount,
		Billing:       billing,
		MemberID:      req.MemberID,
		PlanID:        &hall.PlanID,
		HallBookingID: &booking.ID,
		Ref:           booking.UUID,
	})
	if err != nil {
		// Without a ledger entry the expiry sweep cannot fail this row,
		// so it would block the window for its whole cooldown.
		_ = s.db.WithContext(ctx).Model(&models.HallBooking{}).
			Where("id = ?", booking.ID).
			Update("payment_status", models.PaymentStatusFailed).Error
		s.conflicts.ReleaseSlotHold(ctx, ResourceHall, hall.ID, req.BookingDate, req.SlotFrom, req.SlotTo)
		return nil, err
	}
	return result, nil
}

// EventRequest books seats at an event for a member
type EventRequest struct {
	MemberID uint
	EventID  uint
	Guests   int
}

// ReserveEvent rejects duplicate live bookings by the same member and
// persists a pending event booking
func (s *ReservationService) ReserveEvent(ctx context.Context, req EventRequest) (*ReservationResult, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, req.EventID).Error; err != nil {
		return nil, err
	}
	if !event.IsActive {
		return nil, ErrResourceInactive
	}

	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, req.MemberID).Error; err != nil {
		return nil, err
	}

	amount := event.MemberPrice + event.GuestPrice*float64(req.Guests)
	if amount <= 0 {
		return nil, ErrZeroAmount
	}

	conflict, remaining, err := s.conflicts.EventConflict(ctx, event.ID, member.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, &ConflictError{Remaining: remaining}
	}

	booking := models.EventBooking{
		UUID:          uuid.New().String(),
		EventID:       event.ID,
		MemberID:      &member.ID,
		Guests:        req.Guests,
		Amount:        amount,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, err
	}

	result, err := s.createIntent(ctx, intentParams{
		Kind:           models.BookingTypeEvent,
		Prefix:         "EVT",
		Amount:         amount,
		Billing:        billingFromMember(&member),
		MemberID:       &member.ID,
		EventBookingID: &booking.ID,
		Ref:            booking.UUID,
	})
	if err != nil {
		_ = s.db.WithContext(ctx).Model(&models.EventBooking{}).
			Where("id = ?", booking.ID).
			Update("payment_status", models.PaymentStatusFailed).Error
		return nil, err
	}
	return result, nil
}

// MembershipRequest starts a membership (or renewal) payment for a plan
type MembershipRequest struct {
	MemberID uint
	PlanID   uint
}

// ReserveMembership creates the payment intent for a member's plan fee
func (s *ReservationService) ReserveMembership(ctx context.Context, req MembershipRequest) (*ReservationResult, error) {
	return s.reservePlanFee(ctx, req, models.BookingTypeMembership, "MEM")
}

// ReserveRenewal renews the member's current plan for the next cycle
func (s *ReservationService) ReserveRenewal(ctx context.Context, memberID uint) (*ReservationResult, error) {
	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, memberID).Error; err != nil {
		return nil, err
	}
	if member.CurrentPlan.PlanID == 0 {
		return nil, fmt.Errorf("member has no plan to renew")
	}
	return s.reservePlanFee(ctx, MembershipRequest{MemberID: memberID, PlanID: member.CurrentPlan.PlanID}, models.BookingTypeRenewal, "RNW")
}

func (s *ReservationService) reservePlanFee(ctx context.Context, req MembershipRequest, kind models.BookingType, prefix string) (*ReservationResult, error) {
	var plan models.Plan
	if err := s.db.WithContext(ctx).First(&plan, req.PlanID).Error; err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrResourceInactive
	}

	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, req.MemberID).Error; err != nil {
		return nil, err
	}

	amount := plan.MemberPrice
	if amount <= 0 {
		return nil, ErrZeroAmount
	}

	// An unverified but paid membership must not be charged twice.
	if kind == models.BookingTypeMembership && member.FeesPaid {
		return nil, ErrAlreadyPaid
	}

	return s.createIntent(ctx, intentParams{
		Kind:     kind,
		Prefix:   prefix,
		Amount:   amount,
		Billing:  billingFromMember(&member),
		MemberID: &member.ID,
		PlanID:   &plan.ID,
		Ref:      member.MemberNo,
	})
}

func (s *ReservationService) resolveBilling(ctx context.Context, memberID *uint, given *BillingDetails) (BillingDetails, *models.Member, error) {
	if memberID != nil {
		var member models.Member
		if err := s.db.WithContext(ctx).First(&member, *memberID).Error; err != nil {
			return BillingDetails{}, nil, err
		}
		return billingFromMember(&member), &member, nil
	}
	if given == nil {
		return BillingDetails{}, nil, fmt.Errorf("billing details required for guest reservations")
	}
	return *given, nil, nil
}

type intentParams struct {
	Kind           models.BookingType
	Prefix         string
	Amount         float64
	Billing        BillingDetails
	MemberID       *uint
	PlanID         *uint
	BookingID      *uint
	EventBookingID *uint
	HallBookingID  *uint
	Ref            string
}

// createIntent generates the order id, persists the ledger entry and
// builds the gateway-specific redirect payload
func (s *ReservationService) createIntent(ctx context.Context, p intentParams) (*ReservationResult, error) {
	orderID, err := GenerateOrderID(ctx, s.db, p.Prefix)
	if err != nil {
		return nil, err
	}

	history := models.PaymentHistory{
		OrderID:        orderID,
		BookingType:    p.Kind,
		PaymentGateway: s.gateway,
		Amount:         p.Amount,
		Currency:       "INR",
		Status:         models.PaymentStatusInitiated,
		MemberID:       p.MemberID,
		PlanID:         p.PlanID,
		BookingID:      p.BookingID,
		EventBookingID: p.EventBookingID,
		HallBookingID:  p.HallBookingID,
	}

	result := &ReservationResult{
		ReservationRef: p.Ref,
		OrderID:        orderID,
		Amount:         p.Amount,
	}

	switch s.gateway {
	case models.PaymentGatewayMidtrans:
		snapReq := &snap.Request{
			TransactionDetails: midtrans.TransactionDetails{
				OrderID:  orderID,
				GrossAmt: int64(p.Amount),
			},
			CustomerDetail: &midtrans.CustomerDetails{
				FName: p.Billing.Name,
				Email: p.Billing.Email,
			},
		}
		resp, err := s.midtrans.CreateTransaction(orderID, int64(p.Amount), snapReq)
		if err != nil {
			return nil, err
		}
		reqBytes, _ := json.Marshal(snapReq)
		respBytes, _ := json.Marshal(resp)
		history.RequestMetadata = reqBytes
		history.ResponseMetadata = respBytes
		result.Token = resp.Token
		result.RedirectURL = resp.RedirectURL

	default:
		gwReq := GatewayRequest{
			OrderID:        orderID,
			Amount:         p.Amount,
			BillingName:    p.Billing.Name,
			BillingAddress: p.Billing.Address,
			BillingCity:    p.Billing.City,
			BillingState:   p.Billing.State,
			BillingZip:     p.Billing.Zip,
			BillingCountry: p.Billing.Country,
			BillingTel:     p.Billing.Tel,
			BillingEmail:   p.Billing.Email,
			RedirectPath:   fmt.Sprintf("/payment/ccavenue-%s-response", p.Kind),
			CancelPath:     fmt.Sprintf("/payment/ccavenue-%s-response", p.Kind),
			MerchantParam1: p.Ref,
		}
		encRequest, err := s.ccavenue.BuildEncryptedRequest(gwReq)
		if err != nil {
			return nil, err
		}
		reqBytes, _ := json.Marshal(gwReq)
		history.RequestMetadata = reqBytes
		result.EncRequest = encRequest
		result.AccessCode = s.ccavenue.AccessCode
		result.GatewayURL = s.ccavenue.GatewayURL
	}

	if err := s.db.WithContext(ctx).Create(&history).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// nextBookingNo allocates the next human-readable booking number
func nextBookingNo(tx *gorm.DB) (int, error) {
	var max int
	err := tx.Model(&models.Booking{}).
		Select("COALESCE(MAX(booking_no), 1000)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}
