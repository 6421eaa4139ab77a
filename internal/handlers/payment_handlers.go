package handlers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
	"clubhouse_echo/internal/services"
)

// PaymentHandler exposes reservation initiation, the gateway callback
// endpoints and payment status lookups
type PaymentHandler struct {
	db           *gorm.DB
	reservations *services.ReservationService
	reconciler   *services.ReconcileService
	midtrans     *services.MidtransService
}

func NewPaymentHandler(db *gorm.DB, reservations *services.ReservationService, reconciler *services.ReconcileService, midtrans *services.MidtransService) *PaymentHandler {
	return &PaymentHandler{db: db, reservations: reservations, reconciler: reconciler, midtrans: midtrans}
}

// InitiateBookingRequest is the payload for batch booking initiation
type InitiateBookingRequest struct {
	MemberID     *uint                    `json:"member_id"`
	GuestPlayers string                   `json:"guest_players"`
	BatchID      uint                     `json:"batch_id" validate:"required"`
	BookingDate  string                   `json:"booking_date" validate:"required"`
	Billing      *services.BillingDetails `json:"billing"`
}

// InitiateBooking starts the payment flow for a batch booking
func (h *PaymentHandler) InitiateBooking(c echo.Context) error {
	var req InitiateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := dateFromRequest(req.BookingDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid booking_date, expected YYYY-MM-DD")
	}

	result, err := h.reservations.ReserveBooking(c.Request().Context(), services.BookingRequest{
		MemberID:     req.MemberID,
		GuestPlayers: req.GuestPlayers,
		BatchID:      req.BatchID,
		BookingDate:  date,
		Billing:      req.Billing,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// InitiateEnrollmentRequest enrolls a member into a batch season
type InitiateEnrollmentRequest struct {
	MemberID uint `json:"member_id" validate:"required"`
	BatchID  uint `json:"batch_id" validate:"required"`
}

// InitiateEnrollment starts the payment flow for a seasonal enrollment
func (h *PaymentHandler) InitiateEnrollment(c echo.Context) error {
	var req InitiateEnrollmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.reservations.ReserveEnrollment(c.Request().Context(), services.EnrollmentRequest{
		MemberID: req.MemberID,
		BatchID:  req.BatchID,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// InitiateHallRequest is the payload for hall slot booking initiation
type InitiateHallRequest struct {
	MemberID    *uint                    `json:"member_id"`
	HallID      uint                     `json:"hall_id" validate:"required"`
	BookingDate string                   `json:"booking_date" validate:"required"`
	SlotFrom    string                   `json:"slot_from" validate:"required"`
	SlotTo      string                   `json:"slot_to" validate:"required"`
	Purpose     string                   `json:"purpose"`
	Billing     *services.BillingDetails `json:"billing"`
}

// InitiateHall starts the payment flow for a hall reservation
func (h *PaymentHandler) InitiateHall(c echo.Context) error {
	var req InitiateHallRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := dateFromRequest(req.BookingDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid booking_date, expected YYYY-MM-DD")
	}

	result, err := h.reservations.ReserveHall(c.Request().Context(), services.HallRequest{
		MemberID:    req.MemberID,
		HallID:      req.HallID,
		BookingDate: date,
		SlotFrom:    req.SlotFrom,
		SlotTo:      req.SlotTo,
		Purpose:     req.Purpose,
		Billing:     req.Billing,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// InitiateEventRequest is the payload for event booking initiation
type InitiateEventRequest struct {
	MemberID uint `json:"member_id" validate:"required"`
	EventID  uint `json:"event_id" validate:"required"`
	Guests   int  `json:"guests" validate:"min=0"`
}

// InitiateEvent starts the payment flow for an event booking
func (h *PaymentHandler) InitiateEvent(c echo.Context) error {
	var req InitiateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.reservations.ReserveEvent(c.Request().Context(), services.EventRequest{
		MemberID: req.MemberID,
		EventID:  req.EventID,
		Guests:   req.Guests,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// InitiateMembershipRequest starts a membership or renewal payment
type InitiateMembershipRequest struct {
	MemberID uint `json:"member_id" validate:"required"`
	PlanID   uint `json:"plan_id"`
}

// InitiateMembership starts the payment flow for a membership fee
func (h *PaymentHandler) InitiateMembership(c echo.Context) error {
	var req InitiateMembershipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PlanID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "plan_id is required")
	}

	result, err := h.reservations.ReserveMembership(c.Request().Context(), services.MembershipRequest{
		MemberID: req.MemberID,
		PlanID:   req.PlanID,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// InitiateRenewal starts the payment flow for renewing the current plan
func (h *PaymentHandler) InitiateRenewal(c echo.Context) error {
	var req InitiateMembershipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.reservations.ReserveRenewal(c.Request().Context(), req.MemberID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// CCAvenueCallback consumes the gateway's encResp post. Every per-kind
// callback URL lands here; the ledger entry's booking type decides what
// gets updated.
func (h *PaymentHandler) CCAvenueCallback(c echo.Context) error {
	encResp := c.FormValue("encResp")
	if encResp == "" {
		encResp = c.FormValue("encResponse")
	}
	if encResp == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing encrypted response")
	}

	outcome, err := h.reconciler.ReconcileCCAvenue(c.Request().Context(), encResp)
	if err != nil {
		log.Printf("CCAvenue callback failed: %v", err)
		failureURL := getEnv("PAYMENT_FAILURE_URL", "/payment/failed")
		return c.Redirect(http.StatusSeeOther, failureURL)
	}

	redirectBase := getEnv("PAYMENT_SUCCESS_URL", "/payment/result")
	return c.Redirect(http.StatusSeeOther, redirectBase+"?order_id="+outcome.OrderID+"&status="+string(outcome.Status))
}

// MidtransNotification consumes the midtrans HTTP notification
func (h *PaymentHandler) MidtransNotification(c echo.Context) error {
	var notif services.MidtransNotification
	if err := c.Bind(&notif); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification body")
	}
	if notif.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing order_id")
	}

	outcome, err := h.reconciler.ReconcileMidtrans(c.Request().Context(), h.midtrans, notif)
	if err != nil {
		log.Printf("Midtrans notification failed for %s: %v", notif.OrderID, err)
		return echo.NewHTTPError(http.StatusBadRequest, "Notification rejected")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_id": outcome.OrderID,
		"status":   outcome.Status,
	})
}

// PaymentStatus returns the current ledger status for an order id
func (h *PaymentHandler) PaymentStatus(c echo.Context) error {
	orderID := c.Param("orderID")
	if orderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing order id")
	}

	var history models.PaymentHistory
	if err := h.db.Where("order_id = ?", orderID).First(&history).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_id":     history.OrderID,
		"booking_type": history.BookingType,
		"status":       history.Status,
		"amount":       history.Amount,
		"verified_at":  history.VerifiedAt,
	})
}
