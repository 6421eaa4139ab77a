package tasks

import (
	"testing"
	"time"

	"clubhouse_echo/internal/models"
)

func TestShouldExpire(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	entry := func(kind models.BookingType, gateway models.PaymentGateway, age time.Duration) models.PaymentHistory {
		e := models.PaymentHistory{BookingType: kind, PaymentGateway: gateway}
		e.CreatedAt = now.Add(-age)
		return e
	}

	tests := []struct {
		name  string
		entry models.PaymentHistory
		want  bool
	}{
		{
			name:  "membership never expires here",
			entry: entry(models.BookingTypeMembership, models.PaymentGatewayCCAvenue, 48*time.Hour),
			want:  false,
		},
		{
			name:  "renewal never expires here",
			entry: entry(models.BookingTypeRenewal, models.PaymentGatewayCCAvenue, 48*time.Hour),
			want:  false,
		},
		{
			name:  "fresh batch booking stays",
			entry: entry(models.BookingTypeBooking, models.PaymentGatewayCCAvenue, 9*time.Minute),
			want:  false,
		},
		{
			name:  "stale batch booking expires after its 10m cooldown",
			entry: entry(models.BookingTypeBooking, models.PaymentGatewayCCAvenue, 11*time.Minute),
			want:  true,
		},
		{
			name:  "hall booking expires after its 5m cooldown",
			entry: entry(models.BookingTypeHall, models.PaymentGatewayCCAvenue, 6*time.Minute),
			want:  true,
		},
		{
			name:  "event booking expires after its 5m cooldown",
			entry: entry(models.BookingTypeEvent, models.PaymentGatewayCCAvenue, 6*time.Minute),
			want:  true,
		},
		{
			name:  "midtrans booking inside the verification window stays",
			entry: entry(models.BookingTypeBooking, models.PaymentGatewayMidtrans, 12*time.Hour),
			want:  false,
		},
		{
			name:  "midtrans booking past the verification window expires",
			entry: entry(models.BookingTypeBooking, models.PaymentGatewayMidtrans, 25*time.Hour),
			want:  true,
		},
		{
			name:  "midtrans membership never expires regardless of age",
			entry: entry(models.BookingTypeMembership, models.PaymentGatewayMidtrans, 72*time.Hour),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldExpire(tt.entry, now); got != tt.want {
				t.Errorf("shouldExpire(%s/%s) = %v; want %v",
					tt.entry.BookingType, tt.entry.PaymentGateway, got, tt.want)
			}
		})
	}
}

func TestExpiryCooldownPerKind(t *testing.T) {
	if d, ok := expiryCooldown(models.BookingTypeBooking); !ok || d != 10*time.Minute {
		t.Errorf("booking cooldown = %s, %v", d, ok)
	}
	if d, ok := expiryCooldown(models.BookingTypeEnrollment); !ok || d != 10*time.Minute {
		t.Errorf("enrollment cooldown = %s, %v", d, ok)
	}
	if d, ok := expiryCooldown(models.BookingTypeHall); !ok || d != 5*time.Minute {
		t.Errorf("hall cooldown = %s, %v", d, ok)
	}
	if d, ok := expiryCooldown(models.BookingTypeEvent); !ok || d != 5*time.Minute {
		t.Errorf("event cooldown = %s, %v", d, ok)
	}
	if _, ok := expiryCooldown(models.BookingTypeMembership); ok {
		t.Error("membership should hold no resource")
	}
	if _, ok := expiryCooldown(models.BookingTypeRenewal); ok {
		t.Error("renewal should hold no resource")
	}
}
