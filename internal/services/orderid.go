package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"clubhouse_echo/internal/models"
)

// ErrOrderIDExhausted is returned when no unused order id could be found
// within the bounded number of attempts. Callers should treat it as transient.
var ErrOrderIDExhausted = fmt.Errorf("could not generate a unique order id")

const orderIDMaxAttempts = 5

// orderIDCandidate builds one id from a prefix, a truncated millisecond
// timestamp and a four digit random suffix
func orderIDCandidate(prefix string, now time.Time, suffix int) string {
	return fmt.Sprintf("%s%d%04d", prefix, now.UnixMilli()%100000000000, suffix)
}

// GenerateOrderID builds a candidate from a prefix, a truncated
// timestamp and a random suffix, probing the payment ledger until an
// unused identifier is found. The probe is read-only; uniqueness is
// ultimately enforced by the unique index on payment_histories.order_id.
func GenerateOrderID(ctx context.Context, db *gorm.DB, prefix string) (string, error) {
	for attempt := 0; attempt < orderIDMaxAttempts; attempt++ {
		candidate := orderIDCandidate(prefix, time.Now(), rand.Intn(10000))

		var count int64
		err := db.WithContext(ctx).Model(&models.PaymentHistory{}).
			Where("order_id = ?", candidate).Count(&count).Error
		if err != nil {
			return "", fmt.Errorf("order id probe failed: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", ErrOrderIDExhausted
}
