package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusIsTerminal(t *testing.T) {
	assert.False(t, PaymentStatusInitiated.IsTerminal())
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.True(t, PaymentStatusSuccess.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
}

func TestPlanPriceFor(t *testing.T) {
	plan := Plan{MemberPrice: 500, GuestPrice: 800}

	assert.Equal(t, 500.0, plan.PriceFor(true))
	assert.Equal(t, 800.0, plan.PriceFor(false))
}

func TestBatchNextSession(t *testing.T) {
	t.Run("weekly rule yields an upcoming date", func(t *testing.T) {
		schedule := "FREQ=WEEKLY;BYDAY=MO,WE,FR"
		batch := Batch{Schedule: &schedule}
		batch.CreatedAt = time.Now().AddDate(0, -1, 0)

		next := batch.NextSession()
		assert.False(t, next.Before(time.Now().Add(-24*time.Hour)))
	})

	t.Run("no schedule falls back to today", func(t *testing.T) {
		batch := Batch{}
		next := batch.NextSession()
		assert.WithinDuration(t, time.Now(), next, time.Minute)
	})

	t.Run("invalid rule falls back to today", func(t *testing.T) {
		schedule := "not-a-rule"
		batch := Batch{Schedule: &schedule}
		next := batch.NextSession()
		assert.WithinDuration(t, time.Now(), next, time.Minute)
	})
}

func TestScheduledTaskNextDue(t *testing.T) {
	t.Run("onetime keeps its due date", func(t *testing.T) {
		due := time.Now().Add(-time.Hour)
		task := ScheduledTask{TaskType: ScheduledTaskTypeOneTime, Due: due}
		assert.Equal(t, due, task.NextDue())
	})

	t.Run("recurring advances past now", func(t *testing.T) {
		interval := "FREQ=MINUTELY;INTERVAL=5"
		task := ScheduledTask{
			TaskType:          ScheduledTaskTypeRecurring,
			Due:               time.Now().Add(-time.Hour),
			RecurringInterval: &interval,
		}
		next := task.NextDue()
		assert.True(t, next.After(task.Due))
	})

	t.Run("recurring without interval keeps its due date", func(t *testing.T) {
		due := time.Now()
		task := ScheduledTask{TaskType: ScheduledTaskTypeRecurring, Due: due}
		assert.Equal(t, due, task.NextDue())
	})
}
