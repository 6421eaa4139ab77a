package services

import (
	"testing"
	"time"

	"clubhouse_echo/internal/models"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "00:00", want: 0},
		{input: "06:30", want: 390},
		{input: "18:00", want: 1080},
		{input: "23:59", want: 1439},
		{input: " 09:15 ", want: 555},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "-1:00", wantErr: true},
		{input: "1200", wantErr: true},
		{input: "ab:cd", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSlot(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSlot(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSlot(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSlot(%q) = %d; want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestWindowsOverlap(t *testing.T) {
	tests := []struct {
		name                   string
		aFrom, aTo, bFrom, bTo int
		want                   bool
	}{
		{name: "identical windows", aFrom: 600, aTo: 660, bFrom: 600, bTo: 660, want: true},
		{name: "partial overlap at end", aFrom: 600, aTo: 660, bFrom: 630, bTo: 690, want: true},
		{name: "partial overlap at start", aFrom: 630, aTo: 690, bFrom: 600, bTo: 660, want: true},
		{name: "fully contained", aFrom: 600, aTo: 720, bFrom: 630, bTo: 660, want: true},
		{name: "adjacent windows do not conflict", aFrom: 600, aTo: 660, bFrom: 660, bTo: 720, want: false},
		{name: "adjacent windows reversed", aFrom: 660, aTo: 720, bFrom: 600, bTo: 660, want: false},
		{name: "disjoint", aFrom: 600, aTo: 660, bFrom: 720, bTo: 780, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowsOverlap(tt.aFrom, tt.aTo, tt.bFrom, tt.bTo); got != tt.want {
				t.Errorf("windowsOverlap(%d,%d,%d,%d) = %v; want %v", tt.aFrom, tt.aTo, tt.bFrom, tt.bTo, got, tt.want)
			}
		})
	}
}

func TestIsBlocking(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   models.PaymentStatus
		age      time.Duration
		cooldown time.Duration
		want     bool
	}{
		{name: "success always blocks", status: models.PaymentStatusSuccess, age: 48 * time.Hour, cooldown: 5 * time.Minute, want: true},
		{name: "fresh pending blocks", status: models.PaymentStatusPending, age: 2 * time.Minute, cooldown: 5 * time.Minute, want: true},
		{name: "fresh initiated blocks", status: models.PaymentStatusInitiated, age: 1 * time.Minute, cooldown: 10 * time.Minute, want: true},
		{name: "stale pending does not block", status: models.PaymentStatusPending, age: 6 * time.Minute, cooldown: 5 * time.Minute, want: false},
		{name: "pending at exact cooldown does not block", status: models.PaymentStatusPending, age: 5 * time.Minute, cooldown: 5 * time.Minute, want: false},
		{name: "failed never blocks", status: models.PaymentStatusFailed, age: time.Second, cooldown: 10 * time.Minute, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			createdAt := now.Add(-tt.age)
			if got := isBlocking(tt.status, createdAt, now, tt.cooldown); got != tt.want {
				t.Errorf("isBlocking(%s, age %s) = %v; want %v", tt.status, tt.age, got, tt.want)
			}
		})
	}
}

func TestHoldRemaining(t *testing.T) {
	now := time.Now()

	if got := holdRemaining(now.Add(-2*time.Minute), now, 5*time.Minute); got != 3*time.Minute {
		t.Errorf("holdRemaining = %s; want 3m", got)
	}
	if got := holdRemaining(now.Add(-10*time.Minute), now, 5*time.Minute); got != 0 {
		t.Errorf("holdRemaining past cooldown = %s; want 0", got)
	}
}

func TestCooldownDefaults(t *testing.T) {
	c := NewConflictChecker(nil, nil)

	if got := c.Cooldown(ResourceBatch); got != 10*time.Minute {
		t.Errorf("batch cooldown = %s; want 10m", got)
	}
	if got := c.Cooldown(ResourceHall); got != 5*time.Minute {
		t.Errorf("hall cooldown = %s; want 5m", got)
	}
	if got := c.Cooldown(ResourceEvent); got != 5*time.Minute {
		t.Errorf("event cooldown = %s; want 5m", got)
	}

	c.SetCooldown(ResourceHall, time.Minute)
	if got := c.Cooldown(ResourceHall); got != time.Minute {
		t.Errorf("overridden hall cooldown = %s; want 1m", got)
	}
}

func TestSlotHoldKey(t *testing.T) {
	date := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	got := slotHoldKey(ResourceHall, 7, date, "10:00", "12:00")
	want := "slot_hold:hall:7:2024-06-15:10:00-12:00"
	if got != want {
		t.Errorf("slotHoldKey = %q; want %q", got, want)
	}
}
