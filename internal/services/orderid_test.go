package services

import (
	"strings"
	"testing"
	"time"
)

func TestOrderIDCandidate(t *testing.T) {
	// 1756700000123 % 1e11 = 56700000123
	now := time.UnixMilli(1756700000123)

	tests := []struct {
		name   string
		prefix string
		suffix int
		want   string
	}{
		{name: "booking prefix", prefix: "BKG", suffix: 42, want: "BKG567000001230042"},
		{name: "membership prefix", prefix: "MEM", suffix: 9999, want: "MEM567000001239999"},
		{name: "zero suffix pads to four digits", prefix: "ORD", suffix: 0, want: "ORD567000001230000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orderIDCandidate(tt.prefix, now, tt.suffix)
			if got != tt.want {
				t.Errorf("orderIDCandidate() = %q; want %q", got, tt.want)
			}
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("candidate %q missing prefix %q", got, tt.prefix)
			}
		})
	}
}

func TestOrderIDCandidateLength(t *testing.T) {
	// Prefix + 11 timestamp digits + 4 suffix digits. Gateways commonly cap
	// order ids at 30 characters, so the generated part must stay short.
	got := orderIDCandidate("BKG", time.Now(), 1234)
	if len(got) > len("BKG")+15 {
		t.Errorf("candidate %q longer than expected", got)
	}
}
