package rules

import (
	"testing"
	"time"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"1 hour", time.Hour, false},
		{"6 hours", 6 * time.Hour, false},
		{"1 day", 24 * time.Hour, false},
		{"3 days", 72 * time.Hour, false},
		{"1 week", 7 * 24 * time.Hour, false},
		{"2 weeks", 14 * 24 * time.Hour, false},
		{"1 month", 30 * 24 * time.Hour, false},
		{"2 Months", 60 * 24 * time.Hour, false},
		{"", 0, true},
		{"hour", 0, true},
		{"1 fortnight", 0, true},
		{"x days", 0, true},
		{"-1 day", 0, true},
		{"1 day extra", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseTimeRange(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTimeRange(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTimeRange(%q) failed: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("parseTimeRange(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
