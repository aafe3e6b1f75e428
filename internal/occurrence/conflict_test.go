package occurrence

import (
	"testing"
	"time"
)

func ts(h, m int) time.Time {
	return time.Date(2024, 6, 3, h, m, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		aStart time.Time
		aEnd   time.Time
		bStart time.Time
		bEnd   time.Time
		want   bool
	}{
		{"disjoint before", ts(8, 0), ts(9, 0), ts(10, 0), ts(11, 0), false},
		{"disjoint after", ts(12, 0), ts(13, 0), ts(10, 0), ts(11, 0), false},
		{"back to back", ts(9, 0), ts(10, 0), ts(10, 0), ts(11, 0), false},
		{"back to back reversed", ts(10, 0), ts(11, 0), ts(9, 0), ts(10, 0), false},
		{"partial overlap", ts(9, 30), ts(10, 30), ts(10, 0), ts(11, 0), true},
		{"contained", ts(10, 15), ts(10, 45), ts(10, 0), ts(11, 0), true},
		{"containing", ts(9, 0), ts(12, 0), ts(10, 0), ts(11, 0), true},
		{"identical", ts(10, 0), ts(11, 0), ts(10, 0), ts(11, 0), true},
		{"one minute shared", ts(10, 59), ts(11, 30), ts(10, 0), ts(11, 0), true},
		// candidate bookings against a 09:00-09:20 standup occurrence
		{"booking into standup", ts(9, 10), ts(9, 30), ts(9, 0), ts(9, 20), true},
		{"booking after standup boundary", ts(9, 20), ts(9, 40), ts(9, 0), ts(9, 20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Errorf("Overlaps(%v, %v, %v, %v) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
			// overlap is symmetric
			if Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd) != got {
				t.Errorf("Overlaps not symmetric for %s", tt.name)
			}
		})
	}
}
