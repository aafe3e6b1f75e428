package booking

import (
	"testing"
	"time"
)

func TestCandidateOccurrences_SingleInterval(t *testing.T) {
	s := &Service{HorizonDays: defaultHorizonDays}
	req := &CreateBookingRequest{
		RoomID:    1,
		Title:     "Design review",
		StartTime: "2024-06-03T09:00:00Z",
		EndTime:   "2024-06-03T10:00:00Z",
	}

	cands, err := s.candidateOccurrences(req)
	if err != nil {
		t.Fatalf("candidateOccurrences: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if !cands[0].Start.Equal(time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start: %v", cands[0].Start)
	}
}

func TestCandidateOccurrences_RecurringExpansion(t *testing.T) {
	s := &Service{HorizonDays: defaultHorizonDays}
	req := &CreateBookingRequest{
		RoomID:    1,
		Title:     "Standup",
		StartTime: "2024-01-01T09:00:00Z",
		EndTime:   "2024-01-01T09:20:00Z",
		RRule:     "FREQ=WEEKLY;COUNT=3",
	}

	cands, err := s.candidateOccurrences(req)
	if err != nil {
		t.Fatalf("candidateOccurrences: %v", err)
	}
	if len(cands) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(cands))
	}
	for i, want := range []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
	} {
		if !cands[i].Start.Equal(want) {
			t.Errorf("candidate %d start = %v, want %v", i, cands[i].Start, want)
		}
		if cands[i].End.Sub(cands[i].Start) != 20*time.Minute {
			t.Errorf("candidate %d duration = %v, want 20m", i, cands[i].End.Sub(cands[i].Start))
		}
	}
}

func TestCandidateOccurrences_Validation(t *testing.T) {
	s := &Service{HorizonDays: defaultHorizonDays}
	tests := []struct {
		name string
		req  CreateBookingRequest
	}{
		{"bad start", CreateBookingRequest{StartTime: "yesterday", EndTime: "2024-06-03T10:00:00Z"}},
		{"bad end", CreateBookingRequest{StartTime: "2024-06-03T09:00:00Z", EndTime: "tomorrow"}},
		{"reversed interval", CreateBookingRequest{StartTime: "2024-06-03T10:00:00Z", EndTime: "2024-06-03T09:00:00Z"}},
		{"malformed rrule", CreateBookingRequest{
			StartTime: "2024-06-03T09:00:00Z",
			EndTime:   "2024-06-03T10:00:00Z",
			RRule:     "FREQ=SOMETIMES",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.candidateOccurrences(&tt.req); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}
