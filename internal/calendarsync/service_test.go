package calendarsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
)

// fakeProvider scripts PullDelta responses per received token.
type fakeProvider struct {
	pulls   []func(token string) (*DeltaPage, error)
	tokens  []string
	pushErr error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) PullDelta(ctx context.Context, calendarID, syncToken string) (*DeltaPage, error) {
	f.tokens = append(f.tokens, syncToken)
	if len(f.pulls) == 0 {
		return &DeltaPage{NextSyncToken: "end"}, nil
	}
	next := f.pulls[0]
	f.pulls = f.pulls[1:]
	return next(syncToken)
}

func (f *fakeProvider) PushEvent(ctx context.Context, calendarID string, mapping *ProviderEventMapping, snapshot *EventSnapshot) (string, string, error) {
	return "remote-1", "etag-1", f.pushErr
}

func TestPullWithRetry_ExpiredTokenTriggersFullResync(t *testing.T) {
	provider := &fakeProvider{
		pulls: []func(string) (*DeltaPage, error){
			func(string) (*DeltaPage, error) { return nil, ErrSyncTokenExpired },
			func(token string) (*DeltaPage, error) {
				if token != "" {
					t.Errorf("full resync should pull with empty token, got %q", token)
				}
				return &DeltaPage{NextSyncToken: "fresh"}, nil
			},
		},
	}
	s := &Service{Provider: provider, CalendarID: "cal-1", backoffBase: time.Millisecond}

	page, err := s.pullWithRetry(context.Background(), "stale-token")
	if err != nil {
		t.Fatalf("pullWithRetry: %v", err)
	}
	if page.NextSyncToken != "fresh" {
		t.Errorf("NextSyncToken = %q, want %q", page.NextSyncToken, "fresh")
	}
	if len(provider.tokens) != 2 || provider.tokens[0] != "stale-token" || provider.tokens[1] != "" {
		t.Errorf("token sequence = %v, want [stale-token, \"\"]", provider.tokens)
	}
}

func TestPullWithRetry_TransientFailureRetried(t *testing.T) {
	provider := &fakeProvider{
		pulls: []func(string) (*DeltaPage, error){
			func(string) (*DeltaPage, error) { return nil, ErrProviderUnavailable },
			func(string) (*DeltaPage, error) { return &DeltaPage{NextSyncToken: "ok"}, nil },
		},
	}
	s := &Service{Provider: provider, CalendarID: "cal-1", backoffBase: time.Millisecond}

	page, err := s.pullWithRetry(context.Background(), "tok")
	if err != nil {
		t.Fatalf("pullWithRetry: %v", err)
	}
	if page.NextSyncToken != "ok" {
		t.Errorf("NextSyncToken = %q, want %q", page.NextSyncToken, "ok")
	}
}

func TestPullWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	provider := &fakeProvider{
		pulls: []func(string) (*DeltaPage, error){
			func(string) (*DeltaPage, error) { return nil, ErrProviderUnavailable },
			func(string) (*DeltaPage, error) { return nil, ErrProviderUnavailable },
			func(string) (*DeltaPage, error) { return nil, ErrProviderUnavailable },
			func(string) (*DeltaPage, error) { return nil, ErrProviderUnavailable },
		},
	}
	s := &Service{Provider: provider, CalendarID: "cal-1", backoffBase: time.Millisecond}

	_, err := s.pullWithRetry(context.Background(), "tok")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if len(provider.tokens) != maxPullAttempts {
		t.Errorf("attempts = %d, want %d", len(provider.tokens), maxPullAttempts)
	}
}

func TestPullWithRetry_HardErrorNotRetried(t *testing.T) {
	hard := errors.New("credentials revoked")
	provider := &fakeProvider{
		pulls: []func(string) (*DeltaPage, error){
			func(string) (*DeltaPage, error) { return nil, hard },
		},
	}
	s := &Service{Provider: provider, CalendarID: "cal-1", backoffBase: time.Millisecond}

	_, err := s.pullWithRetry(context.Background(), "tok")
	if !errors.Is(err, hard) {
		t.Fatalf("expected the hard error back, got %v", err)
	}
	if len(provider.tokens) != 1 {
		t.Errorf("attempts = %d, want 1", len(provider.tokens))
	}
}

func TestDecodeGoogleEvent(t *testing.T) {
	item := &calendar.Event{
		Id:      "g-1",
		Etag:    "\"abc\"",
		Summary: "Board meeting",
		Status:  "confirmed",
		Created: "2024-01-01T08:00:00Z",
		Updated: "2024-01-02T10:30:00Z",
		Start:   &calendar.EventDateTime{DateTime: "2024-01-05T14:00:00+01:00", TimeZone: "Europe/Berlin"},
		End:     &calendar.EventDateTime{DateTime: "2024-01-05T15:00:00+01:00", TimeZone: "Europe/Berlin"},
		Recurrence: []string{
			"RRULE:FREQ=WEEKLY;BYDAY=FR",
		},
	}

	change := decodeGoogleEvent(item)
	if change.Kind != ChangeUpdated {
		t.Errorf("Kind = %q, want %q (created != updated timestamp)", change.Kind, ChangeUpdated)
	}
	if change.RRule != "FREQ=WEEKLY;BYDAY=FR" {
		t.Errorf("RRule = %q", change.RRule)
	}
	wantStart := time.Date(2024, 1, 5, 13, 0, 0, 0, time.UTC)
	if !change.StartTime.Equal(wantStart) {
		t.Errorf("StartTime = %v, want %v (normalized to UTC)", change.StartTime, wantStart)
	}
	if change.TimeZone != "Europe/Berlin" {
		t.Errorf("TimeZone = %q", change.TimeZone)
	}
	if !change.UpdatedAt.Equal(time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("UpdatedAt = %v", change.UpdatedAt)
	}
}

func TestDecodeGoogleEvent_Cancelled(t *testing.T) {
	change := decodeGoogleEvent(&calendar.Event{Id: "g-2", Etag: "\"e\"", Status: "cancelled"})
	if change.Kind != ChangeCancelled {
		t.Errorf("Kind = %q, want %q", change.Kind, ChangeCancelled)
	}
}

func TestEncodeGoogleEvent_RoundsTripRecurrence(t *testing.T) {
	snapshot := &EventSnapshot{
		Title:     "Standup",
		StartTime: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 1, 1, 9, 20, 0, 0, time.UTC),
		TimeZone:  "UTC",
		RRule:     "FREQ=WEEKLY;COUNT=3",
	}

	remote := encodeGoogleEvent(snapshot)
	if len(remote.Recurrence) != 1 || remote.Recurrence[0] != "RRULE:FREQ=WEEKLY;COUNT=3" {
		t.Errorf("Recurrence = %v", remote.Recurrence)
	}
	if remote.Start.DateTime != "2024-01-01T09:00:00Z" {
		t.Errorf("Start.DateTime = %q", remote.Start.DateTime)
	}
}

func TestRemoteWins_LastWriterDecides(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		local  time.Time
		remote time.Time
		want   bool
	}{
		{"remote newer applies", base, base.Add(time.Minute), true},
		{"local newer survives", base.Add(time.Minute), base, false},
		{"exact tie goes to remote", base, base, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := remoteWins(tt.local, tt.remote); got != tt.want {
				t.Errorf("remoteWins(%v, %v) = %v, want %v", tt.local, tt.remote, got, tt.want)
			}
		})
	}
}
