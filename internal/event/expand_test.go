package event

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func utc(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return ts.UTC()
}

func strPtr(s string) *string { return &s }

// Weekly standup, Mondays 09:00-09:20 UTC starting 2024-01-01, three instances.
func standupEvent() *Event {
	return &Event{
		ID:        1,
		UID:       "standup-uid",
		RoomID:    1,
		Title:     "Standup",
		StartTime: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 1, 1, 9, 20, 0, 0, time.UTC),
		TimeZone:  "UTC",
		RRule:     strPtr("FREQ=WEEKLY;COUNT=3"),
		Status:    StatusConfirmed,
	}
}

func TestExpand_WeeklyCount(t *testing.T) {
	ev := standupEvent()
	occs, err := Expand(ev, utc(t, "2024-01-01T00:00:00Z"), utc(t, "2024-01-31T00:00:00Z"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	want := []string{"2024-01-01T09:00:00Z", "2024-01-08T09:00:00Z", "2024-01-15T09:00:00Z"}
	if len(occs) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(occs), len(want))
	}
	for i, w := range want {
		if !occs[i].Start.Equal(utc(t, w)) {
			t.Errorf("occurrence %d start = %s, want %s", i, occs[i].Start, w)
		}
		if got := occs[i].End.Sub(occs[i].Start); got != 20*time.Minute {
			t.Errorf("occurrence %d duration = %s, want 20m", i, got)
		}
		if !occs[i].RecurrenceID.Equal(occs[i].Start) {
			t.Errorf("occurrence %d recurrence id %s != start %s", i, occs[i].RecurrenceID, occs[i].Start)
		}
	}
}

func TestExpand_Deterministic(t *testing.T) {
	ev := standupEvent()
	ws, we := utc(t, "2024-01-01T00:00:00Z"), utc(t, "2024-01-31T00:00:00Z")

	first, err := Expand(ev, ws, we)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	second, err := Expand(ev, ws, we)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Start.Equal(second[i].Start) || !first[i].End.Equal(second[i].End) {
			t.Errorf("occurrence %d differs between runs", i)
		}
	}
}

func TestExpand_WindowBounds(t *testing.T) {
	ev := standupEvent()
	// Window open just after the first instance and closed exactly on the third.
	occs, err := Expand(ev, utc(t, "2024-01-01T09:00:01Z"), utc(t, "2024-01-15T09:00:00Z"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("got %d occurrences, want 1 (half-open window)", len(occs))
	}
	if !occs[0].Start.Equal(utc(t, "2024-01-08T09:00:00Z")) {
		t.Errorf("start = %s, want Jan 8", occs[0].Start)
	}
}

func TestExpand_Exdates(t *testing.T) {
	ev := standupEvent()
	ev.Exdates = datatypes.JSONSlice[time.Time]{utc(t, "2024-01-08T09:00:00Z")}

	occs, err := Expand(ev, utc(t, "2024-01-01T00:00:00Z"), utc(t, "2024-01-31T00:00:00Z"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(occs))
	}
	for _, occ := range occs {
		if occ.Start.Equal(utc(t, "2024-01-08T09:00:00Z")) {
			t.Errorf("exdate instant still present in output")
		}
	}
}

func TestExpand_RdatesMergeAndCollapse(t *testing.T) {
	ev := standupEvent()
	ev.Rdates = datatypes.JSONSlice[time.Time]{
		utc(t, "2024-01-03T14:00:00Z"), // extra ad-hoc instance
		utc(t, "2024-01-08T09:00:00Z"), // coincides with a generated instant
	}

	occs, err := Expand(ev, utc(t, "2024-01-01T00:00:00Z"), utc(t, "2024-01-31T00:00:00Z"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 4 {
		t.Fatalf("got %d occurrences, want 4 (duplicate rdate collapses)", len(occs))
	}

	var extra *Occurrence
	for i := range occs {
		if occs[i].Start.Equal(utc(t, "2024-01-03T14:00:00Z")) {
			extra = &occs[i]
		}
	}
	if extra == nil {
		t.Fatalf("rdate instance missing from output")
	}
	if got := extra.End.Sub(extra.Start); got != 20*time.Minute {
		t.Errorf("rdate duration = %s, want master duration 20m", got)
	}

	for i := 1; i < len(occs); i++ {
		if occs[i].Start.Before(occs[i-1].Start) {
			t.Errorf("output not sorted ascending at index %d", i)
		}
	}
}

func TestExpand_DSTKeepsLocalTime(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// Daily 09:00 New York local; US DST starts 2024-03-10.
	ev := &Event{
		ID:        2,
		UID:       "daily-uid",
		Title:     "Daily review",
		StartTime: time.Date(2024, 3, 9, 9, 0, 0, 0, loc).UTC(),
		EndTime:   time.Date(2024, 3, 9, 10, 0, 0, 0, loc).UTC(),
		TimeZone:  "America/New_York",
		RRule:     strPtr("FREQ=DAILY;COUNT=3"),
		Status:    StatusConfirmed,
	}

	occs, err := Expand(ev, utc(t, "2024-03-09T00:00:00Z"), utc(t, "2024-03-13T00:00:00Z"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occs))
	}

	for i, occ := range occs {
		local := occ.Start.In(loc)
		if local.Hour() != 9 || local.Minute() != 0 {
			t.Errorf("occurrence %d local time = %02d:%02d, want 09:00", i, local.Hour(), local.Minute())
		}
	}

	// Across the transition the UTC offset shifts from -05:00 to -04:00.
	if diff := occs[1].Start.Sub(occs[0].Start); diff != 23*time.Hour {
		t.Errorf("UTC gap across spring-forward = %s, want 23h", diff)
	}
}

func TestExpand_SingleEvent(t *testing.T) {
	ev := &Event{
		ID:        3,
		UID:       "single-uid",
		Title:     "One-off",
		StartTime: utc(t, "2024-02-01T10:00:00Z"),
		EndTime:   utc(t, "2024-02-01T11:00:00Z"),
		TimeZone:  "UTC",
		Status:    StatusConfirmed,
	}

	occs, err := Expand(ev, utc(t, "2024-02-01T00:00:00Z"), utc(t, "2024-02-02T00:00:00Z"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("got %d occurrences, want 1", len(occs))
	}

	// Outside the window nothing is emitted.
	occs, err = Expand(ev, utc(t, "2024-03-01T00:00:00Z"), utc(t, "2024-03-02T00:00:00Z"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 0 {
		t.Fatalf("got %d occurrences, want 0", len(occs))
	}

	// Intersecting the window start is enough for a single event.
	occs, err = Expand(ev, utc(t, "2024-02-01T10:30:00Z"), utc(t, "2024-02-02T00:00:00Z"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("got %d occurrences, want 1 (partial overlap counts)", len(occs))
	}
}

func TestValidateRRule(t *testing.T) {
	if err := ValidateRRule("FREQ=WEEKLY;BYDAY=MO;COUNT=3"); err != nil {
		t.Errorf("valid rule rejected: %v", err)
	}
	if err := ValidateRRule("RRULE:FREQ=DAILY;INTERVAL=2"); err != nil {
		t.Errorf("prefixed rule rejected: %v", err)
	}
	if err := ValidateRRule("FREQ=SOMETIMES"); err == nil {
		t.Errorf("malformed rule accepted")
	}
}
