package occurrence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roomstack/room-booking-backend/internal/event"
)

func weeklyEvent() *event.Event {
	rrule := "FREQ=WEEKLY;COUNT=3"
	return &event.Event{
		ID:        7,
		UID:       "evt-weekly",
		RoomID:    2,
		Title:     "Sprint planning",
		StartTime: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC),
		TimeZone:  "UTC",
		RRule:     &rrule,
		Status:    event.StatusConfirmed,
	}
}

func TestWindowsCovering(t *testing.T) {
	spans := windowsCovering(
		time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC))

	// one month of lead-in plus Feb, Mar, Apr
	if len(spans) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(spans))
	}
	if !spans[0].start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first window starts %v, want January lead-in", spans[0].start)
	}
	for i := 1; i < len(spans); i++ {
		if !spans[i].start.Equal(spans[i-1].end) {
			t.Errorf("window %d not contiguous: %v != %v", i, spans[i].start, spans[i-1].end)
		}
	}
	last := spans[len(spans)-1]
	if last.end.Before(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("windows stop at %v, before the requested range end", last.end)
	}
}

func TestBuildRows_MapsExpandedOccurrences(t *testing.T) {
	ev := weeklyEvent()
	windowStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	rows, err := buildRows(ev, windowStart, windowEnd)
	if err != nil {
		t.Fatalf("buildRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	for i, row := range rows {
		if row.EventID != ev.ID {
			t.Errorf("row %d: EventID = %d, want %d", i, row.EventID, ev.ID)
		}
		if row.RoomID != ev.RoomID {
			t.Errorf("row %d: RoomID = %d, want %d", i, row.RoomID, ev.RoomID)
		}
		if row.RecurrenceID == nil {
			t.Fatalf("row %d: RecurrenceID is nil", i)
		}
		if !row.RecurrenceID.Equal(row.StartTime) {
			t.Errorf("row %d: RecurrenceID %v should match un-overridden start %v",
				i, row.RecurrenceID, row.StartTime)
		}
		if row.EndTime.Sub(row.StartTime) != time.Hour {
			t.Errorf("row %d: duration = %v, want 1h", i, row.EndTime.Sub(row.StartTime))
		}
		if row.IsOverride {
			t.Errorf("row %d: unexpected IsOverride", i)
		}
	}

	want := time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)
	if !rows[1].StartTime.Equal(want) {
		t.Errorf("second row start = %v, want %v", rows[1].StartTime, want)
	}
}

func TestBuildRows_CancelledOverrideExcluded(t *testing.T) {
	ev := weeklyEvent()
	cancelled := event.StatusCancelled
	ev.Overrides = []event.EventOverride{
		{
			EventID:      ev.ID,
			RecurrenceID: time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC),
			Status:       &cancelled,
		},
	}

	rows, err := buildRows(ev,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("buildRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected cancelled occurrence dropped, got %d rows", len(rows))
	}
	for _, row := range rows {
		if row.StartTime.Day() == 9 {
			t.Errorf("cancelled occurrence survived in cache rows: %v", row.StartTime)
		}
	}
}

func TestBuildRows_RescheduledOverrideReflected(t *testing.T) {
	ev := weeklyEvent()
	newStart := time.Date(2024, 1, 9, 14, 0, 0, 0, time.UTC)
	newEnd := time.Date(2024, 1, 9, 15, 30, 0, 0, time.UTC)
	ev.Overrides = []event.EventOverride{
		{
			EventID:      ev.ID,
			RecurrenceID: time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC),
			StartTime:    &newStart,
			EndTime:      &newEnd,
		},
	}

	rows, err := buildRows(ev,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("buildRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	var moved *EventOccurrence
	for i := range rows {
		if rows[i].RecurrenceID.Equal(time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)) {
			moved = &rows[i]
		}
	}
	if moved == nil {
		t.Fatal("rescheduled occurrence missing; RecurrenceID anchor should survive the move")
	}
	if !moved.StartTime.Equal(newStart) || !moved.EndTime.Equal(newEnd) {
		t.Errorf("moved occurrence = [%v, %v), want [%v, %v)",
			moved.StartTime, moved.EndTime, newStart, newEnd)
	}
	if !moved.IsOverride {
		t.Error("rescheduled occurrence should be flagged as an override")
	}
}

func TestBuildRows_OverrideMovedAcrossWindowBoundary(t *testing.T) {
	ev := weeklyEvent()
	newStart := time.Date(2024, 2, 10, 10, 0, 0, 0, time.UTC)
	newEnd := time.Date(2024, 2, 10, 11, 0, 0, 0, time.UTC)
	ev.Overrides = []event.EventOverride{
		{
			EventID:      ev.ID,
			RecurrenceID: time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC),
			StartTime:    &newStart,
			EndTime:      &newEnd,
		},
	}

	janStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	febStart := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	marStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// the moved occurrence stays with the window its anchor falls in,
	// even though its effective start is now in February
	janRows, err := buildRows(ev, janStart, febStart)
	if err != nil {
		t.Fatalf("buildRows january: %v", err)
	}
	if len(janRows) != 3 {
		t.Fatalf("january window: expected 3 rows, got %d", len(janRows))
	}
	var moved *EventOccurrence
	for i := range janRows {
		if janRows[i].RecurrenceID.Equal(time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)) {
			moved = &janRows[i]
		}
	}
	if moved == nil {
		t.Fatal("moved occurrence missing from its anchor's window")
	}
	if !moved.StartTime.Equal(newStart) {
		t.Errorf("moved occurrence start = %v, want %v", moved.StartTime, newStart)
	}

	febRows, err := buildRows(ev, febStart, marStart)
	if err != nil {
		t.Fatalf("buildRows february: %v", err)
	}
	for _, row := range febRows {
		if row.StartTime.Equal(newStart) {
			t.Errorf("february window also emitted the moved occurrence: %+v", row)
		}
	}
}

func TestBuildRows_SpanningSingleEventEmittedOnce(t *testing.T) {
	ev := &event.Event{
		ID:        11,
		UID:       "evt-overnight",
		RoomID:    2,
		Title:     "All-hands overnight",
		StartTime: time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 2, 1, 2, 0, 0, 0, time.UTC),
		TimeZone:  "UTC",
		Status:    event.StatusConfirmed,
	}

	janStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	febStart := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	marStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	janRows, err := buildRows(ev, janStart, febStart)
	if err != nil {
		t.Fatalf("buildRows january: %v", err)
	}
	if len(janRows) != 1 {
		t.Fatalf("january window: expected 1 row, got %d", len(janRows))
	}

	// the February window sees the event (it spans into it) but the row
	// belongs to January; emitting it twice would double-book the room
	// against itself
	febRows, err := buildRows(ev, febStart, marStart)
	if err != nil {
		t.Fatalf("buildRows february: %v", err)
	}
	if len(febRows) != 0 {
		t.Fatalf("february window: expected 0 rows, got %d", len(febRows))
	}
}

// ===========================
// in-memory stand-ins for the rebuild tests

type fakeStore struct {
	win            *OccurrenceWindow
	rows           []EventOccurrence
	buildingCalls  int
	replaceCalls   int
	supersedeFirst int // first N ReplaceWindow calls fail as superseded
}

func (f *fakeStore) GetWindow(eventID uint, windowStart, windowEnd time.Time) (*OccurrenceWindow, error) {
	if f.win == nil {
		return nil, nil
	}
	cp := *f.win
	return &cp, nil
}

func (f *fakeStore) MarkBuilding(eventID uint, windowStart, windowEnd time.Time) (*OccurrenceWindow, error) {
	f.buildingCalls++
	if f.win == nil {
		f.win = &OccurrenceWindow{ID: 41, EventID: eventID, WindowStart: windowStart, WindowEnd: windowEnd}
	}
	f.win.State = StateBuilding
	f.win.Generation++
	cp := *f.win
	return &cp, nil
}

func (f *fakeStore) ReplaceWindow(win *OccurrenceWindow, rows []EventOccurrence) error {
	f.replaceCalls++
	if f.replaceCalls <= f.supersedeFirst {
		f.win.State = StateStale
		return ErrWindowSuperseded
	}
	f.rows = rows
	f.win.State = StateFresh
	return nil
}

func (f *fakeStore) MarkStale(eventID uint) error {
	if f.win != nil {
		f.win.State = StateStale
	}
	return nil
}

func (f *fakeStore) ListRange(roomID uint, rangeStart, rangeEnd time.Time) ([]EventOccurrence, error) {
	return f.rows, nil
}

func (f *fakeStore) FindOverlapping(roomID uint, start, end time.Time, excludeOccurrenceID *uint) ([]EventOccurrence, error) {
	return nil, nil
}

type fakeEvents struct {
	ev      *event.Event
	reloads int
}

func (f *fakeEvents) GetEventByID(id uint) (*event.Event, error) {
	f.reloads++
	return f.ev, nil
}

func (f *fakeEvents) ListEventsByRoom(roomID uint, windowStart, windowEnd time.Time) ([]event.Event, error) {
	return []event.Event{*f.ev}, nil
}

func TestRebuild_InvalidatedMidBuildRetries(t *testing.T) {
	store := &fakeStore{supersedeFirst: 1}
	events := &fakeEvents{ev: weeklyEvent()}
	svc := NewService(store, events)

	w := span{
		start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		end:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := svc.rebuild(context.Background(), events.ev, w); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	// first swap lost to a concurrent invalidation, second one landed
	if store.replaceCalls != 2 {
		t.Errorf("ReplaceWindow called %d times, want 2", store.replaceCalls)
	}
	if events.reloads != 1 {
		t.Errorf("event reloaded %d times, want 1 (once per superseded build)", events.reloads)
	}
	if store.win.State != StateFresh {
		t.Errorf("window state = %q, want fresh", store.win.State)
	}
	if len(store.rows) != 3 {
		t.Fatalf("expected 3 cached rows, got %d", len(store.rows))
	}
	for i, row := range store.rows {
		if row.WindowID != store.win.ID {
			t.Errorf("row %d: WindowID = %d, want owning window %d", i, row.WindowID, store.win.ID)
		}
	}
}

func TestRebuild_GivesUpWhenPersistentlySuperseded(t *testing.T) {
	store := &fakeStore{supersedeFirst: maxRebuildAttempts}
	events := &fakeEvents{ev: weeklyEvent()}
	svc := NewService(store, events)

	w := span{
		start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		end:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	err := svc.rebuild(context.Background(), events.ev, w)
	if !errors.Is(err, ErrWindowBuildFailed) {
		t.Fatalf("expected ErrWindowBuildFailed, got %v", err)
	}
	if store.buildingCalls != maxRebuildAttempts {
		t.Errorf("MarkBuilding called %d times, want %d", store.buildingCalls, maxRebuildAttempts)
	}
	if store.win.State == StateFresh {
		t.Error("window must not be published fresh after an abandoned rebuild")
	}
}
