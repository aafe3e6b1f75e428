package event

import (
	"testing"
)

func expandStandup(t *testing.T) []Occurrence {
	t.Helper()
	occs, err := Expand(standupEvent(), utc(t, "2024-01-01T00:00:00Z"), utc(t, "2024-01-31T00:00:00Z"))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	return occs
}

func TestResolve_CancelledOverrideRemovesOccurrence(t *testing.T) {
	raw := expandStandup(t)

	cancelled := StatusCancelled
	overrides := []EventOverride{
		{ID: 1, EventID: 1, RecurrenceID: utc(t, "2024-01-08T09:00:00Z"), Status: &cancelled},
	}

	resolved := Resolve(raw, overrides)
	if len(resolved) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(resolved))
	}
	want := []string{"2024-01-01T09:00:00Z", "2024-01-15T09:00:00Z"}
	for i, w := range want {
		if !resolved[i].Start.Equal(utc(t, w)) {
			t.Errorf("occurrence %d start = %s, want %s", i, resolved[i].Start, w)
		}
	}
}

func TestResolve_PartialFieldReplacement(t *testing.T) {
	raw := expandStandup(t)

	newStart := utc(t, "2024-01-08T10:00:00Z")
	newEnd := utc(t, "2024-01-08T10:30:00Z")
	overrides := []EventOverride{
		{ID: 2, EventID: 1, RecurrenceID: utc(t, "2024-01-08T09:00:00Z"), StartTime: &newStart, EndTime: &newEnd},
	}

	resolved := Resolve(raw, overrides)
	if len(resolved) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(resolved))
	}

	var moved *Occurrence
	for i := range resolved {
		if resolved[i].RecurrenceID.Equal(utc(t, "2024-01-08T09:00:00Z")) {
			moved = &resolved[i]
		}
	}
	if moved == nil {
		t.Fatalf("moved occurrence missing")
	}
	if !moved.Start.Equal(newStart) || !moved.End.Equal(newEnd) {
		t.Errorf("override times not applied: %s..%s", moved.Start, moved.End)
	}
	if moved.Title != "Standup" {
		t.Errorf("title changed without an override: %q", moved.Title)
	}
	if !moved.IsOverride {
		t.Errorf("changed occurrence not tagged as override")
	}
	// RecurrenceID stays the pre-override anchor.
	if !moved.RecurrenceID.Equal(utc(t, "2024-01-08T09:00:00Z")) {
		t.Errorf("recurrence id changed: %s", moved.RecurrenceID)
	}

	for i := range resolved {
		if !resolved[i].RecurrenceID.Equal(moved.RecurrenceID) && resolved[i].IsOverride {
			t.Errorf("untouched occurrence tagged as override")
		}
	}
}

func TestResolve_UnmatchedOverrideIsInert(t *testing.T) {
	raw := expandStandup(t)

	title := "Phantom"
	overrides := []EventOverride{
		{ID: 3, EventID: 1, RecurrenceID: utc(t, "2024-06-01T09:00:00Z"), Title: &title},
	}

	resolved := Resolve(raw, overrides)
	if len(resolved) != len(raw) {
		t.Fatalf("got %d occurrences, want %d (no phantom instances)", len(resolved), len(raw))
	}
	for _, occ := range resolved {
		if occ.Title == "Phantom" {
			t.Errorf("inert override leaked into output")
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	raw := expandStandup(t)

	newStart := utc(t, "2024-01-08T10:00:00Z")
	cancelled := StatusCancelled
	overrides := []EventOverride{
		{ID: 4, EventID: 1, RecurrenceID: utc(t, "2024-01-08T09:00:00Z"), StartTime: &newStart},
		{ID: 5, EventID: 1, RecurrenceID: utc(t, "2024-01-15T09:00:00Z"), Status: &cancelled},
	}

	first := Resolve(raw, overrides)
	second := Resolve(raw, overrides)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Start.Equal(second[i].Start) ||
			!first[i].End.Equal(second[i].End) ||
			first[i].Title != second[i].Title ||
			first[i].Status != second[i].Status ||
			first[i].IsOverride != second[i].IsOverride {
			t.Errorf("occurrence %d differs between resolutions", i)
		}
	}
}

func TestResolve_NoopOverrideNotTagged(t *testing.T) {
	raw := expandStandup(t)

	// Override sets the same instant the generator produced.
	sameStart := utc(t, "2024-01-08T09:00:00Z")
	overrides := []EventOverride{
		{ID: 6, EventID: 1, RecurrenceID: sameStart, StartTime: &sameStart},
	}

	resolved := Resolve(raw, overrides)
	for _, occ := range resolved {
		if occ.IsOverride {
			t.Errorf("occurrence with unchanged fields tagged as override")
		}
	}
}
