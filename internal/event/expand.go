package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrInvalidRecurrenceRule is returned when an rrule string does not parse.
// Rules are rejected at event creation, never during expansion.
var ErrInvalidRecurrenceRule = errors.New("invalid recurrence rule")

const maxOccurrencesPerWindow = 5000

// ValidateRRule checks an rrule string at creation time
func ValidateRRule(raw string) error {
	if _, err := rrule.StrToRRule(normalizeRRule(raw)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecurrenceRule, err)
	}
	return nil
}

// Expand turns an event master into its concrete occurrences inside
// [windowStart, windowEnd). It is a pure function of its inputs: same
// event and window always produce the same output.
//
// Recurrence stepping runs on wall-clock time in the event's IANA zone and
// each instant is converted to UTC individually, so a daily 09:00 rule
// stays 09:00 local across a DST transition.
func Expand(ev *Event, windowStart, windowEnd time.Time) ([]Occurrence, error) {
	if !windowStart.Before(windowEnd) {
		return nil, errors.New("window start must be before window end")
	}

	duration := ev.EndTime.Sub(ev.StartTime)
	if duration <= 0 {
		return nil, errors.New("event end must be after start")
	}

	// Single non-recurring event: emitted once iff it intersects the window.
	if ev.RRule == nil || *ev.RRule == "" {
		if ev.StartTime.Before(windowEnd) && ev.EndTime.After(windowStart) {
			return []Occurrence{{
				EventID:      ev.ID,
				RecurrenceID: ev.StartTime.UTC(),
				Start:        ev.StartTime.UTC(),
				End:          ev.EndTime.UTC(),
				Title:        ev.Title,
				Status:       ev.Status,
			}}, nil
		}
		return []Occurrence{}, nil
	}

	loc, err := time.LoadLocation(ev.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid event time zone %q: %w", ev.TimeZone, err)
	}

	r, err := rrule.StrToRRule(normalizeRRule(*ev.RRule))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrenceRule, err)
	}
	r.DTStart(ev.StartTime.In(loc))

	var set rrule.Set
	set.RRule(r)

	for _, ex := range ev.Exdates {
		set.ExDate(ex.In(loc))
	}
	for _, rd := range ev.Rdates {
		set.RDate(rd.In(loc))
	}

	// Between is inclusive on both ends; the window is half-open, so
	// instants equal to windowEnd are filtered below.
	candidates := set.Between(windowStart.In(loc), windowEnd.In(loc), true)
	if len(candidates) > maxOccurrencesPerWindow {
		candidates = candidates[:maxOccurrencesPerWindow]
	}

	out := make([]Occurrence, 0, len(candidates))
	seen := make(map[int64]bool, len(candidates))
	for _, start := range candidates {
		utcStart := start.UTC()
		if utcStart.Before(windowStart) || !utcStart.Before(windowEnd) {
			continue
		}
		// An rdate coinciding with a generated instant collapses to one.
		if seen[utcStart.UnixNano()] {
			continue
		}
		seen[utcStart.UnixNano()] = true

		out = append(out, Occurrence{
			EventID:      ev.ID,
			RecurrenceID: utcStart,
			Start:        utcStart,
			End:          utcStart.Add(duration),
			Title:        ev.Title,
			Status:       ev.Status,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// normalizeRRule accepts both bare "FREQ=..." and prefixed "RRULE:FREQ=..."
func normalizeRRule(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "RRULE:")
}
