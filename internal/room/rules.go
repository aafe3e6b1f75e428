package room

import (
	"errors"
	"fmt"
	"time"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
	time.Sunday:    "sunday",
}

var validDayNames = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// ValidateRule rejects malformed rules at creation time
func ValidateRule(req RoomRuleRequest) error {
	startMin, err := parseWallClock(req.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start_time %q: %w", req.StartTime, err)
	}
	endMin, err := parseWallClock(req.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end_time %q: %w", req.EndTime, err)
	}
	if startMin >= endMin {
		return errors.New("start_time must be before end_time")
	}
	for _, d := range req.Days {
		if !validDayNames[d] {
			return fmt.Errorf("unknown weekday %q", d)
		}
	}
	return nil
}

// IsBookable checks a candidate interval against the room's availability
// rules. The interval is converted to the room's local time and split into
// per-calendar-day segments; every segment must fit entirely inside at
// least one rule's day set and wall-clock window. A false result is a
// normal business outcome.
func IsBookable(room *Room, rules []RoomRule, start, end time.Time) (bool, error) {
	if !start.Before(end) {
		return false, errors.New("start must be before end")
	}
	if len(rules) == 0 {
		return false, nil
	}

	loc, err := loadRoomLocation(room)
	if err != nil {
		return false, err
	}

	localStart := start.In(loc)
	localEnd := end.In(loc)

	for cur := localStart; cur.Before(localEnd); {
		dayEnd := nextMidnight(cur)
		segEnd := localEnd
		if dayEnd.Before(segEnd) {
			segEnd = dayEnd
		}

		if !segmentAllowed(rules, cur, segEnd, dayEnd) {
			return false, nil
		}

		cur = dayEnd
	}

	return true, nil
}

// segmentAllowed checks one same-day segment against every rule.
// segEnd is either within the day or exactly the day boundary.
// Comparison runs at second precision: rule times are whole minutes, but
// candidate intervals are not, and a 17:00-18:00:30 booking must not
// slip past an 18:00 close.
func segmentAllowed(rules []RoomRule, segStart, segEnd, dayEnd time.Time) bool {
	day := weekdayNames[segStart.Weekday()]

	startSec := secondsIntoDay(segStart)
	var endSec int
	if segEnd.Equal(dayEnd) {
		endSec = 24 * 3600
	} else {
		endSec = secondsIntoDay(segEnd)
		if segEnd.Nanosecond() > 0 {
			endSec++
		}
	}

	for _, rule := range rules {
		ruleStart, err := parseWallClock(rule.StartTime)
		if err != nil {
			continue
		}
		ruleEnd, err := parseWallClock(rule.EndTime)
		if err != nil {
			continue
		}

		if !containsDay(rule.Days, day) {
			continue
		}
		// Window is half-open [start, end): a segment ending exactly at
		// the rule's end still fits.
		if startSec >= ruleStart*60 && endSec <= ruleEnd*60 {
			return true
		}
	}
	return false
}

func containsDay(days []string, day string) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func loadRoomLocation(room *Room) (*time.Location, error) {
	tz := "UTC"
	if room != nil && room.TimeZone != "" {
		tz = room.TimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid room time zone %q: %w", tz, err)
	}
	return loc, nil
}

func secondsIntoDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func nextMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

// parseWallClock converts "HH:MM" to minutes since midnight
func parseWallClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
