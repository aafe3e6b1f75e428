package reports

import (
	"errors"
	"time"
)

// ===========================
// 📄 Reporting period resolution

// GetDateRange resolves a booking-report period into concrete bounds.
// Presets are anchored on the server's current day; a custom period takes
// "2006-01-02" dates and covers both end days in full, so a one-day
// custom report still spans 00:00:00 to 23:59:59.
func GetDateRange(dateRange, startStr, endStr string) (time.Time, time.Time, error) {
	now := time.Now()

	switch dateRange {
	case DateRangeDaily:
		return dayStart(now), dayEnd(now), nil
	case DateRangeWeekly:
		// rolling 7 days ending today
		return dayStart(now.AddDate(0, 0, -6)), dayEnd(now), nil
	case DateRangeMonthly:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first, dayEnd(first.AddDate(0, 1, -1)), nil
	case DateRangeCustom:
		if startStr == "" || endStr == "" {
			return time.Time{}, time.Time{}, errors.New("start_date and end_date required for custom range")
		}
		start, err := time.ParseInLocation("2006-01-02", startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := time.ParseInLocation("2006-01-02", endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if start.After(end) {
			return time.Time{}, time.Time{}, errors.New("start_date must be before end_date")
		}
		return start, dayEnd(end), nil
	default:
		return GetDateRange(DateRangeWeekly, "", "")
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
