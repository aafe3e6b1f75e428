package event

import (
	"log"
	"sort"
)

// Resolve applies per-occurrence overrides on top of raw expanded
// occurrences. A cancelled override removes the occurrence entirely; any
// other override replaces only the fields it sets. Overrides whose
// recurrence id matches nothing in the raw set are inert: they are never
// invented as phantom occurrences. Resolving twice over the same raw set
// yields the same result.
func Resolve(raw []Occurrence, overrides []EventOverride) []Occurrence {
	if len(overrides) == 0 {
		out := make([]Occurrence, len(raw))
		copy(out, raw)
		return out
	}

	byRecurrence := make(map[int64]*EventOverride, len(overrides))
	matched := make(map[int64]bool, len(overrides))
	for i := range overrides {
		byRecurrence[overrides[i].RecurrenceID.UTC().UnixNano()] = &overrides[i]
	}

	out := make([]Occurrence, 0, len(raw))
	for _, occ := range raw {
		key := occ.RecurrenceID.UTC().UnixNano()
		ov, ok := byRecurrence[key]
		if !ok {
			out = append(out, occ)
			continue
		}
		matched[key] = true

		if ov.Status != nil && *ov.Status == StatusCancelled {
			continue
		}

		patched := occ
		if ov.StartTime != nil {
			patched.Start = ov.StartTime.UTC()
		}
		if ov.EndTime != nil {
			patched.End = ov.EndTime.UTC()
		}
		if ov.Title != nil {
			patched.Title = *ov.Title
		}
		if ov.Status != nil {
			patched.Status = *ov.Status
		}
		patched.IsOverride = !patched.Start.Equal(occ.Start) ||
			!patched.End.Equal(occ.End) ||
			patched.Title != occ.Title ||
			patched.Status != occ.Status
		out = append(out, patched)
	}

	for key, ov := range byRecurrence {
		if !matched[key] {
			// The master rule may have changed after the override was
			// created; the override stays inert.
			log.Printf("⚠️ override %d targets recurrence %s no longer generated by event %d",
				ov.ID, ov.RecurrenceID.UTC().Format("2006-01-02T15:04:05Z"), ov.EventID)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
