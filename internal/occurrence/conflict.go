package occurrence

import (
	"context"
	"time"
)

// ===========================
// ⚔️ Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ConflictCheck describes a candidate booking interval in a room. An
// optional ExcludeOccurrenceID lets reschedule flows skip the occurrence
// being moved.
type ConflictCheck struct {
	RoomID              uint
	Start               time.Time
	End                 time.Time
	ExcludeOccurrenceID *uint
}

// ===========================
// 🔍 FindConflicts materializes every event of the room across the
// candidate interval, then returns the cached occurrences it overlaps.
// Materializing first is the read-after-write barrier: occurrences from
// a mutation in this request cycle are already visible here.
func (s *Service) FindConflicts(ctx context.Context, check ConflictCheck) ([]EventOccurrence, error) {
	events, err := s.EventRepo.ListEventsByRoom(check.RoomID, check.Start, check.End)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if err := s.EnsureMaterialized(ctx, &events[i], check.Start, check.End); err != nil {
			return nil, err
		}
	}
	return s.Repo.FindOverlapping(check.RoomID, check.Start, check.End, check.ExcludeOccurrenceID)
}

// HasConflict is FindConflicts reduced to a yes/no answer.
func (s *Service) HasConflict(ctx context.Context, check ConflictCheck) (bool, error) {
	conflicts, err := s.FindConflicts(ctx, check)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
