package occurrence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/roomstack/room-booking-backend/internal/event"
	"github.com/roomstack/room-booking-backend/utils"
)

var ErrWindowBuildFailed = errors.New("occurrence window build failed")

// buildLockTTL bounds how long a replica holds the cross-replica build
// lock for one (event, window). Long enough for a full rebuild, short
// enough that a crashed holder doesn't block rebuilds forever.
const buildLockTTL = 30 * time.Second

// maxRebuildAttempts bounds how many times one rebuild restarts after
// being superseded by a concurrent invalidation.
const maxRebuildAttempts = 5

// Store is the persistence surface the materializer drives.
type Store interface {
	GetWindow(eventID uint, windowStart, windowEnd time.Time) (*OccurrenceWindow, error)
	MarkBuilding(eventID uint, windowStart, windowEnd time.Time) (*OccurrenceWindow, error)
	ReplaceWindow(win *OccurrenceWindow, rows []EventOccurrence) error
	MarkStale(eventID uint) error
	ListRange(roomID uint, rangeStart, rangeEnd time.Time) ([]EventOccurrence, error)
	FindOverlapping(roomID uint, start, end time.Time, excludeOccurrenceID *uint) ([]EventOccurrence, error)
}

// EventSource supplies the event masters the cache is derived from.
type EventSource interface {
	GetEventByID(id uint) (*event.Event, error)
	ListEventsByRoom(roomID uint, windowStart, windowEnd time.Time) ([]event.Event, error)
}

type Service struct {
	Repo      Store
	EventRepo EventSource

	// per-event build mutexes, so concurrent readers of the same stale
	// window on this replica collapse into one rebuild
	buildLocks sync.Map
}

func NewService(repo Store, eventRepo EventSource) *Service {
	return &Service{Repo: repo, EventRepo: eventRepo}
}

func (s *Service) eventLock(eventID uint) *sync.Mutex {
	mu, _ := s.buildLocks.LoadOrStore(eventID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// span is one canonical cache window, month-aligned in UTC. Row
// ownership runs through window_id, so a rebuild replaces exactly the
// rows its own window emitted and nothing a neighbor owns.
type span struct {
	start time.Time
	end   time.Time
}

// windowsCovering returns the canonical windows that must be fresh for
// [rangeStart, rangeEnd) to be answerable, including one month of
// lead-in for occurrences that start before the range and span into it.
func windowsCovering(rangeStart, rangeEnd time.Time) []span {
	cur := time.Date(rangeStart.Year(), rangeStart.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	var spans []span
	for cur.Before(rangeEnd) {
		next := cur.AddDate(0, 1, 0)
		spans = append(spans, span{start: cur, end: next})
		cur = next
	}
	return spans
}

// ===========================
// 🎯 EnsureMaterialized guarantees every cache window covering the range
// is fresh for the event before returning. Readers that find fresh
// windows return immediately; the rest rebuild from the event
// definition.
func (s *Service) EnsureMaterialized(ctx context.Context, ev *event.Event, rangeStart, rangeEnd time.Time) error {
	for _, w := range windowsCovering(rangeStart, rangeEnd) {
		if err := s.ensureWindow(ctx, ev, w); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ensureWindow(ctx context.Context, ev *event.Event, w span) error {
	win, err := s.Repo.GetWindow(ev.ID, w.start, w.end)
	if err != nil {
		return err
	}
	if win != nil && win.State == StateFresh {
		return nil
	}

	mu := s.eventLock(ev.ID)
	mu.Lock()
	defer mu.Unlock()

	// double-check: another goroutine may have rebuilt while we waited
	win, err = s.Repo.GetWindow(ev.ID, w.start, w.end)
	if err != nil {
		return err
	}
	if win != nil && win.State == StateFresh {
		return nil
	}

	return s.rebuild(ctx, ev, w)
}

func (s *Service) rebuild(ctx context.Context, ev *event.Event, w span) error {
	// cross-replica guard; a degraded Redis must not block rebuilds
	lockKey := lockKeyFor(ev.ID, w.start)
	if utils.RedisClient != nil {
		acquired, err := utils.AcquireBuildLock(ctx, lockKey, buildLockTTL)
		if err != nil {
			log.Printf("⚠️ build lock for event %d unavailable, rebuilding without it: %v", ev.ID, err)
		} else if !acquired {
			// another replica is building; wait for it to land
			return s.awaitFresh(ctx, ev.ID, w)
		} else {
			defer utils.ReleaseBuildLock(context.Background(), lockKey)
		}
	}

	for attempt := 0; attempt < maxRebuildAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		win, err := s.Repo.MarkBuilding(ev.ID, w.start, w.end)
		if err != nil {
			return err
		}

		rows, err := buildRows(ev, w.start, w.end)
		if err != nil {
			return err
		}
		for i := range rows {
			rows[i].WindowID = win.ID
		}

		err = s.Repo.ReplaceWindow(win, rows)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrWindowSuperseded) {
			// invalidated mid-build: the event changed under us, so the
			// built rows are already outdated. Reload and go again.
			ev, err = s.EventRepo.GetEventByID(ev.ID)
			if err != nil {
				return err
			}
			continue
		}

		log.Printf("❌ window rebuild failed for event %d [%s, %s): %v",
			ev.ID, w.start.Format(time.RFC3339), w.end.Format(time.RFC3339), err)
		return ErrWindowBuildFailed
	}
	return ErrWindowBuildFailed
}

// awaitFresh polls for a remotely-built window to become fresh, falling
// back to a local rebuild if the remote holder dies.
func (s *Service) awaitFresh(ctx context.Context, eventID uint, w span) error {
	deadline := time.Now().Add(buildLockTTL)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
		win, err := s.Repo.GetWindow(eventID, w.start, w.end)
		if err != nil {
			return err
		}
		if win != nil && win.State == StateFresh {
			return nil
		}
	}
	ev, err := s.EventRepo.GetEventByID(eventID)
	if err != nil {
		return err
	}
	return s.rebuild(ctx, ev, w)
}

func lockKeyFor(eventID uint, windowStart time.Time) string {
	return fmt.Sprintf("occ:%d:%s", eventID, windowStart.UTC().Format("200601"))
}

// ===========================
// 🛠 buildRows derives the cache rows for one window: expand the
// recurrence, resolve overrides, drop cancelled occurrences.
//
// A row belongs to the window containing its recurrence anchor, never to
// the window its post-override start happens to fall in. That keeps
// ownership stable under overrides that move an occurrence across the
// window boundary, and emits a range-spanning single event in exactly
// one window rather than every window it touches.
func buildRows(ev *event.Event, windowStart, windowEnd time.Time) ([]EventOccurrence, error) {
	raw, err := event.Expand(ev, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	resolved := event.Resolve(raw, ev.Overrides)

	rows := make([]EventOccurrence, 0, len(resolved))
	for _, occ := range resolved {
		if occ.Status == event.StatusCancelled {
			continue
		}
		if occ.RecurrenceID.Before(windowStart) || !occ.RecurrenceID.Before(windowEnd) {
			continue
		}
		rid := occ.RecurrenceID
		rows = append(rows, EventOccurrence{
			EventID:      occ.EventID,
			RoomID:       ev.RoomID,
			RecurrenceID: &rid,
			StartTime:    occ.Start,
			EndTime:      occ.End,
			Title:        occ.Title,
			Status:       occ.Status,
			IsOverride:   occ.IsOverride,
		})
	}
	return rows, nil
}

// ===========================
// ⚠️ InvalidateEvent marks every cached window of the event stale. It is
// the write-path hook: the next read against any of those windows
// triggers a rebuild, so readers after a mutation see its effect.
func (s *Service) InvalidateEvent(ctx context.Context, eventID uint) error {
	return s.Repo.MarkStale(eventID)
}

// ===========================
// 📄 ListForRoom returns fresh materialized occurrences for every event
// of a room intersecting [rangeStart, rangeEnd).
func (s *Service) ListForRoom(ctx context.Context, roomID uint, rangeStart, rangeEnd time.Time) ([]EventOccurrence, error) {
	events, err := s.EventRepo.ListEventsByRoom(roomID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if err := s.EnsureMaterialized(ctx, &events[i], rangeStart, rangeEnd); err != nil {
			return nil, err
		}
	}
	return s.Repo.ListRange(roomID, rangeStart, rangeEnd)
}
