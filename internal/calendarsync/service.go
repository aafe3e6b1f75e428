package calendarsync

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomstack/room-booking-backend/internal/event"
)

const (
	maxPullAttempts = 3
	pullTimeout     = 30 * time.Second
	initialBackoff  = 2 * time.Second
)

// Service reconciles one (calendar, provider) pair with the local
// store. It runs as a periodic job and is safe to re-run: delta
// application is idempotent per (provider event id, etag).
type Service struct {
	Repo       *Repository
	Provider   Provider
	CalendarID string
	RoomID     uint // room that externally-synced events land in

	Invalidator event.Invalidator

	// overridable for tests
	backoffBase time.Duration
}

func NewService(repo *Repository, provider Provider, calendarID string, roomID uint, invalidator event.Invalidator) *Service {
	return &Service{
		Repo:        repo,
		Provider:    provider,
		CalendarID:  calendarID,
		RoomID:      roomID,
		Invalidator: invalidator,
		backoffBase: initialBackoff,
	}
}

// ===========================
// 🔄 Reconcile pulls the remote delta and applies it change by change.
// The sync token only advances after every change in the page has been
// applied; a failed run leaves it untouched so the next run resumes
// from the same point.
func (s *Service) Reconcile(ctx context.Context) error {
	if s.Provider == nil {
		return nil
	}

	state, err := s.Repo.GetOrCreateSyncState(s.CalendarID, s.Provider.Name())
	if err != nil {
		return err
	}

	page, err := s.pullWithRetry(ctx, state.SyncToken)
	if err != nil {
		s.Repo.RecordSyncError(state, err)
		return err
	}

	for i := range page.Changes {
		// cooperative cancellation between per-event units of work
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.applyChange(ctx, &page.Changes[i]); err != nil {
			log.Printf("❌ sync apply failed for remote event %s: %v", page.Changes[i].ProviderEventID, err)
			s.Repo.RecordSyncError(state, err)
			return err
		}
	}

	return s.Repo.AdvanceSyncToken(state, page.NextSyncToken)
}

// pullWithRetry handles the two recoverable pull outcomes: a stale
// token triggers one full resync, a transient outage is retried with
// doubling backoff.
func (s *Service) pullWithRetry(ctx context.Context, syncToken string) (*DeltaPage, error) {
	backoff := s.backoffBase
	if backoff <= 0 {
		backoff = initialBackoff
	}
	token := syncToken

	for attempt := 1; ; attempt++ {
		pullCtx, cancel := context.WithTimeout(ctx, pullTimeout)
		page, err := s.Provider.PullDelta(pullCtx, s.CalendarID, token)
		cancel()

		if err == nil {
			return page, nil
		}
		if errors.Is(err, ErrSyncTokenExpired) && token != "" {
			log.Printf("🔄 sync token expired for calendar %s, falling back to full resync", s.CalendarID)
			token = ""
			continue
		}
		if !errors.Is(err, ErrProviderUnavailable) || attempt >= maxPullAttempts {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// applyChange maps one remote delta onto the local store inside a
// transaction, so a partially applied change for one event never
// survives. Local-wins conflicts leave local fields alone but still
// record the seen etag.
func (s *Service) applyChange(ctx context.Context, change *RemoteChange) error {
	if change.RecurringEventID != "" {
		return s.applyDetachedInstance(ctx, change)
	}

	mapping, err := s.Repo.GetMappingByProviderEventID(s.Provider.Name(), change.ProviderEventID)
	if err != nil {
		return err
	}
	if mapping != nil && mapping.ProviderEtag == change.Etag {
		return nil // already applied by a previous run
	}

	var touchedEventID uint
	err = s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		switch change.Kind {
		case ChangeCancelled:
			if mapping == nil {
				return nil // never seen locally, nothing to cancel
			}
			var ev event.Event
			if err := tx.First(&ev, mapping.EventID).Error; err != nil {
				return err
			}
			ev.Status = event.StatusCancelled
			if err := tx.Save(&ev).Error; err != nil {
				return err
			}
			mapping.ProviderEtag = change.Etag
			touchedEventID = ev.ID
			return tx.Save(mapping).Error

		case ChangeCreated, ChangeUpdated:
			if mapping == nil {
				ev := s.remoteToLocal(change)
				if err := tx.Create(ev).Error; err != nil {
					return err
				}
				touchedEventID = ev.ID
				return tx.Create(&ProviderEventMapping{
					EventID:         ev.ID,
					Provider:        s.Provider.Name(),
					ProviderEventID: change.ProviderEventID,
					ProviderEtag:    change.Etag,
				}).Error
			}

			var ev event.Event
			if err := tx.First(&ev, mapping.EventID).Error; err != nil {
				return err
			}
			if !remoteWins(ev.UpdatedAt, change.UpdatedAt) {
				mapping.ProviderEtag = change.Etag
				return tx.Save(mapping).Error
			}

			ev.Title = change.Title
			ev.Description = change.Description
			ev.StartTime = change.StartTime
			ev.EndTime = change.EndTime
			if change.TimeZone != "" {
				ev.TimeZone = change.TimeZone
			}
			if change.RRule != "" {
				rrule := change.RRule
				ev.RRule = &rrule
			} else {
				ev.RRule = nil
			}
			if err := tx.Save(&ev).Error; err != nil {
				return err
			}
			mapping.ProviderEtag = change.Etag
			touchedEventID = ev.ID
			return tx.Save(mapping).Error

		default:
			log.Printf("⚠️ unknown remote change kind %q for %s, skipping", change.Kind, change.ProviderEventID)
			return nil
		}
	})
	if err != nil {
		return err
	}

	if touchedEventID != 0 && s.Invalidator != nil {
		if err := s.Invalidator.InvalidateEvent(ctx, touchedEventID); err != nil {
			log.Printf("⚠️ window invalidation failed for event %d: %v", touchedEventID, err)
		}
	}
	return nil
}

// applyDetachedInstance maps a remotely modified or cancelled instance
// of a recurring series onto an override of the local master. Override
// upserts are idempotent per (event, recurrenceId), so at-least-once
// redelivery is harmless.
func (s *Service) applyDetachedInstance(ctx context.Context, change *RemoteChange) error {
	master, err := s.Repo.GetMappingByProviderEventID(s.Provider.Name(), change.RecurringEventID)
	if err != nil {
		return err
	}
	if master == nil {
		log.Printf("⚠️ detached instance %s references unknown master %s, skipping",
			change.ProviderEventID, change.RecurringEventID)
		return nil
	}
	if change.OriginalStart.IsZero() {
		log.Printf("⚠️ detached instance %s carries no original start, skipping", change.ProviderEventID)
		return nil
	}

	ov := event.EventOverride{
		EventID:      master.EventID,
		RecurrenceID: change.OriginalStart.UTC(),
	}
	switch change.Kind {
	case ChangeCancelled:
		cancelled := event.StatusCancelled
		ov.Status = &cancelled
	case ChangeCreated, ChangeUpdated:
		start := change.StartTime
		end := change.EndTime
		ov.StartTime = &start
		ov.EndTime = &end
		if change.Title != "" {
			title := change.Title
			ov.Title = &title
		}
	default:
		return nil
	}

	applied := false
	err = s.Repo.DB.Transaction(func(tx *gorm.DB) error {
		var existing event.EventOverride
		findErr := tx.Where("event_id = ? AND recurrence_id = ?", ov.EventID, ov.RecurrenceID).
			First(&existing).Error
		if findErr == gorm.ErrRecordNotFound {
			applied = true
			return tx.Create(&ov).Error
		}
		if findErr != nil {
			return findErr
		}
		// same conflict policy as master events: a locally newer override
		// survives a redelivered or older remote instance change
		if !remoteWins(existing.UpdatedAt, change.UpdatedAt) {
			return nil
		}
		existing.StartTime = ov.StartTime
		existing.EndTime = ov.EndTime
		existing.Title = ov.Title
		existing.Status = ov.Status
		applied = true
		return tx.Save(&existing).Error
	})
	if err != nil {
		return err
	}

	if applied && s.Invalidator != nil {
		if err := s.Invalidator.InvalidateEvent(ctx, master.EventID); err != nil {
			log.Printf("⚠️ window invalidation failed for event %d: %v", master.EventID, err)
		}
	}
	return nil
}

// remoteWins decides a sync conflict by last writer: the remote change
// applies unless the local copy is strictly newer. An exact tie goes to
// the remote copy.
func remoteWins(localUpdatedAt, remoteUpdatedAt time.Time) bool {
	return !localUpdatedAt.After(remoteUpdatedAt)
}

func (s *Service) remoteToLocal(change *RemoteChange) *event.Event {
	tz := change.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	ev := &event.Event{
		UID:         uuid.NewString(),
		RoomID:      s.RoomID,
		Title:       change.Title,
		Description: change.Description,
		StartTime:   change.StartTime,
		EndTime:     change.EndTime,
		TimeZone:    tz,
		Status:      event.StatusConfirmed,
	}
	if change.RRule != "" {
		rrule := change.RRule
		ev.RRule = &rrule
	}
	return ev
}
