package calendarsync

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/roomstack/room-booking-backend/internal/event"
	"github.com/roomstack/room-booking-backend/utils"
)

const (
	pusherGroupID   = "calendar-sync-pusher"
	maxPushAttempts = 5
	pushTimeout     = 15 * time.Second
)

// PushMessage is the queue payload for one local mutation.
type PushMessage struct {
	EventUID string `json:"event_uid"`
	Action   string `json:"action"`
}

// Queue publishes local mutations to the push topic. It satisfies the
// event service's sync hook without the event package knowing Kafka
// exists.
type Queue struct{}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) EnqueuePush(ctx context.Context, eventUID string, action string) error {
	payload, err := json.Marshal(PushMessage{EventUID: eventUID, Action: action})
	if err != nil {
		return err
	}
	return utils.PublishSyncMessage(ctx, eventUID, payload)
}

// ===========================
// 🔄 Pusher consumes the push topic and mirrors local mutations to the
// provider. Messages are keyed by event UID, so changes to one event
// arrive in order.
type Pusher struct {
	Repo       *Repository
	EventRepo  *event.Repository
	Provider   Provider
	CalendarID string
}

func NewPusher(repo *Repository, eventRepo *event.Repository, provider Provider, calendarID string) *Pusher {
	return &Pusher{
		Repo:       repo,
		EventRepo:  eventRepo,
		Provider:   provider,
		CalendarID: calendarID,
	}
}

// Run blocks consuming push messages until ctx is cancelled.
func (p *Pusher) Run(ctx context.Context) {
	if p.Provider == nil {
		log.Println("⚠️ no provider configured, push consumer not started")
		return
	}

	reader := utils.NewSyncReader(pusherGroupID)
	defer reader.Close()
	log.Println("✅ Calendar push consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("⚠️ push consumer fetch failed: %v", err)
			continue
		}

		var pm PushMessage
		if err := json.Unmarshal(msg.Value, &pm); err != nil {
			log.Printf("⚠️ dropping malformed push message: %v", err)
			reader.CommitMessages(ctx, msg)
			continue
		}

		if err := p.pushWithRetry(ctx, &pm); err != nil {
			// local store stays authoritative; divergence is picked up
			// by the next reconciliation run
			log.Printf("❌ push for event %s gave up after %d attempts: %v", pm.EventUID, maxPushAttempts, err)
		}
		reader.CommitMessages(ctx, msg)
	}
}

func (p *Pusher) pushWithRetry(ctx context.Context, pm *PushMessage) error {
	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxPushAttempts; attempt++ {
		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		lastErr = p.pushOnce(pushCtx, pm)
		cancel()

		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, ErrProviderUnavailable) {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}

func (p *Pusher) pushOnce(ctx context.Context, pm *PushMessage) error {
	ev, err := p.EventRepo.GetEventByUID(pm.EventUID)
	if err != nil {
		return err
	}

	mapping, err := p.Repo.GetMappingByEventID(ev.ID, p.Provider.Name())
	if err != nil {
		return err
	}

	snapshot := &EventSnapshot{
		UID:         ev.UID,
		Title:       ev.Title,
		Description: ev.Description,
		StartTime:   ev.StartTime,
		EndTime:     ev.EndTime,
		TimeZone:    ev.TimeZone,
		Cancelled:   ev.Status == event.StatusCancelled || pm.Action == "cancelled",
	}
	if ev.RRule != nil {
		snapshot.RRule = *ev.RRule
	}

	providerEventID, etag, err := p.Provider.PushEvent(ctx, p.CalendarID, mapping, snapshot)
	if err != nil {
		return err
	}

	if mapping == nil {
		mapping = &ProviderEventMapping{
			EventID:  ev.ID,
			Provider: p.Provider.Name(),
		}
	}
	mapping.ProviderEventID = providerEventID
	mapping.ProviderEtag = etag
	return p.Repo.SaveMapping(mapping)
}
