package calendarsync

import (
	"context"
	"log"
	"os"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const ProviderGoogle = "google"

// GoogleProvider adapts the Google Calendar API to the Provider
// contract. Incremental pulls use Google's syncToken protocol; a 410
// Gone from the API maps to ErrSyncTokenExpired.
type GoogleProvider struct {
	svc *calendar.Service
}

// NewGoogleProvider builds a client from a service-account credentials
// file. A missing file disables the provider instead of failing boot,
// local operations never depend on sync.
func NewGoogleProvider(ctx context.Context, credentialsPath string) (*GoogleProvider, error) {
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		log.Printf("⚠️ Google credentials not found at %s, calendar sync disabled", credentialsPath)
		return nil, err
	}

	svc, err := calendar.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, err
	}
	log.Println("✅ Google Calendar provider initialized")
	return &GoogleProvider{svc: svc}, nil
}

func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

// ===========================
// 🔄 PullDelta - incremental listing via syncToken, with pagination
func (p *GoogleProvider) PullDelta(ctx context.Context, calendarID, syncToken string) (*DeltaPage, error) {
	page := &DeltaPage{}
	pageToken := ""

	for {
		call := p.svc.Events.List(calendarID).Context(ctx).ShowDeleted(true)
		if syncToken != "" {
			call = call.SyncToken(syncToken)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			if apiErr, ok := err.(*googleapi.Error); ok {
				if apiErr.Code == 410 {
					return nil, ErrSyncTokenExpired
				}
				if apiErr.Code >= 500 || apiErr.Code == 429 {
					return nil, ErrProviderUnavailable
				}
			}
			return nil, err
		}

		for _, item := range events.Items {
			page.Changes = append(page.Changes, decodeGoogleEvent(item))
		}

		if events.NextPageToken != "" {
			pageToken = events.NextPageToken
			continue
		}
		page.NextSyncToken = events.NextSyncToken
		return page, nil
	}
}

// ===========================
// 🔄 PushEvent - upsert or cancel the remote twin
func (p *GoogleProvider) PushEvent(ctx context.Context, calendarID string, mapping *ProviderEventMapping, snapshot *EventSnapshot) (string, string, error) {
	if snapshot.Cancelled && mapping != nil && mapping.ProviderEventID != "" {
		err := p.svc.Events.Delete(calendarID, mapping.ProviderEventID).Context(ctx).Do()
		if err != nil {
			if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 404 {
				// already gone remotely, treat as applied
				return mapping.ProviderEventID, mapping.ProviderEtag, nil
			}
			return "", "", classifyPushError(err)
		}
		return mapping.ProviderEventID, "", nil
	}

	remote := encodeGoogleEvent(snapshot)
	if mapping != nil && mapping.ProviderEventID != "" {
		updated, err := p.svc.Events.Update(calendarID, mapping.ProviderEventID, remote).Context(ctx).Do()
		if err != nil {
			return "", "", classifyPushError(err)
		}
		return updated.Id, updated.Etag, nil
	}

	created, err := p.svc.Events.Insert(calendarID, remote).Context(ctx).Do()
	if err != nil {
		return "", "", classifyPushError(err)
	}
	return created.Id, created.Etag, nil
}

func classifyPushError(err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		if apiErr.Code >= 500 || apiErr.Code == 429 {
			return ErrProviderUnavailable
		}
	}
	return err
}

func decodeGoogleEvent(item *calendar.Event) RemoteChange {
	change := RemoteChange{
		ProviderEventID:  item.Id,
		Etag:             item.Etag,
		Title:            item.Summary,
		Description:      item.Description,
		RecurringEventID: item.RecurringEventId,
	}
	if item.OriginalStartTime != nil {
		change.OriginalStart, _ = parseGoogleTime(item.OriginalStartTime)
	}

	if item.Status == "cancelled" {
		change.Kind = ChangeCancelled
		return change
	}
	if item.Created == item.Updated {
		change.Kind = ChangeCreated
	} else {
		change.Kind = ChangeUpdated
	}

	change.StartTime, change.TimeZone = parseGoogleTime(item.Start)
	change.EndTime, _ = parseGoogleTime(item.End)
	if updated, err := time.Parse(time.RFC3339, item.Updated); err == nil {
		change.UpdatedAt = updated.UTC()
	}
	for _, line := range item.Recurrence {
		if len(line) > 6 && line[:6] == "RRULE:" {
			change.RRule = line[6:]
		}
	}
	return change
}

func parseGoogleTime(edt *calendar.EventDateTime) (time.Time, string) {
	if edt == nil {
		return time.Time{}, ""
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t.UTC(), edt.TimeZone
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t.UTC(), edt.TimeZone
		}
	}
	return time.Time{}, edt.TimeZone
}

func encodeGoogleEvent(snapshot *EventSnapshot) *calendar.Event {
	tz := snapshot.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	remote := &calendar.Event{
		Summary:     snapshot.Title,
		Description: snapshot.Description,
		Start: &calendar.EventDateTime{
			DateTime: snapshot.StartTime.UTC().Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: snapshot.EndTime.UTC().Format(time.RFC3339),
			TimeZone: tz,
		},
	}
	if snapshot.RRule != "" {
		remote.Recurrence = []string{"RRULE:" + snapshot.RRule}
	}
	return remote
}
