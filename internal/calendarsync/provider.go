package calendarsync

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSyncTokenExpired means the stored cursor is no longer honored by
	// the provider. The reconciler reacts with a full resync, it is never
	// surfaced as a hard failure.
	ErrSyncTokenExpired = errors.New("provider sync token expired")

	// ErrProviderUnavailable is transient; callers retry with backoff.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// Change kinds decoded at the sync boundary.
const (
	ChangeCreated   = "created"
	ChangeUpdated   = "updated"
	ChangeCancelled = "cancelled"
)

// RemoteChange is one provider-side delta, already decoded into the
// vocabulary used internally. Kind is the tag; the time fields are only
// meaningful for created/updated.
type RemoteChange struct {
	Kind            string
	ProviderEventID string
	Etag            string

	Title       string
	Description string
	StartTime   time.Time // UTC
	EndTime     time.Time // UTC
	TimeZone    string
	RRule       string
	UpdatedAt   time.Time // remote last-modified, drives conflict policy

	// Detached instance of a recurring series: the provider id of the
	// master plus the instance's original (pre-move) start. Applied as
	// an override, never as a standalone event.
	RecurringEventID string
	OriginalStart    time.Time
}

// DeltaPage is one pullDelta result. NextSyncToken is only valid once
// every change in the page has been applied.
type DeltaPage struct {
	Changes       []RemoteChange
	NextSyncToken string
}

// EventSnapshot is the provider-neutral shape pushed outward.
type EventSnapshot struct {
	UID         string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	TimeZone    string
	RRule       string
	Cancelled   bool
}

// Provider is the abstract remote-calendar capability. Implementations
// translate to and from the concrete provider protocol.
type Provider interface {
	Name() string

	// PullDelta fetches remote changes since syncToken. An empty token
	// requests a full listing. Returns ErrSyncTokenExpired when the
	// token is stale and ErrProviderUnavailable on transient failure.
	PullDelta(ctx context.Context, calendarID, syncToken string) (*DeltaPage, error)

	// PushEvent upserts (or cancels) the remote twin of a local event
	// and returns the provider event id and new etag.
	PushEvent(ctx context.Context, calendarID string, mapping *ProviderEventMapping, snapshot *EventSnapshot) (providerEventID, etag string, err error)
}
