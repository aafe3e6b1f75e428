package occurrence

import (
	"time"
)

// Cache window states. "missing" is implicit (no row).
const (
	StateBuilding = "building"
	StateFresh    = "fresh"
	StateStale    = "stale"
)

// EventOccurrence is one materialized instance: the denormalized,
// queryable projection of (Event, [EventOverride]) for a window. Rebuilt,
// never hand-edited; always derivable from the source tables.
type EventOccurrence struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	EventID uint `gorm:"not null;index" json:"event_id"`
	RoomID  uint `gorm:"not null;index:idx_occurrence_room_time" json:"room_id"`

	// WindowID is the cache window that emitted this row. Rebuilds delete
	// by it, so a row whose post-override start moved outside its window's
	// time range is still reclaimed by that window's next rebuild.
	WindowID uint `gorm:"not null;index" json:"-"`

	// RecurrenceID is the pre-override anchor: the original generated start
	// instant, equal to the event's own start for a non-recurring event.
	RecurrenceID *time.Time `json:"recurrence_id,omitempty"`

	StartTime  time.Time `gorm:"not null;index:idx_occurrence_room_time" json:"start_time"` // effective, post-override
	EndTime    time.Time `gorm:"not null" json:"end_time"`
	Title      string    `gorm:"type:varchar(255)" json:"title"`
	Status     string    `gorm:"type:varchar(20);index" json:"status"`
	IsOverride bool      `gorm:"default:false" json:"is_override"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EventOccurrence) TableName() string {
	return "event_occurrences"
}

// OccurrenceWindow tracks cache freshness per (event, window). Generation
// increments on every rebuild so readers can detect replacement.
type OccurrenceWindow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     uint      `gorm:"not null;uniqueIndex:idx_window_event_range" json:"event_id"`
	WindowStart time.Time `gorm:"not null;uniqueIndex:idx_window_event_range" json:"window_start"`
	WindowEnd   time.Time `gorm:"not null;uniqueIndex:idx_window_event_range" json:"window_end"`
	State       string    `gorm:"type:varchar(20);not null" json:"state"`
	Generation  uint      `gorm:"default:0" json:"generation"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OccurrenceWindow) TableName() string {
	return "occurrence_windows"
}
