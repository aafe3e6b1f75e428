package event

import (
	"time"

	"gorm.io/datatypes"
)

// Event statuses. "tentative" covers bookings awaiting approval.
const (
	StatusConfirmed = "confirmed"
	StatusTentative = "tentative"
	StatusCancelled = "cancelled"
)

// ============================
// 🔷 GORM Event Model (recurrence master)
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UID         string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"uid"` // stable identity, round-trips to providers
	RoomID      uint      `gorm:"not null;index" json:"room_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	StartTime   time.Time `gorm:"not null;index" json:"start_time"` // first occurrence start, UTC
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	TimeZone    string    `gorm:"type:varchar(64);default:'UTC'" json:"time_zone"` // IANA, authoritative for recurrence maths

	// RRule is nil for a single non-recurring event.
	RRule   *string                        `gorm:"type:text" json:"rrule,omitempty"`
	Exdates datatypes.JSONSlice[time.Time] `json:"exdates,omitempty"` // occurrence start instants to suppress
	Rdates  datatypes.JSONSlice[time.Time] `json:"rdates,omitempty"`  // ad-hoc extra instants

	Status    string    `gorm:"type:varchar(20);default:'confirmed';index" json:"status"`
	CreatedBy uint      `gorm:"not null" json:"created_by"`
	UpdatedBy uint      `json:"updated_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Overrides []EventOverride `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"overrides,omitempty"`
}

// EventOverride is a per-occurrence exception. RecurrenceID is the
// original, un-overridden UTC start instant of the targeted occurrence and
// never changes; it is the join key back to the generated series.
type EventOverride struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EventID      uint      `gorm:"not null;uniqueIndex:idx_override_event_recurrence" json:"event_id"`
	RecurrenceID time.Time `gorm:"not null;uniqueIndex:idx_override_event_recurrence" json:"recurrence_id"`

	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Title     *string    `gorm:"type:varchar(255)" json:"title,omitempty"`
	Status    *string    `gorm:"type:varchar(20)" json:"status,omitempty"` // "cancelled" suppresses the occurrence

	CreatedBy uint      `json:"created_by"`
	UpdatedBy uint      `json:"updated_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Occurrence is one concrete expanded instance, before persistence.
type Occurrence struct {
	EventID      uint      `json:"event_id"`
	RecurrenceID time.Time `json:"recurrence_id"` // original generated start, UTC
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	IsOverride   bool      `json:"is_override"`
}

// ============================
// 🟡 Create Event Request
type CreateEventRequest struct {
	RoomID      uint     `json:"room_id" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	StartTime   string   `json:"start_time" binding:"required"` // RFC3339
	EndTime     string   `json:"end_time" binding:"required"`   // RFC3339
	TimeZone    string   `json:"time_zone"`
	RRule       string   `json:"rrule,omitempty"`
	Exdates     []string `json:"exdates,omitempty"` // RFC3339
	Rdates      []string `json:"rdates,omitempty"`  // RFC3339
	Status      string   `json:"status"`
}

// ============================
// 🟠 Update Event Request
type UpdateEventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	TimeZone    string   `json:"time_zone"`
	RRule       *string  `json:"rrule,omitempty"`
	Exdates     []string `json:"exdates,omitempty"`
	Rdates      []string `json:"rdates,omitempty"`
	Status      string   `json:"status"`
}

// ============================
// 🟣 Override Request
type OverrideRequest struct {
	RecurrenceID string  `json:"recurrence_id" binding:"required"` // RFC3339, original UTC start
	StartTime    *string `json:"start_time,omitempty"`
	EndTime      *string `json:"end_time,omitempty"`
	Title        *string `json:"title,omitempty"`
	Status       *string `json:"status,omitempty"`
}
