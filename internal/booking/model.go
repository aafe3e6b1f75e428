package booking

import "time"

// Structured denial codes surfaced to callers, so the UI can render the
// right message instead of one generic rejection.
const (
	ReasonOutsideRoomHours = "outside-room-hours"
	ReasonOverlapsExisting = "overlaps-existing-booking"
)

// ============================
// 🟡 Check Availability Request
type AvailabilityRequest struct {
	RoomID    uint   `json:"room_id" binding:"required"`
	StartTime string `json:"start_time" binding:"required"` // RFC3339
	EndTime   string `json:"end_time" binding:"required"`   // RFC3339
}

// AvailabilityResult is a typed business outcome, not an error: a denied
// check returns Available=false plus the reasons that apply.
type AvailabilityResult struct {
	Available bool              `json:"available"`
	Reasons   []string          `json:"reasons,omitempty"`
	Conflicts []ConflictingSpan `json:"conflicts,omitempty"`
}

// ConflictingSpan identifies one occupied interval blocking a candidate.
type ConflictingSpan struct {
	EventID      uint       `json:"event_id"`
	OccurrenceID uint       `json:"occurrence_id"`
	RecurrenceID *time.Time `json:"recurrence_id,omitempty"`
	Title        string     `json:"title"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
}

// ============================
// 🟠 Create Booking Request
type CreateBookingRequest struct {
	RoomID      uint     `json:"room_id" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	StartTime   string   `json:"start_time" binding:"required"` // RFC3339
	EndTime     string   `json:"end_time" binding:"required"`   // RFC3339
	TimeZone    string   `json:"time_zone"`
	RRule       string   `json:"rrule,omitempty"` // optional recurrence spec
	Exdates     []string `json:"exdates,omitempty"`
	Rdates      []string `json:"rdates,omitempty"`
}

// BookingResult reports either the created event or the denial reasons.
type BookingResult struct {
	Accepted bool               `json:"accepted"`
	EventID  uint               `json:"event_id,omitempty"`
	EventUID string             `json:"event_uid,omitempty"`
	Denials  []OccurrenceDenial `json:"denials,omitempty"`
}

// OccurrenceDenial pins a denial to the concrete occurrence that failed,
// which matters for recurring bookings where only some instances clash.
type OccurrenceDenial struct {
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Reasons   []string          `json:"reasons"`
	Conflicts []ConflictingSpan `json:"conflicts,omitempty"`
}

// ============================
// 🟣 Cancel Occurrence Request
type CancelOccurrenceRequest struct {
	EventID      uint   `json:"event_id" binding:"required"`
	RecurrenceID string `json:"recurrence_id,omitempty"` // RFC3339; empty cancels the whole event
}

// ============================
// 🔷 Occurrence listing item returned to the portal calendar view
type OccurrenceView struct {
	EventID      uint       `json:"event_id"`
	OccurrenceID uint       `json:"occurrence_id"`
	RoomID       uint       `json:"room_id"`
	RecurrenceID *time.Time `json:"recurrence_id,omitempty"`
	Title        string     `json:"title"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      time.Time  `json:"end_time"`
	Status       string     `json:"status"`
	IsOverride   bool       `json:"is_override"`
}
