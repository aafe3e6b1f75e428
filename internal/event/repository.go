package event

import (
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🎯 Create Event
func (r *Repository) CreateEvent(e *Event) error {
	return r.DB.Create(e).Error
}

// ===========================
// 🔍 Get Event By ID with overrides
func (r *Repository) GetEventByID(id uint) (*Event, error) {
	var e Event
	if err := r.DB.Preload("Overrides").First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ===========================
// 🔍 Get Event By UID (provider round-tripping)
func (r *Repository) GetEventByUID(uid string) (*Event, error) {
	var e Event
	if err := r.DB.Preload("Overrides").Where("uid = ?", uid).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ===========================
// 📄 List Events for a room intersecting a window.
// A recurring master stays relevant for its whole lifetime, so masters with
// an rrule are matched on start only.
func (r *Repository) ListEventsByRoom(roomID uint, windowStart, windowEnd time.Time) ([]Event, error) {
	var events []Event
	err := r.DB.Preload("Overrides").
		Where("room_id = ? AND status <> ?", roomID, StatusCancelled).
		Where("rrule IS NOT NULL OR (start_time < ? AND end_time > ?)", windowEnd, windowStart).
		Where("start_time < ?", windowEnd).
		Order("start_time ASC").
		Find(&events).Error
	return events, err
}

// ===========================
// 🛠 Update Event
func (r *Repository) UpdateEvent(e *Event) error {
	return r.DB.Save(e).Error
}

// ===========================
// ❌ Delete Event (cascades overrides and occurrences)
func (r *Repository) DeleteEvent(id uint) error {
	return r.DB.Delete(&Event{}, id).Error
}

// ===========================
// 🟣 Upsert an override on (event_id, recurrence_id)
func (r *Repository) UpsertOverride(ov *EventOverride) error {
	var existing EventOverride
	err := r.DB.Where("event_id = ? AND recurrence_id = ?", ov.EventID, ov.RecurrenceID).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.DB.Create(ov).Error
	}
	if err != nil {
		return err
	}

	ov.ID = existing.ID
	ov.CreatedBy = existing.CreatedBy
	ov.CreatedAt = existing.CreatedAt
	return r.DB.Save(ov).Error
}

// ===========================
// 🟣 List overrides for an event
func (r *Repository) ListOverrides(eventID uint) ([]EventOverride, error) {
	var overrides []EventOverride
	err := r.DB.Where("event_id = ?", eventID).Order("recurrence_id ASC").Find(&overrides).Error
	return overrides, err
}
