package occurrence

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrWindowSuperseded is returned by ReplaceWindow when the window was
// invalidated between MarkBuilding and the swap. The built rows reflect a
// pre-mutation event definition, so the caller must rebuild.
var ErrWindowSuperseded = errors.New("occurrence window superseded during rebuild")

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🔍 Get cache window row for (event, range)
func (r *Repository) GetWindow(eventID uint, windowStart, windowEnd time.Time) (*OccurrenceWindow, error) {
	var win OccurrenceWindow
	err := r.DB.Where("event_id = ? AND window_start = ? AND window_end = ?",
		eventID, windowStart, windowEnd).First(&win).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &win, nil
}

// ===========================
// 🔨 Mark a window as building (upsert), bumping the generation
func (r *Repository) MarkBuilding(eventID uint, windowStart, windowEnd time.Time) (*OccurrenceWindow, error) {
	var win OccurrenceWindow
	err := r.DB.Where("event_id = ? AND window_start = ? AND window_end = ?",
		eventID, windowStart, windowEnd).First(&win).Error
	if err == gorm.ErrRecordNotFound {
		win = OccurrenceWindow{
			EventID:     eventID,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
			State:       StateBuilding,
			Generation:  1,
		}
		if err := r.DB.Create(&win).Error; err != nil {
			return nil, err
		}
		return &win, nil
	}
	if err != nil {
		return nil, err
	}

	win.State = StateBuilding
	win.Generation++
	if err := r.DB.Save(&win).Error; err != nil {
		return nil, err
	}
	return &win, nil
}

// ===========================
// 🔄 ReplaceWindow swaps the cached rows a window owns and marks it
// fresh, all inside one transaction. Rows are owned via window_id, not
// their effective start time, so overridden occurrences that moved
// outside the window's time range are still replaced. The fresh
// transition is guarded on (state, generation): a MarkStale that landed
// mid-build makes the swap roll back with ErrWindowSuperseded instead
// of publishing pre-mutation rows as fresh.
func (r *Repository) ReplaceWindow(win *OccurrenceWindow, rows []EventOccurrence) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("window_id = ?", win.ID).
			Delete(&EventOccurrence{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		res := tx.Model(&OccurrenceWindow{}).
			Where("id = ? AND state = ? AND generation = ?", win.ID, StateBuilding, win.Generation).
			Update("state", StateFresh)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrWindowSuperseded
		}
		return nil
	})
}

// ===========================
// ⚠️ Mark every cached window of an event stale
func (r *Repository) MarkStale(eventID uint) error {
	return r.DB.Model(&OccurrenceWindow{}).
		Where("event_id = ?", eventID).
		Update("state", StateStale).Error
}

// ===========================
// 📄 List materialized occurrences for a room across a range
func (r *Repository) ListRange(roomID uint, rangeStart, rangeEnd time.Time) ([]EventOccurrence, error) {
	var occs []EventOccurrence
	err := r.DB.Where("room_id = ? AND start_time < ? AND end_time > ?",
		roomID, rangeEnd, rangeStart).
		Order("start_time ASC").
		Find(&occs).Error
	return occs, err
}

// ===========================
// ⚔️ Find occurrences overlapping a candidate interval (half-open)
func (r *Repository) FindOverlapping(roomID uint, start, end time.Time, excludeOccurrenceID *uint) ([]EventOccurrence, error) {
	query := r.DB.Where("room_id = ? AND start_time < ? AND end_time > ?", roomID, end, start)
	if excludeOccurrenceID != nil {
		query = query.Where("id <> ?", *excludeOccurrenceID)
	}

	var occs []EventOccurrence
	err := query.Find(&occs).Error
	return occs, err
}

// ===========================
// ❌ Drop all cached state for an event (event deletion, window age-out)
func (r *Repository) DeleteForEvent(eventID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&EventOccurrence{}).Error; err != nil {
			return err
		}
		return tx.Where("event_id = ?", eventID).Delete(&OccurrenceWindow{}).Error
	})
}
