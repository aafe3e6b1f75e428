package reports

import (
	"time"

	"gorm.io/gorm"
)

// ReportRepository reads report rows from the materialized occurrence
// cache. Reports tolerate a slightly stale cache; they never trigger a
// rebuild.
type ReportRepository interface {
	GetBookings(roomID uint, start, end time.Time) ([]BookingReportRow, error)
	GetUtilization(start, end time.Time) ([]UtilizationReportRow, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetBookings(roomID uint, start, end time.Time) ([]BookingReportRow, error) {
	query := r.db.Table("event_occurrences AS o").
		Select(`o.event_id, o.room_id, rooms.name AS room_name, o.title,
			o.start_time, o.end_time, o.status, o.is_override`).
		Joins("JOIN rooms ON rooms.id = o.room_id").
		Where("o.start_time < ? AND o.end_time > ?", end, start).
		Order("o.start_time ASC")
	if roomID != 0 {
		query = query.Where("o.room_id = ?", roomID)
	}

	var rows []BookingReportRow
	err := query.Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) GetUtilization(start, end time.Time) ([]UtilizationReportRow, error) {
	var rows []UtilizationReportRow
	err := r.db.Table("rooms").
		Select(`rooms.id AS room_id, rooms.name AS room_name, rooms.capacity,
			COUNT(o.id) AS booking_count,
			COALESCE(SUM(EXTRACT(EPOCH FROM (o.end_time - o.start_time))) / 3600, 0) AS booked_hours`).
		Joins(`LEFT JOIN event_occurrences o ON o.room_id = rooms.id
			AND o.start_time < ? AND o.end_time > ?`, end, start).
		Group("rooms.id, rooms.name, rooms.capacity").
		Order("rooms.name ASC").
		Scan(&rows).Error
	return rows, err
}
