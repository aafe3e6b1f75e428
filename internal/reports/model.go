package reports

import (
	"time"
)

const (
	// Report types
	ReportTypeBookings    = "bookings"
	ReportTypeUtilization = "utilization"

	// Date range constants
	DateRangeDaily   = "daily"
	DateRangeWeekly  = "weekly"
	DateRangeMonthly = "monthly"
	DateRangeCustom  = "custom"

	// Report format constants
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// BookingsReportRequest represents request parameters for the bookings report
type BookingsReportRequest struct {
	RoomID    uint   `json:"room_id"` // 0 means all rooms
	DateRange string `json:"date_range"`
	StartDate string `json:"start_date"` // "2006-01-02", custom range only
	EndDate   string `json:"end_date"`
	Format    string `json:"format"`
}

// UtilizationReportRequest represents request parameters for the utilization report
type UtilizationReportRequest struct {
	DateRange string `json:"date_range"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Format    string `json:"format"`
}

// BookingReportRow is one materialized occurrence in the bookings report
type BookingReportRow struct {
	EventID    uint      `json:"event_id"`
	RoomID     uint      `json:"room_id"`
	RoomName   string    `json:"room_name"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	IsOverride bool      `json:"is_override"`
}

// UtilizationReportRow aggregates booked time per room across a range
type UtilizationReportRow struct {
	RoomID       uint    `json:"room_id"`
	RoomName     string  `json:"room_name"`
	Capacity     int     `json:"capacity"`
	BookingCount int     `json:"booking_count"`
	BookedHours  float64 `json:"booked_hours"`
}

// ReportData bundles rows per report type for the exporter
type ReportData struct {
	Bookings    []BookingReportRow
	Utilization []UtilizationReportRow
}
