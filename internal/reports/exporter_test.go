package reports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"
)

func TestExportBookingsCSV(t *testing.T) {
	e := &reportExporter{}
	rows := []BookingReportRow{
		{
			EventID:   4,
			RoomName:  "Aurora",
			Title:     "Standup",
			StartTime: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 1, 8, 9, 20, 0, 0, time.UTC),
			Status:    "confirmed",
		},
	}

	data, err := e.exportBookingsCSV(rows)
	if err != nil {
		t.Fatalf("exportBookingsCSV: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[1][1] != "Aurora" || records[1][2] != "Standup" {
		t.Errorf("unexpected row: %v", records[1])
	}
	if records[1][3] != "2024-01-08 09:00" {
		t.Errorf("start column = %q", records[1][3])
	}
}

func TestGetDateRange_Custom(t *testing.T) {
	start, end, err := GetDateRange(DateRangeCustom, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("GetDateRange: %v", err)
	}
	if start.After(end) {
		t.Errorf("start %v after end %v", start, end)
	}
	if end.Sub(start) < 30*24*time.Hour {
		t.Errorf("custom range too short: %v", end.Sub(start))
	}
}

func TestGetDateRange_CustomRequiresDates(t *testing.T) {
	if _, _, err := GetDateRange(DateRangeCustom, "", ""); err == nil {
		t.Error("expected an error for missing custom dates")
	}
	if _, _, err := GetDateRange(DateRangeCustom, "2024-02-01", "2024-01-01"); err == nil {
		t.Error("expected an error for reversed custom range")
	}
}
