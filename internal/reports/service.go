package reports

import (
	"context"
	"fmt"

	"github.com/roomstack/room-booking-backend/internal/auditlog"
)

// ReportService performs business logic and coordinates repo + exporter.
type ReportService interface {
	GetBookingsReport(req BookingsReportRequest) ([]BookingReportRow, error)
	ExportBookingsReport(ctx context.Context, req BookingsReportRequest, userID *uint, ip string) ([]byte, string, string, error)

	GetUtilizationReport(req UtilizationReportRequest) ([]UtilizationReportRow, error)
	ExportUtilizationReport(ctx context.Context, req UtilizationReportRequest, userID *uint, ip string) ([]byte, string, string, error)
}

type reportService struct {
	repo     ReportRepository
	exporter ReportExporter
	auditSvc auditlog.Service
}

func NewReportService(repo ReportRepository, exporter ReportExporter, auditSvc auditlog.Service) ReportService {
	return &reportService{
		repo:     repo,
		exporter: exporter,
		auditSvc: auditSvc,
	}
}

// ===============================
// Bookings Report
// ===============================

func (s *reportService) GetBookingsReport(req BookingsReportRequest) ([]BookingReportRow, error) {
	start, end, err := GetDateRange(req.DateRange, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	return s.repo.GetBookings(req.RoomID, start, end)
}

func (s *reportService) ExportBookingsReport(ctx context.Context, req BookingsReportRequest, userID *uint, ip string) ([]byte, string, string, error) {
	rows, err := s.GetBookingsReport(req)
	if err != nil {
		return nil, "", "", err
	}

	format := req.Format
	if format == "" {
		format = FormatCSV
	}

	data, filename, mime, err := s.exporter.Export(ReportTypeBookings, format, ReportData{Bookings: rows})
	if err != nil {
		return nil, "", "", err
	}

	s.auditSvc.LogAction(ctx, userID, nil, "REPORT_EXPORTED", map[string]interface{}{
		"report": ReportTypeBookings,
		"format": format,
		"rows":   len(rows),
	}, ip, "success")

	return data, filename, mime, nil
}

// ===============================
// Utilization Report
// ===============================

func (s *reportService) GetUtilizationReport(req UtilizationReportRequest) ([]UtilizationReportRow, error) {
	start, end, err := GetDateRange(req.DateRange, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	return s.repo.GetUtilization(start, end)
}

func (s *reportService) ExportUtilizationReport(ctx context.Context, req UtilizationReportRequest, userID *uint, ip string) ([]byte, string, string, error) {
	rows, err := s.GetUtilizationReport(req)
	if err != nil {
		return nil, "", "", err
	}

	format := req.Format
	if format == "" {
		format = FormatCSV
	}

	data, filename, mime, err := s.exporter.Export(ReportTypeUtilization, format, ReportData{Utilization: rows})
	if err != nil {
		return nil, "", "", err
	}

	s.auditSvc.LogAction(ctx, userID, nil, "REPORT_EXPORTED", map[string]interface{}{
		"report": ReportTypeUtilization,
		"format": format,
		"rows":   len(rows),
	}, ip, "success")

	return data, filename, mime, nil
}

// validateFormat is shared by the handler for early rejection
func validateFormat(format string) error {
	switch format {
	case "", FormatCSV, FormatExcel, FormatPDF:
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
