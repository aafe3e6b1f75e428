package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ReportExporter defines the interface for exporting reports in different formats
type ReportExporter interface {
	Export(reportType, format string, data ReportData) ([]byte, string, string, error)
}

type reportExporter struct{}

func NewReportExporter() ReportExporter {
	return &reportExporter{}
}

func (e *reportExporter) Export(reportType, format string, data ReportData) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch reportType {
	case ReportTypeBookings:
		return e.exportBookingsByFormat(format, timestamp, data.Bookings)
	case ReportTypeUtilization:
		return e.exportUtilizationByFormat(format, timestamp, data.Utilization)
	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}
}

//// ============================
/// BOOKINGS EXPORTS
//// ============================

func (e *reportExporter) exportBookingsByFormat(format, timestamp string, rows []BookingReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatCSV:
		data, err := e.exportBookingsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.csv", timestamp), "text/csv", nil

	case FormatExcel:
		data, err := e.exportBookingsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.xlsx", timestamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportBookingsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.pdf", timestamp), "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for bookings: %s", format)
	}
}

func (e *reportExporter) exportBookingsCSV(rows []BookingReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Event ID", "Room", "Title", "Start", "End", "Status", "Modified"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.EventID), 10),
			row.RoomName,
			row.Title,
			row.StartTime.Format("2006-01-02 15:04"),
			row.EndTime.Format("2006-01-02 15:04"),
			row.Status,
			strconv.FormatBool(row.IsOverride),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *reportExporter) exportBookingsExcel(rows []BookingReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"Event ID", "Room", "Title", "Start", "End", "Status", "Modified"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, row := range rows {
		line := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", line), row.EventID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", line), row.RoomName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", line), row.Title)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", line), row.StartTime.Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", line), row.EndTime.Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", line), row.Status)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", line), row.IsOverride)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportBookingsPDF(rows []BookingReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Bookings Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	headers := []string{"Event ID", "Room", "Title", "Start", "End", "Status"}
	widths := []float64{20, 45, 75, 45, 45, 30}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.CellFormat(widths[0], 6, strconv.FormatUint(uint64(row.EventID), 10), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, row.RoomName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, row.Title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, row.StartTime.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, row.EndTime.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 6, row.Status, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// UTILIZATION EXPORTS
//// ============================

func (e *reportExporter) exportUtilizationByFormat(format, timestamp string, rows []UtilizationReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatCSV:
		data, err := e.exportUtilizationCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("utilization_report_%s.csv", timestamp), "text/csv", nil

	case FormatExcel:
		data, err := e.exportUtilizationExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("utilization_report_%s.xlsx", timestamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportUtilizationPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("utilization_report_%s.pdf", timestamp), "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for utilization: %s", format)
	}
}

func (e *reportExporter) exportUtilizationCSV(rows []UtilizationReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Room ID", "Room", "Capacity", "Bookings", "Booked Hours"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.RoomID), 10),
			row.RoomName,
			strconv.Itoa(row.Capacity),
			strconv.Itoa(row.BookingCount),
			strconv.FormatFloat(row.BookedHours, 'f', 1, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportUtilizationExcel(rows []UtilizationReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Utilization"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"Room ID", "Room", "Capacity", "Bookings", "Booked Hours"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, row := range rows {
		line := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", line), row.RoomID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", line), row.RoomName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", line), row.Capacity)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", line), row.BookingCount)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", line), row.BookedHours)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportUtilizationPDF(rows []UtilizationReportRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Room Utilization Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	headers := []string{"Room ID", "Room", "Capacity", "Bookings", "Booked Hours"}
	widths := []float64{25, 70, 25, 30, 35}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		pdf.CellFormat(widths[0], 6, strconv.FormatUint(uint64(row.RoomID), 10), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, row.RoomName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, strconv.Itoa(row.Capacity), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, strconv.Itoa(row.BookingCount), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, strconv.FormatFloat(row.BookedHours, 'f', 1, 64), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
