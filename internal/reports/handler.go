package reports

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roomstack/room-booking-backend/middleware"
)

type Handler struct {
	Service ReportService
}

func NewHandler(s ReportService) *Handler {
	return &Handler{Service: s}
}

// ===========================
// 📄 Bookings Report - GET /reports/bookings
// @Summary Bookings report across rooms and a date range
// @Tags reports
// @Produce json
// @Param room_id query int false "Room filter, 0 for all"
// @Param date_range query string false "daily|weekly|monthly|custom"
// @Param start_date query string false "Custom range start (2006-01-02)"
// @Param end_date query string false "Custom range end (2006-01-02)"
// @Param format query string false "csv|excel|pdf; empty returns JSON"
// @Success 200 {array} reports.BookingReportRow
// @Router /reports/bookings [get]
func (h *Handler) BookingsReport(c *gin.Context) {
	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	roomID, _ := strconv.ParseUint(c.Query("room_id"), 10, 32)
	req := BookingsReportRequest{
		RoomID:    uint(roomID),
		DateRange: c.Query("date_range"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Format:    c.Query("format"),
	}

	if err := validateFormat(req.Format); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// no format requested: JSON for the dashboard
	if req.Format == "" {
		rows, err := h.Service.GetBookingsReport(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rows)
		return
	}

	ip := middleware.GetIPFromContext(c)
	data, filename, mime, err := h.Service.ExportBookingsReport(c.Request.Context(), req, &accessContext.UserID, ip)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, mime, data)
}

// ===========================
// 📄 Utilization Report - GET /reports/utilization
// @Summary Per-room utilization across a date range
// @Tags reports
// @Produce json
// @Param date_range query string false "daily|weekly|monthly|custom"
// @Param start_date query string false "Custom range start (2006-01-02)"
// @Param end_date query string false "Custom range end (2006-01-02)"
// @Param format query string false "csv|excel|pdf; empty returns JSON"
// @Success 200 {array} reports.UtilizationReportRow
// @Router /reports/utilization [get]
func (h *Handler) UtilizationReport(c *gin.Context) {
	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	req := UtilizationReportRequest{
		DateRange: c.Query("date_range"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Format:    c.Query("format"),
	}

	if err := validateFormat(req.Format); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Format == "" {
		rows, err := h.Service.GetUtilizationReport(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rows)
		return
	}

	ip := middleware.GetIPFromContext(c)
	data, filename, mime, err := h.Service.ExportUtilizationReport(c.Request.Context(), req, &accessContext.UserID, ip)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, mime, data)
}
