package booking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roomstack/room-booking-backend/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// 📄 List Occurrences - GET /rooms/:id/occurrences?from=&to=
// @Summary List materialized occurrences for a room
// @Tags bookings
// @Produce json
// @Param id path int true "Room ID"
// @Param from query string true "Range start (RFC3339)"
// @Param to query string true "Range end (RFC3339)"
// @Success 200 {array} booking.OccurrenceView
// @Router /rooms/{id}/occurrences [get]
func (h *Handler) ListOccurrences(c *gin.Context) {
	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	roomID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from, use RFC3339"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to, use RFC3339"})
		return
	}

	views, err := h.Service.ListOccurrences(c.Request.Context(), uint(roomID), from.UTC(), to.UTC(), accessContext)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, views)
}

// ===========================
// 🔍 Check Availability - POST /bookings/check
// @Summary Check whether an interval is bookable in a room
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body booking.AvailabilityRequest true "Candidate interval"
// @Success 200 {object} booking.AvailabilityResult
// @Router /bookings/check [post]
func (h *Handler) CheckAvailability(c *gin.Context) {
	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time, use RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time, use RFC3339"})
		return
	}

	result, err := h.Service.CheckAvailability(c.Request.Context(), req.RoomID, start.UTC(), end.UTC(), accessContext)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ===========================
// 🟠 Create Booking - POST /bookings
// @Summary Create a booking, recurring when an rrule is given
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body booking.CreateBookingRequest true "Booking request"
// @Success 201 {object} booking.BookingResult
// @Failure 409 {object} booking.BookingResult
// @Router /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	ip := middleware.GetIPFromContext(c)
	result, err := h.Service.CreateBooking(c.Request.Context(), &req, accessContext, ip)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !result.Accepted {
		c.JSON(http.StatusConflict, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ===========================
// 🟣 Cancel Occurrence - POST /bookings/cancel
// @Summary Cancel one occurrence or a whole booking
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body booking.CancelOccurrenceRequest true "Cancellation target"
// @Success 200 {object} map[string]string
// @Router /bookings/cancel [post]
func (h *Handler) CancelOccurrence(c *gin.Context) {
	accessContext, ok := middleware.GetAccessContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access context missing"})
		return
	}

	var req CancelOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	ip := middleware.GetIPFromContext(c)
	if err := h.Service.CancelOccurrence(c.Request.Context(), &req, accessContext, ip); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cancelled"})
}
