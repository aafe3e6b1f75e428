package booking

import (
	"context"
	"errors"
	"time"

	"github.com/roomstack/room-booking-backend/internal/auditlog"
	"github.com/roomstack/room-booking-backend/internal/event"
	"github.com/roomstack/room-booking-backend/internal/occurrence"
	"github.com/roomstack/room-booking-backend/internal/room"
	"github.com/roomstack/room-booking-backend/middleware"
)

type Service struct {
	RoomRepo *room.Repository
	EventSvc *event.Service
	OccSvc   *occurrence.Service
	AuditSvc auditlog.Service

	// HorizonDays bounds how far ahead a recurring booking request is
	// expanded for validation (MATERIALIZE_AHEAD_DAYS).
	HorizonDays int
}

func NewService(roomRepo *room.Repository, eventSvc *event.Service, occSvc *occurrence.Service, auditSvc auditlog.Service, horizonDays int) *Service {
	if horizonDays <= 0 {
		horizonDays = defaultHorizonDays
	}
	return &Service{
		RoomRepo:    roomRepo,
		EventSvc:    eventSvc,
		OccSvc:      occSvc,
		AuditSvc:    auditSvc,
		HorizonDays: horizonDays,
	}
}

// ===========================
// 📄 ListOccurrences returns the materialized timeline of a room across
// [rangeStart, rangeEnd), rebuilding stale cache windows first.
func (s *Service) ListOccurrences(ctx context.Context, roomID uint, rangeStart, rangeEnd time.Time, accessContext middleware.AccessContext) ([]OccurrenceView, error) {
	if !accessContext.CanRead() {
		return nil, errors.New("read access denied")
	}
	if !rangeStart.Before(rangeEnd) {
		return nil, errors.New("range_start must be before range_end")
	}
	if _, err := s.RoomRepo.GetRoomByID(roomID); err != nil {
		return nil, errors.New("room not found")
	}

	rows, err := s.OccSvc.ListForRoom(ctx, roomID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}

	views := make([]OccurrenceView, 0, len(rows))
	for _, row := range rows {
		views = append(views, OccurrenceView{
			EventID:      row.EventID,
			OccurrenceID: row.ID,
			RoomID:       row.RoomID,
			RecurrenceID: row.RecurrenceID,
			Title:        row.Title,
			StartTime:    row.StartTime,
			EndTime:      row.EndTime,
			Status:       row.Status,
			IsOverride:   row.IsOverride,
		})
	}
	return views, nil
}

// ===========================
// 🔍 CheckAvailability runs the candidate interval through the room's
// availability rules and the conflict detector. Both checks always run,
// so a caller sees every applicable reason in one round trip.
func (s *Service) CheckAvailability(ctx context.Context, roomID uint, start, end time.Time, accessContext middleware.AccessContext) (*AvailabilityResult, error) {
	if !accessContext.CanRead() {
		return nil, errors.New("read access denied")
	}
	if !start.Before(end) {
		return nil, errors.New("start must be before end")
	}

	rm, err := s.RoomRepo.GetRoomByID(roomID)
	if err != nil {
		return nil, errors.New("room not found")
	}

	result := &AvailabilityResult{Available: true}

	ok, err := room.IsBookable(rm, rm.Rules, start, end)
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Available = false
		result.Reasons = append(result.Reasons, ReasonOutsideRoomHours)
	}

	conflicts, err := s.OccSvc.FindConflicts(ctx, occurrence.ConflictCheck{
		RoomID: roomID,
		Start:  start,
		End:    end,
	})
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		result.Available = false
		result.Reasons = append(result.Reasons, ReasonOverlapsExisting)
		result.Conflicts = toSpans(conflicts)
	}

	return result, nil
}

// ===========================
// 🟠 CreateBooking validates every occurrence the request would produce
// before persisting anything. A recurring booking with one bad instance
// is denied as a whole, with the denial pinned to that instance.
func (s *Service) CreateBooking(ctx context.Context, req *CreateBookingRequest, accessContext middleware.AccessContext, ip string) (*BookingResult, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	rm, err := s.RoomRepo.GetRoomByID(req.RoomID)
	if err != nil {
		return nil, errors.New("room not found")
	}
	if rm.Status != room.StatusActive {
		return nil, errors.New("room is not active")
	}

	candidates, err := s.candidateOccurrences(req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.New("recurrence produces no occurrences")
	}

	var denials []OccurrenceDenial
	for _, cand := range candidates {
		denial := OccurrenceDenial{StartTime: cand.Start, EndTime: cand.End}

		ok, err := room.IsBookable(rm, rm.Rules, cand.Start, cand.End)
		if err != nil {
			return nil, err
		}
		if !ok {
			denial.Reasons = append(denial.Reasons, ReasonOutsideRoomHours)
		}

		conflicts, err := s.OccSvc.FindConflicts(ctx, occurrence.ConflictCheck{
			RoomID: req.RoomID,
			Start:  cand.Start,
			End:    cand.End,
		})
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			denial.Reasons = append(denial.Reasons, ReasonOverlapsExisting)
			denial.Conflicts = toSpans(conflicts)
		}

		if len(denial.Reasons) > 0 {
			denials = append(denials, denial)
		}
	}

	if len(denials) > 0 {
		s.AuditSvc.LogAction(ctx, &accessContext.UserID, &req.RoomID,
			"BOOKING_DENIED", map[string]interface{}{
				"title":   req.Title,
				"denials": len(denials),
			}, ip, "failure")
		return &BookingResult{Accepted: false, Denials: denials}, nil
	}

	ev, err := s.EventSvc.CreateEvent(&event.CreateEventRequest{
		RoomID:      req.RoomID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TimeZone:    req.TimeZone,
		RRule:       req.RRule,
		Exdates:     req.Exdates,
		Rdates:      req.Rdates,
		Status:      event.StatusConfirmed,
	}, accessContext, ip)
	if err != nil {
		return nil, err
	}

	s.AuditSvc.LogAction(ctx, &accessContext.UserID, &req.RoomID,
		"BOOKING_CREATED", map[string]interface{}{
			"title":    req.Title,
			"event_id": ev.ID,
		}, ip, "success")
	return &BookingResult{Accepted: true, EventID: ev.ID, EventUID: ev.UID}, nil
}

// ===========================
// 🟣 CancelOccurrence cancels one instance of a recurring booking via a
// cancellation override, or the whole event when no recurrence id is
// given.
func (s *Service) CancelOccurrence(ctx context.Context, req *CancelOccurrenceRequest, accessContext middleware.AccessContext, ip string) error {
	if !accessContext.CanWrite() {
		return errors.New("write access denied")
	}

	if req.RecurrenceID == "" {
		return s.EventSvc.CancelEvent(req.EventID, accessContext, ip)
	}

	cancelled := event.StatusCancelled
	_, err := s.EventSvc.ApplyOverride(req.EventID, &event.OverrideRequest{
		RecurrenceID: req.RecurrenceID,
		Status:       &cancelled,
	}, accessContext, ip)
	return err
}

// candidateOccurrences expands the request into the concrete intervals
// it would occupy, without touching the database. Recurring requests are
// bounded to the materialization horizon; instances beyond it are
// checked when the horizon advances.
func (s *Service) candidateOccurrences(req *CreateBookingRequest) ([]event.Occurrence, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, errors.New("invalid start_time, use RFC3339")
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, errors.New("invalid end_time, use RFC3339")
	}
	if !start.Before(end) {
		return nil, errors.New("start_time must be before end_time")
	}

	if req.RRule == "" {
		return []event.Occurrence{{Start: start.UTC(), End: end.UTC()}}, nil
	}

	if err := event.ValidateRRule(req.RRule); err != nil {
		return nil, err
	}

	tz := req.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	candidate := &event.Event{
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		TimeZone:  tz,
		RRule:     &req.RRule,
	}
	for _, raw := range req.Exdates {
		d, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.New("invalid exdate, use RFC3339")
		}
		candidate.Exdates = append(candidate.Exdates, d.UTC())
	}
	for _, raw := range req.Rdates {
		d, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.New("invalid rdate, use RFC3339")
		}
		candidate.Rdates = append(candidate.Rdates, d.UTC())
	}

	horizon := start.UTC().AddDate(0, 0, s.HorizonDays)
	return event.Expand(candidate, start.UTC(), horizon)
}

const defaultHorizonDays = 90

func toSpans(rows []occurrence.EventOccurrence) []ConflictingSpan {
	spans := make([]ConflictingSpan, 0, len(rows))
	for _, row := range rows {
		spans = append(spans, ConflictingSpan{
			EventID:      row.EventID,
			OccurrenceID: row.ID,
			RecurrenceID: row.RecurrenceID,
			Title:        row.Title,
			StartTime:    row.StartTime,
			EndTime:      row.EndTime,
		})
	}
	return spans
}
