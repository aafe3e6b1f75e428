package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/roomstack/room-booking-backend/internal/auditlog"
	"github.com/roomstack/room-booking-backend/middleware"
)

// Invalidator marks cached occurrence windows stale after a mutation.
// Implemented by the occurrence materializer.
type Invalidator interface {
	InvalidateEvent(ctx context.Context, eventID uint) error
}

// SyncQueue enqueues local mutations for the provider push consumer.
type SyncQueue interface {
	EnqueuePush(ctx context.Context, eventUID string, action string) error
}

// Service wraps business logic for event masters and their overrides
type Service struct {
	Repo        *Repository
	AuditSvc    auditlog.Service
	Invalidator Invalidator
	SyncQueue   SyncQueue
}

func NewService(r *Repository, auditSvc auditlog.Service) *Service {
	return &Service{Repo: r, AuditSvc: auditSvc}
}

// ===========================
// 🎯 Create Event
func (s *Service) CreateEvent(req *CreateEventRequest, accessContext middleware.AccessContext, ip string) (*Event, error) {
	if !accessContext.CanWrite() {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &req.RoomID,
			"EVENT_CREATED", map[string]interface{}{
				"title": req.Title,
				"error": "write access denied",
			}, ip, "failure")
		return nil, errors.New("write access denied")
	}

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

	tz := req.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, errors.New("invalid time_zone, must be an IANA zone name")
	}

	var rrulePtr *string
	if req.RRule != "" {
		// Malformed rules are rejected here, never during expansion.
		if err := ValidateRRule(req.RRule); err != nil {
			s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &req.RoomID,
				"EVENT_CREATED", map[string]interface{}{
					"title": req.Title,
					"rrule": req.RRule,
					"error": err.Error(),
				}, ip, "failure")
			return nil, err
		}
		rule := req.RRule
		rrulePtr = &rule
	}

	exdates, err := parseInstants(req.Exdates)
	if err != nil {
		return nil, errors.New("invalid exdate, use RFC3339")
	}
	rdates, err := parseInstants(req.Rdates)
	if err != nil {
		return nil, errors.New("invalid rdate, use RFC3339")
	}

	status := req.Status
	if status == "" {
		status = StatusConfirmed
	}
	if status != StatusConfirmed && status != StatusTentative && status != StatusCancelled {
		return nil, errors.New("invalid status")
	}

	ev := &Event{
		UID:         uuid.NewString(),
		RoomID:      req.RoomID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		TimeZone:    tz,
		RRule:       rrulePtr,
		Exdates:     datatypes.JSONSlice[time.Time](exdates),
		Rdates:      datatypes.JSONSlice[time.Time](rdates),
		Status:      status,
		CreatedBy:   accessContext.UserID,
		UpdatedBy:   accessContext.UserID,
	}

	if err := s.Repo.CreateEvent(ev); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &req.RoomID,
			"EVENT_CREATED", map[string]interface{}{
				"title": req.Title,
				"error": err.Error(),
			}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &ev.RoomID,
		"EVENT_CREATED", map[string]interface{}{
			"event_id": ev.ID,
			"uid":      ev.UID,
			"title":    ev.Title,
			"rrule":    req.RRule,
		}, ip, "success")

	s.afterMutation(ev, "created")
	return ev, nil
}

// ===========================
// 🔍 Get Event by ID
func (s *Service) GetEventByID(id uint, accessContext middleware.AccessContext) (*Event, error) {
	if !accessContext.CanRead() {
		return nil, errors.New("read access denied")
	}
	return s.Repo.GetEventByID(id)
}

// ===========================
// 🛠 Update Event
func (s *Service) UpdateEvent(id uint, req *UpdateEventRequest, accessContext middleware.AccessContext, ip string) (*Event, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	ev, err := s.Repo.GetEventByID(id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		ev.Title = req.Title
	}
	if req.Description != "" {
		ev.Description = req.Description
	}
	if req.StartTime != "" {
		start, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			return nil, errors.New("invalid start_time, use RFC3339")
		}
		ev.StartTime = start.UTC()
	}
	if req.EndTime != "" {
		end, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			return nil, errors.New("invalid end_time, use RFC3339")
		}
		ev.EndTime = end.UTC()
	}
	if !ev.StartTime.Before(ev.EndTime) {
		return nil, errors.New("start_time must be before end_time")
	}
	if req.TimeZone != "" {
		if _, err := time.LoadLocation(req.TimeZone); err != nil {
			return nil, errors.New("invalid time_zone, must be an IANA zone name")
		}
		ev.TimeZone = req.TimeZone
	}
	if req.RRule != nil {
		if *req.RRule == "" {
			ev.RRule = nil
		} else {
			if err := ValidateRRule(*req.RRule); err != nil {
				return nil, err
			}
			ev.RRule = req.RRule
		}
	}
	if req.Exdates != nil {
		exdates, err := parseInstants(req.Exdates)
		if err != nil {
			return nil, errors.New("invalid exdate, use RFC3339")
		}
		ev.Exdates = datatypes.JSONSlice[time.Time](exdates)
	}
	if req.Rdates != nil {
		rdates, err := parseInstants(req.Rdates)
		if err != nil {
			return nil, errors.New("invalid rdate, use RFC3339")
		}
		ev.Rdates = datatypes.JSONSlice[time.Time](rdates)
	}
	if req.Status != "" {
		if req.Status != StatusConfirmed && req.Status != StatusTentative && req.Status != StatusCancelled {
			return nil, errors.New("invalid status")
		}
		ev.Status = req.Status
	}
	ev.UpdatedBy = accessContext.UserID

	if err := s.Repo.UpdateEvent(ev); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &ev.RoomID,
			"EVENT_UPDATED", map[string]interface{}{
				"event_id": id,
				"error":    err.Error(),
			}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &ev.RoomID,
		"EVENT_UPDATED", map[string]interface{}{
			"event_id": ev.ID,
			"title":    ev.Title,
			"status":   ev.Status,
		}, ip, "success")

	s.afterMutation(ev, "updated")
	return ev, nil
}

// ===========================
// ❌ Cancel Event (whole series)
func (s *Service) CancelEvent(id uint, accessContext middleware.AccessContext, ip string) error {
	if !accessContext.CanWrite() {
		return errors.New("write access denied")
	}

	ev, err := s.Repo.GetEventByID(id)
	if err != nil {
		return err
	}

	ev.Status = StatusCancelled
	ev.UpdatedBy = accessContext.UserID
	if err := s.Repo.UpdateEvent(ev); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &ev.RoomID,
			"EVENT_CANCELLED", map[string]interface{}{
				"event_id": id,
				"error":    err.Error(),
			}, ip, "failure")
		return err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &ev.RoomID,
		"EVENT_CANCELLED", map[string]interface{}{
			"event_id": ev.ID,
			"title":    ev.Title,
		}, ip, "success")

	s.afterMutation(ev, "cancelled")
	return nil
}

// ===========================
// 🟣 Apply Override (create or update one occurrence exception)
func (s *Service) ApplyOverride(eventID uint, req *OverrideRequest, accessContext middleware.AccessContext, ip string) (*EventOverride, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	ev, err := s.Repo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}

	recurrenceID, err := time.Parse(time.RFC3339, req.RecurrenceID)
	if err != nil {
		return nil, errors.New("invalid recurrence_id, use RFC3339")
	}

	ov := &EventOverride{
		EventID:      ev.ID,
		RecurrenceID: recurrenceID.UTC(),
		Title:        req.Title,
		Status:       req.Status,
		CreatedBy:    accessContext.UserID,
		UpdatedBy:    accessContext.UserID,
	}
	if req.StartTime != nil {
		start, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			return nil, errors.New("invalid start_time, use RFC3339")
		}
		utc := start.UTC()
		ov.StartTime = &utc
	}
	if req.EndTime != nil {
		end, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			return nil, errors.New("invalid end_time, use RFC3339")
		}
		utc := end.UTC()
		ov.EndTime = &utc
	}
	if ov.Status != nil {
		st := *ov.Status
		if st != StatusConfirmed && st != StatusTentative && st != StatusCancelled {
			return nil, errors.New("invalid status")
		}
	}

	if err := s.Repo.UpsertOverride(ov); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &ev.RoomID,
			"EVENT_OVERRIDE_APPLIED", map[string]interface{}{
				"event_id":      eventID,
				"recurrence_id": req.RecurrenceID,
				"error":         err.Error(),
			}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &ev.RoomID,
		"EVENT_OVERRIDE_APPLIED", map[string]interface{}{
			"event_id":      eventID,
			"recurrence_id": req.RecurrenceID,
		}, ip, "success")

	s.afterMutation(ev, "updated")
	return ov, nil
}

// afterMutation marks cached windows stale and queues the provider push.
// Both are best effort: local writes never fail on cache or broker trouble.
func (s *Service) afterMutation(ev *Event, action string) {
	ctx := context.Background()
	if s.Invalidator != nil {
		_ = s.Invalidator.InvalidateEvent(ctx, ev.ID)
	}
	if s.SyncQueue != nil {
		_ = s.SyncQueue.EnqueuePush(ctx, ev.UID, action)
	}
}

func parseInstants(values []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		out = append(out, t.UTC())
	}
	return out, nil
}
