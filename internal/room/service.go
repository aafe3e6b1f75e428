package room

import (
	"context"
	"errors"
	"time"

	"github.com/roomstack/room-booking-backend/internal/auditlog"
	"github.com/roomstack/room-booking-backend/middleware"
)

// Service wraps business logic for rooms and their availability rules
type Service struct {
	Repo     *Repository
	AuditSvc auditlog.Service
}

func NewService(r *Repository, auditSvc auditlog.Service) *Service {
	return &Service{Repo: r, AuditSvc: auditSvc}
}

// ===========================
// 🎯 Create Room
func (s *Service) CreateRoom(req *CreateRoomRequest, accessContext middleware.AccessContext, ip string) (*Room, error) {
	if !accessContext.CanWrite() {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, nil,
			"ROOM_CREATED", map[string]interface{}{
				"name":  req.Name,
				"error": "write access denied",
			}, ip, "failure")
		return nil, errors.New("write access denied")
	}

	tz := req.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, errors.New("invalid time_zone, must be an IANA zone name")
	}

	rules := make([]RoomRule, 0, len(req.Rules))
	for _, rr := range req.Rules {
		if err := ValidateRule(rr); err != nil {
			s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, nil,
				"ROOM_CREATED", map[string]interface{}{
					"name":  req.Name,
					"error": err.Error(),
				}, ip, "failure")
			return nil, err
		}
		rules = append(rules, RoomRule{
			Days:      rr.Days,
			StartTime: rr.StartTime,
			EndTime:   rr.EndTime,
			CreatedBy: accessContext.UserID,
			UpdatedBy: accessContext.UserID,
		})
	}

	room := &Room{
		Name:        req.Name,
		Description: req.Description,
		Floor:       req.Floor,
		RoomType:    req.RoomType,
		Capacity:    req.Capacity,
		Status:      StatusActive,
		TimeZone:    tz,
		CreatedBy:   accessContext.UserID,
		UpdatedBy:   accessContext.UserID,
	}

	if err := s.Repo.CreateRoom(room, rules); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, nil,
			"ROOM_CREATED", map[string]interface{}{
				"name":  req.Name,
				"error": err.Error(),
			}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &room.ID,
		"ROOM_CREATED", map[string]interface{}{
			"room_id":  room.ID,
			"name":     room.Name,
			"capacity": room.Capacity,
			"rules":    len(rules),
		}, ip, "success")

	return room, nil
}

// ===========================
// 🔍 Get Room by ID
func (s *Service) GetRoomByID(id uint, accessContext middleware.AccessContext) (*Room, error) {
	if !accessContext.CanRead() {
		return nil, errors.New("read access denied")
	}
	return s.Repo.GetRoomByID(id)
}

// ===========================
// 📄 List Rooms
func (s *Service) ListRooms(accessContext middleware.AccessContext, status, search string, limit, offset int) ([]Room, error) {
	if !accessContext.CanRead() {
		return nil, errors.New("read access denied")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Repo.ListRooms(status, search, limit, offset)
}

// ===========================
// 🛠 Update Room (status changes are soft; rooms with events are never deleted)
func (s *Service) UpdateRoom(id uint, req *UpdateRoomRequest, accessContext middleware.AccessContext, ip string) (*Room, error) {
	if !accessContext.CanWrite() {
		return nil, errors.New("write access denied")
	}

	room, err := s.Repo.GetRoomByID(id)
	if err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &id,
			"ROOM_UPDATED", map[string]interface{}{
				"room_id": id,
				"error":   "room not found",
			}, ip, "failure")
		return nil, err
	}

	if req.Name != "" {
		room.Name = req.Name
	}
	if req.Description != "" {
		room.Description = req.Description
	}
	if req.Floor != "" {
		room.Floor = req.Floor
	}
	if req.RoomType != "" {
		room.RoomType = req.RoomType
	}
	if req.Capacity > 0 {
		room.Capacity = req.Capacity
	}
	if req.TimeZone != "" {
		if _, err := time.LoadLocation(req.TimeZone); err != nil {
			return nil, errors.New("invalid time_zone, must be an IANA zone name")
		}
		room.TimeZone = req.TimeZone
	}
	if req.Status != "" {
		if req.Status != StatusActive && req.Status != StatusInactive && req.Status != StatusMaintenance {
			return nil, errors.New("invalid status")
		}
		room.Status = req.Status
	}
	room.UpdatedBy = accessContext.UserID

	if err := s.Repo.UpdateRoom(room); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &id,
			"ROOM_UPDATED", map[string]interface{}{
				"room_id": id,
				"error":   err.Error(),
			}, ip, "failure")
		return nil, err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &id,
		"ROOM_UPDATED", map[string]interface{}{
			"room_id": room.ID,
			"name":    room.Name,
			"status":  room.Status,
		}, ip, "success")

	return room, nil
}

// ===========================
// 🔄 Replace Rules
func (s *Service) ReplaceRules(roomID uint, reqs []RoomRuleRequest, accessContext middleware.AccessContext, ip string) error {
	if !accessContext.CanWrite() {
		return errors.New("write access denied")
	}
	if len(reqs) == 0 {
		return errors.New("at least one rule is required")
	}

	if _, err := s.Repo.GetRoomByID(roomID); err != nil {
		return err
	}

	rules := make([]RoomRule, 0, len(reqs))
	for _, rr := range reqs {
		if err := ValidateRule(rr); err != nil {
			return err
		}
		rules = append(rules, RoomRule{
			Days:      rr.Days,
			StartTime: rr.StartTime,
			EndTime:   rr.EndTime,
			CreatedBy: accessContext.UserID,
			UpdatedBy: accessContext.UserID,
		})
	}

	if err := s.Repo.ReplaceRules(roomID, rules); err != nil {
		s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &roomID,
			"ROOM_RULES_REPLACED", map[string]interface{}{
				"room_id": roomID,
				"error":   err.Error(),
			}, ip, "failure")
		return err
	}

	s.AuditSvc.LogAction(context.Background(), &accessContext.UserID, &roomID,
		"ROOM_RULES_REPLACED", map[string]interface{}{
			"room_id": roomID,
			"rules":   len(rules),
		}, ip, "success")

	return nil
}
