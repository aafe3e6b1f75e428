package room

import (
	"time"

	"gorm.io/datatypes"
)

// Room statuses. Rooms with events are never hard-deleted, the status
// flips instead.
const (
	StatusActive      = "active"
	StatusInactive    = "inactive"
	StatusMaintenance = "maintenance"
)

// ============================
// 🔷 GORM Room Model
type Room struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Floor       string    `gorm:"type:varchar(10);default:'7th'" json:"floor"`
	RoomType    string    `gorm:"type:varchar(50);default:'meeting'" json:"room_type"` // meeting/training/conference/break
	Capacity    int       `gorm:"not null" json:"capacity"`
	Status      string    `gorm:"type:varchar(20);default:'active';index" json:"status"`
	TimeZone    string    `gorm:"type:varchar(64);default:'UTC'" json:"time_zone"` // IANA, rules are wall-clock in this zone
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	UpdatedBy   uint      `json:"updated_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Rules []RoomRule `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"rules,omitempty"`
}

// RoomRule is one availability envelope: a set of weekdays plus a
// wall-clock window. A room may carry several rules with different hours.
type RoomRule struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	RoomID    uint                        `gorm:"not null;index" json:"room_id"`
	Days      datatypes.JSONSlice[string] `gorm:"not null" json:"days"`                      // ["monday", ...]
	StartTime string                      `gorm:"type:varchar(10);not null" json:"start_time"` // "08:00"
	EndTime   string                      `gorm:"type:varchar(10);not null" json:"end_time"`   // "18:00", must be after StartTime
	CreatedBy uint                        `json:"created_by"`
	UpdatedBy uint                        `json:"updated_by"`
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

// ============================
// 🟡 Create Room Request
type CreateRoomRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Floor       string            `json:"floor"`
	RoomType    string            `json:"room_type"`
	Capacity    int               `json:"capacity" binding:"required"`
	TimeZone    string            `json:"time_zone"`
	Rules       []RoomRuleRequest `json:"rules" binding:"required,min=1"`
}

type RoomRuleRequest struct {
	Days      []string `json:"days" binding:"required,min=1"`
	StartTime string   `json:"start_time" binding:"required"` // "HH:MM"
	EndTime   string   `json:"end_time" binding:"required"`   // "HH:MM"
}

// ============================
// 🟠 Update Room Request
type UpdateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Floor       string `json:"floor"`
	RoomType    string `json:"room_type"`
	Capacity    int    `json:"capacity"`
	TimeZone    string `json:"time_zone"`
	Status      string `json:"status"`
}
