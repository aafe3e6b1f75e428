package room

import (
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🎯 Create Room with its rules in one transaction
func (r *Repository) CreateRoom(room *Room, rules []RoomRule) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		for i := range rules {
			rules[i].RoomID = room.ID
		}
		if len(rules) > 0 {
			if err := tx.Create(&rules).Error; err != nil {
				return err
			}
		}
		room.Rules = rules
		return nil
	})
}

// ===========================
// 🔍 Get Room By ID including rules
func (r *Repository) GetRoomByID(id uint) (*Room, error) {
	var room Room
	err := r.DB.Preload("Rules").First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ===========================
// 📄 List Rooms with optional status filter and search
func (r *Repository) ListRooms(status, search string, limit, offset int) ([]Room, error) {
	var rooms []Room

	query := r.DB.Preload("Rules")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		ilike := "%" + search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", ilike, ilike)
	}

	err := query.Order("name ASC").Limit(limit).Offset(offset).Find(&rooms).Error
	return rooms, err
}

// ===========================
// 🛠 Update Room
func (r *Repository) UpdateRoom(room *Room) error {
	return r.DB.Save(room).Error
}

// ===========================
// 🔄 Replace a room's rules in one transaction
func (r *Repository) ReplaceRules(roomID uint, rules []RoomRule) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&RoomRule{}).Error; err != nil {
			return err
		}
		for i := range rules {
			rules[i].RoomID = roomID
		}
		if len(rules) > 0 {
			if err := tx.Create(&rules).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ===========================
// 🔢 Count events referencing a room (guards hard deletes)
func (r *Repository) CountEvents(roomID uint) (int64, error) {
	var count int64
	err := r.DB.Table("events").Where("room_id = ?", roomID).Count(&count).Error
	return count, err
}
