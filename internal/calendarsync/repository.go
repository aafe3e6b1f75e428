package calendarsync

import (
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🔍 GetOrCreateSyncState loads the cursor for (calendar, provider),
// creating an empty one on first contact.
func (r *Repository) GetOrCreateSyncState(calendarID, provider string) (*CalendarSyncState, error) {
	var state CalendarSyncState
	err := r.DB.Where("calendar_id = ? AND provider = ?", calendarID, provider).First(&state).Error
	if err == gorm.ErrRecordNotFound {
		state = CalendarSyncState{CalendarID: calendarID, Provider: provider}
		if err := r.DB.Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// AdvanceSyncToken commits the cursor after a fully applied run.
func (r *Repository) AdvanceSyncToken(state *CalendarSyncState, token string) error {
	now := time.Now().UTC()
	state.SyncToken = token
	state.LastSyncAt = &now
	state.LastError = ""
	return r.DB.Save(state).Error
}

// RecordSyncError notes the failure without touching the token, so the
// next run resumes from the same point.
func (r *Repository) RecordSyncError(state *CalendarSyncState, syncErr error) error {
	state.LastError = syncErr.Error()
	return r.DB.Model(state).Update("last_error", state.LastError).Error
}

// ===========================
// 🔍 Mapping lookups
func (r *Repository) GetMappingByProviderEventID(provider, providerEventID string) (*ProviderEventMapping, error) {
	var mapping ProviderEventMapping
	err := r.DB.Where("provider = ? AND provider_event_id = ?", provider, providerEventID).First(&mapping).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *Repository) GetMappingByEventID(eventID uint, provider string) (*ProviderEventMapping, error) {
	var mapping ProviderEventMapping
	err := r.DB.Where("event_id = ? AND provider = ?", eventID, provider).First(&mapping).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *Repository) SaveMapping(mapping *ProviderEventMapping) error {
	return r.DB.Save(mapping).Error
}
